package morph

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cellseg/pkg/grid"
)

func TestDistanceTransformSinglePixel(t *testing.T) {
	fg := grid.NewBitmap(7, 7)
	fg.Set(3, 3, true)

	d := DistanceTransform(fg)

	assert.InDelta(t, 1.0, d.At(3, 3), 1e-9)
	assert.Equal(t, 0.0, d.At(0, 0))
	assert.Equal(t, 0.0, d.At(2, 3))
}

func TestDistanceTransformCornerBackground(t *testing.T) {
	fg := grid.NewBitmapFilled(5, 5, true)
	fg.Set(0, 0, false)

	d := DistanceTransform(fg)

	assert.Equal(t, 0.0, d.At(0, 0))
	assert.InDelta(t, 1.0, d.At(1, 0), 1e-9)
	assert.InDelta(t, math.Sqrt(2), d.At(1, 1), 1e-9)
	assert.InDelta(t, math.Sqrt(32), d.At(4, 4), 1e-9)
}

func TestDistanceTransformSquarePeaksAtCenter(t *testing.T) {
	fg := grid.NewBitmap(15, 15)
	for y := 3; y <= 11; y++ {
		for x := 3; x <= 11; x++ {
			fg.Set(x, y, true)
		}
	}

	d := DistanceTransform(fg)

	center := d.At(7, 7)
	assert.InDelta(t, 5.0, center, 1e-9)
	for y := 0; y < 15; y++ {
		for x := 0; x < 15; x++ {
			assert.LessOrEqual(t, d.At(x, y), center)
		}
	}
}

func TestSmoothGaussianConstantImage(t *testing.T) {
	img := grid.NewDense(20, 20)
	img.Fill(0.5)
	mask := grid.NewBitmapFilled(20, 20, true)

	out := SmoothGaussian(img, mask, 2.0)

	for _, v := range out.Pix {
		assert.InDelta(t, 0.5, v, 1e-9)
	}
}

func TestSmoothGaussianIgnoresMaskedPixels(t *testing.T) {
	img := grid.NewDense(11, 11)
	img.Fill(0.5)
	img.Set(5, 5, 1000) // huge value hidden behind the mask
	mask := grid.NewBitmapFilled(11, 11, true)
	mask.Set(5, 5, false)

	out := SmoothGaussian(img, mask, 1.5)

	assert.Equal(t, 0.0, out.At(5, 5))
	assert.InDelta(t, 0.5, out.At(5, 4), 1e-9)
	assert.InDelta(t, 0.5, out.At(6, 6), 1e-9)
}

func TestSmoothGaussianZeroSigmaIsIdentity(t *testing.T) {
	img := grid.NewDense(4, 4)
	img.Set(2, 1, 0.7)
	mask := grid.NewBitmapFilled(4, 4, true)

	out := SmoothGaussian(img, mask, 0)

	assert.Equal(t, img.Pix, out.Pix)
}

func TestLabelComponents(t *testing.T) {
	fg := grid.NewBitmap(10, 10)
	// One blob, raster-first.
	fg.Set(1, 1, true)
	fg.Set(2, 2, true) // diagonal contact, same component
	// A second blob far away.
	fg.Set(7, 7, true)
	fg.Set(8, 7, true)

	labels, n := LabelComponents(fg)

	require.Equal(t, 2, n)
	assert.Equal(t, 1, labels.At(1, 1))
	assert.Equal(t, 1, labels.At(2, 2))
	assert.Equal(t, 2, labels.At(7, 7))
	assert.Equal(t, 2, labels.At(8, 7))
	assert.Equal(t, 0, labels.At(5, 5))
}

func TestLabelComponentsEmpty(t *testing.T) {
	labels, n := LabelComponents(grid.NewBitmap(6, 6))
	assert.Equal(t, 0, n)
	assert.Equal(t, 0, labels.Max())
}
