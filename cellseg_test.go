package cellseg_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cellseg"
	"cellseg/pkg/geometry"
	"cellseg/pkg/grid"
)

// disksImage renders two well-separated bright disks on a dark field.
func disksImage() (cellseg.Image, geometry.PointInt, geometry.PointInt) {
	const w, h = 60, 60
	pix := grid.NewDense(w, h)
	pix.Fill(0.1)
	c1 := geometry.PointInt{X: 20, Y: 30}
	c2 := geometry.PointInt{X: 42, Y: 30}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			for _, c := range []geometry.PointInt{c1, c2} {
				dx, dy := x-c.X, y-c.Y
				if dx*dx+dy*dy <= 36 {
					pix.Set(x, y, 0.9)
				}
			}
		}
	}
	return cellseg.NewImage(pix), c1, c2
}

// peanutImage renders two overlapping intensity peaks whose thresholded
// footprint is a single blob, the canonical declumping input.
func peanutImage() (cellseg.Image, geometry.PointInt, geometry.PointInt) {
	const w, h = 60, 60
	pix := grid.NewDense(w, h)
	pix.Fill(0.05)
	c1 := geometry.PointInt{X: 24, Y: 30}
	c2 := geometry.PointInt{X: 36, Y: 30}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			best := math.Inf(1)
			for _, c := range []geometry.PointInt{c1, c2} {
				dx, dy := x-c.X, y-c.Y
				if d := float64(dx*dx + dy*dy); d < best {
					best = d
				}
			}
			if best <= 64 {
				pix.Set(x, y, 0.5+0.4*math.Exp(-best/18))
			}
		}
	}
	return cellseg.NewImage(pix), c1, c2
}

func disksConfig() cellseg.Config {
	cfg := cellseg.DefaultConfig()
	cfg.MinDiameter = 8
	cfg.MaxDiameter = 20
	cfg.LowResMaxima = false
	return cfg
}

func TestSegmentTwoDisks(t *testing.T) {
	img, c1, c2 := disksImage()
	res, err := cellseg.New().Segment(img, disksConfig())
	require.NoError(t, err)

	assert.Equal(t, 2, res.Count)
	assert.Greater(t, res.Threshold, 0.1)
	assert.Less(t, res.Threshold, 0.9)

	xs := res.Measurements.PerObject[cellseg.FeatureCenterX]
	ys := res.Measurements.PerObject[cellseg.FeatureCenterY]
	require.Len(t, xs, 2)
	assert.InDelta(t, float64(c1.X), xs[0], 1.0)
	assert.InDelta(t, float64(c1.Y), ys[0], 1.0)
	assert.InDelta(t, float64(c2.X), xs[1], 1.0)
	assert.InDelta(t, float64(c2.Y), ys[1], 1.0)

	assert.Equal(t, float64(2), res.Measurements.Image[cellseg.CountKey("Nuclei")])
	assert.Equal(t, res.Threshold, res.Measurements.Image[cellseg.ThresholdKey("Nuclei")])
}

func TestSegmentLabelsAreContiguous(t *testing.T) {
	img, _, _ := disksImage()
	res, err := cellseg.New().Segment(img, disksConfig())
	require.NoError(t, err)

	seen := make([]bool, res.Count+1)
	for _, lab := range res.Objects.Lab {
		require.LessOrEqual(t, lab, res.Count)
		require.GreaterOrEqual(t, lab, 0)
		if lab > 0 {
			seen[lab] = true
		}
	}
	for lab := 1; lab <= res.Count; lab++ {
		assert.True(t, seen[lab], "label %d missing", lab)
	}
}

func TestSegmentIsIdempotent(t *testing.T) {
	img, _, _ := disksImage()
	e := cellseg.New()

	a, err := e.Segment(img, disksConfig())
	require.NoError(t, err)
	b, err := e.Segment(img, disksConfig())
	require.NoError(t, err)

	assert.Equal(t, a.Count, b.Count)
	assert.Equal(t, a.Threshold, b.Threshold)
	assert.Equal(t, a.Objects.Lab, b.Objects.Lab)
	assert.Equal(t, a.UneditedObjects.Lab, b.UneditedObjects.Lab)
	assert.Equal(t, a.SmallRemovedObjects.Lab, b.SmallRemovedObjects.Lab)
}

func TestSegmentDeclumpSplitsTouchingObjects(t *testing.T) {
	img, _, _ := peanutImage()

	cfg := disksConfig()
	cfg.MinDiameter = 10
	cfg.MaxDiameter = 30
	res, err := cellseg.New().Segment(img, cfg)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Count, "intensity declumping separates the peaks")

	cfg.Declump = cellseg.DeclumpNone
	res, err = cellseg.New().Segment(img, cfg)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Count, "without declumping the blob stays whole")
}

func TestSegmentDistanceWatershed(t *testing.T) {
	img, _, _ := peanutImage()

	cfg := disksConfig()
	cfg.MinDiameter = 10
	cfg.MaxDiameter = 30
	cfg.Declump = cellseg.DeclumpShape
	cfg.Watershed = cellseg.WatershedDistance
	res, err := cellseg.New().Segment(img, cfg)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Count)
}

func TestSegmentMaskExcludesPixels(t *testing.T) {
	img, _, c2 := disksImage()
	mask := grid.NewBitmapFilled(60, 60, true)
	for y := 0; y < 60; y++ {
		for x := 30; x < 60; x++ {
			mask.Set(x, y, false)
		}
	}
	img.Mask = mask

	res, err := cellseg.New().Segment(img, disksConfig())
	require.NoError(t, err)

	assert.Equal(t, 1, res.Count)
	assert.Zero(t, res.Objects.At(c2.X, c2.Y))
	for i, valid := range mask.Bits {
		if !valid {
			assert.Zero(t, res.Objects.Lab[i], "masked pixel labeled")
		}
	}
}

func TestSegmentBorderExclusion(t *testing.T) {
	const w, h = 40, 40
	pix := grid.NewDense(w, h)
	pix.Fill(0.1)
	// One interior disk, one clipped by the frame.
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dx, dy := x-20, y-20
			if dx*dx+dy*dy <= 36 {
				pix.Set(x, y, 0.9)
			}
			bx, by := x-38, y-20
			if bx*bx+by*by <= 36 {
				pix.Set(x, y, 0.9)
			}
		}
	}

	cfg := disksConfig()
	res, err := cellseg.New().Segment(cellseg.NewImage(pix), cfg)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Count)
	assert.Zero(t, res.Objects.At(39, 20))
	// The border object survives in the small-removed intermediate.
	assert.NotZero(t, res.SmallRemovedObjects.At(39, 20))

	cfg.ExcludeBorder = false
	res, err = cellseg.New().Segment(cellseg.NewImage(pix), cfg)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Count)
}

func TestSegmentSizeExclusion(t *testing.T) {
	img, c1, _ := disksImage()
	// A bright speck far below the minimum diameter.
	img.Pixels.Set(5, 5, 0.9)
	img.Pixels.Set(6, 5, 0.9)

	res, err := cellseg.New().Segment(img, disksConfig())
	require.NoError(t, err)

	assert.Equal(t, 2, res.Count)
	assert.Zero(t, res.Objects.At(5, 5))
	assert.NotZero(t, res.Objects.At(c1.X, c1.Y))
	// The unedited map still carries the speck.
	assert.NotZero(t, res.UneditedObjects.At(5, 5))
}

func TestSegmentSizeExclusionDiameterBounds(t *testing.T) {
	const w, h = 60, 60
	pix := grid.NewDense(w, h)
	pix.Fill(0.1)
	for y := 5; y < 8; y++ { // 3x3: equivalent diameter ~3.4
		for x := 5; x < 8; x++ {
			pix.Set(x, y, 0.9)
		}
	}
	for y := 20; y < 50; y++ { // 30x30: equivalent diameter ~33.9
		for x := 20; x < 50; x++ {
			pix.Set(x, y, 0.9)
		}
	}

	cfg := cellseg.DefaultConfig()
	cfg.MinDiameter = 10
	cfg.MaxDiameter = 50
	cfg.Declump = cellseg.DeclumpNone
	cfg.LowResMaxima = false

	res, err := cellseg.New().Segment(cellseg.NewImage(pix), cfg)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Count)
	assert.Zero(t, res.Objects.At(6, 6))
	assert.NotZero(t, res.Objects.At(35, 35))
}

func TestSegmentMergeSmallReducesCount(t *testing.T) {
	// A bright square with a dim appendage; a marker on each forces the
	// watershed to carve the appendage off as a tiny separate object.
	const w, h = 60, 60
	pix := grid.NewDense(w, h)
	pix.Fill(0.05)
	for y := 20; y <= 34; y++ {
		for x := 20; x <= 34; x++ {
			pix.Set(x, y, 0.9)
		}
	}
	for y := 27; y <= 28; y++ {
		pix.Set(35, y, 0.5)
		pix.Set(36, y, 0.5)
	}
	img := cellseg.NewImage(pix)

	cfg := disksConfig()
	cfg.ExcludeSize = false
	cfg.Declump = cellseg.DeclumpManual
	cfg.Markers = []geometry.PointInt{{X: 27, Y: 27}, {X: 36, Y: 28}}

	base, err := cellseg.New().Segment(img, cfg)
	require.NoError(t, err)
	require.Equal(t, 2, base.Count)

	cfg.MergeSmall = true
	merged, err := cellseg.New().Segment(img, cfg)
	require.NoError(t, err)

	assert.Equal(t, base.Count-1, merged.Count)
	assert.Equal(t, merged.Objects.At(27, 27), merged.Objects.At(36, 28),
		"fragment absorbed into the adjacent object")
}

func TestSegmentManualMarkers(t *testing.T) {
	img, _, _ := peanutImage()

	cfg := disksConfig()
	cfg.MinDiameter = 10
	cfg.MaxDiameter = 30
	cfg.Declump = cellseg.DeclumpManual
	cfg.Markers = []geometry.PointInt{{X: 24, Y: 30}, {X: 36, Y: 30}}
	res, err := cellseg.New().Segment(img, cfg)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Count)
}

func TestSegmentPerObjectThreshold(t *testing.T) {
	img, c1, c2 := disksImage()
	parents := grid.NewLabels(60, 60)
	for y := 0; y < 60; y++ {
		for x := 0; x < 30; x++ {
			parents.Set(x, y, 1)
		}
	}
	img.Parents = parents

	cfg := disksConfig()
	cfg.Modifier = cellseg.ThresholdPerObject
	res, err := cellseg.New().Segment(img, cfg)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Count, "only the parented disk is found")
	assert.NotZero(t, res.Objects.At(c1.X, c1.Y))
	assert.Zero(t, res.Objects.At(c2.X, c2.Y))
}

func TestSegmentPerObjectRequiresParents(t *testing.T) {
	img, _, _ := disksImage()
	cfg := disksConfig()
	cfg.Modifier = cellseg.ThresholdPerObject

	_, err := cellseg.New().Segment(img, cfg)
	var cfgErr *cellseg.InvalidConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "Modifier", cfgErr.Field)
}

func TestSegmentFlatImageFails(t *testing.T) {
	pix := grid.NewDense(30, 30)
	pix.Fill(0.4)

	_, err := cellseg.New().Segment(cellseg.NewImage(pix), disksConfig())
	var degErr *cellseg.DegenerateImageError
	assert.ErrorAs(t, err, &degErr)
}

func TestSegmentEmptyMaskFails(t *testing.T) {
	img, _, _ := disksImage()
	img.Mask = grid.NewBitmap(60, 60)

	_, err := cellseg.New().Segment(img, disksConfig())
	var degErr *cellseg.DegenerateImageError
	assert.ErrorAs(t, err, &degErr)
}

func TestSegmentValidatesConfig(t *testing.T) {
	img, _, _ := disksImage()

	tests := []struct {
		name  string
		mod   func(*cellseg.Config)
		field string
	}{
		{"zero min diameter", func(c *cellseg.Config) { c.MinDiameter = 0 }, "MinDiameter"},
		{"inverted sizes", func(c *cellseg.Config) { c.MaxDiameter = 5 }, "MaxDiameter"},
		{"negative correction", func(c *cellseg.Config) { c.CorrectionFactor = -1 }, "CorrectionFactor"},
		{"inverted bounds", func(c *cellseg.Config) { c.LowerBound = 0.9; c.UpperBound = 0.1 }, "LowerBound"},
		{"bad fraction", func(c *cellseg.Config) { c.ObjectFraction = 2 }, "ObjectFraction"},
		{"empty name", func(c *cellseg.Config) { c.ObjectName = "" }, "ObjectName"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := disksConfig()
			tc.mod(&cfg)
			_, err := cellseg.New().Segment(img, cfg)
			var cfgErr *cellseg.InvalidConfigurationError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tc.field, cfgErr.Field)
		})
	}
}

func TestSegmentValidatesImage(t *testing.T) {
	_, err := cellseg.New().Segment(cellseg.Image{}, disksConfig())
	var cfgErr *cellseg.InvalidConfigurationError
	require.ErrorAs(t, err, &cfgErr)

	img, _, _ := disksImage()
	img.Mask = grid.NewBitmap(10, 10)
	_, err = cellseg.New().Segment(img, disksConfig())
	require.ErrorAs(t, err, &cfgErr)
}

func TestSegmentCorrectionFactorShrinksObjects(t *testing.T) {
	img, _, _ := peanutImage()

	cfg := disksConfig()
	cfg.MinDiameter = 4
	cfg.MaxDiameter = 40
	cfg.Declump = cellseg.DeclumpNone
	base, err := cellseg.New().Segment(img, cfg)
	require.NoError(t, err)

	cfg.CorrectionFactor = 1.8
	raised, err := cellseg.New().Segment(img, cfg)
	require.NoError(t, err)

	assert.Greater(t, raised.Threshold, base.Threshold)
	assert.LessOrEqual(t, area(raised.Objects), area(base.Objects))
}

func TestResultOutlines(t *testing.T) {
	img, c1, _ := disksImage()
	res, err := cellseg.New().Segment(img, disksConfig())
	require.NoError(t, err)

	out := res.Outlines()
	assert.Greater(t, out.Count(), 0)
	// Outlines lie on object pixels, never background; disk interiors
	// are not outline.
	for i, b := range out.Bits {
		if b {
			assert.NotZero(t, res.Objects.Lab[i])
		}
	}
	assert.False(t, out.At(c1.X, c1.Y))
}

func TestResultLabelMaps(t *testing.T) {
	img, _, _ := disksImage()
	res, err := cellseg.New().Segment(img, disksConfig())
	require.NoError(t, err)

	maps := res.LabelMaps()
	require.Contains(t, maps, "SegmentedNuclei")
	require.Contains(t, maps, "UneditedSegmentedNuclei")
	require.Contains(t, maps, "SmallRemovedSegmentedNuclei")
	assert.Same(t, res.Objects, maps["SegmentedNuclei"])
}

func TestEngineConcurrentSegments(t *testing.T) {
	e := cellseg.New()
	img, _, _ := disksImage()
	cfg := disksConfig()

	done := make(chan int, 4)
	for i := 0; i < 4; i++ {
		go func() {
			res, err := e.Segment(img, cfg)
			if err != nil {
				done <- -1
				return
			}
			done <- res.Count
		}()
	}
	for i := 0; i < 4; i++ {
		assert.Equal(t, 2, <-done)
	}
}

func area(l *grid.Labels) int {
	n := 0
	for _, v := range l.Lab {
		if v > 0 {
			n++
		}
	}
	return n
}
