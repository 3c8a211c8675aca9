// Package morph provides the shared raster algorithms of the
// segmentation pipeline: masked Gaussian smoothing, the Euclidean
// distance transform and connected-component labeling.
package morph

import (
	"math"

	"cellseg/pkg/grid"
)

// SmoothGaussian applies a separable Gaussian filter to img, treating
// pixels outside mask as missing rather than zero. The result is the
// normalized convolution num/den where num convolves img·mask and den
// convolves mask alone, so valid pixels near a mask edge are not pulled
// toward zero. Pixels outside the mask come back as 0.
func SmoothGaussian(img *grid.Dense, mask *grid.Bitmap, sigma float64) *grid.Dense {
	if sigma <= 0 {
		return img.Clone()
	}
	kernel := gaussianKernel(sigma)

	w, h := img.W, img.H
	num := grid.NewDense(w, h)
	den := grid.NewDense(w, h)
	for i, v := range img.Pix {
		if mask.Bits[i] {
			num.Pix[i] = v
			den.Pix[i] = 1
		}
	}

	num = convolveRows(num, kernel)
	num = convolveCols(num, kernel)
	den = convolveRows(den, kernel)
	den = convolveCols(den, kernel)

	out := grid.NewDense(w, h)
	for i := range out.Pix {
		if mask.Bits[i] && den.Pix[i] > 0 {
			out.Pix[i] = num.Pix[i] / den.Pix[i]
		}
	}
	return out
}

// gaussianKernel returns a normalized 1-D kernel truncated at 3 sigma.
func gaussianKernel(sigma float64) []float64 {
	radius := int(math.Ceil(3 * sigma))
	if radius < 1 {
		radius = 1
	}
	kernel := make([]float64, 2*radius+1)
	sum := 0.0
	for i := range kernel {
		d := float64(i - radius)
		kernel[i] = math.Exp(-d * d / (2 * sigma * sigma))
		sum += kernel[i]
	}
	for i := range kernel {
		kernel[i] /= sum
	}
	return kernel
}

func convolveRows(src *grid.Dense, kernel []float64) *grid.Dense {
	radius := len(kernel) / 2
	out := grid.NewDense(src.W, src.H)
	for y := 0; y < src.H; y++ {
		row := src.Pix[y*src.W : (y+1)*src.W]
		for x := 0; x < src.W; x++ {
			acc := 0.0
			for k, kv := range kernel {
				sx := x + k - radius
				if sx < 0 || sx >= src.W {
					continue
				}
				acc += row[sx] * kv
			}
			out.Pix[y*src.W+x] = acc
		}
	}
	return out
}

func convolveCols(src *grid.Dense, kernel []float64) *grid.Dense {
	radius := len(kernel) / 2
	out := grid.NewDense(src.W, src.H)
	for y := 0; y < src.H; y++ {
		for x := 0; x < src.W; x++ {
			acc := 0.0
			for k, kv := range kernel {
				sy := y + k - radius
				if sy < 0 || sy >= src.H {
					continue
				}
				acc += src.Pix[sy*src.W+x] * kv
			}
			out.Pix[y*src.W+x] = acc
		}
	}
	return out
}
