// Package seed locates one marker point per candidate object inside
// the binary foreground, so the watershed can split clumped objects.
package seed

import (
	"math"

	"github.com/rs/zerolog"

	"cellseg/internal/morph"
	"cellseg/pkg/geometry"
	"cellseg/pkg/grid"
)

// Method selects how seed points are found.
type Method int

const (
	// None skips seeding; the resolver labels connected components.
	None Method = iota
	// Intensity finds local maxima of the smoothed intensity image.
	Intensity
	// Shape finds local maxima of the foreground distance transform.
	Shape
	// Manual uses caller-supplied marker points.
	Manual
)

func (m Method) String() string {
	switch m {
	case None:
		return "None"
	case Intensity:
		return "Intensity"
	case Shape:
		return "Shape"
	case Manual:
		return "Manual"
	default:
		return "Unknown"
	}
}

// Size is a pixel dimension that is either explicit or derived from
// the expected minimum object diameter.
type Size struct {
	auto  bool
	value float64
}

// Auto returns a Size resolved from the minimum object diameter.
func Auto() Size { return Size{auto: true} }

// Explicit returns a fixed Size in pixels.
func Explicit(v float64) Size { return Size{value: v} }

// IsAuto reports whether the size is diameter-derived.
func (s Size) IsAuto() bool { return s.auto }

// Value returns the explicit pixel value; 0 for automatic sizes.
func (s Size) Value() float64 { return s.value }

// Resolve returns the explicit value, or fallback for automatic sizes.
func (s Size) Resolve(fallback float64) float64 {
	if s.auto {
		return fallback
	}
	return s.value
}

// Params configures seed detection.
type Params struct {
	Method      Method
	Smoothing   Size    // Gaussian filter size in pixels
	Suppression Size    // minimum distance between seeds, pixels
	MinDiameter float64 // expected minimum object diameter, pixels
	LowRes      bool    // search maxima on a downsampled image
	Markers     []geometry.PointInt
	Log         zerolog.Logger
}

// lowResCutoff: below this minimum diameter the downsampled search
// buys nothing, so it is skipped even when requested.
const lowResCutoff = 10.0

// Find returns the seed points for the configured method. Every
// returned point lies inside the binary foreground. A nil result means
// no seeding (Method None).
func Find(img *grid.Dense, mask *grid.Bitmap, fg *grid.Bitmap, p Params) []geometry.PointInt {
	var seeds []geometry.PointInt
	switch p.Method {
	case None:
		return nil
	case Manual:
		for _, m := range p.Markers {
			if fg.In(m.X, m.Y) && fg.At(m.X, m.Y) {
				seeds = append(seeds, m)
			}
		}
	case Intensity:
		surface := morph.SmoothGaussian(img, mask, p.sigma())
		seeds = searchMaxima(surface, fg, p)
	case Shape:
		surface := morph.DistanceTransform(fg)
		seeds = searchMaxima(surface, fg, p)
	}

	p.Log.Debug().
		Str("component", "seed").
		Str("method", p.Method.String()).
		Int("seeds", len(seeds)).
		Msg("seed detection complete")
	return seeds
}

// sigma resolves the smoothing parameters to a Gaussian sigma. The
// automatic filter size follows the FWHM convention: filter size
// 2.35·minDiameter/3.5, sigma = size/2.35. A resolved size under one
// pixel disables smoothing.
func (p Params) sigma() float64 {
	size := p.Smoothing.Resolve(2.35 * p.MinDiameter / 3.5)
	if size < 1 {
		return 0
	}
	return size / 2.35
}

// suppressionDistance resolves the maxima suppression distance,
// defaulting to roughly the minimum object radius.
func (p Params) suppressionDistance() int {
	d := int(math.Round(p.Suppression.Resolve(p.MinDiameter / 1.5)))
	if d < 1 {
		d = 1
	}
	return d
}

// searchMaxima dispatches between the full-resolution and downsampled
// maxima searches.
func searchMaxima(surface *grid.Dense, fg *grid.Bitmap, p Params) []geometry.PointInt {
	if p.LowRes && p.MinDiameter > lowResCutoff {
		return lowResMaxima(surface, fg, p)
	}
	return localMaxima(surface, fg, p.suppressionDistance())
}
