// Package threshold computes automatic intensity thresholds for
// foreground/background separation. Six algorithms share a single
// Estimator interface; the Global, Adaptive and PerObject modifiers
// turn a scalar estimator into a full threshold surface.
package threshold

import (
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"cellseg/pkg/grid"
)

// ErrDegenerate reports that no threshold statistic is computable:
// either the mask selects zero pixels or the masked image is flat.
var ErrDegenerate = errors.New("degenerate image")

// Algorithm selects the thresholding algorithm.
type Algorithm int

const (
	Otsu Algorithm = iota
	MixtureOfGaussians
	Background
	RobustBackground
	RidlerCalvard
	Kapur
)

func (a Algorithm) String() string {
	switch a {
	case Otsu:
		return "Otsu"
	case MixtureOfGaussians:
		return "MoG"
	case Background:
		return "Background"
	case RobustBackground:
		return "RobustBackground"
	case RidlerCalvard:
		return "RidlerCalvard"
	case Kapur:
		return "Kapur"
	default:
		return "Unknown"
	}
}

// Modifier selects the scope over which thresholds are computed.
type Modifier int

const (
	Global Modifier = iota
	Adaptive
	PerObject
)

func (m Modifier) String() string {
	switch m {
	case Global:
		return "Global"
	case Adaptive:
		return "Adaptive"
	case PerObject:
		return "PerObject"
	default:
		return "Unknown"
	}
}

// Estimator computes a scalar threshold from a bag of masked pixel
// intensities. Implementations return ErrDegenerate (possibly wrapped)
// when the pixels carry no usable histogram.
type Estimator interface {
	Estimate(pix []float64) (float64, error)
	Name() string
}

// Request carries one threshold computation.
type Request struct {
	Image            *grid.Dense
	Mask             *grid.Bitmap
	Algorithm        Algorithm
	Modifier         Modifier
	CorrectionFactor float64
	LowerBound       float64
	UpperBound       float64
	ObjectFraction   float64     // MoG prior; ignored elsewhere
	Parents          *grid.Labels // PerObject only
	Log              zerolog.Logger
}

// Surface is a per-pixel threshold map. Pixels with no applicable
// threshold (outside every parent region in PerObject mode) hold +Inf
// so they can never become foreground.
type Surface struct {
	Values *grid.Dense
	// Scalar is the mean of the finite surface values after correction
	// and clamping; this is the value reported in measurements.
	Scalar float64
}

// Estimate computes the threshold surface for the request: raw
// estimation per the modifier, then correction factor and clamping.
func Estimate(req Request) (*Surface, error) {
	est, err := estimatorFor(req.Algorithm, req.ObjectFraction)
	if err != nil {
		return nil, err
	}

	var surface *grid.Dense
	switch req.Modifier {
	case Global:
		surface, err = estimateGlobal(req, est)
	case Adaptive:
		surface, err = estimateAdaptive(req, est)
	case PerObject:
		surface, err = estimatePerObject(req, est)
	default:
		return nil, fmt.Errorf("unknown threshold modifier %d", req.Modifier)
	}
	if err != nil {
		return nil, err
	}

	// Correction factor then clamp, finite values only.
	sum := 0.0
	n := 0
	for i, v := range surface.Pix {
		if math.IsInf(v, 1) {
			continue
		}
		v *= req.CorrectionFactor
		if v < req.LowerBound {
			v = req.LowerBound
		}
		if v > req.UpperBound {
			v = req.UpperBound
		}
		surface.Pix[i] = v
		sum += v
		n++
	}
	scalar := 0.0
	if n > 0 {
		scalar = sum / float64(n)
	}

	req.Log.Debug().
		Str("component", "threshold").
		Str("algorithm", est.Name()).
		Str("modifier", req.Modifier.String()).
		Float64("threshold", scalar).
		Msg("threshold estimated")

	return &Surface{Values: surface, Scalar: scalar}, nil
}

func estimatorFor(alg Algorithm, fraction float64) (Estimator, error) {
	switch alg {
	case Otsu:
		return otsuEstimator{}, nil
	case MixtureOfGaussians:
		return mogEstimator{fraction: fraction}, nil
	case Background:
		return backgroundEstimator{}, nil
	case RobustBackground:
		return robustBackgroundEstimator{}, nil
	case RidlerCalvard:
		return ridlerCalvardEstimator{}, nil
	case Kapur:
		return kapurEstimator{}, nil
	default:
		return nil, fmt.Errorf("unknown threshold algorithm %d", alg)
	}
}

// maskedPixels collects the intensities of valid pixels in raster order.
func maskedPixels(img *grid.Dense, mask *grid.Bitmap) []float64 {
	pix := make([]float64, 0, len(img.Pix))
	for i, v := range img.Pix {
		if mask.Bits[i] {
			pix = append(pix, v)
		}
	}
	return pix
}

func errNoPixels() error {
	return fmt.Errorf("%w: mask selects no pixels", ErrDegenerate)
}

func estimateGlobal(req Request, est Estimator) (*grid.Dense, error) {
	pix := maskedPixels(req.Image, req.Mask)
	if len(pix) == 0 {
		return nil, errNoPixels()
	}
	t, err := est.Estimate(pix)
	if err != nil {
		return nil, err
	}
	surface := grid.NewDense(req.Image.W, req.Image.H)
	surface.Fill(t)
	return surface, nil
}
