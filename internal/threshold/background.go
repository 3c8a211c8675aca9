package threshold

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// saturationCutoff excludes saturated pixels from the mode search;
// saturated cameras pile counts at the top of the range and would
// otherwise pull the mode away from the true background.
const saturationCutoff = 0.95

// backgroundEstimator assumes most of the image is background: the
// threshold is twice the histogram mode of the unsaturated pixels.
type backgroundEstimator struct{}

func (backgroundEstimator) Name() string { return "Background" }

func (backgroundEstimator) Estimate(pix []float64) (float64, error) {
	usable := make([]float64, 0, len(pix))
	for _, v := range pix {
		if v < saturationCutoff {
			usable = append(usable, v)
		}
	}
	if len(usable) == 0 {
		return 0, fmt.Errorf("%w: every pixel is saturated", ErrDegenerate)
	}

	counts := linearHistogram(usable)
	mode := 0
	for k, c := range counts {
		if c > counts[mode] {
			mode = k
		}
	}
	return 2 * binCenter(mode), nil
}

// trimFraction is the share of pixels discarded at each intensity tail
// before the robust background statistics are taken.
const trimFraction = 0.05

// robustBackgroundEstimator trims the extreme 5% of intensities at both
// tails, assumes the remainder is a Gaussian of mostly background
// pixels, and thresholds at mean + 2 standard deviations.
type robustBackgroundEstimator struct{}

func (robustBackgroundEstimator) Name() string { return "RobustBackground" }

func (robustBackgroundEstimator) Estimate(pix []float64) (float64, error) {
	sorted := append([]float64(nil), pix...)
	sort.Float64s(sorted)

	trim := int(float64(len(sorted)) * trimFraction)
	kept := sorted[trim : len(sorted)-trim]
	if len(kept) < 2 {
		return 0, fmt.Errorf("%w: too few pixels for robust statistics", ErrDegenerate)
	}

	mean := stat.Mean(kept, nil)
	sd := stat.StdDev(kept, nil)
	return mean + 2*sd, nil
}
