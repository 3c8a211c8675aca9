package threshold

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// histogramBins is the bin count used by every histogram-based
// estimator. 256 matches the effective depth of typical 8-bit inputs
// without starving the entropy estimators on 12/16-bit data.
const histogramBins = 256

// logFloor protects the log transform from zero and negative
// intensities; anything at or below it lands in the lowest bin.
const logFloor = 1e-6

// logHistogram bins the pixels in log10 space between their min and
// max. Returns the counts and the log-space range so a chosen bin can
// be mapped back to a linear threshold. Fails when the pixels are flat.
func logHistogram(pix []float64) (counts []int, logLo, logHi float64, err error) {
	lo := floats.Min(pix)
	hi := floats.Max(pix)
	logLo = math.Log10(math.Max(lo, logFloor))
	logHi = math.Log10(math.Max(hi, logFloor))
	if logHi <= logLo {
		return nil, 0, 0, fmt.Errorf("%w: flat image, no usable histogram", ErrDegenerate)
	}

	counts = make([]int, histogramBins)
	scale := float64(histogramBins) / (logHi - logLo)
	for _, v := range pix {
		idx := int((math.Log10(math.Max(v, logFloor)) - logLo) * scale)
		if idx < 0 {
			idx = 0
		}
		if idx >= histogramBins {
			idx = histogramBins - 1
		}
		counts[idx]++
	}
	return counts, logLo, logHi, nil
}

// delogBin maps a split after bin k back to a linear-space threshold,
// using the upper edge of bin k.
func delogBin(k int, logLo, logHi float64) float64 {
	edge := logLo + (logHi-logLo)*float64(k+1)/float64(histogramBins)
	return math.Pow(10, edge)
}

// linearHistogram bins pixels over the fixed [0,1) intensity range.
func linearHistogram(pix []float64) []int {
	counts := make([]int, histogramBins)
	for _, v := range pix {
		idx := int(v * histogramBins)
		if idx < 0 {
			idx = 0
		}
		if idx >= histogramBins {
			idx = histogramBins - 1
		}
		counts[idx]++
	}
	return counts
}

// binCenter returns the intensity at the center of linear bin k.
func binCenter(k int) float64 {
	return (float64(k) + 0.5) / histogramBins
}
