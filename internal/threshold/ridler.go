package threshold

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// ridlerCalvardEstimator implements the Ridler-Calvard isodata method:
// starting at the overall mean, the threshold is repeatedly replaced by
// the mean of the two class means it induces, until it stops moving.
type ridlerCalvardEstimator struct{}

func (ridlerCalvardEstimator) Name() string { return "RidlerCalvard" }

const (
	isodataTol     = 1e-4
	isodataMaxIter = 100
)

func (ridlerCalvardEstimator) Estimate(pix []float64) (float64, error) {
	lo, hi := pix[0], pix[0]
	for _, v := range pix {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if hi <= lo {
		return 0, fmt.Errorf("%w: flat image, no usable histogram", ErrDegenerate)
	}

	t := stat.Mean(pix, nil)
	for iter := 0; iter < isodataMaxIter; iter++ {
		var sumLo, sumHi float64
		var nLo, nHi int
		for _, v := range pix {
			if v < t {
				sumLo += v
				nLo++
			} else {
				sumHi += v
				nHi++
			}
		}
		// An empty class pins its mean at the current threshold.
		muLo, muHi := t, t
		if nLo > 0 {
			muLo = sumLo / float64(nLo)
		}
		if nHi > 0 {
			muHi = sumHi / float64(nHi)
		}
		next := (muLo + muHi) / 2
		if math.Abs(next-t) < isodataTol {
			return next, nil
		}
		t = next
	}
	return t, nil
}
