package threshold

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// mogEstimator fits a two-component Gaussian mixture to the intensity
// distribution, with the expected object-area fraction as a fixed
// foreground prior. The threshold is the intensity where the two
// weighted densities intersect between the class means.
type mogEstimator struct {
	fraction float64
}

func (mogEstimator) Name() string { return "MoG" }

const (
	mogMaxIter = 50
	mogTol     = 1e-7
	// sigmaFloor keeps the EM update from collapsing a component onto
	// a single repeated intensity.
	sigmaFloor = 1e-4
)

func (e mogEstimator) Estimate(pix []float64) (float64, error) {
	sorted := append([]float64(nil), pix...)
	sort.Float64s(sorted)
	if sorted[0] >= sorted[len(sorted)-1] {
		return 0, fmt.Errorf("%w: flat image, no usable histogram", ErrDegenerate)
	}

	f := e.fraction
	if f < 0.01 {
		f = 0.01
	}
	if f > 0.99 {
		f = 0.99
	}
	wBg := 1 - f
	wFg := f

	// Initialize the class means at the centers of the presumed
	// background and foreground quantile ranges.
	muBg := stat.Quantile(wBg/2, stat.Empirical, sorted, nil)
	muFg := stat.Quantile(1-f/2, stat.Empirical, sorted, nil)
	sd := stat.StdDev(sorted, nil) / 2
	if sd < sigmaFloor {
		sd = sigmaFloor
	}
	sdBg, sdFg := sd, sd

	for iter := 0; iter < mogMaxIter; iter++ {
		bg := distuv.Normal{Mu: muBg, Sigma: sdBg}
		fg := distuv.Normal{Mu: muFg, Sigma: sdFg}

		var sumRBg, sumRFg, sumXBg, sumXFg float64
		var sumVBg, sumVFg float64
		for _, x := range sorted {
			pBg := wBg * bg.Prob(x)
			pFg := wFg * fg.Prob(x)
			total := pBg + pFg
			if total <= 0 {
				// Out in a far tail of both components; split evenly.
				pBg, pFg, total = 0.5, 0.5, 1
			}
			rBg := pBg / total
			rFg := pFg / total
			sumRBg += rBg
			sumRFg += rFg
			sumXBg += rBg * x
			sumXFg += rFg * x
			dBg := x - muBg
			dFg := x - muFg
			sumVBg += rBg * dBg * dBg
			sumVFg += rFg * dFg * dFg
		}
		if sumRBg <= 0 || sumRFg <= 0 {
			break
		}
		newMuBg := sumXBg / sumRBg
		newMuFg := sumXFg / sumRFg
		sdBg = math.Max(math.Sqrt(sumVBg/sumRBg), sigmaFloor)
		sdFg = math.Max(math.Sqrt(sumVFg/sumRFg), sigmaFloor)

		drift := math.Abs(newMuBg-muBg) + math.Abs(newMuFg-muFg)
		muBg, muFg = newMuBg, newMuFg
		if drift < mogTol {
			break
		}
	}

	if muFg < muBg {
		muBg, muFg = muFg, muBg
		sdBg, sdFg = sdFg, sdBg
		wBg, wFg = wFg, wBg
	}
	return gaussianIntersection(muBg, sdBg, wBg, muFg, sdFg, wFg), nil
}

// gaussianIntersection returns the point between mu1 and mu2 where the
// two weighted normal densities are equal. Equating the log densities
// gives a quadratic in x; when no root falls between the means (heavily
// overlapping components) the midpoint is used instead.
func gaussianIntersection(mu1, sd1, w1, mu2, sd2, w2 float64) float64 {
	mid := (mu1 + mu2) / 2
	if mu2 <= mu1 {
		return mid
	}

	v1 := sd1 * sd1
	v2 := sd2 * sd2
	a := v2 - v1
	b := 2 * (mu2*v1 - mu1*v2)
	c := mu1*mu1*v2 - mu2*mu2*v1 - 2*v1*v2*math.Log((w1*sd2)/(w2*sd1))

	if math.Abs(a) < 1e-12 {
		// Equal variances: the quadratic degenerates to a line.
		if b == 0 {
			return mid
		}
		x := -c / b
		if x > mu1 && x < mu2 {
			return x
		}
		return mid
	}

	disc := b*b - 4*a*c
	if disc < 0 {
		return mid
	}
	sq := math.Sqrt(disc)
	for _, x := range []float64{(-b + sq) / (2 * a), (-b - sq) / (2 * a)} {
		if x > mu1 && x < mu2 {
			return x
		}
	}
	return mid
}
