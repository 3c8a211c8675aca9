package threshold

import "math"

// kapurEstimator implements Kapur's maximum-entropy method on the
// log-transformed histogram: the split maximizing the sum of Shannon
// entropies of the foreground and background distributions.
type kapurEstimator struct{}

func (kapurEstimator) Name() string { return "Kapur" }

func (kapurEstimator) Estimate(pix []float64) (float64, error) {
	counts, logLo, logHi, err := logHistogram(pix)
	if err != nil {
		return 0, err
	}

	total := 0
	for _, c := range counts {
		total += c
	}

	bestK := 0
	bestH := math.Inf(-1)
	n0 := 0
	for k := 0; k < len(counts)-1; k++ {
		n0 += counts[k]
		n1 := total - n0
		if n0 == 0 || n1 == 0 {
			continue
		}
		h := classEntropy(counts[:k+1], n0) + classEntropy(counts[k+1:], n1)
		if h > bestH {
			bestH = h
			bestK = k
		}
	}
	return delogBin(bestK, logLo, logHi), nil
}

// classEntropy returns the Shannon entropy of the class histogram
// normalized by the class total. Empty bins contribute nothing.
func classEntropy(counts []int, total int) float64 {
	h := 0.0
	ft := float64(total)
	for _, c := range counts {
		if c == 0 {
			continue
		}
		p := float64(c) / ft
		h -= p * math.Log(p)
	}
	return h
}
