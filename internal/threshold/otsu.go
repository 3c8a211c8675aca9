package threshold

// otsuEstimator implements Otsu's method on the log-transformed
// histogram: the split maximizing between-class variance. The log
// transform compresses the bright tail, which suits fluorescence
// images where foreground spans decades of intensity.
type otsuEstimator struct{}

func (otsuEstimator) Name() string { return "Otsu" }

func (otsuEstimator) Estimate(pix []float64) (float64, error) {
	counts, logLo, logHi, err := logHistogram(pix)
	if err != nil {
		return 0, err
	}
	k := otsuSplit(counts)
	return delogBin(k, logLo, logHi), nil
}

// otsuSplit returns the bin index k that maximizes the between-class
// variance of the classes [0..k] and [k+1..]. First maximum wins, so
// the result is deterministic on plateaus.
func otsuSplit(counts []int) int {
	total := 0
	sumAll := 0.0
	for i, c := range counts {
		total += c
		sumAll += float64(i) * float64(c)
	}

	bestK := 0
	bestVar := -1.0
	w0 := 0
	sum0 := 0.0
	for k := 0; k < len(counts)-1; k++ {
		w0 += counts[k]
		sum0 += float64(k) * float64(counts[k])
		w1 := total - w0
		if w0 == 0 || w1 == 0 {
			continue
		}
		mu0 := sum0 / float64(w0)
		mu1 := (sumAll - sum0) / float64(w1)
		d := mu0 - mu1
		between := float64(w0) * float64(w1) * d * d
		if between > bestVar {
			bestVar = between
			bestK = k
		}
	}
	return bestK
}
