package regions

import (
	"cellseg/pkg/grid"
)

// Centroids returns the pixel-index center of mass of every label, as
// parallel X (column) and Y (row) slices indexed by label-1. Labels
// must be contiguous 1..count.
func Centroids(labels *grid.Labels, count int) (xs, ys []float64) {
	xs = make([]float64, count)
	ys = make([]float64, count)
	areas := make([]float64, count)
	for y := 0; y < labels.H; y++ {
		for x := 0; x < labels.W; x++ {
			lab := labels.At(x, y)
			if lab == 0 {
				continue
			}
			xs[lab-1] += float64(x)
			ys[lab-1] += float64(y)
			areas[lab-1]++
		}
	}
	for i := range xs {
		if areas[i] > 0 {
			xs[i] /= areas[i]
			ys[i] /= areas[i]
		}
	}
	return xs, ys
}
