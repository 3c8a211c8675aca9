package threshold

import (
	"gonum.org/v1/gonum/mat"

	"cellseg/pkg/grid"
)

const (
	// adaptiveGridTarget aims for roughly this many cells per axis.
	adaptiveGridTarget = 10
	// adaptiveMinCellSide keeps cells large enough to hold a usable
	// intensity histogram.
	adaptiveMinCellSide = 50
	// adaptiveMinCellPixels is the fewest valid pixels a cell may hold
	// and still get its own estimate; sparser cells inherit the global
	// threshold.
	adaptiveMinCellPixels = 50
	// Per-cell thresholds are confined to this band around the global
	// threshold so a cell of pure background cannot invent objects.
	adaptiveLowClamp  = 0.7
	adaptiveHighClamp = 1.5
)

// estimateAdaptive computes one threshold per grid cell and bilinearly
// interpolates between cell centers, so the surface varies smoothly
// across the frame instead of stepping at block edges.
func estimateAdaptive(req Request, est Estimator) (*grid.Dense, error) {
	pix := maskedPixels(req.Image, req.Mask)
	if len(pix) == 0 {
		return nil, errNoPixels()
	}
	tGlobal, err := est.Estimate(pix)
	if err != nil {
		return nil, err
	}

	w, h := req.Image.W, req.Image.H
	cellW := maxInt(adaptiveMinCellSide, w/adaptiveGridTarget)
	cellH := maxInt(adaptiveMinCellSide, h/adaptiveGridTarget)
	nx := (w + cellW - 1) / cellW
	ny := (h + cellH - 1) / cellH

	cells := mat.NewDense(ny, nx, nil)
	centersX := make([]float64, nx)
	centersY := make([]float64, ny)

	cellPix := make([]float64, 0, cellW*cellH)
	for cy := 0; cy < ny; cy++ {
		y0 := cy * cellH
		y1 := minInt(y0+cellH, h)
		centersY[cy] = (float64(y0) + float64(y1-1)) / 2
		for cx := 0; cx < nx; cx++ {
			x0 := cx * cellW
			x1 := minInt(x0+cellW, w)
			centersX[cx] = (float64(x0) + float64(x1-1)) / 2

			cellPix = cellPix[:0]
			for y := y0; y < y1; y++ {
				for x := x0; x < x1; x++ {
					if req.Mask.At(x, y) {
						cellPix = append(cellPix, req.Image.At(x, y))
					}
				}
			}

			t := tGlobal
			if len(cellPix) >= adaptiveMinCellPixels {
				if tc, err := est.Estimate(cellPix); err == nil {
					t = clampFloat(tc, adaptiveLowClamp*tGlobal, adaptiveHighClamp*tGlobal)
				}
			}
			cells.Set(cy, cx, t)
		}
	}

	return interpolateCells(w, h, cells, centersX, centersY), nil
}

// interpolateCells expands the cell-center threshold grid to a full
// per-pixel surface by bilinear interpolation, clamping beyond the
// outermost centers.
func interpolateCells(w, h int, cells *mat.Dense, centersX, centersY []float64) *grid.Dense {
	surface := grid.NewDense(w, h)

	xi0, xi1, xf := interpAxis(w, centersX)
	yi0, yi1, yf := interpAxis(h, centersY)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			t00 := cells.At(yi0[y], xi0[x])
			t01 := cells.At(yi0[y], xi1[x])
			t10 := cells.At(yi1[y], xi0[x])
			t11 := cells.At(yi1[y], xi1[x])
			top := t00 + (t01-t00)*xf[x]
			bot := t10 + (t11-t10)*xf[x]
			surface.Set(x, y, top+(bot-top)*yf[y])
		}
	}
	return surface
}

// interpAxis precomputes, for every pixel coordinate along one axis,
// the bracketing cell indices and interpolation fraction.
func interpAxis(n int, centers []float64) (i0, i1 []int, frac []float64) {
	i0 = make([]int, n)
	i1 = make([]int, n)
	frac = make([]float64, n)
	for p := 0; p < n; p++ {
		fp := float64(p)
		switch {
		case fp <= centers[0]:
			// Before the first center: clamp.
		case fp >= centers[len(centers)-1]:
			i0[p] = len(centers) - 1
			i1[p] = len(centers) - 1
		default:
			k := 0
			for centers[k+1] < fp {
				k++
			}
			i0[p] = k
			i1[p] = k + 1
			frac[p] = (fp - centers[k]) / (centers[k+1] - centers[k])
		}
	}
	return i0, i1, frac
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
