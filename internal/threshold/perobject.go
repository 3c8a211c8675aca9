package threshold

import (
	"errors"
	"fmt"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"cellseg/pkg/grid"
)

// estimatePerObject recurses the estimator independently inside each
// region of the parent label map. Pixels outside every parent (and
// parents whose pixels are flat or fully masked out) get +Inf, which
// excludes them from the downstream segmentation.
//
// Parent regions share no pixels, so each one is estimated on its own
// goroutine; every goroutine writes a disjoint set of surface indices.
func estimatePerObject(req Request, est Estimator) (*grid.Dense, error) {
	if req.Parents == nil {
		return nil, fmt.Errorf("per-object thresholding requires a parent label map")
	}
	if req.Parents.W != req.Image.W || req.Parents.H != req.Image.H {
		return nil, fmt.Errorf("parent label map is %dx%d, image is %dx%d",
			req.Parents.W, req.Parents.H, req.Image.W, req.Image.H)
	}
	if req.Mask.Count() == 0 {
		return nil, errNoPixels()
	}

	surface := grid.NewDense(req.Image.W, req.Image.H)
	surface.Fill(math.Inf(1))

	n := req.Parents.Max()
	buckets := make([][]int, n+1)
	for i, lab := range req.Parents.Lab {
		if lab > 0 && req.Mask.Bits[i] {
			buckets[lab] = append(buckets[lab], i)
		}
	}

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for lab := 1; lab <= n; lab++ {
		idx := buckets[lab]
		if len(idx) == 0 {
			continue
		}
		g.Go(func() error {
			pix := make([]float64, len(idx))
			for k, i := range idx {
				pix[k] = req.Image.Pix[i]
			}
			t, err := est.Estimate(pix)
			if errors.Is(err, ErrDegenerate) {
				// A flat parent yields no statistic; its pixels stay
				// excluded rather than failing the whole image.
				return nil
			}
			if err != nil {
				return err
			}
			for _, i := range idx {
				surface.Pix[i] = t
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return surface, nil
}
