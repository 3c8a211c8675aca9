package seed

import (
	"image"
	"image/color"
	"math"
	"sort"

	xdraw "golang.org/x/image/draw"

	"cellseg/pkg/geometry"
	"cellseg/pkg/grid"
)

// lowResMaxima runs the maxima search on a downsampled copy of the
// surface, then maps the hits back and snaps each one to the brightest
// full-resolution foreground pixel of its source block. A 16-bit gray
// round-trip through the scaler quantizes the surface, which is
// harmless here: only peak locations are taken from the coarse image,
// never values.
func lowResMaxima(surface *grid.Dense, fg *grid.Bitmap, p Params) []geometry.PointInt {
	scale := lowResCutoff / p.MinDiameter
	w, h := surface.W, surface.H
	lw := maxInt(1, int(float64(w)*scale+0.5))
	lh := maxInt(1, int(float64(h)*scale+0.5))

	small := downsample(surface, lw, lh)
	smallFg := grid.NewBitmap(lw, lh)
	for y := 0; y < lh; y++ {
		sy := minInt(h-1, int((float64(y)+0.5)/scale))
		for x := 0; x < lw; x++ {
			sx := minInt(w-1, int((float64(x)+0.5)/scale))
			smallFg.Set(x, y, fg.At(sx, sy))
		}
	}

	radius := maxInt(1, int(float64(p.suppressionDistance())*scale+0.5))
	coarse := localMaxima(small, smallFg, radius)

	// Snap each coarse hit to the best full-resolution pixel nearby.
	snap := int(math.Ceil(1/scale)) + 1
	var seeds []geometry.PointInt
	for _, c := range coarse {
		cx := minInt(w-1, int((float64(c.X)+0.5)/scale))
		cy := minInt(h-1, int((float64(c.Y)+0.5)/scale))
		best := geometry.PointInt{X: -1, Y: -1}
		bestVal := math.Inf(-1)
		for y := maxInt(0, cy-snap); y <= minInt(h-1, cy+snap); y++ {
			for x := maxInt(0, cx-snap); x <= minInt(w-1, cx+snap); x++ {
				if fg.At(x, y) && surface.At(x, y) > bestVal {
					bestVal = surface.At(x, y)
					best = geometry.PointInt{X: x, Y: y}
				}
			}
		}
		if best.X >= 0 {
			seeds = append(seeds, best)
		}
	}

	// Snapping can pull two coarse hits together; suppress again at
	// full resolution.
	sort.SliceStable(seeds, func(i, j int) bool {
		return surface.At(seeds[i].X, seeds[i].Y) > surface.At(seeds[j].X, seeds[j].Y)
	})
	rsq := p.suppressionDistance() * p.suppressionDistance()
	var out []geometry.PointInt
	for _, s := range seeds {
		ok := true
		for _, a := range out {
			if s.DistanceSq(a) <= rsq {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, s)
		}
	}
	return out
}

// downsample scales the surface to (lw, lh) via a 16-bit gray image
// and a bilinear scaler.
func downsample(surface *grid.Dense, lw, lh int) *grid.Dense {
	w, h := surface.W, surface.H
	peak := 0.0
	for _, v := range surface.Pix {
		if v > peak {
			peak = v
		}
	}
	if peak <= 0 {
		return grid.NewDense(lw, lh)
	}

	src := image.NewGray16(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := surface.At(x, y) / peak
			if v < 0 {
				v = 0
			}
			src.SetGray16(x, y, color.Gray16{Y: uint16(v*65535 + 0.5)})
		}
	}

	dst := image.NewGray16(image.Rect(0, 0, lw, lh))
	xdraw.BiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)

	out := grid.NewDense(lw, lh)
	for y := 0; y < lh; y++ {
		for x := 0; x < lw; x++ {
			out.Set(x, y, float64(dst.Gray16At(x, y).Y)/65535*peak)
		}
	}
	return out
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
