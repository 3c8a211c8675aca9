package seed

import (
	"sort"

	"cellseg/pkg/geometry"
	"cellseg/pkg/grid"
)

// localMaxima finds one point per intensity peak: candidates are
// foreground pixels whose value matches the maximum of their disk
// neighborhood of the suppression radius, and candidates closer
// together than the radius are merged into the strongest one. Flat
// plateaus produce a run of equal candidates; ranking by value and then
// raster order keeps the outcome deterministic, with the plateau
// collapsing onto its first pixel.
func localMaxima(surface *grid.Dense, fg *grid.Bitmap, radius int) []geometry.PointInt {
	disk := diskOffsets(radius)
	w, h := surface.W, surface.H

	type candidate struct {
		pt  geometry.PointInt
		val float64
	}
	var cands []candidate

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !fg.At(x, y) {
				continue
			}
			v := surface.At(x, y)
			if v <= 0 {
				continue
			}
			peak := true
			for _, o := range disk {
				nx, ny := x+o[0], y+o[1]
				if nx < 0 || nx >= w || ny < 0 || ny >= h {
					continue
				}
				if surface.At(nx, ny) > v {
					peak = false
					break
				}
			}
			if peak {
				cands = append(cands, candidate{geometry.PointInt{X: x, Y: y}, v})
			}
		}
	}

	// Strongest first; raster order breaks exact ties.
	sort.SliceStable(cands, func(i, j int) bool {
		return cands[i].val > cands[j].val
	})

	rsq := radius * radius
	var seeds []geometry.PointInt
	for _, c := range cands {
		ok := true
		for _, s := range seeds {
			if c.pt.DistanceSq(s) <= rsq {
				ok = false
				break
			}
		}
		if ok {
			seeds = append(seeds, c.pt)
		}
	}
	return seeds
}

// diskOffsets returns the offsets of a disk of the given radius,
// excluding the origin, in raster order.
func diskOffsets(radius int) [][2]int {
	var offs [][2]int
	rsq := radius * radius
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			if dx*dx+dy*dy <= rsq {
				offs = append(offs, [2]int{dx, dy})
			}
		}
	}
	return offs
}
