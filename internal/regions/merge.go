package regions

import (
	"cellseg/pkg/grid"
)

// mergeSmall absorbs regions that would be dropped only for being too
// small into an adjacent surviving region — the one sharing the longest
// boundary. Best-effort heuristic: with many tiny fragments the
// adjacency scan dominates runtime, which is the accepted cost of
// turning the option on. Returns the number of regions absorbed.
func mergeSmall(labels *grid.Labels, recs []record, p Params) int {
	survives := func(lab int) bool {
		r := recs[lab]
		if r.area == 0 || r.tooSmall || r.tooLarge {
			return false
		}
		if p.ExcludeBorder && r.border {
			return false
		}
		return true
	}
	candidate := func(lab int) bool {
		r := recs[lab]
		if r.area == 0 || !r.tooSmall || r.tooLarge {
			return false
		}
		// Border-excluded fragments are discarded, not merged.
		if p.ExcludeBorder && r.border {
			return false
		}
		return true
	}

	// Shared boundary length per (candidate, survivor) pair, counted
	// as 8-adjacent pixel contacts.
	shared := map[[2]int]int{}
	w, h := labels.W, labels.H
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			lab := labels.At(x, y)
			if lab == 0 || !candidate(lab) {
				continue
			}
			for _, o := range neighbors8 {
				nx, ny := x+o[0], y+o[1]
				if nx < 0 || nx >= w || ny < 0 || ny >= h {
					continue
				}
				n := labels.At(nx, ny)
				if n != 0 && n != lab && survives(n) {
					shared[[2]int{lab, n}]++
				}
			}
		}
	}

	merged := 0
	for lab := range recs {
		if lab == 0 || !candidate(lab) {
			continue
		}
		best, bestCount := 0, 0
		for pair, c := range shared {
			if pair[0] != lab {
				continue
			}
			// Longest boundary wins; the smaller label on ties keeps
			// the choice deterministic.
			if c > bestCount || (c == bestCount && best != 0 && pair[1] < best) {
				best, bestCount = pair[1], c
			}
		}
		if best != 0 {
			recs[lab].merged = best
			recs[best].area += recs[lab].area
			merged++
		}
	}
	return merged
}

var neighbors8 = [8][2]int{
	{-1, -1}, {0, -1}, {1, -1},
	{-1, 0}, {1, 0},
	{-1, 1}, {0, 1}, {1, 1},
}
