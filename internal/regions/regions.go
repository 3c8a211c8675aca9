// Package regions post-processes a raw watershed label map: size and
// border exclusion, best-effort merging of small fragments into their
// neighbors, hole filling and contiguous relabeling.
package regions

import (
	"math"

	"github.com/rs/zerolog"

	"cellseg/pkg/geometry"
	"cellseg/pkg/grid"
)

// Params configures object filtering.
type Params struct {
	MinDiameter   float64 // equivalent-diameter bounds, pixels
	MaxDiameter   float64
	ExcludeSize   bool
	ExcludeBorder bool
	MergeSmall    bool
	FillHoles     bool
	Log           zerolog.Logger
}

// Outcome carries the filtered label maps. Final has every exclusion
// applied; SmallRemoved has small objects removed or merged but border
// and oversized objects retained (downstream secondary-object
// identification needs it). Both are relabeled to a contiguous 1..N.
type Outcome struct {
	Final        *grid.Labels
	FinalCount   int
	SmallRemoved *grid.Labels
	SmallCount   int
}

// record is one region's bookkeeping, indexed by label in a flat arena
// rather than a pointer-linked graph.
type record struct {
	area     int
	bbox     geometry.RectInt
	border   bool
	tooSmall bool
	tooLarge bool
	dropped  bool // removed from Final
	merged   int  // label absorbed into, 0 if none
}

// Filter applies the configured exclusions to the raw label map.
// The mask marks valid pixels; holes containing invalid pixels are
// never filled.
func Filter(unedited *grid.Labels, count int, mask *grid.Bitmap, p Params) Outcome {
	recs := buildArena(unedited, count)

	for lab := 1; lab <= count; lab++ {
		r := &recs[lab]
		if r.area == 0 {
			continue
		}
		d := equivalentDiameter(r.area)
		r.tooSmall = d < p.MinDiameter
		r.tooLarge = d > p.MaxDiameter
	}

	// Merging is independent of size exclusion: with exclusion off a
	// merged fragment joins its neighbor instead of standing alone.
	merged := 0
	if p.MergeSmall {
		merged = mergeSmall(unedited, recs, p)
	}

	for lab := 1; lab <= count; lab++ {
		r := &recs[lab]
		if r.area == 0 || r.merged != 0 {
			continue
		}
		if p.ExcludeSize && (r.tooSmall || r.tooLarge) {
			r.dropped = true
		}
		if p.ExcludeBorder && r.border {
			r.dropped = true
		}
	}

	// SmallRemoved keeps border and oversized objects; only the
	// too-small ones (that were not absorbed) disappear.
	smallRemoved := grid.NewLabels(unedited.W, unedited.H)
	final := grid.NewLabels(unedited.W, unedited.H)
	for i, lab := range unedited.Lab {
		if lab == 0 {
			continue
		}
		r := recs[lab]
		eff := lab
		if r.merged != 0 {
			eff = r.merged
			r = recs[eff]
		}
		if !(p.ExcludeSize && recs[eff].tooSmall) {
			smallRemoved.Lab[i] = eff
		}
		if !recs[eff].dropped {
			final.Lab[i] = eff
		}
	}

	if p.FillHoles {
		fillHoles(final, mask)
		fillHoles(smallRemoved, mask)
	}

	finalCount := relabel(final)
	smallCount := relabel(smallRemoved)

	p.Log.Debug().
		Str("component", "regions").
		Int("raw", count).
		Int("merged", merged).
		Int("final", finalCount).
		Msg("object filtering complete")

	return Outcome{
		Final:        final,
		FinalCount:   finalCount,
		SmallRemoved: smallRemoved,
		SmallCount:   smallCount,
	}
}

// buildArena collects per-label area, bounding box and border contact
// in one scan.
func buildArena(labels *grid.Labels, count int) []record {
	recs := make([]record, count+1)
	for i := range recs {
		recs[i].bbox = geometry.EmptyRect()
	}
	w, h := labels.W, labels.H
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			lab := labels.At(x, y)
			if lab == 0 {
				continue
			}
			r := &recs[lab]
			r.area++
			r.bbox = r.bbox.Extend(x, y)
			if x == 0 || y == 0 || x == w-1 || y == h-1 {
				r.border = true
			}
		}
	}
	return recs
}

// equivalentDiameter is the diameter of a circle with the same pixel
// area as the region.
func equivalentDiameter(area int) float64 {
	return 2 * math.Sqrt(float64(area)/math.Pi)
}

// relabel renumbers the positive labels to a contiguous 1..N in order
// of first appearance in a raster scan, and returns N.
func relabel(labels *grid.Labels) int {
	remap := map[int]int{}
	next := 0
	for i, lab := range labels.Lab {
		if lab == 0 {
			continue
		}
		n, ok := remap[lab]
		if !ok {
			next++
			n = next
			remap[lab] = n
		}
		labels.Lab[i] = n
	}
	return next
}
