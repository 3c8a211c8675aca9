package cellseg

import (
	"cellseg/pkg/grid"
)

// Result is the output of one Segment call.
type Result struct {
	// ObjectName keys the measurements and derived label maps.
	ObjectName string

	// Objects is the final label map with every exclusion applied,
	// labeled contiguously 1..Count.
	Objects *grid.Labels
	Count   int

	// UneditedObjects is the raw watershed output before any size or
	// border filtering.
	UneditedObjects *grid.Labels

	// SmallRemovedObjects has small objects removed or merged but
	// border and oversized objects retained; downstream secondary
	// object identification grows from it.
	SmallRemovedObjects *grid.Labels

	// Threshold is the final scalar threshold: the corrected, clamped
	// value for Global, the mean of the finite surface otherwise.
	Threshold float64

	Measurements Measurements
}

// LabelMaps returns the three label maps under their conventional
// host-facing names.
func (r *Result) LabelMaps() map[string]*grid.Labels {
	return map[string]*grid.Labels{
		"Segmented" + r.ObjectName:             r.Objects,
		"UneditedSegmented" + r.ObjectName:     r.UneditedObjects,
		"SmallRemovedSegmented" + r.ObjectName: r.SmallRemovedObjects,
	}
}

// Outlines marks the boundary pixels of the final objects: foreground
// pixels 8-adjacent to background or to a different label. Hosts
// overlay it on the source image.
func (r *Result) Outlines() *grid.Bitmap {
	labels := r.Objects
	out := grid.NewBitmap(labels.W, labels.H)
	for y := 0; y < labels.H; y++ {
		for x := 0; x < labels.W; x++ {
			lab := labels.At(x, y)
			if lab == 0 {
				continue
			}
			for dy := -1; dy <= 1 && !out.At(x, y); dy++ {
				for dx := -1; dx <= 1; dx++ {
					if dx == 0 && dy == 0 {
						continue
					}
					nx, ny := x+dx, y+dy
					if !labels.In(nx, ny) || labels.At(nx, ny) != lab {
						out.Set(x, y, true)
						break
					}
				}
			}
		}
	}
	return out
}
