// Package watershed grows labeled regions from seed points across a
// height surface, placing object boundaries along the ridge lines
// where competing basins meet.
package watershed

import (
	"container/heap"

	"cellseg/internal/morph"
	"cellseg/pkg/geometry"
	"cellseg/pkg/grid"
)

// Flood performs a seeded priority flood (Meyer's algorithm) over the
// surface, restricted to the binary foreground. Seed i claims label
// i+1. Pixels are claimed when first pushed and flooded highest-first,
// so each basin grows downhill from its peak; a monotonically
// increasing sequence number breaks exact height ties, making the
// result deterministic for identical inputs.
//
// Foreground blobs containing no seed are labeled as fresh connected
// components afterwards — thresholded pixels are never dropped here.
// Returns the label map and the total label count.
func Flood(surface *grid.Dense, fg *grid.Bitmap, seeds []geometry.PointInt) (*grid.Labels, int) {
	w, h := surface.W, surface.H
	labels := grid.NewLabels(w, h)

	pq := &pixelHeap{}
	heap.Init(pq)
	seq := 0
	for i, s := range seeds {
		if !fg.At(s.X, s.Y) || labels.At(s.X, s.Y) != 0 {
			continue
		}
		labels.Set(s.X, s.Y, i+1)
		heap.Push(pq, pixel{x: s.X, y: s.Y, height: surface.At(s.X, s.Y), seq: seq})
		seq++
	}

	for pq.Len() > 0 {
		p := heap.Pop(pq).(pixel)
		lab := labels.At(p.x, p.y)
		for _, o := range morph.Neighbors8() {
			nx, ny := p.x+o[0], p.y+o[1]
			if nx < 0 || nx >= w || ny < 0 || ny >= h {
				continue
			}
			if !fg.At(nx, ny) || labels.At(nx, ny) != 0 {
				continue
			}
			labels.Set(nx, ny, lab)
			heap.Push(pq, pixel{x: nx, y: ny, height: surface.At(nx, ny), seq: seq})
			seq++
		}
	}

	count := len(seeds)
	count = relabelOrphans(labels, fg, count)
	return labels, count
}

// relabelOrphans assigns fresh labels to foreground pixels no basin
// reached, one label per 8-connected component, and returns the new
// total count.
func relabelOrphans(labels *grid.Labels, fg *grid.Bitmap, count int) int {
	orphan := grid.NewBitmap(labels.W, labels.H)
	any := false
	for i := range orphan.Bits {
		if fg.Bits[i] && labels.Lab[i] == 0 {
			orphan.Bits[i] = true
			any = true
		}
	}
	if !any {
		return count
	}
	extra, n := morph.LabelComponents(orphan)
	for i, v := range extra.Lab {
		if v > 0 {
			labels.Lab[i] = count + v
		}
	}
	return count + n
}

// pixel is a heap entry: position, surface height and push sequence.
type pixel struct {
	x, y   int
	height float64
	seq    int
}

// pixelHeap pops the highest surface value first; earlier pushes win
// exact ties.
type pixelHeap []pixel

func (h pixelHeap) Len() int { return len(h) }

func (h pixelHeap) Less(i, j int) bool {
	if h[i].height != h[j].height {
		return h[i].height > h[j].height
	}
	return h[i].seq < h[j].seq
}

func (h pixelHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *pixelHeap) Push(x any) { *h = append(*h, x.(pixel)) }

func (h *pixelHeap) Pop() any {
	old := *h
	n := len(old)
	p := old[n-1]
	*h = old[:n-1]
	return p
}
