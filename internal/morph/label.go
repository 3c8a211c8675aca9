package morph

import (
	"cellseg/pkg/grid"
)

// neighbors8 enumerates the 8-connected neighborhood offsets in raster
// order, so flood fills visit pixels deterministically.
var neighbors8 = [8][2]int{
	{-1, -1}, {0, -1}, {1, -1},
	{-1, 0}, {1, 0},
	{-1, 1}, {0, 1}, {1, 1},
}

// Neighbors8 returns the 8-connected neighborhood offsets.
func Neighbors8() [8][2]int { return neighbors8 }

// LabelComponents assigns a distinct positive label to every
// 8-connected foreground component, numbered 1..n in order of first
// appearance in a raster scan. Returns the label map and n.
func LabelComponents(fg *grid.Bitmap) (*grid.Labels, int) {
	w, h := fg.W, fg.H
	labels := grid.NewLabels(w, h)
	next := 0
	var stack [][2]int

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !fg.At(x, y) || labels.At(x, y) != 0 {
				continue
			}
			next++
			labels.Set(x, y, next)
			stack = append(stack[:0], [2]int{x, y})
			for len(stack) > 0 {
				p := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				for _, n := range neighbors8 {
					nx, ny := p[0]+n[0], p[1]+n[1]
					if nx < 0 || nx >= w || ny < 0 || ny >= h {
						continue
					}
					if fg.At(nx, ny) && labels.At(nx, ny) == 0 {
						labels.Set(nx, ny, next)
						stack = append(stack, [2]int{nx, ny})
					}
				}
			}
		}
	}
	return labels, next
}
