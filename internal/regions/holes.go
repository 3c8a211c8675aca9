package regions

import (
	"cellseg/pkg/grid"
)

var neighbors4 = [4][2]int{{0, -1}, {-1, 0}, {1, 0}, {0, 1}}

// FillBinaryHoles fills enclosed background pockets of a binary
// foreground in place, before any labeling has happened. Pockets
// containing mask-invalid pixels stay open.
func FillBinaryHoles(fg *grid.Bitmap, mask *grid.Bitmap) {
	labels := grid.NewLabels(fg.W, fg.H)
	for i, b := range fg.Bits {
		if b {
			labels.Lab[i] = 1
		}
	}
	fillHoles(labels, mask)
	for i, v := range labels.Lab {
		fg.Bits[i] = v != 0
	}
}

// fillHoles fills background pockets fully enclosed by a single
// labeled region with that region's label. Background is traced
// 4-connected (the complement of the 8-connected objects); any pocket
// that reaches the frame border is outside, not a hole. Pockets
// touching two different labels are gaps between objects and stay
// open, as do pockets containing mask-invalid pixels.
func fillHoles(labels *grid.Labels, mask *grid.Bitmap) {
	w, h := labels.W, labels.H

	// Flood the outside background from the frame border.
	outside := grid.NewBitmap(w, h)
	var stack [][2]int
	pushBg := func(x, y int) {
		if labels.At(x, y) == 0 && !outside.At(x, y) {
			outside.Set(x, y, true)
			stack = append(stack, [2]int{x, y})
		}
	}
	for x := 0; x < w; x++ {
		pushBg(x, 0)
		pushBg(x, h-1)
	}
	for y := 0; y < h; y++ {
		pushBg(0, y)
		pushBg(w-1, y)
	}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, o := range neighbors4 {
			nx, ny := p[0]+o[0], p[1]+o[1]
			if nx >= 0 && nx < w && ny >= 0 && ny < h {
				pushBg(nx, ny)
			}
		}
	}

	// Remaining background pixels form candidate holes.
	visited := grid.NewBitmap(w, h)
	var hole [][2]int
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if labels.At(x, y) != 0 || outside.At(x, y) || visited.At(x, y) {
				continue
			}

			hole = hole[:0]
			owner := 0   // unique adjacent label, -1 once ambiguous
			valid := true // no mask-invalid pixel inside
			visited.Set(x, y, true)
			hole = append(hole, [2]int{x, y})
			for i := 0; i < len(hole); i++ {
				px, py := hole[i][0], hole[i][1]
				if !mask.At(px, py) {
					valid = false
				}
				for _, o := range neighbors8 {
					nx, ny := px+o[0], py+o[1]
					if nx < 0 || nx >= w || ny < 0 || ny >= h {
						continue
					}
					lab := labels.At(nx, ny)
					if lab != 0 {
						if owner == 0 {
							owner = lab
						} else if owner != lab {
							owner = -1
						}
						continue
					}
					if !outside.At(nx, ny) && !visited.At(nx, ny) {
						// 4-connected growth only; diagonal background
						// contact does not join pockets.
						if o[0] != 0 && o[1] != 0 {
							continue
						}
						visited.Set(nx, ny, true)
						hole = append(hole, [2]int{nx, ny})
					}
				}
			}

			if owner > 0 && valid {
				for _, p := range hole {
					labels.Set(p[0], p[1], owner)
				}
			}
		}
	}
}
