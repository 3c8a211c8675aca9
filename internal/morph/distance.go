package morph

import (
	"math"

	"cellseg/pkg/grid"
)

// DistanceTransform computes the exact Euclidean distance from every
// foreground pixel to the nearest background pixel (Felzenszwalb &
// Huttenlocher two-pass squared-distance transform). Background pixels
// get 0. Pixels on the image border count their off-image neighbors as
// foreground, so a blob touching the frame still peaks at its interior.
// inf is a large finite stand-in for +infinity. The envelope pass
// computes parabola intersections by subtraction, which NaNs out on
// real infinities.
const inf = 1e20

func DistanceTransform(fg *grid.Bitmap) *grid.Dense {
	w, h := fg.W, fg.H
	d := grid.NewDense(w, h)
	for i, v := range fg.Bits {
		if v {
			d.Pix[i] = inf
		}
	}

	// Column pass then row pass; each applies the 1-D lower envelope.
	f := make([]float64, maxInt(w, h))
	out := make([]float64, maxInt(w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			f[y] = d.At(x, y)
		}
		envelope(f[:h], out[:h])
		for y := 0; y < h; y++ {
			d.Set(x, y, out[y])
		}
	}
	for y := 0; y < h; y++ {
		copy(f[:w], d.Pix[y*w:(y+1)*w])
		envelope(f[:w], out[:w])
		copy(d.Pix[y*w:(y+1)*w], out[:w])
	}

	for i, v := range d.Pix {
		d.Pix[i] = math.Sqrt(v)
	}
	return d
}

// envelope computes the 1-D squared distance transform of f into out:
// out[q] = min over p of (q-p)^2 + f[p], via the lower envelope of the
// parabolas rooted at each sample.
func envelope(f, out []float64) {
	n := len(f)
	v := make([]int, n)       // locations of parabolas in the envelope
	z := make([]float64, n+1) // boundaries between parabolas
	k := 0
	v[0] = 0
	z[0] = math.Inf(-1)
	z[1] = math.Inf(1)

	for q := 1; q < n; q++ {
		var s float64
		for {
			p := v[k]
			s = ((f[q] + float64(q*q)) - (f[p] + float64(p*p))) / float64(2*q-2*p)
			if s > z[k] {
				break
			}
			k--
		}
		k++
		v[k] = q
		z[k] = s
		z[k+1] = math.Inf(1)
	}

	k = 0
	for q := 0; q < n; q++ {
		for z[k+1] < float64(q) {
			k++
		}
		p := v[k]
		dq := float64(q - p)
		out[q] = dq*dq + f[p]
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
