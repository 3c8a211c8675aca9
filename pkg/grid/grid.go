// Package grid provides the 2-D raster value types shared by the
// segmentation pipeline: float intensity planes, boolean masks and
// integer label maps. All three are row-major with (x, y) addressing.
package grid

// Dense is a row-major 2-D array of float64 values, used for intensity
// images, smoothed surfaces, distance transforms and threshold surfaces.
type Dense struct {
	W, H int
	Pix  []float64
}

// NewDense creates a zero-filled Dense of the given size.
func NewDense(w, h int) *Dense {
	return &Dense{W: w, H: h, Pix: make([]float64, w*h)}
}

// At returns the value at (x, y). No bounds checking.
func (d *Dense) At(x, y int) float64 { return d.Pix[y*d.W+x] }

// Set stores v at (x, y). No bounds checking.
func (d *Dense) Set(x, y int, v float64) { d.Pix[y*d.W+x] = v }

// In reports whether (x, y) lies inside the grid.
func (d *Dense) In(x, y int) bool { return x >= 0 && x < d.W && y >= 0 && y < d.H }

// Clone returns a deep copy.
func (d *Dense) Clone() *Dense {
	out := NewDense(d.W, d.H)
	copy(out.Pix, d.Pix)
	return out
}

// Fill sets every value to v.
func (d *Dense) Fill(v float64) {
	for i := range d.Pix {
		d.Pix[i] = v
	}
}

// Bitmap is a row-major 2-D boolean array, used for validity masks and
// binary foregrounds.
type Bitmap struct {
	W, H int
	Bits []bool
}

// NewBitmap creates an all-false Bitmap of the given size.
func NewBitmap(w, h int) *Bitmap {
	return &Bitmap{W: w, H: h, Bits: make([]bool, w*h)}
}

// NewBitmapFilled creates a Bitmap with every bit set to v.
func NewBitmapFilled(w, h int, v bool) *Bitmap {
	b := NewBitmap(w, h)
	if v {
		for i := range b.Bits {
			b.Bits[i] = true
		}
	}
	return b
}

// At returns the bit at (x, y). No bounds checking.
func (b *Bitmap) At(x, y int) bool { return b.Bits[y*b.W+x] }

// Set stores v at (x, y). No bounds checking.
func (b *Bitmap) Set(x, y int, v bool) { b.Bits[y*b.W+x] = v }

// In reports whether (x, y) lies inside the grid.
func (b *Bitmap) In(x, y int) bool { return x >= 0 && x < b.W && y >= 0 && y < b.H }

// Clone returns a deep copy.
func (b *Bitmap) Clone() *Bitmap {
	out := NewBitmap(b.W, b.H)
	copy(out.Bits, b.Bits)
	return out
}

// Count returns the number of true bits.
func (b *Bitmap) Count() int {
	n := 0
	for _, v := range b.Bits {
		if v {
			n++
		}
	}
	return n
}

// Labels is a row-major 2-D integer array. Zero is background; positive
// values identify distinct objects.
type Labels struct {
	W, H int
	Lab  []int
}

// NewLabels creates an all-background Labels of the given size.
func NewLabels(w, h int) *Labels {
	return &Labels{W: w, H: h, Lab: make([]int, w*h)}
}

// At returns the label at (x, y). No bounds checking.
func (l *Labels) At(x, y int) int { return l.Lab[y*l.W+x] }

// Set stores v at (x, y). No bounds checking.
func (l *Labels) Set(x, y int, v int) { l.Lab[y*l.W+x] = v }

// In reports whether (x, y) lies inside the grid.
func (l *Labels) In(x, y int) bool { return x >= 0 && x < l.W && y >= 0 && y < l.H }

// Clone returns a deep copy.
func (l *Labels) Clone() *Labels {
	out := NewLabels(l.W, l.H)
	copy(out.Lab, l.Lab)
	return out
}

// Max returns the largest label value present.
func (l *Labels) Max() int {
	m := 0
	for _, v := range l.Lab {
		if v > m {
			m = v
		}
	}
	return m
}
