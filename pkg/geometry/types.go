// Package geometry provides basic geometric types used throughout the
// segmentation engine.
package geometry

import (
	"math"
)

// Point2D represents a 2D point with floating-point coordinates.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NewPoint2D creates a new Point2D.
func NewPoint2D(x, y float64) Point2D {
	return Point2D{X: x, Y: y}
}

// Distance returns the Euclidean distance to another point.
func (p Point2D) Distance(other Point2D) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// PointInt represents a 2D point with integer (pixel) coordinates.
type PointInt struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// ToFloat converts to Point2D.
func (p PointInt) ToFloat() Point2D {
	return Point2D{X: float64(p.X), Y: float64(p.Y)}
}

// DistanceSq returns the squared Euclidean distance to another point.
// Integer arithmetic, no overflow for image-sized coordinates.
func (p PointInt) DistanceSq(other PointInt) int {
	dx := p.X - other.X
	dy := p.Y - other.Y
	return dx*dx + dy*dy
}

// RectInt represents a rectangle with integer coordinates.
type RectInt struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// EmptyRect returns a degenerate rectangle that Extend treats as unset.
func EmptyRect() RectInt {
	return RectInt{X: math.MaxInt32, Y: math.MaxInt32, Width: -1, Height: -1}
}

// Extend grows the rectangle to include the pixel (x, y).
func (r RectInt) Extend(x, y int) RectInt {
	if r.Width < 0 {
		return RectInt{X: x, Y: y, Width: 1, Height: 1}
	}
	x2 := r.X + r.Width
	y2 := r.Y + r.Height
	if x < r.X {
		r.X = x
	}
	if y < r.Y {
		r.Y = y
	}
	if x+1 > x2 {
		x2 = x + 1
	}
	if y+1 > y2 {
		y2 = y + 1
	}
	r.Width = x2 - r.X
	r.Height = y2 - r.Y
	return r
}

// Contains returns true if the pixel (x, y) is inside the rectangle.
func (r RectInt) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}
