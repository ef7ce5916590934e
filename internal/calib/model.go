// Package calib holds calibrated action regions and the action config contract.
package calib

// Rect is a region in capture pixels, corner form, half-open on the far edges.
type Rect struct {
	X1 int
	Y1 int
	X2 int
	Y2 int
}

// FromSize builds a rect from an origin and size in config units and scales
// it by ratio. Each corner is truncated toward zero.
func FromSize(x, y, w, h, ratio float64) Rect {
	return Rect{
		X1: scale(x, ratio),
		Y1: scale(y, ratio),
		X2: scale(x+w, ratio),
		Y2: scale(y+h, ratio),
	}
}

// Bounding returns the smallest rect that contains both a and b.
func Bounding(a, b Rect) Rect {
	return Rect{
		X1: min(a.X1, b.X1),
		Y1: min(a.Y1, b.Y1),
		X2: max(a.X2, b.X2),
		Y2: max(a.Y2, b.Y2),
	}
}

// Contains reports whether (x, y) lies in [X1, X2) x [Y1, Y2).
func (r Rect) Contains(x, y int) bool {
	return x >= r.X1 && x < r.X2 && y >= r.Y1 && y < r.Y2
}

// Empty reports whether the rect covers no pixel.
func (r Rect) Empty() bool {
	return r.X2 <= r.X1 || r.Y2 <= r.Y1
}

// W returns the rect width.
func (r Rect) W() int {
	return r.X2 - r.X1
}

// H returns the rect height.
func (r Rect) H() int {
	return r.Y2 - r.Y1
}

// Scale converts a config coordinate to capture pixels, truncating.
func Scale(v, ratio float64) int {
	return scale(v, ratio)
}

func scale(v, ratio float64) int {
	return int(v * ratio)
}
