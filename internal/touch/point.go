// Package touch decodes the evdev multi-touch text stream into slot tables.
package touch

// Point is one live contact.
type Point struct {
	TrackingID uint32
	X          int32
	Y          int32
	HasX       bool
	HasY       bool
}

// HasPos reports whether both coordinates have been reported.
func (p Point) HasPos() bool {
	return p.HasX && p.HasY
}

// Frame is a published slot table. A nil slot holds no contact.
// Frames are never mutated after publication.
type Frame struct {
	Seq   uint64
	Slots []*Point
}

// Points returns the live contacts in slot order.
func (f Frame) Points() []Point {
	out := make([]Point, 0, len(f.Slots))
	for _, p := range f.Slots {
		if p != nil {
			out = append(out, *p)
		}
	}
	return out
}

// Live returns the number of occupied slots.
func (f Frame) Live() int {
	n := 0
	for _, p := range f.Slots {
		if p != nil {
			n++
		}
	}
	return n
}

// cloneSlots deep-copies a working table for publication.
func cloneSlots(slots []*Point) []*Point {
	out := make([]*Point, len(slots))
	for i, p := range slots {
		if p == nil {
			continue
		}
		cp := *p
		out[i] = &cp
	}
	return out
}
