package action

import (
	"math"

	"github.com/frudas24/touchsampler/internal/calib"
	"github.com/frudas24/touchsampler/internal/joystick"
	"github.com/frudas24/touchsampler/internal/touch"
)

// Classifier matches touch frames against a catalog once per sampling tick.
// PressUp and SwipeOnce entries keep one tick of memory, so a Classifier is
// not safe for concurrent use.
type Classifier struct {
	cat *Catalog
}

// NewClassifier returns a classifier over cat.
func NewClassifier(cat *Catalog) *Classifier {
	return &Classifier{cat: cat}
}

// Catalog returns the catalog being matched.
func (c *Classifier) Catalog() *Catalog {
	return c.cat
}

// Classify returns the matched action ids in ascending order, or just the
// catalog's none id when nothing matched.
func (c *Classifier) Classify(f touch.Frame) []int {
	points := positioned(f)
	var out []int
	for _, id := range c.cat.ids {
		if c.match(c.cat.entries[id], points) {
			out = append(out, id)
		}
	}
	if len(out) == 0 {
		return []int{c.cat.noneID}
	}
	return out
}

// match applies the rule of one action to the current contacts.
func (c *Classifier) match(ctx Context, points []touch.Point) bool {
	switch v := ctx.(type) {
	case *None:
		return false
	case *PressDown:
		return anyInside(points, v.Region)
	case *Click:
		return anyInside(points, v.Region)
	case *Rectangle:
		return anyInside(points, v.Region)
	case *PressUp:
		cur := lastInside(points, v.Region)
		// cur is nil whenever this matches, so the tracking ids are never compared.
		matched := v.Last != nil && cur == nil
		v.Last = cur
		return matched
	case *SwipeOnce:
		cur := lastInside(points, v.Region)
		matched := v.Last != nil && cur != nil &&
			v.Last.TrackingID == cur.TrackingID &&
			withinAngle(float64(cur.X-v.Last.X), float64(cur.Y-v.Last.Y), v.DirX, v.DirY, v.DirRange)
		v.Last = cur
		return matched
	case *JoyStick:
		for _, p := range points {
			if val, ok := v.Mask.At(int(p.X)-v.Square.X1, int(p.Y)-v.Square.Y1); ok && val == joystick.On {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// positioned returns the contacts that have both coordinates.
func positioned(f touch.Frame) []touch.Point {
	all := f.Points()
	out := all[:0]
	for _, p := range all {
		if p.HasPos() {
			out = append(out, p)
		}
	}
	return out
}

// anyInside reports whether any contact lies in r.
func anyInside(points []touch.Point, r calib.Rect) bool {
	for _, p := range points {
		if r.Contains(int(p.X), int(p.Y)) {
			return true
		}
	}
	return false
}

// lastInside returns a copy of the last contact in slot order inside r.
func lastInside(points []touch.Point, r calib.Rect) *touch.Point {
	var cur *touch.Point
	for i := range points {
		if r.Contains(int(points[i].X), int(points[i].Y)) {
			p := points[i]
			cur = &p
		}
	}
	return cur
}

// withinAngle reports whether the angle between (ax, ay) and (bx, by) is at
// most rangeDeg/2. Zero-length vectors never match.
func withinAngle(ax, ay, bx, by, rangeDeg float64) bool {
	na := math.Hypot(ax, ay)
	nb := math.Hypot(bx, by)
	if na == 0 || nb == 0 {
		return false
	}
	cos := (ax*bx + ay*by) / (na * nb)
	cos = math.Max(-1, math.Min(1, cos))
	deg := math.Acos(cos) * 180 / math.Pi
	return deg <= rangeDeg/2
}
