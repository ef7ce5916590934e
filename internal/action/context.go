// Package action builds the calibrated action catalog and classifies touch frames against it.
package action

import (
	"github.com/frudas24/touchsampler/internal/calib"
	"github.com/frudas24/touchsampler/internal/joystick"
	"github.com/frudas24/touchsampler/internal/touch"
)

// Context is one cataloged action. The concrete types below are the only
// implementations.
type Context interface {
	Kind() calib.ActionType
	context()
}

// None is the action reported when nothing else matched.
type None struct{}

// PressDown matches while any contact is inside Region.
type PressDown struct {
	Region calib.Rect
}

// Click matches while any contact is inside Region.
type Click struct {
	Region calib.Rect
}

// Rectangle is an action of an unrecognized type with a rectangular region.
// It matches like PressDown.
type Rectangle struct {
	Type   calib.ActionType
	Region calib.Rect
}

// PressUp matches on the first tick after the contact seen in Region on the
// previous tick is gone. Last is rewritten on every classification.
type PressUp struct {
	Region calib.Rect
	Last   *touch.Point
}

// SwipeOnce matches a contact that moved within DirRange degrees of
// (DirX, DirY) since the previous tick. Last is rewritten on every
// classification.
type SwipeOnce struct {
	Region   calib.Rect
	DirX     float64
	DirY     float64
	DirRange float64
	Last     *touch.Point
}

// JoyStick is one wedge of a quantized joystick.
type JoyStick struct {
	Name string
	// Square is the 2*outer canvas in capture pixels; its top-left corner is
	// the origin of Mask.
	Square    calib.Rect
	SubAction int
	Wedges    int
	Mask      joystick.Bitmap
	Edge      joystick.Bitmap
}

func (*None) Kind() calib.ActionType      { return calib.TypeNone }
func (*PressDown) Kind() calib.ActionType { return calib.TypePressDown }
func (*Click) Kind() calib.ActionType     { return calib.TypeClick }
func (r *Rectangle) Kind() calib.ActionType { return r.Type }
func (*PressUp) Kind() calib.ActionType   { return calib.TypePressUp }
func (*SwipeOnce) Kind() calib.ActionType { return calib.TypeSwipeOnce }
func (*JoyStick) Kind() calib.ActionType  { return calib.TypeJoyStick }

func (*None) context()      {}
func (*PressDown) context() {}
func (*Click) context()     {}
func (*Rectangle) context() {}
func (*PressUp) context()   {}
func (*SwipeOnce) context() {}
func (*JoyStick) context()  {}

// Bounds returns the region an action covers in capture pixels, or false for
// actions without one.
func Bounds(c Context) (calib.Rect, bool) {
	switch v := c.(type) {
	case *PressDown:
		return v.Region, true
	case *Click:
		return v.Region, true
	case *Rectangle:
		return v.Region, true
	case *PressUp:
		return v.Region, true
	case *SwipeOnce:
		return v.Region, true
	case *JoyStick:
		return v.Square, true
	default:
		return calib.Rect{}, false
	}
}
