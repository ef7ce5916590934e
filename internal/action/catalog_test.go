package action

import (
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/frudas24/touchsampler/internal/calib"
	"github.com/frudas24/touchsampler/internal/joystick"
)

// quietLog returns a logger that discards output.
func quietLog() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// unit is a geometry with ratio 1.
var unit = Geometry{ScreenWidth: 1000, ScreenHeight: 1000, CaptureHeight: 1000}

// TestBuild_ScalesRectanglesByRatio verifies regions are stored in capture pixels.
func TestBuild_ScalesRectanglesByRatio(t *testing.T) {
	actions := []calib.ActionConfig{
		{Type: calib.TypeClick, ID: 1, StartRectX: 100, StartRectY: 201, Width: 50, Height: 50},
	}
	cat, err := Build(actions, Geometry{ScreenWidth: 2400, ScreenHeight: 1080, CaptureHeight: 540}, quietLog())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if cat.Ratio() != 0.5 {
		t.Fatalf("expected ratio 0.5, got %v", cat.Ratio())
	}
	ctx, ok := cat.Get(1)
	if !ok {
		t.Fatalf("expected action 1")
	}
	click, ok := ctx.(*Click)
	if !ok {
		t.Fatalf("expected *Click, got %T", ctx)
	}
	want := calib.Rect{X1: 50, Y1: 100, X2: 75, Y2: 125}
	if click.Region != want {
		t.Fatalf("expected %+v, got %+v", want, click.Region)
	}
}

// TestBuild_SwipeRegionAndDirection verifies the swipe bounding box and scaled vector.
func TestBuild_SwipeRegionAndDirection(t *testing.T) {
	actions := []calib.ActionConfig{{
		Type: calib.TypeSwipeOnce, ID: 3,
		StartX: 100, StartY: 100, StartRectWidth: 20, StartRectHeight: 20,
		EndX: 300, EndY: 60, EndRectWidth: 40, EndRectHeight: 40,
		DirRange: 60,
	}}
	cat, err := Build(actions, Geometry{ScreenHeight: 100, CaptureHeight: 200}, quietLog())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	ctx, _ := cat.Get(3)
	s, ok := ctx.(*SwipeOnce)
	if !ok {
		t.Fatalf("expected *SwipeOnce, got %T", ctx)
	}
	want := calib.Rect{X1: 200, Y1: 120, X2: 680, Y2: 240}
	if s.Region != want {
		t.Fatalf("expected %+v, got %+v", want, s.Region)
	}
	if s.DirX != 400 || s.DirY != -80 || s.DirRange != 60 {
		t.Fatalf("unexpected direction: (%v,%v) range %v", s.DirX, s.DirY, s.DirRange)
	}
	if s.Last != nil {
		t.Fatalf("expected empty memory")
	}
}

// TestBuild_JoyStickExpandsIntoWedges verifies consecutive ids and shared geometry.
func TestBuild_JoyStickExpandsIntoWedges(t *testing.T) {
	actions := []calib.ActionConfig{{
		Type: calib.TypeJoyStick, ID: 20, Name: "move",
		CenterX: 200, CenterY: 300, RangeInner: 10, RangeOuter: 50, QuantizedNumber: 8,
	}}
	cat, err := Build(actions, unit, quietLog())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if cat.Len() != 8 {
		t.Fatalf("expected 8 wedges, got %d", cat.Len())
	}
	for i := 0; i < 8; i++ {
		ctx, ok := cat.Get(20 + i)
		if !ok {
			t.Fatalf("missing wedge id %d", 20+i)
		}
		j := ctx.(*JoyStick)
		if j.SubAction != i || j.Wedges != 8 || j.Name != "move" {
			t.Fatalf("unexpected wedge %d: %+v", i, j)
		}
		if j.Square != (calib.Rect{X1: 150, Y1: 250, X2: 250, Y2: 350}) {
			t.Fatalf("unexpected square: %+v", j.Square)
		}
		if j.Mask.W != 100 || j.Mask.H != 100 {
			t.Fatalf("unexpected mask size %dx%d", j.Mask.W, j.Mask.H)
		}
	}
}

// TestBuild_SkipsMisconfiguredJoySticks verifies bad joysticks are skipped and the rest built.
func TestBuild_SkipsMisconfiguredJoySticks(t *testing.T) {
	actions := []calib.ActionConfig{
		{Type: calib.TypeJoyStick, ID: 1, RangeInner: 10, RangeOuter: 50, QuantizedNumber: 0},
		{Type: calib.TypeJoyStick, ID: 2, RangeInner: 60, RangeOuter: 50, QuantizedNumber: 4},
		{Type: calib.TypePressDown, ID: 3, Width: 10, Height: 10},
	}
	cat, err := Build(actions, unit, quietLog())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if cat.Len() != 1 {
		t.Fatalf("expected only the press action, got %v", cat.IDs())
	}
	skipped := cat.Skipped()
	if len(skipped) != 2 {
		t.Fatalf("expected 2 skipped, got %d", len(skipped))
	}
	if !errors.Is(skipped[0].Err, joystick.ErrBadQuantization) {
		t.Fatalf("expected quantization error, got %v", skipped[0].Err)
	}
	if !errors.Is(skipped[1].Err, joystick.ErrBadRadius) {
		t.Fatalf("expected radius error, got %v", skipped[1].Err)
	}
}

// TestBuild_DuplicateIDsSkipped verifies id collisions keep the first action.
func TestBuild_DuplicateIDsSkipped(t *testing.T) {
	actions := []calib.ActionConfig{
		{Type: calib.TypeClick, ID: 5, Width: 10, Height: 10},
		{Type: calib.TypeJoyStick, ID: 3, RangeOuter: 20, QuantizedNumber: 4},
	}
	cat, err := Build(actions, unit, quietLog())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if cat.Len() != 1 {
		t.Fatalf("expected joystick overlapping id 5 to be skipped, got %v", cat.IDs())
	}
	if len(cat.Skipped()) != 1 || !errors.Is(cat.Skipped()[0].Err, ErrDuplicateID) {
		t.Fatalf("expected duplicate id error, got %+v", cat.Skipped())
	}
}

// TestBuild_NoneID verifies the none id defaults to -1 and follows a None action.
func TestBuild_NoneID(t *testing.T) {
	cat, err := Build(nil, unit, quietLog())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if cat.NoneID() != DefaultNoneID {
		t.Fatalf("expected default none id, got %d", cat.NoneID())
	}

	cat, err = Build([]calib.ActionConfig{{Type: calib.TypeNone, ID: 0}}, unit, quietLog())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if cat.NoneID() != 0 {
		t.Fatalf("expected configured none id 0, got %d", cat.NoneID())
	}
}

// TestBuild_BadGeometry verifies a zero screen height is rejected.
func TestBuild_BadGeometry(t *testing.T) {
	if _, err := Build(nil, Geometry{CaptureHeight: 100}, quietLog()); !errors.Is(err, ErrBadGeometry) {
		t.Fatalf("expected ErrBadGeometry, got %v", err)
	}
}

// TestBuild_OtherTypesAreRectangles verifies unknown types keep a scaled rectangle.
func TestBuild_OtherTypesAreRectangles(t *testing.T) {
	cat, err := Build([]calib.ActionConfig{{Type: 42, ID: 7, StartRectX: 1, StartRectY: 2, Width: 3, Height: 4}}, unit, nil)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	ctx, _ := cat.Get(7)
	r, ok := ctx.(*Rectangle)
	if !ok || r.Kind() != 42 || r.Region != (calib.Rect{X1: 1, Y1: 2, X2: 4, Y2: 6}) {
		t.Fatalf("unexpected rectangle: %#v", ctx)
	}
}
