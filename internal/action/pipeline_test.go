package action

import (
	"testing"

	"github.com/frudas24/touchsampler/internal/calib"
	"github.com/frudas24/touchsampler/internal/touch"
)

// TestDecodeThenClassify_ClickThenPressUp verifies a Type B tap drives Click then PressUp.
func TestDecodeThenClassify_ClickThenPressUp(t *testing.T) {
	const dev = "/dev/input/event4"
	d := touch.NewDecoder(touch.ProtocolB, 10)
	c := mustClassifier(t,
		clickBox,
		calib.ActionConfig{Type: calib.TypePressUp, ID: 2, StartRectX: 50, StartRectY: 50, Width: 100, Height: 100},
	)

	expectIDs(t, c.Classify(d.Snapshot()), DefaultNoneID)

	for _, line := range []string{
		dev + " EV_ABS ABS_MT_SLOT 00000000",
		dev + " EV_ABS ABS_MT_TRACKING_ID 00000001",
		dev + " EV_ABS ABS_MT_POSITION_X 00000064",
		dev + " EV_ABS ABS_MT_POSITION_Y 00000064",
		dev + " EV_SYN SYN_REPORT 00000000",
	} {
		if err := d.FeedLine(line); err != nil {
			t.Fatalf("FeedLine failed: %v", err)
		}
	}
	expectIDs(t, c.Classify(d.Snapshot()), 1)

	if err := d.FeedLine(dev + " EV_KEY BTN_TOUCH UP"); err != nil {
		t.Fatalf("FeedLine failed: %v", err)
	}
	expectIDs(t, c.Classify(d.Snapshot()), 2)
	expectIDs(t, c.Classify(d.Snapshot()), DefaultNoneID)
}
