package touch

import "fmt"

// Symbolic names printed by `getevent -l`.
const (
	NameEvSyn = "EV_SYN"
	NameEvKey = "EV_KEY"
	NameEvAbs = "EV_ABS"

	NameTrackingID = "ABS_MT_TRACKING_ID"
	NamePositionX  = "ABS_MT_POSITION_X"
	NamePositionY  = "ABS_MT_POSITION_Y"
	NamePressure   = "ABS_MT_PRESSURE"
	NameTouchMajor = "ABS_MT_TOUCH_MAJOR"
	NameWidthMajor = "ABS_MT_WIDTH_MAJOR"
	NameSlot       = "ABS_MT_SLOT"
	NameSynReport  = "SYN_REPORT"
	NameSynMT      = "SYN_MT_REPORT"
	NameBtnTouch   = "BTN_TOUCH"

	// ValueUp and ValueDown are the symbolic BTN_TOUCH values.
	ValueUp   = "UP"
	ValueDown = "DOWN"
)

// Kernel event types (linux/input-event-codes.h).
const (
	EvSyn uint16 = 0x00
	EvKey uint16 = 0x01
	EvAbs uint16 = 0x03
)

// releasedID is the tracking ID that frees a Type B slot.
const releasedID uint32 = 0xffffffff

// Code pairs an event type with a code number.
type Code struct {
	Type uint16
	Num  uint16
}

// Codes maps the recognized symbolic names to kernel codes.
var Codes = map[string]Code{
	NameSynReport:  {EvSyn, 0x00},
	NameSynMT:      {EvSyn, 0x02},
	NameBtnTouch:   {EvKey, 0x14a},
	NameSlot:       {EvAbs, 0x2f},
	NameTouchMajor: {EvAbs, 0x30},
	NameWidthMajor: {EvAbs, 0x32},
	NamePositionX:  {EvAbs, 0x35},
	NamePositionY:  {EvAbs, 0x36},
	NameTrackingID: {EvAbs, 0x39},
	NamePressure:   {EvAbs, 0x3a},
}

var typeNames = map[uint16]string{
	EvSyn: NameEvSyn,
	EvKey: NameEvKey,
	EvAbs: NameEvAbs,
}

var codeNames = func() map[Code]string {
	out := make(map[Code]string, len(Codes))
	for name, c := range Codes {
		out[c] = name
	}
	return out
}()

// TypeName returns the symbolic name of an event type, or its hex form.
func TypeName(t uint16) string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return hex4(uint32(t))
}

// CodeName returns the symbolic name of a code, or its hex form.
func CodeName(t, num uint16) string {
	if name, ok := codeNames[Code{Type: t, Num: num}]; ok {
		return name
	}
	return hex4(uint32(num))
}

// hex4 formats a code the way getevent prints unknown codes.
func hex4(v uint32) string {
	return fmt.Sprintf("%04x", v)
}

// FormatEvent renders a kernel event as one `getevent -l` line.
func FormatEvent(device string, t, num uint16, value int32) string {
	code := CodeName(t, num)
	val := fmt.Sprintf("%08x", uint32(value))
	if code == NameBtnTouch {
		val = ValueUp
		if value != 0 {
			val = ValueDown
		}
	}
	return fmt.Sprintf("%s %s %s %s", device, TypeName(t), code, val)
}
