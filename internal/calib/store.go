package calib

import (
	"errors"
	"fmt"
	"os"

	"github.com/bitly/go-simplejson"
)

// ActionType is the integer kind tag used by action config files.
type ActionType int

const (
	// TypeNone marks the action emitted when nothing matched.
	TypeNone ActionType = iota
	// TypePressDown matches while a contact is inside the region.
	TypePressDown
	// TypePressUp matches on the tick after a contact leaves the region.
	TypePressUp
	// TypeClick matches while a contact is inside the region.
	TypeClick
	// TypeSwipeOnce matches a contact moving along a direction.
	TypeSwipeOnce
	// TypeJoyStick expands into angle-quantized wedge actions.
	TypeJoyStick
)

// String returns the config name of the type.
func (t ActionType) String() string {
	switch t {
	case TypeNone:
		return "None"
	case TypePressDown:
		return "PressDown"
	case TypePressUp:
		return "PressUp"
	case TypeClick:
		return "Click"
	case TypeSwipeOnce:
		return "SwipeOnce"
	case TypeJoyStick:
		return "JoyStick"
	default:
		return fmt.Sprintf("Other(%d)", int(t))
	}
}

// DefaultDirRange is the swipe tolerance in degrees when dirRange is absent.
const DefaultDirRange = 90.0

// ActionConfig is one action object from the config file, in config units.
type ActionConfig struct {
	Type ActionType
	ID   int

	StartRectX float64
	StartRectY float64
	Width      float64
	Height     float64

	StartX          float64
	StartY          float64
	EndX            float64
	EndY            float64
	StartRectWidth  float64
	StartRectHeight float64
	EndRectWidth    float64
	EndRectHeight   float64
	DirRange        float64

	CenterX         float64
	CenterY         float64
	RangeInner      float64
	RangeOuter      float64
	QuantizedNumber int
	Name            string
	Contact         bool
}

// ActionFile is the decoded action config.
type ActionFile struct {
	Actions []ActionConfig
	// LogTimestamp is nil when the file does not set it.
	LogTimestamp *bool
}

// LoadActions reads an action config file from disk.
func LoadActions(path string) (ActionFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ActionFile{}, err
	}
	file, err := ParseActions(data)
	if err != nil {
		return ActionFile{}, fmt.Errorf("%s: %w", path, err)
	}
	return file, nil
}

// ParseActions decodes either a bare array of actions or an object with an
// "actions" array.
func ParseActions(data []byte) (ActionFile, error) {
	root, err := simplejson.NewJson(data)
	if err != nil {
		return ActionFile{}, err
	}

	var file ActionFile
	list := root
	if _, err := root.Array(); err != nil {
		actions, ok := root.CheckGet("actions")
		if !ok {
			return ActionFile{}, errors.New(`action config needs an array or an "actions" key`)
		}
		list = actions
		if v, ok := root.CheckGet("LogTimestamp"); ok {
			b := truthy(v)
			file.LogTimestamp = &b
		}
	}

	items, err := list.Array()
	if err != nil {
		return ActionFile{}, fmt.Errorf("actions: %w", err)
	}
	for i := range items {
		file.Actions = append(file.Actions, parseAction(list.GetIndex(i)))
	}
	return file, nil
}

// parseAction reads one action object using the config field names.
func parseAction(j *simplejson.Json) ActionConfig {
	return ActionConfig{
		Type: ActionType(j.Get("type").MustInt(int(TypeNone))),
		ID:   j.Get("id").MustInt(-1),

		StartRectX: j.Get("startRectx").MustFloat64(),
		StartRectY: j.Get("startRecty").MustFloat64(),
		Width:      j.Get("width").MustFloat64(),
		Height:     j.Get("height").MustFloat64(),

		StartX:          j.Get("startX").MustFloat64(),
		StartY:          j.Get("startY").MustFloat64(),
		EndX:            j.Get("endX").MustFloat64(),
		EndY:            j.Get("endY").MustFloat64(),
		StartRectWidth:  j.Get("startRectWidth").MustFloat64(),
		StartRectHeight: j.Get("startRectHeight").MustFloat64(),
		EndRectWidth:    j.Get("endRectWidth").MustFloat64(),
		EndRectHeight:   j.Get("endRectHeight").MustFloat64(),
		DirRange:        j.Get("dirRange").MustFloat64(DefaultDirRange),

		CenterX:         j.Get("centerx").MustFloat64(),
		CenterY:         j.Get("centery").MustFloat64(),
		RangeInner:      j.Get("rangeInner").MustFloat64(),
		RangeOuter:      j.Get("rangeOuter").MustFloat64(),
		QuantizedNumber: j.Get("QuantizedNumber").MustInt(),
		Name:            j.Get("name").MustString(),
		Contact:         truthy(j.Get("contact")),
	}
}

// truthy accepts JSON booleans and numbers as flags.
func truthy(j *simplejson.Json) bool {
	if b, err := j.Bool(); err == nil {
		return b
	}
	if n, err := j.Float64(); err == nil {
		return n != 0
	}
	return false
}
