package action

import (
	"errors"
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/frudas24/touchsampler/internal/calib"
	"github.com/frudas24/touchsampler/internal/joystick"
)

// DefaultNoneID is reported for empty ticks when no None action is configured.
const DefaultNoneID = -1

var (
	// ErrBadGeometry reports a non-positive screen or capture height.
	ErrBadGeometry = errors.New("action: screen and capture heights must be positive")
	// ErrDuplicateID reports an action id that is already cataloged.
	ErrDuplicateID = errors.New("action: duplicate id")
)

// Geometry relates config coordinates to capture pixels.
type Geometry struct {
	ScreenWidth   int
	ScreenHeight  int
	CaptureHeight int
}

// Ratio returns CaptureHeight / ScreenHeight.
func (g Geometry) Ratio() (float64, error) {
	if g.ScreenHeight <= 0 || g.CaptureHeight <= 0 {
		return 0, fmt.Errorf("%w: screen=%d capture=%d", ErrBadGeometry, g.ScreenHeight, g.CaptureHeight)
	}
	return float64(g.CaptureHeight) / float64(g.ScreenHeight), nil
}

// Skipped records an action left out of the catalog.
type Skipped struct {
	ID   int
	Type calib.ActionType
	Err  error
}

// Catalog maps action ids to their calibrated contexts. All regions are
// stored in capture pixels.
type Catalog struct {
	ratio   float64
	noneID  int
	entries map[int]Context
	ids     []int
	skipped []Skipped
}

// Build calibrates every configured action with the geometry ratio.
// Misconfigured actions are logged, recorded in Skipped, and left out.
func Build(actions []calib.ActionConfig, geom Geometry, log logrus.FieldLogger) (*Catalog, error) {
	ratio, err := geom.Ratio()
	if err != nil {
		return nil, err
	}
	c := &Catalog{
		ratio:   ratio,
		noneID:  DefaultNoneID,
		entries: make(map[int]Context),
	}
	noneSet := false

	for _, a := range actions {
		built, err := buildAction(a, ratio)
		if err == nil {
			err = c.checkIDs(built)
		}
		if err != nil {
			c.skipped = append(c.skipped, Skipped{ID: a.ID, Type: a.Type, Err: err})
			if log != nil {
				log.WithFields(logrus.Fields{"id": a.ID, "type": a.Type.String()}).WithError(err).Warn("action: skipped")
			}
			continue
		}
		for id, ctx := range built {
			c.entries[id] = ctx
			c.ids = append(c.ids, id)
		}
		if a.Type == calib.TypeNone && !noneSet {
			c.noneID = a.ID
			noneSet = true
		}
	}
	sort.Ints(c.ids)

	if log != nil {
		log.WithFields(logrus.Fields{
			"ratio":   ratio,
			"actions": len(c.ids),
			"skipped": len(c.skipped),
			"none_id": c.noneID,
		}).Info("action: catalog built")
	}
	return c, nil
}

// checkIDs rejects ids that collide with cataloged ones.
func (c *Catalog) checkIDs(built map[int]Context) error {
	for id := range built {
		if _, ok := c.entries[id]; ok {
			return fmt.Errorf("%w: %d", ErrDuplicateID, id)
		}
	}
	return nil
}

// buildAction converts one config entry into its catalog entries.
func buildAction(a calib.ActionConfig, ratio float64) (map[int]Context, error) {
	switch a.Type {
	case calib.TypeNone:
		return map[int]Context{a.ID: &None{}}, nil
	case calib.TypePressDown:
		return map[int]Context{a.ID: &PressDown{Region: rectOf(a, ratio)}}, nil
	case calib.TypeClick:
		return map[int]Context{a.ID: &Click{Region: rectOf(a, ratio)}}, nil
	case calib.TypePressUp:
		return map[int]Context{a.ID: &PressUp{Region: rectOf(a, ratio)}}, nil
	case calib.TypeSwipeOnce:
		start := calib.FromSize(a.StartX, a.StartY, a.StartRectWidth, a.StartRectHeight, ratio)
		end := calib.FromSize(a.EndX, a.EndY, a.EndRectWidth, a.EndRectHeight, ratio)
		return map[int]Context{a.ID: &SwipeOnce{
			Region:   calib.Bounding(start, end),
			DirX:     (a.EndX - a.StartX) * ratio,
			DirY:     (a.EndY - a.StartY) * ratio,
			DirRange: a.DirRange,
		}}, nil
	case calib.TypeJoyStick:
		return buildJoyStick(a, ratio)
	default:
		return map[int]Context{a.ID: &Rectangle{Type: a.Type, Region: rectOf(a, ratio)}}, nil
	}
}

// buildJoyStick expands one joystick into QuantizedNumber wedge actions with
// consecutive ids starting at a.ID.
func buildJoyStick(a calib.ActionConfig, ratio float64) (map[int]Context, error) {
	cx := calib.Scale(a.CenterX, ratio)
	cy := calib.Scale(a.CenterY, ratio)
	outer := calib.Scale(a.RangeOuter, ratio)
	inner := calib.Scale(a.RangeInner, ratio)

	wedges, err := joystick.Quantize(outer, inner, a.QuantizedNumber)
	if err != nil {
		return nil, err
	}
	square := calib.Rect{X1: cx - outer, Y1: cy - outer, X2: cx + outer, Y2: cy + outer}
	out := make(map[int]Context, len(wedges.Masks))
	for i := range wedges.Masks {
		out[a.ID+i] = &JoyStick{
			Name:      a.Name,
			Square:    square,
			SubAction: i,
			Wedges:    len(wedges.Masks),
			Mask:      wedges.Masks[i],
			Edge:      wedges.Edges[i],
		}
	}
	return out, nil
}

// rectOf builds the scaled rectangle of a rectangle-based action.
func rectOf(a calib.ActionConfig, ratio float64) calib.Rect {
	return calib.FromSize(a.StartRectX, a.StartRectY, a.Width, a.Height, ratio)
}

// Ratio returns the capture/config scale applied at build time.
func (c *Catalog) Ratio() float64 {
	return c.ratio
}

// NoneID returns the id reported for ticks without a match.
func (c *Catalog) NoneID() int {
	return c.noneID
}

// Get returns the context for an id.
func (c *Catalog) Get(id int) (Context, bool) {
	ctx, ok := c.entries[id]
	return ctx, ok
}

// IDs returns the cataloged ids in ascending order.
func (c *Catalog) IDs() []int {
	return append([]int(nil), c.ids...)
}

// Len returns the number of cataloged actions, joystick wedges counted singly.
func (c *Catalog) Len() int {
	return len(c.ids)
}

// Skipped returns the actions that failed to build.
func (c *Catalog) Skipped() []Skipped {
	return append([]Skipped(nil), c.skipped...)
}
