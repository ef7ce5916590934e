package touch

// typeA keeps one scratch contact and a working table that is published
// and reset on every SYN_REPORT.
//
// Contacts are stored at trackingID % capacity, so a device that reuses
// IDs within one report can alias two contacts into the same slot.
type typeA struct {
	capacity int
	working  []*Point
	scratch  Point
	pending  bool
}

// newTypeA returns an empty Type A state.
func newTypeA(capacity int) *typeA {
	return &typeA{capacity: capacity, working: make([]*Point, capacity)}
}

// apply updates the scratch contact or commits/publishes the table.
func (a *typeA) apply(ev Event) ([]*Point, error) {
	switch ev.Code {
	case NameTrackingID:
		id, err := parseHex(ev)
		if err != nil {
			return nil, err
		}
		a.scratch = Point{TrackingID: id}
		a.pending = id != releasedID
	case NamePositionX:
		v, err := parseHex(ev)
		if err != nil {
			return nil, err
		}
		a.scratch.X, a.scratch.HasX = int32(v), true
		a.pending = true
	case NamePositionY:
		v, err := parseHex(ev)
		if err != nil {
			return nil, err
		}
		a.scratch.Y, a.scratch.HasY = int32(v), true
		a.pending = true
	case NameSynMT:
		if a.pending {
			p := a.scratch
			a.working[int(p.TrackingID%uint32(a.capacity))] = &p
		}
	case NameSynReport:
		out := a.working
		a.working = make([]*Point, a.capacity)
		a.scratch = Point{}
		a.pending = false
		return out, nil
	case NameBtnTouch:
		if ev.Value == ValueUp {
			a.scratch = Point{}
			a.pending = false
		}
	}
	return nil, nil
}
