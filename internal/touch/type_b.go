package touch

import "fmt"

// typeB mirrors the kernel slot table. Every mutation is published
// immediately, without waiting for SYN_REPORT.
type typeB struct {
	slots   []*Point
	current int
}

// newTypeB returns an empty Type B state with slot 0 selected.
func newTypeB(capacity int) *typeB {
	return &typeB{slots: make([]*Point, capacity)}
}

// apply mutates the selected slot.
func (b *typeB) apply(ev Event) ([]*Point, error) {
	switch ev.Code {
	case NameSlot:
		v, err := parseHex(ev)
		if err != nil {
			return nil, err
		}
		if int64(v) >= int64(len(b.slots)) {
			return nil, fmt.Errorf("%w: %d >= %d", ErrSlotRange, v, len(b.slots))
		}
		b.current = int(v)
		return nil, nil
	case NameTrackingID:
		id, err := parseHex(ev)
		if err != nil {
			return nil, err
		}
		if id == releasedID {
			b.slots[b.current] = nil
		} else {
			b.slots[b.current] = &Point{TrackingID: id}
		}
	case NamePositionX, NamePositionY:
		v, err := parseHex(ev)
		if err != nil {
			return nil, err
		}
		p := b.slots[b.current]
		if p == nil {
			return nil, nil
		}
		if ev.Code == NamePositionX {
			p.X, p.HasX = int32(v), true
		} else {
			p.Y, p.HasY = int32(v), true
		}
	case NameBtnTouch:
		if ev.Value != ValueUp {
			return nil, nil
		}
		b.slots[b.current] = nil
	default:
		return nil, nil
	}
	return cloneSlots(b.slots), nil
}
