package touch

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
)

// DefaultCapacity is used when the device does not report its contact count.
const DefaultCapacity = 10

var (
	// ErrBadValue reports an event value that is not valid hex.
	ErrBadValue = errors.New("touch: bad event value")
	// ErrSlotRange reports an ABS_MT_SLOT beyond the table capacity.
	ErrSlotRange = errors.New("touch: slot out of range")
)

// Protocol selects the multi-touch dialect of a device.
type Protocol int

const (
	// ProtocolA devices report anonymous contacts separated by SYN_MT_REPORT.
	ProtocolA Protocol = iota
	// ProtocolB devices address contacts through ABS_MT_SLOT.
	ProtocolB
)

// String returns "A" or "B".
func (p Protocol) String() string {
	if p == ProtocolB {
		return "B"
	}
	return "A"
}

// Event is one tokenized getevent line.
type Event struct {
	Device string
	Type   string
	Code   string
	Value  string
}

// ParseLine splits a `getevent -l` line into its four tokens.
// It reports false when the line does not have exactly four tokens.
func ParseLine(line string) (Event, bool) {
	fields := strings.Fields(line)
	if len(fields) != 4 {
		return Event{}, false
	}
	return Event{
		Device: strings.TrimSuffix(fields[0], ":"),
		Type:   fields[1],
		Code:   fields[2],
		Value:  fields[3],
	}, true
}

// dialect applies events to a private working table. A non-nil table
// return value is a fresh copy to publish.
type dialect interface {
	apply(ev Event) ([]*Point, error)
}

// Option configures a Decoder.
type Option func(*Decoder)

// WithDevice drops lines from any device other than dev.
func WithDevice(dev string) Option {
	return func(d *Decoder) {
		d.device = strings.TrimSuffix(strings.TrimSpace(dev), ":")
	}
}

// Decoder turns getevent lines into published slot tables.
//
// FeedLine is meant for a single producer goroutine; Snapshot may be
// called from any number of readers and always returns a complete frame.
type Decoder struct {
	mu        sync.Mutex
	protocol  Protocol
	capacity  int
	device    string
	dialect   dialect
	seq       uint64
	published atomic.Pointer[Frame]
}

// NewDecoder returns a decoder for the given dialect and slot capacity.
func NewDecoder(p Protocol, capacity int, opts ...Option) *Decoder {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	d := &Decoder{protocol: p, capacity: capacity}
	for _, opt := range opts {
		opt(d)
	}
	if p == ProtocolB {
		d.dialect = newTypeB(capacity)
	} else {
		d.dialect = newTypeA(capacity)
	}
	d.published.Store(&Frame{Slots: make([]*Point, capacity)})
	return d
}

// Protocol returns the dialect chosen at construction.
func (d *Decoder) Protocol() Protocol {
	return d.protocol
}

// Capacity returns the number of slots in every frame.
func (d *Decoder) Capacity() int {
	return d.capacity
}

// FeedLine decodes one line. Malformed lines are dropped silently; a
// value parse failure is returned and leaves all state untouched.
func (d *Decoder) FeedLine(line string) error {
	ev, ok := ParseLine(line)
	if !ok {
		return nil
	}
	return d.Feed(ev)
}

// Feed applies one already tokenized event.
func (d *Decoder) Feed(ev Event) error {
	if d.device != "" && ev.Device != d.device {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	table, err := d.dialect.apply(ev)
	if err != nil {
		return err
	}
	if table != nil {
		d.seq++
		d.published.Store(&Frame{Seq: d.seq, Slots: table})
	}
	return nil
}

// Snapshot returns the most recently published frame.
func (d *Decoder) Snapshot() Frame {
	return *d.published.Load()
}

// parseHex parses a getevent hex value.
func parseHex(ev Event) (uint32, error) {
	v, err := strconv.ParseUint(ev.Value, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q", ErrBadValue, ev.Code, ev.Value)
	}
	return uint32(v), nil
}
