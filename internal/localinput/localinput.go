// Package localinput reads a touch device node directly when the sampler
// runs on the device itself.
package localinput

import (
	"context"
	"errors"

	"github.com/frudas24/touchsampler/internal/touch"
)

// ErrUnsupported reports a platform without evdev.
var ErrUnsupported = errors.New("localinput: evdev is only available on linux")

// ErrDeviceGone reports that the node stopped delivering events.
var ErrDeviceGone = errors.New("localinput: device removed")

// rawEvent is one kernel input event.
type rawEvent struct {
	Type  uint16
	Code  uint16
	Value int32
}

// pump renders events as getevent lines until ctx ends or events closes.
func pump(ctx context.Context, device string, events <-chan rawEvent, sink func(string)) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return ErrDeviceGone
			}
			sink(touch.FormatEvent(device, ev.Type, ev.Code, ev.Value))
		}
	}
}
