//go:build linux

package localinput

import (
	"context"
	"fmt"
	"os"

	"github.com/kenshaw/evdev"
	"github.com/sirupsen/logrus"

	"github.com/frudas24/touchsampler/internal/touch"
)

// Source streams one evdev node as getevent lines.
type Source struct {
	path string
	dev  *evdev.Evdev
	log  logrus.FieldLogger
}

// Open opens the node at path, e.g. /dev/input/event4.
func Open(path string, log logrus.FieldLogger) (*Source, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	fd, err := os.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("localinput: open %s: %w", path, err)
	}
	return &Source{
		path: path,
		dev:  evdev.Open(fd),
		log:  log.WithFields(logrus.Fields{"component": "localinput", "device": path}),
	}, nil
}

// Name returns the kernel device name.
func (s *Source) Name() string {
	return s.dev.Name()
}

// Protocol reports Type B when the device exposes ABS_MT_SLOT.
func (s *Source) Protocol() touch.Protocol {
	if _, ok := s.dev.AbsoluteTypes()[evdev.AbsoluteMTSlot]; ok {
		return touch.ProtocolB
	}
	return touch.ProtocolA
}

// Run grabs the device and feeds sink until ctx ends or the device goes away.
func (s *Source) Run(ctx context.Context, sink func(line string)) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := s.dev.Lock(); err != nil {
		s.log.WithError(err).Warn("localinput: grab failed, reading shared")
	} else {
		defer func() { _ = s.dev.Unlock() }()
	}

	events := make(chan rawEvent, 64)
	go func() {
		defer close(events)
		for env := range s.dev.Poll(ctx) {
			if env == nil {
				return
			}
			select {
			case events <- rawEvent{Type: uint16(env.Event.Type), Code: env.Event.Code, Value: env.Event.Value}:
			case <-ctx.Done():
				return
			}
		}
	}()
	s.log.WithField("name", s.Name()).Info("localinput: streaming")
	return pump(ctx, s.path, events, sink)
}

// Close releases the node.
func (s *Source) Close() error {
	return s.dev.Close()
}
