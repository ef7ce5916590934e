package app

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/frudas24/touchsampler/internal/adb"
	"github.com/frudas24/touchsampler/internal/config"
	"github.com/frudas24/touchsampler/internal/localinput"
	"github.com/frudas24/touchsampler/internal/session"
	"github.com/frudas24/touchsampler/internal/touch"
)

// EventSource feeds getevent lines to sink until ctx ends or the stream closes.
type EventSource interface {
	Run(ctx context.Context, sink func(line string)) error
}

// Input is a resolved touch device and the source streaming it.
type Input struct {
	Device   session.Device
	Protocol touch.Protocol
	// Capacity is the slot count; 0 falls back to max_contacts.
	Capacity int
	Source   EventSource
}

// Opener resolves the configured device. Failures here are user visible.
type Opener func(ctx context.Context, cfg config.Config, log logrus.FieldLogger) (Input, error)

// OpenInput selects adb or the local evdev node from cfg.Source.
func OpenInput(ctx context.Context, cfg config.Config, log logrus.FieldLogger) (Input, error) {
	if cfg.Source == config.SourceLocal {
		return openLocal(cfg, log)
	}
	return openADB(ctx, cfg, log)
}

// openADB probes the device over adb and prepares a getevent runner.
func openADB(ctx context.Context, cfg config.Config, log logrus.FieldLogger) (Input, error) {
	opts := adb.Options{ADBPath: cfg.ADBPath, Serial: cfg.Serial}
	res, err := adb.Probe(ctx, opts, cfg.Device)
	if err != nil {
		return Input{}, err
	}
	return Input{
		Device: session.Device{
			Path:     res.Device,
			Name:     res.Name,
			Protocol: res.Protocol.String(),
			Capacity: res.Capacity,
		},
		Protocol: res.Protocol,
		Capacity: res.Capacity,
		Source:   &adbSource{runner: adb.NewRunner(opts, log)},
	}, nil
}

// openLocal opens the evdev node directly.
func openLocal(cfg config.Config, log logrus.FieldLogger) (Input, error) {
	src, err := localinput.Open(cfg.Device, log)
	if err != nil {
		return Input{}, err
	}
	p := src.Protocol()
	return Input{
		Device:   session.Device{Path: cfg.Device, Name: src.Name(), Protocol: p.String()},
		Protocol: p,
		Source:   &localSource{src: src},
	}, nil
}

// adbSource runs the getevent subprocess until it exits or ctx ends.
type adbSource struct {
	runner *adb.Runner
}

// Run implements EventSource.
func (s *adbSource) Run(ctx context.Context, sink func(string)) error {
	if err := s.runner.Start(ctx, sink); err != nil {
		return err
	}
	select {
	case <-ctx.Done():
		_ = s.runner.Stop()
		return ctx.Err()
	case <-s.runner.Done():
		return s.runner.Err()
	}
}

// localSource closes the node when streaming ends.
type localSource struct {
	src *localinput.Source
}

// Run implements EventSource.
func (s *localSource) Run(ctx context.Context, sink func(string)) error {
	defer func() { _ = s.src.Close() }()
	return s.src.Run(ctx, sink)
}
