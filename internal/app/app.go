// Package app wires the touch source, sampler, and debug consumers together.
package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/sirupsen/logrus"

	"github.com/frudas24/touchsampler/internal/action"
	"github.com/frudas24/touchsampler/internal/calib"
	"github.com/frudas24/touchsampler/internal/config"
	"github.com/frudas24/touchsampler/internal/live"
	"github.com/frudas24/touchsampler/internal/overlay"
	"github.com/frudas24/touchsampler/internal/sample"
	"github.com/frudas24/touchsampler/internal/sampler"
	"github.com/frudas24/touchsampler/internal/session"
	"github.com/frudas24/touchsampler/internal/touch"
)

// Option customizes an App.
type Option func(*App)

// WithOpener replaces the device opener.
func WithOpener(o Opener) Option {
	return func(a *App) { a.open = o }
}

// WithFrames replaces the ticker frame source.
func WithFrames(f sampler.FrameSource) Option {
	return func(a *App) { a.frames = f }
}

// WithSessionID fixes the session id.
func WithSessionID(id string) Option {
	return func(a *App) { a.sessionID = id }
}

// App coordinates the event source, the sampler, and its consumers.
type App struct {
	mu        sync.Mutex
	cfg       config.Config
	log       logrus.FieldLogger
	open      Opener
	frames    sampler.FrameSource
	ticker    *sampler.TickerFrames
	sessionID string

	session *session.Session
	bus     EventBus.Bus
	catalog *action.Catalog
	decoder *touch.Decoder
	sampler *sampler.Sampler
	hub     *live.Hub
	stream  *overlay.Stream
	writer  *sample.Writer

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates an application; nothing runs until Start.
func New(cfg config.Config, log logrus.FieldLogger, opts ...Option) *App {
	if log == nil {
		log = logrus.StandardLogger()
	}
	a := &App{
		cfg:  cfg,
		log:  log,
		open: OpenInput,
		hub:  live.NewHub(log),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.sessionID == "" {
		a.sessionID = sample.NewSessionID()
	}
	a.session = session.New(a.sessionID, time.Now().UTC())
	if cfg.Overlay.Enabled {
		a.stream = overlay.NewStream(time.Duration(cfg.Overlay.IntervalMs) * time.Millisecond)
	}
	return a
}

// Start loads the catalog, opens the device, and starts sampling.
func (a *App) Start(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cancel != nil {
		return errors.New("app: already started")
	}

	file, err := calib.LoadActions(a.cfg.ActionsPath)
	if err != nil {
		return err
	}
	cat, err := action.Build(file.Actions, action.Geometry{
		ScreenWidth:   a.cfg.ScreenActionWidth,
		ScreenHeight:  a.cfg.ScreenActionHeight,
		CaptureHeight: a.cfg.CaptureHeight,
	}, a.log.WithField("component", "catalog"))
	if err != nil {
		return err
	}
	a.catalog = cat
	a.session.SetRatio(cat.Ratio())

	logTimestamp := a.cfg.LogTimestamp
	if file.LogTimestamp != nil {
		logTimestamp = *file.LogTimestamp
	}
	writer, err := sample.Create(filepath.Join(a.cfg.DataDir, "samples"), a.sessionID, logTimestamp, a.log)
	if err != nil {
		return err
	}
	a.writer = writer
	a.session.SetSamplePath(writer.Path())

	in, err := a.open(ctx, a.cfg, a.log)
	if err != nil {
		_ = writer.Close()
		return fmt.Errorf("open touch device: %w", err)
	}
	capacity := in.Capacity
	if capacity <= 0 {
		capacity = a.cfg.MaxContacts
	}
	in.Device.Capacity = capacity
	a.session.SetDevice(in.Device)
	a.decoder = touch.NewDecoder(in.Protocol, capacity, touch.WithDevice(in.Device.Path))

	if err := a.wireBus(); err != nil {
		_ = writer.Close()
		return err
	}

	frames := a.frames
	if frames == nil {
		a.ticker = sampler.NewTickerFrames(a.cfg.FPS, filepath.Join(a.cfg.DataDir, "frames", a.sessionID))
		frames = a.ticker
	}
	a.sampler = sampler.New(a.decoder, frames, action.NewClassifier(cat), a.bus, a.log)

	runCtx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	a.wg.Add(2)
	go a.runSource(runCtx, in.Source)
	go a.runSampler(runCtx)

	a.log.WithFields(logrus.Fields{
		"session":  a.sessionID,
		"device":   in.Device.Path,
		"protocol": in.Protocol.String(),
		"capacity": capacity,
		"actions":  cat.Len(),
	}).Info("app: started")
	return nil
}

// wireBus subscribes every tick consumer.
func (a *App) wireBus() error {
	a.bus = EventBus.New()
	if err := a.bus.Subscribe(sampler.TopicTick, a.recordTick); err != nil {
		return err
	}
	if err := a.bus.Subscribe(sampler.TopicTick, a.writer.HandleTick); err != nil {
		return err
	}
	if err := a.bus.Subscribe(sampler.TopicTick, a.hub.HandleTick); err != nil {
		return err
	}
	if a.stream != nil {
		pub := overlay.NewPublisher(a.stream, a.catalog, a.cfg.CaptureWidth, a.cfg.CaptureHeight, a.cfg.Overlay.Quality, a.log)
		if err := a.bus.SubscribeAsync(sampler.TopicTick, pub.HandleTick, true); err != nil {
			return err
		}
	}
	return nil
}

// recordTick mirrors each tick into the session state.
func (a *App) recordTick(t sampler.Tick) {
	a.session.RecordTick(t.Actions, t.Frame.Live())
}

// runSource feeds the decoder from the event source.
func (a *App) runSource(ctx context.Context, src EventSource) {
	defer a.wg.Done()
	a.session.SetSource(session.SourceRunning, nil)
	err := src.Run(ctx, a.feed)
	switch {
	case err == nil, errors.Is(err, context.Canceled):
		a.session.SetSource(session.SourceStopped, nil)
		a.log.Info("app: touch source stopped")
	default:
		a.session.SetSource(session.SourceFailed, err)
		a.log.WithError(err).Error("app: touch source failed")
	}
}

// feed decodes one line; bad values are counted and dropped.
func (a *App) feed(line string) {
	if err := a.decoder.FeedLine(line); err != nil {
		a.session.RecordDecodeError()
		a.log.WithError(err).WithField("line", line).Debug("app: decode failed")
	}
}

// runSampler runs the sampling loop.
func (a *App) runSampler(ctx context.Context) {
	defer a.wg.Done()
	if err := a.sampler.Run(ctx); err != nil {
		a.log.WithError(err).Error("app: sampler stopped")
	}
}

// Stop cancels the source and sampler and flushes the sample file.
func (a *App) Stop() error {
	a.mu.Lock()
	cancel := a.cancel
	a.mu.Unlock()
	if cancel == nil {
		return nil
	}
	cancel()
	a.wg.Wait()

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.ticker != nil {
		a.ticker.Stop()
		a.ticker = nil
	}
	a.bus.WaitAsync()
	a.cancel = nil
	return a.writer.Close()
}

// Session returns the session state.
func (a *App) Session() *session.Session {
	return a.session
}

// Catalog returns the built catalog, or nil before Start.
func (a *App) Catalog() *action.Catalog {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.catalog
}

// Decoder returns the touch decoder, or nil before Start.
func (a *App) Decoder() *touch.Decoder {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.decoder
}
