// Package sampler runs the per-frame classification loop.
package sampler

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/sirupsen/logrus"

	"github.com/frudas24/touchsampler/internal/action"
	"github.com/frudas24/touchsampler/internal/touch"
)

// TopicTick carries a Tick to every subscriber.
const TopicTick = "sample:tick"

// Snapshotter exposes the latest published touch frame.
type Snapshotter interface {
	Snapshot() touch.Frame
}

// Tick is the classification result for one frame.
type Tick struct {
	Seq       uint64
	Time      time.Time
	ImagePath string
	Frame     touch.Frame
	Actions   []int
}

// Sampler polls the decoder once per frame. Bursts of touch events between
// two frames collapse to the latest published snapshot.
type Sampler struct {
	touches Snapshotter
	frames  FrameSource
	cls     *action.Classifier
	bus     EventBus.Bus
	log     logrus.FieldLogger
	ticks   atomic.Uint64
}

// New returns a sampler publishing on bus.
func New(touches Snapshotter, frames FrameSource, cls *action.Classifier, bus EventBus.Bus, log logrus.FieldLogger) *Sampler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Sampler{
		touches: touches,
		frames:  frames,
		cls:     cls,
		bus:     bus,
		log:     log.WithField("component", "sampler"),
	}
}

// Run samples until ctx ends or the frame source fails. Cancellation is
// not an error.
func (s *Sampler) Run(ctx context.Context) error {
	s.log.Info("sampler: started")
	defer s.log.WithField("ticks", s.Ticks()).Info("sampler: stopped")
	for {
		ref, err := s.frames.Next(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return err
		}
		s.Step(ref)
	}
}

// Step classifies the current snapshot for one frame and publishes it.
func (s *Sampler) Step(ref FrameRef) Tick {
	frame := s.touches.Snapshot()
	tick := Tick{
		Seq:       ref.Seq,
		Time:      ref.Time,
		ImagePath: ref.ImagePath,
		Frame:     frame,
		Actions:   s.cls.Classify(frame),
	}
	s.ticks.Add(1)
	s.log.WithFields(logrus.Fields{
		"seq":     tick.Seq,
		"touches": frame.Live(),
		"actions": tick.Actions,
	}).Debug("sampler: tick")
	if s.bus != nil {
		s.bus.Publish(TopicTick, tick)
	}
	return tick
}

// Ticks returns the number of frames sampled so far.
func (s *Sampler) Ticks() uint64 {
	return s.ticks.Load()
}
