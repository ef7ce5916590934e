// Package testutil provides fakes shared by package tests.
package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/frudas24/touchsampler/internal/sampler"
)

// FakeSource replays scripted getevent lines, then waits for cancellation
// unless Err is set.
type FakeSource struct {
	mu    sync.Mutex
	Lines []string
	// Err ends Run right after the lines instead of blocking.
	Err   error
	fed   int
	ready chan struct{}
}

// NewFakeSource returns a source replaying lines.
func NewFakeSource(lines ...string) *FakeSource {
	return &FakeSource{Lines: lines, ready: make(chan struct{})}
}

// Run feeds every line to sink.
func (f *FakeSource) Run(ctx context.Context, sink func(string)) error {
	for _, line := range f.Lines {
		sink(line)
		f.mu.Lock()
		f.fed++
		f.mu.Unlock()
	}
	close(f.ready)
	if f.Err != nil {
		return f.Err
	}
	<-ctx.Done()
	return ctx.Err()
}

// Fed returns how many lines reached the sink.
func (f *FakeSource) Fed() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fed
}

// Ready is closed once every line was fed.
func (f *FakeSource) Ready() <-chan struct{} {
	return f.ready
}

// ManualFrames is a frame source advanced by the test.
type ManualFrames struct {
	ch  chan sampler.FrameRef
	seq uint64
}

// NewManualFrames returns an idle source.
func NewManualFrames() *ManualFrames {
	return &ManualFrames{ch: make(chan sampler.FrameRef)}
}

// Next waits for the next Emit.
func (m *ManualFrames) Next(ctx context.Context) (sampler.FrameRef, error) {
	select {
	case <-ctx.Done():
		return sampler.FrameRef{}, ctx.Err()
	case ref := <-m.ch:
		return ref, nil
	}
}

// Emit hands one frame to the sampler and blocks until it is taken.
func (m *ManualFrames) Emit(imagePath string) {
	m.seq++
	m.ch <- sampler.FrameRef{Seq: m.seq, Time: time.Unix(1700000000, 0).Add(time.Duration(m.seq) * time.Second), ImagePath: imagePath}
}
