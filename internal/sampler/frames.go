package sampler

import (
	"context"
	"fmt"
	"path/filepath"
	"time"
)

// FrameRef names one captured video frame.
type FrameRef struct {
	Seq       uint64
	Time      time.Time
	ImagePath string
}

// FrameSource yields frames at the capture rate. Capture itself happens
// elsewhere; the sampler only needs the frame's identity.
type FrameSource interface {
	Next(ctx context.Context) (FrameRef, error)
}

// TickerFrames paces frames with a ticker and names them under a directory.
type TickerFrames struct {
	dir    string
	ticker *time.Ticker
	seq    uint64
}

// NewTickerFrames returns a source producing fps frames per second.
func NewTickerFrames(fps int, dir string) *TickerFrames {
	if fps <= 0 {
		fps = 1
	}
	return &TickerFrames{
		dir:    dir,
		ticker: time.NewTicker(time.Second / time.Duration(fps)),
	}
}

// Next blocks until the next tick.
func (f *TickerFrames) Next(ctx context.Context) (FrameRef, error) {
	select {
	case <-ctx.Done():
		return FrameRef{}, ctx.Err()
	case now := <-f.ticker.C:
		f.seq++
		return FrameRef{
			Seq:       f.seq,
			Time:      now,
			ImagePath: filepath.Join(f.dir, fmt.Sprintf("frame_%06d.jpg", f.seq)),
		}, nil
	}
}

// Stop releases the ticker.
func (f *TickerFrames) Stop() {
	f.ticker.Stop()
}
