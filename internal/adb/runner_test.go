package adb

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/frudas24/touchsampler/internal/logging"
	"github.com/frudas24/touchsampler/internal/touch"
)

// lineSink collects lines from the reader goroutine.
type lineSink struct {
	mu    sync.Mutex
	lines []string
}

// add records one line.
func (s *lineSink) add(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = append(s.lines, line)
}

// snapshot returns a copy of the lines.
func (s *lineSink) snapshot() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.lines...)
}

// waitDone waits for the runner to exit.
func waitDone(t *testing.T, r *Runner) {
	t.Helper()
	select {
	case <-r.Done():
	case <-time.After(10 * time.Second):
		t.Fatalf("runner did not exit")
	}
}

// TestRunner_StreamsLinesUntilEOF verifies stdout lines reach the sink and Done closes.
func TestRunner_StreamsLinesUntilEOF(t *testing.T) {
	t.Setenv(helperEnv, "ok")
	r := NewRunner(Options{ADBPath: os.Args[0]}, logging.Discard())
	sink := &lineSink{}
	if err := r.Start(context.Background(), sink.add); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	waitDone(t, r)
	if err := r.Err(); err != nil {
		t.Fatalf("unexpected exit error: %v", err)
	}
	lines := sink.snapshot()
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %q", lines)
	}

	d := touch.NewDecoder(touch.ProtocolB, 10, touch.WithDevice("/dev/input/event4"))
	for _, line := range lines {
		if err := d.FeedLine(line); err != nil {
			t.Fatalf("FeedLine(%q) failed: %v", line, err)
		}
	}
	if d.Snapshot().Live() != 1 {
		t.Fatalf("expected one live contact")
	}
}

// TestRunner_StopKillsProcess verifies Stop ends a blocked getevent.
func TestRunner_StopKillsProcess(t *testing.T) {
	t.Setenv(helperEnv, "hold")
	r := NewRunner(Options{ADBPath: os.Args[0]}, logging.Discard())
	if err := r.Start(context.Background(), func(string) {}); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := r.Start(context.Background(), func(string) {}); !errors.Is(err, ErrRunning) {
		t.Fatalf("expected ErrRunning, got %v", err)
	}
	if err := r.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	waitDone(t, r)
}

// TestRunner_ContextCancelStops verifies cancellation stops the process.
func TestRunner_ContextCancelStops(t *testing.T) {
	t.Setenv(helperEnv, "hold")
	ctx, cancel := context.WithCancel(context.Background())
	r := NewRunner(Options{ADBPath: os.Args[0]}, logging.Discard())
	if err := r.Start(ctx, func(string) {}); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	cancel()
	waitDone(t, r)
}

// TestRunner_RestartAfterExit verifies a finished runner can start again.
func TestRunner_RestartAfterExit(t *testing.T) {
	t.Setenv(helperEnv, "ok")
	r := NewRunner(Options{ADBPath: os.Args[0]}, logging.Discard())
	for i := 0; i < 2; i++ {
		if err := r.Start(context.Background(), func(string) {}); err != nil {
			t.Fatalf("Start %d failed: %v", i, err)
		}
		waitDone(t, r)
	}
}

// TestRunner_StartFailure verifies a missing binary is reported.
func TestRunner_StartFailure(t *testing.T) {
	r := NewRunner(Options{ADBPath: "/nonexistent/adb"}, logging.Discard())
	if err := r.Start(context.Background(), func(string) {}); err == nil {
		t.Fatalf("expected spawn error")
	}
}
