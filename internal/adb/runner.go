package adb

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// stopTimeout bounds the wait for the reader after the process is killed.
const stopTimeout = 2 * time.Second

// ErrRunning reports a Start on a runner that is already streaming.
var ErrRunning = errors.New("adb: getevent already running")

// Runner manages the `getevent -l` process lifecycle.
type Runner struct {
	mu     sync.Mutex
	opts   Options
	log    logrus.FieldLogger
	cmd    *exec.Cmd
	waitCh chan error
	done   chan struct{}
	err    error
}

// NewRunner returns a runner for the given adb target.
func NewRunner(opts Options, log logrus.FieldLogger) *Runner {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Runner{opts: opts, log: log.WithField("component", "adb")}
}

// Start spawns `adb shell getevent -l` and calls sink for every stdout line
// from a single reader goroutine. The process is stopped when ctx ends.
func (r *Runner) Start(ctx context.Context, sink func(line string)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cmd != nil {
		return ErrRunning
	}

	cmd := exec.Command(adbPath(r.opts), shellArgs(r.opts, "getevent", "-l")...)
	configureCmd(cmd)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return err
	}
	r.log.WithField("args", cmd.Args).Info("adb: getevent started")

	waitCh := make(chan error, 1)
	done := make(chan struct{})
	r.cmd = cmd
	r.waitCh = waitCh
	r.done = done
	r.err = nil

	var readers sync.WaitGroup
	readers.Add(2)
	go func() {
		defer readers.Done()
		r.readLines(stdout, sink)
	}()
	go func() {
		defer readers.Done()
		r.readLines(stderr, func(line string) {
			r.log.WithField("line", line).Warn("adb: stderr")
		})
	}()
	go func() {
		readers.Wait()
		err := cmd.Wait()
		r.mu.Lock()
		r.err = err
		if r.cmd == cmd {
			r.cmd = nil
			r.waitCh = nil
		}
		r.mu.Unlock()
		waitCh <- err
		close(done)
		r.log.WithError(err).Info("adb: getevent exited")
	}()
	go func() {
		select {
		case <-ctx.Done():
			_ = r.Stop()
		case <-done:
		}
	}()
	return nil
}

// readLines scans src until EOF.
func (r *Runner) readLines(src io.Reader, sink func(string)) {
	sc := bufio.NewScanner(src)
	for sc.Scan() {
		sink(sc.Text())
	}
	if err := sc.Err(); err != nil && !errors.Is(err, os.ErrClosed) {
		r.log.WithError(err).Debug("adb: read failed")
	}
}

// Stop kills the process and waits, bounded, for the reader to finish.
func (r *Runner) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stopLocked()
}

// stopLocked stops the current process without acquiring the lock.
func (r *Runner) stopLocked() error {
	if r.cmd == nil || r.cmd.Process == nil {
		return nil
	}
	if err := r.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return err
	}
	waitCh := r.waitCh
	r.cmd = nil
	r.waitCh = nil
	// The exit goroutine takes the lock to record the error.
	r.mu.Unlock()
	exited, _ := waitForExit(waitCh, stopTimeout)
	r.mu.Lock()
	if !exited {
		r.log.Warn("adb: reader did not finish before timeout")
	}
	return nil
}

// Done is closed when the current process exits. It is nil before Start.
func (r *Runner) Done() <-chan struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.done
}

// Err returns the exit status of the last process once Done is closed.
func (r *Runner) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// waitForExit waits for a process to exit or times out.
func waitForExit(waitCh <-chan error, timeout time.Duration) (bool, error) {
	select {
	case err := <-waitCh:
		return true, err
	case <-time.After(timeout):
		return false, nil
	}
}
