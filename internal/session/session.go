// Package session holds runtime state for the active sampling session.
package session

import (
	"sync"
	"time"
)

// Source states.
const (
	SourceIdle    = "idle"
	SourceRunning = "running"
	SourceStopped = "stopped"
	SourceFailed  = "failed"
)

// Snapshot represents a read-only view of the current session state.
type Snapshot struct {
	ID          string    `json:"id"`
	StartedAt   time.Time `json:"started_at"`
	Device      string    `json:"device"`
	DeviceName  string    `json:"device_name"`
	Protocol    string    `json:"protocol"`
	Capacity    int       `json:"capacity"`
	Ratio       float64   `json:"ratio"`
	Source      string    `json:"source"`
	SourceError string    `json:"source_error,omitempty"`
	Ticks       uint64    `json:"ticks"`
	LastActions []int     `json:"last_actions"`
	LastTouches int       `json:"last_touches"`
	DecodeErrs  uint64    `json:"decode_errors"`
	SamplePath  string    `json:"sample_path,omitempty"`
}

// Device describes the touch device chosen at startup.
type Device struct {
	Path     string
	Name     string
	Protocol string
	Capacity int
}

// Session holds runtime state for the active sampling session.
type Session struct {
	mu          sync.RWMutex
	id          string
	startedAt   time.Time
	device      Device
	ratio       float64
	source      string
	sourceErr   string
	ticks       uint64
	lastActions []int
	lastTouches int
	decodeErrs  uint64
	samplePath  string
}

// New returns an idle session.
func New(id string, now time.Time) *Session {
	return &Session{id: id, startedAt: now, source: SourceIdle}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// SetDevice records the probed device.
func (s *Session) SetDevice(d Device) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.device = d
}

// SetRatio records the catalog scale.
func (s *Session) SetRatio(r float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ratio = r
}

// SetSamplePath records where rows are written.
func (s *Session) SetSamplePath(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.samplePath = path
}

// SetSource records the event source state; err is kept only for SourceFailed.
func (s *Session) SetSource(state string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.source = state
	s.sourceErr = ""
	if state == SourceFailed && err != nil {
		s.sourceErr = err.Error()
	}
}

// Source returns the event source state.
func (s *Session) Source() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.source
}

// RecordTick stores the outcome of one sampled frame.
func (s *Session) RecordTick(actions []int, touches int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ticks++
	s.lastActions = append(s.lastActions[:0], actions...)
	s.lastTouches = touches
}

// RecordDecodeError counts a line the decoder rejected.
func (s *Session) RecordDecodeError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.decodeErrs++
}

// Snapshot returns a copy of the current session state.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		ID:          s.id,
		StartedAt:   s.startedAt,
		Device:      s.device.Path,
		DeviceName:  s.device.Name,
		Protocol:    s.device.Protocol,
		Capacity:    s.device.Capacity,
		Ratio:       s.ratio,
		Source:      s.source,
		SourceError: s.sourceErr,
		Ticks:       s.ticks,
		LastActions: append([]int(nil), s.lastActions...),
		LastTouches: s.lastTouches,
		DecodeErrs:  s.decodeErrs,
		SamplePath:  s.samplePath,
	}
}
