package overlay

import (
	"fmt"
	"net/http"
	"sync"
	"time"
)

const boundary = "overlay"

// Stream broadcasts JPEG frames to HTTP clients as multipart/x-mixed-replace.
// Each client holds at most one pending frame.
type Stream struct {
	mu          sync.RWMutex
	subs        map[chan []byte]struct{}
	last        []byte
	minInterval time.Duration
	lastPush    time.Time
	now         func() time.Time
}

// NewStream returns a stream that publishes at most once per minInterval.
func NewStream(minInterval time.Duration) *Stream {
	return &Stream{
		subs:        make(map[chan []byte]struct{}),
		minInterval: minInterval,
		now:         time.Now,
	}
}

// Due reports whether a frame published now would be sent.
func (s *Stream) Due() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dueLocked(s.now())
}

// dueLocked applies the throttle.
func (s *Stream) dueLocked(now time.Time) bool {
	return s.minInterval <= 0 || now.Sub(s.lastPush) >= s.minInterval
}

// Publish sends jpg to every client unless throttled. It reports whether
// the frame was sent; a throttled frame is still kept for keepalives.
func (s *Stream) Publish(jpg []byte) bool {
	frame := append([]byte(nil), jpg...)
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = frame
	if !s.dueLocked(now) {
		return false
	}
	s.lastPush = now
	for ch := range s.subs {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- frame:
		default:
		}
	}
	return true
}

// Clients returns the number of connected viewers.
func (s *Stream) Clients() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subs)
}

// ServeHTTP streams frames until the client goes away.
func (s *Stream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	fl, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary="+boundary)
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Pragma", "no-cache")

	ch := s.subscribe()
	defer s.unsubscribe(ch)

	keep := time.NewTicker(time.Second)
	defer keep.Stop()
	for {
		var jpg []byte
		select {
		case <-r.Context().Done():
			return
		case jpg = <-ch:
		case <-keep.C:
			s.mu.RLock()
			jpg = s.last
			s.mu.RUnlock()
		}
		if len(jpg) == 0 {
			continue
		}
		if err := writePart(w, jpg); err != nil {
			return
		}
		fl.Flush()
	}
}

// subscribe registers a client and primes it with the last frame.
func (s *Stream) subscribe() chan []byte {
	ch := make(chan []byte, 1)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs[ch] = struct{}{}
	if len(s.last) > 0 {
		ch <- s.last
	}
	return ch
}

// unsubscribe removes a client.
func (s *Stream) unsubscribe(ch chan []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, ch)
}

// writePart writes one multipart JPEG part.
func writePart(w http.ResponseWriter, jpg []byte) error {
	if _, err := fmt.Fprintf(w, "\r\n--%s\r\nContent-Type: image/jpeg\r\nContent-Length: %d\r\n\r\n", boundary, len(jpg)); err != nil {
		return err
	}
	_, err := w.Write(jpg)
	return err
}
