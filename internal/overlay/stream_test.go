package overlay

import (
	"bytes"
	"context"
	"net/http"
	"sync"
	"testing"
	"time"
)

// syncRecorder is an http.ResponseWriter + http.Flusher safe across goroutines.
type syncRecorder struct {
	mu     sync.Mutex
	header http.Header
	buf    bytes.Buffer
}

// Header returns the response headers.
func (r *syncRecorder) Header() http.Header {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.header == nil {
		r.header = make(http.Header)
	}
	return r.header
}

// Write appends to the body.
func (r *syncRecorder) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.buf.Write(p)
}

// WriteHeader is ignored.
func (r *syncRecorder) WriteHeader(int) {}

// Flush implements http.Flusher.
func (r *syncRecorder) Flush() {}

// body returns a copy of the body.
func (r *syncRecorder) body() []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]byte(nil), r.buf.Bytes()...)
}

// fakeClock is a settable time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

// Now returns the current fake time.
func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// TestStream_ServesLastFrame verifies a new viewer gets the last frame as a multipart part.
func TestStream_ServesLastFrame(t *testing.T) {
	s := NewStream(0)
	jpg := []byte{0xff, 0xd8, 0x01, 0x02, 0xff, 0xd9}
	s.Publish(jpg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://example/mjpeg/overlay", nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	rec := &syncRecorder{}
	done := make(chan struct{})
	go func() {
		s.ServeHTTP(rec, req)
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for !bytes.Contains(rec.body(), jpg) {
		if time.Now().After(deadline) {
			cancel()
			<-done
			t.Fatalf("timed out waiting for frame, body=%q", rec.body())
		}
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	<-done

	if ct := rec.Header().Get("Content-Type"); ct != "multipart/x-mixed-replace; boundary="+boundary {
		t.Fatalf("unexpected content-type %q", ct)
	}
	if !bytes.Contains(rec.body(), []byte("Content-Length: 6")) {
		t.Fatalf("expected content length, body=%q", rec.body())
	}
}

// TestStream_Throttle verifies publishes inside the interval are held back.
func TestStream_Throttle(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	s := NewStream(100 * time.Millisecond)
	s.now = clock.Now
	ch := s.subscribe()
	defer s.unsubscribe(ch)

	if !s.Publish([]byte("a")) {
		t.Fatalf("expected first publish to send")
	}
	<-ch
	clock.Advance(50 * time.Millisecond)
	if s.Due() || s.Publish([]byte("b")) {
		t.Fatalf("expected throttled publish")
	}
	select {
	case got := <-ch:
		t.Fatalf("unexpected frame %q", got)
	default:
	}
	clock.Advance(50 * time.Millisecond)
	if !s.Due() || !s.Publish([]byte("c")) {
		t.Fatalf("expected publish after interval")
	}
	if got := string(<-ch); got != "c" {
		t.Fatalf("expected c, got %q", got)
	}
}

// TestStream_ConcurrentChurn exercises publish and subscribe together.
func TestStream_ConcurrentChurn(t *testing.T) {
	s := NewStream(0)
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				s.Publish([]byte{byte(j)})
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				ch := s.subscribe()
				select {
				case <-ch:
				default:
				}
				s.unsubscribe(ch)
			}
		}()
	}
	wg.Wait()
	if s.Clients() != 0 {
		t.Fatalf("expected no clients, got %d", s.Clients())
	}
}
