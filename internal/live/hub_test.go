package live

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/frudas24/touchsampler/internal/logging"
	"github.com/frudas24/touchsampler/internal/sampler"
	"github.com/frudas24/touchsampler/internal/touch"
)

// waitClients polls until the hub has n clients.
func waitClients(t *testing.T, h *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for h.Clients() != n {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d clients, got %d", n, h.Clients())
		}
		time.Sleep(10 * time.Millisecond)
	}
}

// TestFromTick_SkipsEmptySlots verifies only positioned contacts are sent.
func TestFromTick_SkipsEmptySlots(t *testing.T) {
	msg := FromTick(sampler.Tick{
		Seq:     3,
		Actions: []int{1},
		Frame: touch.Frame{Slots: []*touch.Point{
			nil,
			{TrackingID: 9, X: 10, Y: 20, HasX: true, HasY: true},
			{TrackingID: 10, X: 5, HasX: true},
		}},
	})
	if len(msg.Touches) != 1 || msg.Touches[0] != (Touch{Slot: 1, ID: 9, X: 10, Y: 20}) {
		t.Fatalf("unexpected touches: %+v", msg.Touches)
	}
	if msg.Type != "tick" || msg.Seq != 3 {
		t.Fatalf("unexpected message: %+v", msg)
	}
}

// TestHub_DeliversTicks verifies a websocket client receives published ticks.
func TestHub_DeliversTicks(t *testing.T) {
	h := NewHub(logging.Discard())
	srv := httptest.NewServer(h)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()
	waitClients(t, h, 1)

	h.HandleTick(sampler.Tick{Seq: 7, ImagePath: "f.jpg", Actions: []int{2, 3}})

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if msg.Seq != 7 || msg.Image != "f.jpg" || len(msg.Actions) != 2 || msg.Actions[1] != 3 {
		t.Fatalf("unexpected message: %+v", msg)
	}
}

// TestHub_UnsubscribesOnClose verifies disconnects are cleaned up.
func TestHub_UnsubscribesOnClose(t *testing.T) {
	h := NewHub(logging.Discard())
	srv := httptest.NewServer(h)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	waitClients(t, h, 1)
	_ = conn.Close()
	waitClients(t, h, 0)
}

// TestPublish_LatestWins verifies a slow subscriber keeps only the newest message.
func TestPublish_LatestWins(t *testing.T) {
	h := NewHub(logging.Discard())
	ch := h.subscribe()
	defer h.unsubscribe(ch)
	h.Publish([]byte("a"))
	h.Publish([]byte("b"))
	if got := string(<-ch); got != "b" {
		t.Fatalf("expected latest message, got %q", got)
	}
	select {
	case extra := <-ch:
		t.Fatalf("unexpected queued message %q", extra)
	default:
	}
}
