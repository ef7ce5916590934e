// Package live streams sampler ticks to websocket clients.
package live

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/frudas24/touchsampler/internal/sampler"
)

const (
	writeWait  = 5 * time.Second
	pingPeriod = 20 * time.Second
)

// Touch is one live contact in a tick message.
type Touch struct {
	Slot int    `json:"slot"`
	ID   uint32 `json:"id"`
	X    int32  `json:"x"`
	Y    int32  `json:"y"`
}

// Message is the JSON form of a tick.
type Message struct {
	Type    string    `json:"type"`
	Seq     uint64    `json:"seq"`
	Time    time.Time `json:"time"`
	Image   string    `json:"image"`
	Actions []int     `json:"actions"`
	Touches []Touch   `json:"touches"`
}

// FromTick converts a sampler tick; contacts without a position are left out.
func FromTick(t sampler.Tick) Message {
	msg := Message{
		Type:    "tick",
		Seq:     t.Seq,
		Time:    t.Time,
		Image:   t.ImagePath,
		Actions: t.Actions,
		Touches: []Touch{},
	}
	for slot, p := range t.Frame.Slots {
		if p == nil || !p.HasPos() {
			continue
		}
		msg.Touches = append(msg.Touches, Touch{Slot: slot, ID: p.TrackingID, X: p.X, Y: p.Y})
	}
	return msg
}

// Hub fans ticks out to connected clients. A slow client only ever holds
// the most recent message.
type Hub struct {
	mu       sync.Mutex
	upgrader websocket.Upgrader
	subs     map[chan []byte]struct{}
	log      logrus.FieldLogger
}

// NewHub returns an empty hub.
func NewHub(log logrus.FieldLogger) *Hub {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Hub{
		subs: make(map[chan []byte]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		log: log.WithField("component", "live"),
	}
}

// HandleTick publishes a tick; it is subscribed to sampler.TopicTick.
func (h *Hub) HandleTick(t sampler.Tick) {
	data, err := json.Marshal(FromTick(t))
	if err != nil {
		h.log.WithError(err).Error("live: marshal failed")
		return
	}
	h.Publish(data)
}

// Publish sends data to every client, replacing any unsent message.
func (h *Hub) Publish(data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- data:
		default:
		}
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// ServeHTTP upgrades the connection and streams ticks until it closes.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ch := h.subscribe()
	defer h.unsubscribe(ch)

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()
	for {
		select {
		case <-closed:
			return
		case <-r.Context().Done():
			return
		case data := <-ch:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// subscribe registers a client channel.
func (h *Hub) subscribe() chan []byte {
	ch := make(chan []byte, 1)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	h.log.Debug("live: client connected")
	return ch
}

// unsubscribe removes a client channel.
func (h *Hub) unsubscribe(ch chan []byte) {
	h.mu.Lock()
	delete(h.subs, ch)
	h.mu.Unlock()
	h.log.Debug("live: client disconnected")
}
