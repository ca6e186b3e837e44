package ws

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/jhifarskiy/eatune/internal/models"
)

var subscribersGauge = prometheus.NewGauge(
	prometheus.GaugeOpts{Name: "jukebox_ws_subscribers", Help: "Open subscriber connections"},
)

func init() {
	prometheus.MustRegister(subscribersGauge)
}

const writeTimeout = 5 * time.Second

// Hub is the per-venue fanout registry. Every queue mutation pushes one
// snapshot to all open subscribers of that venue; progress ticks and
// player controls are relayed between subscribers without being stored.
type Hub struct {
	mu     sync.Mutex
	venues map[string]map[*Conn]struct{}
}

func NewHub() *Hub {
	return &Hub{venues: make(map[string]map[*Conn]struct{})}
}

// Register adds a subscriber connection to a venue's set.
func (h *Hub) Register(venueID string, c *Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.venues[venueID] == nil {
		h.venues[venueID] = make(map[*Conn]struct{})
	}
	h.venues[venueID][c] = struct{}{}
	subscribersGauge.Inc()
	slog.Info("subscriber connected", "venue", venueID, "conn", c.id)
}

// Unregister drops a subscriber. Safe to call twice; pruning after a
// write error and the read-pump close path can race.
func (h *Hub) Unregister(venueID string, c *Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	conns, ok := h.venues[venueID]
	if !ok {
		return
	}
	if _, present := conns[c]; !present {
		return
	}
	delete(conns, c)
	if len(conns) == 0 {
		delete(h.venues, venueID)
	}
	subscribersGauge.Dec()
	slog.Info("subscriber disconnected", "venue", venueID, "conn", c.id)
}

// QueueUpdated implements jukebox.Notifier.
func (h *Hub) QueueUpdated(venueID string, queue []models.QueueEntry) {
	h.broadcast(venueID, map[string]any{
		"type":  "queue_update",
		"queue": queue,
	})
}

// ForwardProgress relays a playhead tick from one subscriber to every
// subscriber of the venue. Best effort: ticks are not persisted and a
// later tick simply supersedes an earlier one on the consumer side.
func (h *Hub) ForwardProgress(venueID string, currentTime float64) {
	h.broadcast(venueID, map[string]any{
		"type":        "current_track_progress",
		"currentTime": currentTime,
	})
}

// PlayerControl tells every display in the venue to play or pause.
func (h *Hub) PlayerControl(venueID, action string) {
	h.broadcast(venueID, map[string]any{
		"type":   "player_control",
		"action": action,
	})
}

// broadcast serializes once and writes to every open connection.
// Connections that fail the write are closed and pruned, never retried.
func (h *Hub) broadcast(venueID string, msg any) {
	payload, err := json.Marshal(msg)
	if err != nil {
		slog.Error("broadcast marshal failed", "venue", venueID, "error", err)
		return
	}

	h.mu.Lock()
	conns := make([]*Conn, 0, len(h.venues[venueID]))
	for c := range h.venues[venueID] {
		conns = append(conns, c)
	}
	h.mu.Unlock()

	for _, c := range conns {
		if err := c.write(payload); err != nil {
			slog.Warn("dropping dead subscriber", "venue", venueID, "conn", c.id, "error", err)
			c.Close()
			h.Unregister(venueID, c)
		}
	}
}

// Conn wraps a websocket connection with a write lock, since broadcasts
// and the initial snapshot can come from different goroutines.
type Conn struct {
	id string
	ws *websocket.Conn
	mu sync.Mutex
}

func NewConn(id string, ws *websocket.Conn) *Conn {
	return &Conn{id: id, ws: ws}
}

func (c *Conn) ID() string { return c.id }

func (c *Conn) write(payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.ws.WriteMessage(websocket.TextMessage, payload)
}

func (c *Conn) Close() error {
	return c.ws.Close()
}
