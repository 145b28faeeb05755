package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Randysweatpants/GambleBotAPI/internal/service"
)

// clientMsg is a control message from a websocket subscriber.
type clientMsg struct {
	Type  string `json:"type"`
	Sport string `json:"sport,omitempty"`
}

// ScanUpdate is the payload broadcast to subscribers when a scan completes.
type ScanUpdate struct {
	Sport     string                    `json:"sport"`
	Summary   string                    `json:"summary"`
	Parlays   []service.FormattedParlay `json:"parlays"`
	Generated string                    `json:"generated_at"`
}

// wsConn pairs a connection with a write lock. gorilla/websocket allows at
// most one concurrent writer per connection, and writes here come from any
// broadcasting goroutine plus the connection's own read loop (pong replies).
type wsConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *wsConn) writeMessage(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(messageType, data)
}

func (c *wsConn) writeJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(v)
}

// Hub manages websocket connections and per-sport subscriptions. Clients
// subscribe to sports they care about; "*" subscribes to everything.
type Hub struct {
	upgrader websocket.Upgrader
	mu       sync.RWMutex
	// sport -> set of connections
	subs map[string]map[*wsConn]struct{}
}

// NewHub creates a Hub with a custom origin policy.
func NewHub(allowOrigin func(r *http.Request) bool) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{CheckOrigin: allowOrigin},
		subs:     make(map[string]map[*wsConn]struct{}),
	}
}

// HandleWS manages the lifecycle of one websocket connection. Clients can
// subscribe and unsubscribe to sports and respond to pings.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	client := &wsConn{conn: conn}
	defer conn.Close()

	for {
		var msg clientMsg
		if err := conn.ReadJSON(&msg); err != nil {
			break
		}
		switch msg.Type {
		case "subscribe":
			h.mu.Lock()
			if _, ok := h.subs[msg.Sport]; !ok {
				h.subs[msg.Sport] = make(map[*wsConn]struct{})
			}
			h.subs[msg.Sport][client] = struct{}{}
			h.mu.Unlock()
		case "unsubscribe":
			h.mu.Lock()
			if m, ok := h.subs[msg.Sport]; ok {
				delete(m, client)
				if len(m) == 0 {
					delete(h.subs, msg.Sport)
				}
			}
			h.mu.Unlock()
		case "ping":
			_ = client.writeJSON(map[string]string{"type": "pong"})
		}
	}

	// Remove the connection from all subscriptions on disconnect
	h.mu.Lock()
	for _, set := range h.subs {
		delete(set, client)
	}
	h.mu.Unlock()
}

// Broadcast sends a scan update to every client subscribed to the sport
// or to all sports.
func (h *Hub) Broadcast(update ScanUpdate) {
	h.mu.RLock()
	conns := make(map[*wsConn]struct{}, len(h.subs[update.Sport]))
	for c := range h.subs[update.Sport] {
		conns[c] = struct{}{}
	}
	for c := range h.subs["*"] {
		conns[c] = struct{}{}
	}
	h.mu.RUnlock()
	if len(conns) == 0 {
		return
	}

	b, _ := json.Marshal(update)
	for c := range conns {
		_ = c.writeMessage(websocket.TextMessage, b)
	}
}

// BroadcastScan pushes a completed scan to subscribers. Satisfies
// service.ScanBroadcaster so background scans reach websocket clients the
// same way request-driven ones do.
func (h *Hub) BroadcastScan(result *service.ScanResult) {
	h.Broadcast(ScanUpdate{
		Sport:     result.Sport,
		Summary:   result.Summary,
		Parlays:   result.Formatted,
		Generated: result.GeneratedAt.Format(time.RFC3339),
	})
}

// SubscriberCount returns the number of active subscriptions for a sport.
func (h *Hub) SubscriberCount(sport string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[sport])
}
