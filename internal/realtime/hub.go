// Package realtime pushes detected alerts to connected dashboard
// clients over websockets.
package realtime

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/hmartin/gexsight/internal/alerts"
	"github.com/hmartin/gexsight/pkg/logger"
)

const (
	writeWait = 10 * time.Second
	pongWait  = 60 * time.Second
	// pingInterval must be shorter than pongWait or healthy clients
	// get dropped.
	pingInterval = 30 * time.Second

	// sendBufferSize is the per-client outbound queue. Clients that
	// fall further behind are disconnected.
	sendBufferSize = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// alertEvent is the wire format for pushed alerts.
type alertEvent struct {
	Type   string         `json:"type"`
	Alerts []alerts.Alert `json:"alerts"`
}

type client struct {
	conn *websocket.Conn
	send chan alertEvent
}

// Hub fans detected alerts out to every connected websocket client.
type Hub struct {
	log *logger.Logger

	mu      sync.RWMutex
	clients map[*client]struct{}
}

// NewHub creates an alert hub.
func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		log:     log,
		clients: make(map[*client]struct{}),
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// BroadcastAlerts sends alerts to all connected clients. Slow clients
// are dropped rather than blocking the scoring cycle.
func (h *Hub) BroadcastAlerts(as []alerts.Alert) {
	if len(as) == 0 {
		return
	}

	event := alertEvent{Type: "alerts", Alerts: as}

	h.mu.RLock()
	var stale []*client
	for c := range h.clients {
		select {
		case c.send <- event:
		default:
			stale = append(stale, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range stale {
		h.remove(c)
		if h.log != nil {
			h.log.Warn("Dropped slow websocket client")
		}
	}
}

// ServeWS upgrades an HTTP request to a websocket subscription.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		if h.log != nil {
			h.log.WithError(err).Warn("Websocket upgrade failed")
		}
		return
	}

	c := &client{conn: conn, send: make(chan alertEvent, sendBufferSize)}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	if h.log != nil {
		h.log.WithField("remote", r.RemoteAddr).Debug("Websocket client connected")
	}

	go h.writeLoop(c)
	go h.readLoop(c)
}

// writeLoop pushes queued events and keepalive pings to one client.
func (h *Hub) writeLoop(c *client) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case event, ok := <-c.send:
			if !ok {
				return
			}
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(event); err != nil {
				h.remove(c)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.remove(c)
				return
			}
		}
	}
}

// readLoop drains inbound frames to keep pong handling alive. Clients
// are not expected to send anything.
func (h *Hub) readLoop(c *client) {
	defer h.remove(c)

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
	c.conn.Close()
}
