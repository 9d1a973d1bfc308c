// Package live pushes order events to connected admin dashboards over
// WebSocket, so new orders appear without polling.
//
//	// route file:
//	router.Get("/admin/orders/live", "admin.orders.live", func(w http.ResponseWriter, r *http.Request) {
//	    live.Upgrade(w, r, live.Orders)
//	})
//
//	// after an order commits:
//	live.Orders.BroadcastJSON(event)
package live

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ganzorig/mishil/pkg/logger"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// Orders is the shared hub for the admin order feed. Started by the server
// boot sequence.
var Orders = NewHub()

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The route behind this is already gated by admin auth middleware.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// OrderEvent is the message pushed to dashboards when an order is placed or
// its status changes.
type OrderEvent struct {
	Type      string    `json:"type"` // "order.created" | "order.status"
	OrderID   string    `json:"orderId"`
	OrderCode string    `json:"orderCode"`
	Total     int64     `json:"total"`
	Status    string    `json:"status"`
	At        time.Time `json:"at"`
}

// ─── Client ──────────────────────────────────────────────────────────────────

type client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// readPump discards inbound frames; the feed is one-way. It exists to notice
// disconnects and answer pings.
func (c *client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("live: unexpected close", "error", err)
			}
			return
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ─── Hub ─────────────────────────────────────────────────────────────────────

// Hub maintains the set of connected dashboards and fans events out to them.
type Hub struct {
	clients    map[*client]bool
	broadcast  chan []byte
	register   chan *client
	unregister chan *client
}

// NewHub creates a hub. Call hub.Run() in a goroutine at startup.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*client]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *client),
		unregister: make(chan *client),
	}
}

// Run starts the hub event loop. Must run in its own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.clients[c] = true
			logger.Info("live: dashboard connected", "total", len(h.clients))

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
				logger.Info("live: dashboard disconnected", "total", len(h.clients))
			}

		case msg := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					close(c.send)
					delete(h.clients, c)
				}
			}
		}
	}
}

// Broadcast queues raw bytes for every connected dashboard. Never blocks;
// a full hub buffer drops the event.
func (h *Hub) Broadcast(msg []byte) {
	select {
	case h.broadcast <- msg:
	default:
	}
}

// BroadcastJSON marshals v and broadcasts it.
func (h *Hub) BroadcastJSON(v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		logger.Error("live: marshal event", "error", err)
		return
	}
	h.Broadcast(data)
}

// Upgrade upgrades an HTTP connection to a WebSocket and registers the
// resulting client with the hub.
func Upgrade(w http.ResponseWriter, r *http.Request, hub *Hub) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("live: upgrade failed", "error", err)
		return
	}
	c := &client{hub: hub, conn: conn, send: make(chan []byte, 256)}
	hub.register <- c
	go c.writePump()
	go c.readPump()
}
