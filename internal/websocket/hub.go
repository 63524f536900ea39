// Package websocket pushes live sale, approval and stock events to signed-in tabs.
package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/Daveman-1/BookstoreFrontEnd/internal/metrics"
	"github.com/Daveman-1/BookstoreFrontEnd/internal/model"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Event types
const (
	EventSaleCompleted     = "sale.completed"
	EventApprovalSubmitted = "approval.submitted"
	EventApprovalUpdated   = "approval.updated"
	EventStockLow          = "stock.low"
	EventInventoryChanged  = "inventory.changed"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 256
)

// Event is the JSON frame sent to tabs
type Event struct {
	Type string    `json:"type"`
	Data any       `json:"data"`
	At   time.Time `json:"at"`

	// Permission limits delivery to users holding it; empty means everyone
	Permission string `json:"-"`
}

type frame struct {
	permission string
	payload    []byte
}

// Client is one connected tab
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	user model.User
}

func (c *Client) allowed(permission string) bool {
	return permission == "" || c.user.IsAdmin() || slices.Contains(c.user.Permissions, permission)
}

// Hub maintains the set of active clients and fans events out to them
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan frame
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.RWMutex

	upgrader websocket.Upgrader
	log      *zap.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
}

// NewHub builds a hub; allowedOrigins empty accepts any origin
func NewHub(log *zap.Logger, m *metrics.Metrics, allowedOrigins []string) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	h := &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan frame, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		log:        log,
		metrics:    m,
		now:        time.Now,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return len(allowedOrigins) == 0 || origin == "" || slices.Contains(allowedOrigins, origin)
		},
	}
	return h
}

// Run dispatches registrations and events until ctx is cancelled. It must be
// called once; afterwards the hub refuses new clients.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			h.mu.Unlock()
			close(h.done)
			return
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.metrics.SocketOpened()
			h.log.Debug("websocket client connected", zap.String("user", client.user.Username))
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				h.metrics.SocketClosed()
				h.log.Debug("websocket client disconnected", zap.String("user", client.user.Username))
			}
			h.mu.Unlock()
		case f := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				if !client.allowed(f.permission) {
					continue
				}
				select {
				case client.send <- f.payload:
				default:
					close(client.send)
					delete(h.clients, client)
					h.metrics.SocketClosed()
				}
			}
			h.mu.Unlock()
		}
	}
}

// Publish queues an event for every permitted client. It never blocks; events
// are dropped when the queue is full.
func (h *Hub) Publish(ev Event) {
	if h == nil {
		return
	}
	if ev.At.IsZero() {
		ev.At = h.now()
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		h.log.Error("marshal websocket event", zap.String("type", ev.Type), zap.Error(err))
		return
	}
	select {
	case h.broadcast <- frame{permission: ev.Permission, payload: payload}:
	default:
		h.log.Warn("websocket queue full, dropping event", zap.String("type", ev.Type))
	}
}

// ClientCount is the number of registered tabs
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// writePump handles writing messages from the Hub to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump keeps the connection alive; tabs never send anything meaningful
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Info("websocket read error", zap.Error(err))
			}
			return
		}
	}
}

// ServeWs upgrades an already-authenticated request
func (h *Hub) ServeWs(c *gin.Context, user model.User) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	client := &Client{hub: h, conn: conn, send: make(chan []byte, sendBuffer), user: user}
	select {
	case h.register <- client:
	case <-h.done:
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"))
		_ = conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}
