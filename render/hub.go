package render

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/planograph/planograph/graph"
)

// WebSocket timeout constants following Gorilla best practices
// See: https://github.com/gorilla/websocket/blob/master/examples/chat/client.go
const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = 54 * time.Second

	// Maximum message size allowed from peer
	maxMessageSize = 512 * 1024

	// How often the hub checks the store for a new version
	pollInterval = 250 * time.Millisecond
)

// Source is the hub's read-only view of the graph being rendered. The
// store satisfies it directly; embeddings whose store is written from
// other goroutines pass a view that takes their read lock.
type Source interface {
	Version() int64
	Snapshot() graph.Document
}

// Hub bridges the graph store to websocket rendering clients. It is
// pull-based toward the store (poll the version counter, broadcast a
// data-update snapshot when it moved) and push-based toward the caller
// (inbound client messages surface on Events). Clients read snapshots
// freely; every mutation still has to go through the store's API.
type Hub struct {
	store   Source
	logger  *zap.SugaredLogger
	limiter *rate.Limiter

	mu          sync.RWMutex
	clients     map[*client]struct{}
	lastVersion int64

	events   chan Event
	upgrader websocket.Upgrader
}

type client struct {
	conn    *websocket.Conn
	sendMsg chan []byte
}

// NewHub creates a hub over the given source. Broadcasts are rate-limited
// so rapid mutation bursts collapse into fewer snapshot pushes.
func NewHub(store Source, logger *zap.SugaredLogger) *Hub {
	return &Hub{
		store:   store,
		logger:  logger.Named("render.hub"),
		limiter: rate.NewLimiter(rate.Every(200*time.Millisecond), 1),
		clients: make(map[*client]struct{}),
		events:  make(chan Event, 64),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Events returns the push-based channel of input events reported by
// connected rendering clients.
func (h *Hub) Events() <-chan Event {
	return h.events
}

// Run polls the store version and broadcasts data-update snapshots until
// the context is cancelled.
func (h *Hub) Run(ctx context.Context) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	h.lastVersion = h.store.Version()
	for {
		select {
		case <-ctx.Done():
			h.logger.Debugw("Hub stopping due to context cancellation")
			h.closeAll()
			return
		case <-ticker.C:
			version := h.store.Version()
			if version == h.lastVersion {
				continue
			}
			if !h.limiter.Allow() {
				continue
			}
			h.lastVersion = version
			h.BroadcastSnapshot()
		}
	}
}

// BroadcastSnapshot pushes the current snapshot to every connected client
// as a data-update event. Returns the number of clients that accepted the
// message (send channel not full).
func (h *Hub) BroadcastSnapshot() int {
	event := NewEvent(EventDataUpdate, h.store.Snapshot())
	payload, err := json.Marshal(event)
	if err != nil {
		h.logger.Errorw("Failed to encode snapshot event", "error", err)
		return 0
	}

	h.mu.RLock()
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	sent := 0
	for _, c := range clients {
		select {
		case c.sendMsg <- payload:
			sent++
		default:
			// Channel full - skip
		}
	}
	return sent
}

// HandleWS upgrades an HTTP request to a websocket rendering client.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warnw("WebSocket upgrade failed", "error", err)
		return
	}

	c := &client{conn: conn, sendMsg: make(chan []byte, 16)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	count := len(h.clients)
	h.mu.Unlock()
	h.logger.Infow("Rendering client connected", "clients", count)

	// Initial snapshot so the client can draw immediately
	if event, err := json.Marshal(NewEvent(EventDataUpdate, h.store.Snapshot())); err == nil {
		c.sendMsg <- event
	}

	go h.writePump(c)
	go h.readPump(c)
}

// inboundMessage is what rendering clients send back: raw input events.
type inboundMessage struct {
	Type EventType       `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

func (h *Hub) readPump(c *client) {
	defer h.dropClient(c)

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debugw("Client read error", "error", err)
			}
			return
		}
		var msg inboundMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			h.logger.Debugw("Malformed client message ignored", "error", err)
			continue
		}
		switch msg.Type {
		case EventNodeClick, EventEdgeClick, EventLayoutChange:
			select {
			case h.events <- NewEvent(msg.Type, msg.Data):
			default:
				h.logger.Warnw("Event channel full, input event dropped", "type", msg.Type)
			}
		default:
			h.logger.Debugw("Unknown client event type ignored", "type", msg.Type)
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.sendMsg:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
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

func (h *Hub) dropClient(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.sendMsg)
	}
	count := len(h.clients)
	h.mu.Unlock()
	_ = c.conn.Close()
	h.logger.Infow("Rendering client disconnected", "clients", count)
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	for c := range h.clients {
		delete(h.clients, c)
		close(c.sendMsg)
		_ = c.conn.Close()
	}
	h.mu.Unlock()
}

// ClientCount returns the number of connected rendering clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
