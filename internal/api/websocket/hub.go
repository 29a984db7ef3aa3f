package websocket

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/fortuna/gridiron/internal/logging"
	"github.com/fortuna/gridiron/internal/store"
)

// Hub tracks connected clients and fans slate events out to them.
type Hub struct {
	clientsMu sync.RWMutex
	clients   map[*Client]bool

	broadcast  chan store.SlateEvent
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	stopOnce   sync.Once

	totalConnections atomic.Int64
	totalMessages    atomic.Int64

	logger *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan store.SlateEvent, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logging.OrNop(logger),
	}
}

// Run is the hub's loop. It returns when ctx is done.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return
		case c := <-h.register:
			h.registerClient(c)
		case c := <-h.unregister:
			h.unregisterClient(c)
		case e := <-h.broadcast:
			h.broadcastEvent(e)
		}
	}
}

func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	case <-h.done:
	}
}

func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// SlateUpdated queues e for every subscribed client. A full queue drops
// the event.
func (h *Hub) SlateUpdated(_ context.Context, e store.SlateEvent) error {
	select {
	case h.broadcast <- e:
	default:
		h.logger.Warn("broadcast buffer full, dropping slate event",
			zap.Int("season", e.Season), zap.Int("week", e.Week))
	}
	return nil
}

func (h *Hub) registerClient(c *Client) {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()

	h.clients[c] = true
	h.totalConnections.Add(1)
	h.logger.Debug("client connected", zap.String("client_id", c.ID), zap.Int("total", len(h.clients)))
}

func (h *Hub) unregisterClient(c *Client) {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()

	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
		h.logger.Debug("client disconnected", zap.String("client_id", c.ID), zap.Int("total", len(h.clients)))
	}
}

func (h *Hub) broadcastEvent(e store.SlateEvent) {
	h.clientsMu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.clientsMu.RUnlock()

	msg := ServerMessage{Type: MessageTypeSlateUpdated, Payload: e, Timestamp: time.Now()}
	for _, c := range clients {
		if !c.Filter().Matches(e) {
			continue
		}
		if c.trySend(msg) {
			h.totalMessages.Add(1)
			continue
		}
		h.logger.Warn("client buffer full, disconnecting", zap.String("client_id", c.ID))
		h.unregisterClient(c)
	}
}

// ClientCount is the number of connected clients.
func (h *Hub) ClientCount() int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients)
}

// Metrics reports connection and delivery counters.
func (h *Hub) Metrics() map[string]int64 {
	return map[string]int64{
		"active_clients":    int64(h.ClientCount()),
		"total_connections": h.totalConnections.Load(),
		"total_messages":    h.totalMessages.Load(),
	}
}

func (h *Hub) shutdown() {
	h.stopOnce.Do(func() { close(h.done) })

	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()
	for c := range h.clients {
		close(c.send)
		delete(h.clients, c)
	}
}
