// Package websocket pushes slate-updated events to connected clients.
package websocket

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/fortuna/gridiron/internal/logging"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Handler upgrades requests on /ws/slates and hands clients to the hub.
type Handler struct {
	hub    *Hub
	ctx    context.Context
	logger *zap.Logger
}

// NewHandler binds client lifetimes to ctx rather than to the request.
func NewHandler(ctx context.Context, hub *Hub, logger *zap.Logger) *Handler {
	return &Handler{hub: hub, ctx: ctx, logger: logging.OrNop(logger)}
}

// ServeHTTP upgrades the connection and starts the client pumps.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	c := newClient(uuid.NewString(), conn, h.hub, h.logger)
	h.hub.Register(c)

	go c.writePump(h.ctx)
	go c.readPump(h.ctx)
}
