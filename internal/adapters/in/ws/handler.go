// Package ws upgrades authenticated requests to WebSocket connections and
// binds them to the realtime hub. Frames only flow server to client; anything
// the client sends is read and dropped.
package ws

import (
	"context"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"kargo/internal/adapters/out/realtime"
	"kargo/internal/core/domain/model/kernel"
	"kargo/internal/pkg/auth"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// Registry is the part of the realtime hub the handler uses.
type Registry interface {
	Connect(ctx context.Context, userID kernel.UUID) (*realtime.Client, error)
	Disconnect(c *realtime.Client)
}

type Handler struct {
	registry Registry
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewHandler accepts browser connections from allowedOrigins; "*" allows any
// origin. Requests without an Origin header are always accepted.
func NewHandler(registry Registry, allowedOrigins []string, logger *slog.Logger) *Handler {
	return &Handler{
		registry: registry,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || slices.Contains(allowedOrigins, "*") || slices.Contains(allowedOrigins, origin)
			},
		},
		logger: logger.With("component", "ws"),
	}
}

// Serve handles GET /ws. The auth middleware has already put the principal on
// the request context.
func (h *Handler) Serve(c echo.Context) error {
	p, ok := auth.FromContext(c.Request().Context())
	if !ok {
		return echo.ErrUnauthorized
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// the upgrader has already written the error response
		h.logger.Debug("upgrade failed", "user_id", p.UserID.String(), "error", err)
		return nil
	}

	client, err := h.registry.Connect(c.Request().Context(), p.UserID)
	if err != nil {
		h.logger.Warn("connect failed", "user_id", p.UserID.String(), "error", err)
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "unavailable"),
			time.Now().Add(writeWait))
		return conn.Close()
	}

	h.logger.Info("connected", "user_id", p.UserID.String(), "role", p.Role.String())

	go h.writePump(conn, client)
	h.readPump(conn, client)
	return nil
}

func (h *Handler) readPump(conn *websocket.Conn, client *realtime.Client) {
	defer func() {
		h.registry.Disconnect(client)
		h.logger.Info("disconnected", "user_id", client.UserID().String())
	}()

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("read failed", "user_id", client.UserID().String(), "error", err)
			}
			return
		}
	}
}

// writePump owns all writes to conn. It exits when the hub closes the send
// channel, which happens on disconnect or when a newer connection replaces
// this one.
func (h *Handler) writePump(conn *websocket.Conn, client *realtime.Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()

	for {
		select {
		case msg, ok := <-client.Send():
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
