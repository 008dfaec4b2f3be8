// Package realtime keeps the registry of live user connections and delivers
// location pushes to them. A single goroutine owns the registry; connect,
// disconnect and push are messages to it.
package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"kargo/internal/core/domain/model/kernel"
	"kargo/internal/core/ports"
	"kargo/internal/pkg/errs"
)

const DefaultSendBuffer = 16

var (
	errBufferFull   = errors.New("send buffer full")
	errHubStopped   = errors.New("hub stopped")
	errNotConnected = errors.New("not connected")
)

// LocationUpdateMessage is the JSON frame pushed to a tracking customer.
type LocationUpdateMessage struct {
	Type      string    `json:"type"`
	OrderID   string    `json:"order_id"`
	CourierID string    `json:"courier_id"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Timestamp time.Time `json:"timestamp"`
}

const LocationUpdateType = "location_update"

// Client is one live connection. The hub closes Send when the client is
// replaced or disconnected; the writer drains it and stops.
type Client struct {
	userID kernel.UUID
	send   chan []byte
}

func (c *Client) UserID() kernel.UUID { return c.userID }
func (c *Client) Send() <-chan []byte { return c.send }

type delivery struct {
	userID  kernel.UUID
	payload []byte
	result  chan error
}

// Hub implements ports.LocationNotifier.
type Hub struct {
	register   chan *Client
	unregister chan *Client
	deliver    chan delivery
	done       chan struct{}

	bufferSize int
	logger     *slog.Logger

	// owned by Run
	clients map[kernel.UUID]*Client
}

var _ ports.LocationNotifier = (*Hub)(nil)

func NewHub(bufferSize int, logger *slog.Logger) *Hub {
	if bufferSize <= 0 {
		bufferSize = DefaultSendBuffer
	}
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		deliver:    make(chan delivery),
		done:       make(chan struct{}),
		bufferSize: bufferSize,
		logger:     logger.With("component", "realtime_hub"),
		clients:    make(map[kernel.UUID]*Client),
	}
}

// Run serves registry messages until ctx is cancelled, then closes every
// connection. It must be started exactly once.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			for id, c := range h.clients {
				close(c.send)
				delete(h.clients, id)
			}
			h.logger.Info("hub stopped")
			return

		case c := <-h.register:
			if prev, ok := h.clients[c.userID]; ok {
				close(prev.send)
				h.logger.Debug("connection replaced", "user_id", c.userID.String())
			}
			h.clients[c.userID] = c

		case c := <-h.unregister:
			if cur, ok := h.clients[c.userID]; ok && cur == c {
				delete(h.clients, c.userID)
				close(c.send)
			}

		case d := <-h.deliver:
			d.result <- h.handOff(d)
		}
	}
}

func (h *Hub) handOff(d delivery) error {
	c, ok := h.clients[d.userID]
	if !ok {
		return errs.NewChannelUnavailableErrorWithCause(d.userID, errNotConnected)
	}
	select {
	case c.send <- d.payload:
		return nil
	default:
		return errs.NewChannelUnavailableErrorWithCause(d.userID, errBufferFull)
	}
}

// Connect registers a new connection for userID, replacing any previous one.
func (h *Hub) Connect(ctx context.Context, userID kernel.UUID) (*Client, error) {
	if err := userID.Validate(); err != nil {
		return nil, err
	}

	c := &Client{userID: userID, send: make(chan []byte, h.bufferSize)}
	select {
	case h.register <- c:
		return c, nil
	case <-h.done:
		return nil, errs.NewChannelUnavailableErrorWithCause(userID, errHubStopped)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Disconnect drops c unless a newer connection already replaced it.
func (h *Hub) Disconnect(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Push hands the update to the user's connection without waiting for the
// write. It fails with ChannelUnavailable when the user is offline or the
// connection is not keeping up.
func (h *Hub) Push(ctx context.Context, userID kernel.UUID, update ports.LocationUpdate) error {
	payload, err := json.Marshal(LocationUpdateMessage{
		Type:      LocationUpdateType,
		OrderID:   update.OrderID.String(),
		CourierID: update.CourierID.String(),
		Latitude:  update.Latitude,
		Longitude: update.Longitude,
		Timestamp: update.Timestamp.UTC(),
	})
	if err != nil {
		return err
	}

	d := delivery{userID: userID, payload: payload, result: make(chan error, 1)}
	select {
	case h.deliver <- d:
	case <-h.done:
		return errs.NewChannelUnavailableErrorWithCause(userID, errHubStopped)
	case <-ctx.Done():
		return ctx.Err()
	}
	return <-d.result
}
