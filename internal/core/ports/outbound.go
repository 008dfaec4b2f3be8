package ports

import (
	"context"
	"time"

	"kargo/internal/core/domain/model/kernel"
	"kargo/internal/core/domain/model/order"
)

// OrderEventPublisher forwards committed status changes to other systems.
type OrderEventPublisher interface {
	Publish(ctx context.Context, events ...order.StatusChanged) error
}

// LocationUpdate is the live message a customer receives while their order moves.
type LocationUpdate struct {
	OrderID   kernel.UUID
	CourierID kernel.UUID
	Latitude  float64
	Longitude float64
	Timestamp time.Time
}

// LocationNotifier pushes to a user's live connection. It returns
// errs.ErrChannelUnavailable when the user has no connection or cannot keep up.
type LocationNotifier interface {
	Push(ctx context.Context, userID kernel.UUID, update LocationUpdate) error
}

// Geocoder turns a free-text address into coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (kernel.Location, error)
}

// Clock is the time source of the command handlers.
type Clock func() time.Time
