package order

import (
	"time"

	"kargo/internal/core/domain/model/kernel"
)

// StatusChangedEventName is the routing name of StatusChanged on the broker.
const StatusChangedEventName = "order.status_changed"

// StatusChanged records one accepted lifecycle step. From is Unknown for the
// event emitted on creation.
type StatusChanged struct {
	ID         kernel.UUID
	OrderID    kernel.UUID
	BusinessID kernel.UUID
	CustomerID kernel.UUID
	CourierID  *kernel.UUID
	From       Status
	To         Status
	ActorID    kernel.UUID
	ActorRole  kernel.Role
	OccurredAt time.Time
}
