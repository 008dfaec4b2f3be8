// Package ports declares the contracts the application core needs from the
// outside world: persistence, event publishing, live push and geocoding.
package ports

import (
	"context"

	"kargo/internal/core/domain/model/kernel"
	"kargo/internal/core/domain/model/order"
)

// OrderRepository persists order aggregates. Every write also stores the
// aggregate's pending StatusChanged events as status history. Store faults are
// reported as *errs.StoreUnavailableError.
type OrderRepository interface {
	// Add inserts a new order.
	Add(ctx context.Context, aggregate *order.Order) error

	// Get loads an order or returns *errs.ObjectNotFoundError.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// Claim writes an Assign already applied to aggregate, conditional on the
	// stored row still being pending and unbound (and approved when
	// requireApproval is set). Losing to another courier returns
	// *errs.AlreadyAssignedError; finding the order finished or unapproved
	// returns *errs.InvalidTransitionError.
	Claim(ctx context.Context, aggregate *order.Order, requireApproval bool) error

	// UpdateStatus writes a transition applied to aggregate, conditional on the
	// stored status still being from and the courier binding unchanged. A
	// concurrent change returns *errs.InvalidTransitionError.
	UpdateStatus(ctx context.Context, aggregate *order.Order, from order.Status) error

	// Approve stores the approval stamp while the order is still pending.
	Approve(ctx context.Context, aggregate *order.Order) error

	// UpdatePoints stores geocoded pickup and delivery coordinates.
	UpdatePoints(ctx context.Context, aggregate *order.Order) error

	// ListActiveByCourier returns the courier's orders in assigned, picked_up
	// or in_transit.
	ListActiveByCourier(ctx context.Context, courierID kernel.UUID) ([]*order.Order, error)

	// ListMissingPoints returns up to limit non-terminal orders whose pickup or
	// delivery coordinates are unknown, oldest first.
	ListMissingPoints(ctx context.Context, limit int) ([]*order.Order, error)
}
