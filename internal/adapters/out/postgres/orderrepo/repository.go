package orderrepo

import (
	"context"
	"errors"
	"time"

	"kargo/internal/core/domain/model/kernel"
	"kargo/internal/core/domain/model/order"
	"kargo/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOrderRepository implements ports.OrderRepository. Every call runs under
// its own timeout so an unreachable database fails fast.
type GormOrderRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
	timeout time.Duration
}

type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

func NewGormOrderRepository(db *gorm.DB, tracker aggregateTracker, timeout time.Duration) *GormOrderRepository {
	return &GormOrderRepository{
		db:      db,
		tracker: tracker,
		timeout: timeout,
	}
}

func (r *GormOrderRepository) Add(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return errs.NewStoreUnavailableError("add order", err)
	}

	return r.recorded(ctx, aggregate)
}

func (r *GormOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var dto OrderDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("order", id.String())
		}
		return nil, errs.NewStoreUnavailableError("get order", err)
	}

	return toDomain(dto)
}

// Claim is the compare-and-set that decides the claim race: the row is only
// updated while it is still pending and unbound.
func (r *GormOrderRepository) Claim(ctx context.Context, aggregate *order.Order, requireApproval bool) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	if aggregate.Status() != order.Assigned || aggregate.Courier() == nil {
		return errs.NewInvalidTransitionError(order.Pending, aggregate.Status())
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	dto := fromDomain(aggregate)
	q := r.db.WithContext(ctx).Model(&OrderDTO{}).
		Where("id = ? AND status = ? AND courier_id IS NULL", dto.ID, order.Pending.String())
	if requireApproval {
		q = q.Where("approved_at IS NOT NULL")
	}

	result := q.Updates(map[string]any{
		"status":      dto.Status,
		"courier_id":  dto.CourierID,
		"assigned_at": dto.AssignedAt,
		"updated_at":  dto.UpdatedAt,
	})
	if result.Error != nil {
		return errs.NewStoreUnavailableError("claim order", result.Error)
	}
	if result.RowsAffected == 0 {
		return r.claimLost(ctx, aggregate, requireApproval)
	}

	return r.recorded(ctx, aggregate)
}

// claimLost tells a courier who lost to another courier apart from one whose
// order is not claimable at all: finished, or still awaiting the customer's
// approval.
func (r *GormOrderRepository) claimLost(ctx context.Context, aggregate *order.Order, requireApproval bool) error {
	var current OrderDTO
	err := r.db.WithContext(ctx).Select("status", "courier_id", "approved_at").
		Take(&current, "id = ?", aggregate.ID().Bytes()).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errs.NewObjectNotFoundError("order", aggregate.ID().String())
		}
		return errs.NewStoreUnavailableError("claim order", err)
	}

	status, err := order.ParseStatus(current.Status)
	if err != nil {
		return err
	}
	switch {
	case status.IsTerminal():
		return errs.NewInvalidTransitionError(status, order.Assigned)
	case status == order.Pending && current.CourierID == nil && requireApproval && current.ApprovedAt == nil:
		return errs.NewInvalidTransitionErrorWithCause(status, order.Assigned, errors.New("awaiting customer approval"))
	}
	return errs.NewAlreadyAssignedError(aggregate.ID())
}

// UpdateStatus writes the lifecycle columns only if nobody moved the order
// since it was read.
func (r *GormOrderRepository) UpdateStatus(ctx context.Context, aggregate *order.Order, from order.Status) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	dto := fromDomain(aggregate)
	q := r.db.WithContext(ctx).Model(&OrderDTO{}).Where("id = ? AND status = ?", dto.ID, from.String())
	if dto.CourierID != nil {
		q = q.Where("courier_id = ?", *dto.CourierID)
	} else {
		q = q.Where("courier_id IS NULL")
	}

	result := q.Updates(map[string]any{
		"status":        dto.Status,
		"updated_at":    dto.UpdatedAt,
		"picked_up_at":  dto.PickedUpAt,
		"in_transit_at": dto.InTransitAt,
		"delivered_at":  dto.DeliveredAt,
		"cancelled_at":  dto.CancelledAt,
		"cancelled_by":  dto.CancelledBy,
	})
	if result.Error != nil {
		return errs.NewStoreUnavailableError("update order status", result.Error)
	}
	if result.RowsAffected == 0 {
		return errs.NewInvalidTransitionErrorWithCause(from, aggregate.Status(),
			errors.New("order changed concurrently"))
	}

	return r.recorded(ctx, aggregate)
}

func (r *GormOrderRepository) Approve(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	dto := fromDomain(aggregate)
	result := r.db.WithContext(ctx).Model(&OrderDTO{}).
		Where("id = ? AND status = ?", dto.ID, order.Pending.String()).
		Updates(map[string]any{
			"approved_at": dto.ApprovedAt,
			"updated_at":  dto.UpdatedAt,
		})
	if result.Error != nil {
		return errs.NewStoreUnavailableError("approve order", result.Error)
	}
	if result.RowsAffected == 0 {
		return errs.NewInvalidTransitionErrorWithCause(order.Pending, order.Pending,
			errors.New("order is no longer pending"))
	}

	return nil
}

func (r *GormOrderRepository) UpdatePoints(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	dto := fromDomain(aggregate)
	result := r.db.WithContext(ctx).Model(&OrderDTO{}).Where("id = ?", dto.ID).
		Updates(map[string]any{
			"pickup_latitude":    dto.Pickup.Latitude,
			"pickup_longitude":   dto.Pickup.Longitude,
			"delivery_latitude":  dto.Delivery.Latitude,
			"delivery_longitude": dto.Delivery.Longitude,
		})
	if result.Error != nil {
		return errs.NewStoreUnavailableError("update order points", result.Error)
	}
	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("order", aggregate.ID().String())
	}

	return nil
}

func (r *GormOrderRepository) ListActiveByCourier(ctx context.Context, courierID kernel.UUID) ([]*order.Order, error) {
	if err := courierID.Validate(); err != nil {
		return nil, err
	}

	return r.find(ctx, "list active orders", func(db *gorm.DB) *gorm.DB {
		return db.Where("courier_id = ? AND status IN ?", courierID.Bytes(), statusNames(order.ActiveStatuses()))
	})
}

func (r *GormOrderRepository) ListMissingPoints(ctx context.Context, limit int) ([]*order.Order, error) {
	return r.find(ctx, "list orders missing points", func(db *gorm.DB) *gorm.DB {
		return db.
			Where("status NOT IN ?", statusNames([]order.Status{order.Delivered, order.Cancelled})).
			Where("pickup_latitude IS NULL OR delivery_latitude IS NULL").
			Order("created_at ASC, id ASC").
			Limit(limit)
	})
}

func (r *GormOrderRepository) find(ctx context.Context, op string, scope func(*gorm.DB) *gorm.DB) ([]*order.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var dtos []OrderDTO
	if err := r.db.WithContext(ctx).Scopes(scope).Find(&dtos).Error; err != nil {
		return nil, errs.NewStoreUnavailableError(op, err)
	}

	orders := make([]*order.Order, 0, len(dtos))
	for _, dto := range dtos {
		o, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, nil
}

// recorded appends the aggregate's pending events to the status history and
// hands the aggregate to the unit of work for publishing after commit. Events
// already stored by an earlier write of the same aggregate are skipped.
func (r *GormOrderRepository) recorded(ctx context.Context, aggregate *order.Order) error {
	if events := eventsFromDomain(aggregate.Events()); len(events) > 0 {
		err := r.db.WithContext(ctx).
			Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).
			Create(&events).Error
		if err != nil {
			return errs.NewStoreUnavailableError("append status history", err)
		}
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

func statusNames(statuses []order.Status) []string {
	names := make([]string, 0, len(statuses))
	for _, s := range statuses {
		names = append(names, s.String())
	}
	return names
}
