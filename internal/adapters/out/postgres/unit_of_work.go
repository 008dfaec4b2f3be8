// Package postgres implements the unit of work over GORM. A unit of work owns
// one database transaction; the repositories it hands out run inside it and
// register every aggregate they write. After a successful Commit the status
// events of those aggregates are published.
//
//	uow := factory.Create()
//	if err := uow.Begin(ctx); err != nil {
//	    return err
//	}
//	defer func() { _ = uow.Rollback(ctx) }()
//
//	if err := uow.OrderRepository().Add(ctx, o); err != nil {
//	    return err
//	}
//	return uow.Commit(ctx)
//
// Publishing happens after the data is durable, so a broker outage never
// undoes a transition; failures are logged and the events are dropped.
package postgres

import (
	"context"
	"log/slog"
	"time"

	"kargo/internal/adapters/out/postgres/locationrepo"
	"kargo/internal/adapters/out/postgres/orderrepo"
	"kargo/internal/core/domain/model/kernel"
	"kargo/internal/core/domain/model/order"
	"kargo/internal/core/ports"
	"kargo/internal/pkg/errs"

	"gorm.io/gorm"
)

type trackedAggregate struct {
	ID        kernel.UUID
	Aggregate any
}

// GormUnitOfWorkFactory creates one GormUnitOfWork per command.
type GormUnitOfWorkFactory struct {
	db        *gorm.DB
	timeout   time.Duration
	publisher ports.OrderEventPublisher
	logger    *slog.Logger
}

func NewGormUnitOfWorkFactory(
	db *gorm.DB,
	timeout time.Duration,
	publisher ports.OrderEventPublisher,
	logger *slog.Logger,
) *GormUnitOfWorkFactory {
	return &GormUnitOfWorkFactory{
		db:        db,
		timeout:   timeout,
		publisher: publisher,
		logger:    logger.With("component", "unit_of_work"),
	}
}

func (f *GormUnitOfWorkFactory) Create() ports.UnitOfWork {
	return &GormUnitOfWork{
		db:        f.db,
		timeout:   f.timeout,
		publisher: f.publisher,
		logger:    f.logger,
	}
}

// GormUnitOfWork is not safe for concurrent use; create one per operation.
type GormUnitOfWork struct {
	db        *gorm.DB
	tx        *gorm.DB
	timeout   time.Duration
	publisher ports.OrderEventPublisher
	logger    *slog.Logger

	trackedAggregates []trackedAggregate
}

// Begin opens the transaction. Calling it twice keeps the first transaction.
func (uow *GormUnitOfWork) Begin(ctx context.Context) error {
	if uow.tx != nil {
		return nil
	}

	tx := uow.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return errs.NewStoreUnavailableError("begin transaction", tx.Error)
	}

	uow.tx = tx
	uow.trackedAggregates = nil
	return nil
}

func (uow *GormUnitOfWork) Commit(ctx context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	err := uow.tx.Commit().Error
	uow.tx = nil
	if err != nil {
		uow.trackedAggregates = nil
		return errs.NewStoreUnavailableError("commit transaction", err)
	}

	uow.publishTracked(ctx)
	return nil
}

func (uow *GormUnitOfWork) Rollback(_ context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	err := uow.tx.Rollback().Error
	uow.tx = nil
	uow.trackedAggregates = nil
	return err
}

func (uow *GormUnitOfWork) OrderRepository() ports.OrderRepository {
	return orderrepo.NewGormOrderRepository(uow.conn(), uow, uow.timeout)
}

func (uow *GormUnitOfWork) LocationRepository() ports.LocationRepository {
	return locationrepo.NewGormLocationRepository(uow.conn(), uow.timeout)
}

// TrackAggregate registers an aggregate written in this unit of work. Writing
// the same aggregate twice keeps a single entry.
func (uow *GormUnitOfWork) TrackAggregate(id kernel.UUID, aggregate any) {
	for i := range uow.trackedAggregates {
		if uow.trackedAggregates[i].ID.IsEqual(id) {
			uow.trackedAggregates[i].Aggregate = aggregate
			return
		}
	}
	uow.trackedAggregates = append(uow.trackedAggregates, trackedAggregate{ID: id, Aggregate: aggregate})
}

func (uow *GormUnitOfWork) conn() *gorm.DB {
	if uow.tx != nil {
		return uow.tx
	}
	return uow.db
}

func (uow *GormUnitOfWork) publishTracked(ctx context.Context) {
	tracked := uow.trackedAggregates
	uow.trackedAggregates = nil

	// Without a publisher the events are only cleared.
	for _, t := range tracked {
		o, ok := t.Aggregate.(*order.Order)
		if !ok {
			continue
		}

		events := o.Events()
		o.ClearEvents()
		if len(events) == 0 || uow.publisher == nil {
			continue
		}

		if err := uow.publisher.Publish(ctx, events...); err != nil {
			uow.logger.ErrorContext(ctx, "publishing order events failed",
				"order_id", o.ID().String(), "events", len(events), "error", err)
		}
	}
}
