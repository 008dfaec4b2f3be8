package commands

import (
	"context"

	"kargo/internal/core/domain/model/order"
	"kargo/internal/core/ports"
)

// CreateOrderCommandHandler stores a new pending order. The platform
// commission percent in force is captured on the order.
type CreateOrderCommandHandler struct {
	uowFactory OrderUoWFactory
	defaultFee int64
	now        ports.Clock
}

func NewCreateOrderCommandHandler(uowFactory OrderUoWFactory, defaultFee int64, now ports.Clock) CreateOrderCommandHandler {
	return CreateOrderCommandHandler{
		uowFactory: uowFactory,
		defaultFee: defaultFee,
		now:        now,
	}
}

func (h *CreateOrderCommandHandler) Handle(ctx context.Context, cmd CreateOrderCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	amount := cmd.Fee()
	if amount <= 0 {
		amount = h.defaultFee
	}
	fee, err := order.NewFee(amount, order.DefaultCommissionPercent)
	if err != nil {
		return err
	}

	o, err := order.NewOrder(
		cmd.OrderID(), cmd.BusinessID(), cmd.CustomerID(),
		cmd.Pickup(), cmd.Delivery(), cmd.Parcel(), fee, h.now(),
	)
	if err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.OrderRepository().Add(ctx, o); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
