package commands

import (
	"context"

	"kargo/internal/core/ports"
)

// ReviewOrderCommandHandler records a customer's approval or rejection of a
// pending order. Rejection cancels the order.
type ReviewOrderCommandHandler struct {
	uowFactory OrderUoWFactory
	now        ports.Clock
}

func NewReviewOrderCommandHandler(uowFactory OrderUoWFactory, now ports.Clock) ReviewOrderCommandHandler {
	return ReviewOrderCommandHandler{uowFactory: uowFactory, now: now}
}

func (h *ReviewOrderCommandHandler) Handle(ctx context.Context, cmd ReviewOrderCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.OrderRepository()
	o, err := repo.Get(ctx, cmd.OrderID())
	if err != nil {
		return err
	}

	from := o.Status()
	switch cmd.Decision() {
	case Approve:
		if err = o.Approve(cmd.CustomerID(), h.now()); err != nil {
			return err
		}
		err = repo.Approve(ctx, o)
	case Reject:
		if err = o.Reject(cmd.CustomerID(), h.now()); err != nil {
			return err
		}
		err = repo.UpdateStatus(ctx, o, from)
	}
	if err != nil {
		return err
	}

	return uow.Commit(ctx)
}
