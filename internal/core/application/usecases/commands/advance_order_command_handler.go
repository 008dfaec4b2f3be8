package commands

import (
	"context"

	"kargo/internal/core/ports"
)

// AdvanceOrderCommandHandler applies a courier-driven status step. The write
// is conditional on the status that was read, so a concurrent change comes
// back as *errs.InvalidTransitionError rather than being overwritten.
type AdvanceOrderCommandHandler struct {
	uowFactory OrderUoWFactory
	now        ports.Clock
}

func NewAdvanceOrderCommandHandler(uowFactory OrderUoWFactory, now ports.Clock) AdvanceOrderCommandHandler {
	return AdvanceOrderCommandHandler{uowFactory: uowFactory, now: now}
}

func (h *AdvanceOrderCommandHandler) Handle(ctx context.Context, cmd AdvanceOrderCommand) error {
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
	if err = o.Advance(cmd.CourierID(), cmd.Target(), h.now()); err != nil {
		return err
	}

	if err = repo.UpdateStatus(ctx, o, from); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
