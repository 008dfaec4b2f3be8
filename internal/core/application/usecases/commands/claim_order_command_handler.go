package commands

import (
	"context"

	"kargo/internal/core/ports"
)

// ClaimOrderCommandHandler resolves the claim race. The aggregate rejects
// orders that are visibly taken or finished; the repository's conditional
// write decides between callers that read the order while it was still free.
// Exactly one of N concurrent claims succeeds, the rest get
// *errs.AlreadyAssignedError.
type ClaimOrderCommandHandler struct {
	uowFactory      OrderUoWFactory
	requireApproval bool
	now             ports.Clock
}

func NewClaimOrderCommandHandler(uowFactory OrderUoWFactory, requireApproval bool, now ports.Clock) ClaimOrderCommandHandler {
	return ClaimOrderCommandHandler{
		uowFactory:      uowFactory,
		requireApproval: requireApproval,
		now:             now,
	}
}

func (h *ClaimOrderCommandHandler) Handle(ctx context.Context, cmd ClaimOrderCommand) error {
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

	if err = o.Assign(cmd.CourierID(), h.requireApproval, h.now()); err != nil {
		return err
	}

	if err = repo.Claim(ctx, o, h.requireApproval); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
