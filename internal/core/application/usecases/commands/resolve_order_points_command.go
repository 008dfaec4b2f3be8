package commands

import (
	"errors"
	"fmt"

	"kargo/internal/pkg/errs"
	"kargo/internal/pkg/guard"
)

var ErrResolveOrderPointsCommandIsNotConstructed = errors.New(
	"ResolveOrderPointsCommand must be created via NewResolveOrderPointsCommand constructor",
)

// ResolveOrderPointsCommand geocodes a batch of orders whose pickup or
// delivery coordinates were not supplied at creation.
type ResolveOrderPointsCommand struct { //nolint:recvcheck //using for validation
	batchSize int

	guard guard.ConstructorGuard
}

func NewResolveOrderPointsCommand(batchSize int) (ResolveOrderPointsCommand, error) {
	if batchSize <= 0 {
		return ResolveOrderPointsCommand{}, errs.NewValueIsInvalidErrorWithCause(
			"batch size", fmt.Errorf("%d is not greater than 0", batchSize))
	}
	return ResolveOrderPointsCommand{batchSize: batchSize, guard: guard.NewConstructorGuard()}, nil
}

func (c ResolveOrderPointsCommand) Validate() error {
	return c.guard.Validate(ErrResolveOrderPointsCommandIsNotConstructed)
}

func (c ResolveOrderPointsCommand) BatchSize() int { return c.batchSize }
