package commands

import (
	"errors"

	"kargo/internal/core/domain/model/kernel"
	"kargo/internal/pkg/guard"
)

var ErrClaimOrderCommandIsNotConstructed = errors.New(
	"ClaimOrderCommand must be created via NewClaimOrderCommand constructor",
)

// ClaimOrderCommand is a courier taking a pending order from the shared pool.
type ClaimOrderCommand struct { //nolint:recvcheck //using for validation
	orderID   kernel.UUID
	courierID kernel.UUID

	guard guard.ConstructorGuard
}

func NewClaimOrderCommand(orderID, courierID kernel.UUID) (ClaimOrderCommand, error) {
	cmd := ClaimOrderCommand{guard: guard.NewConstructorGuard()}

	if err := errors.Join(
		setID(&cmd.orderID, orderID),
		setID(&cmd.courierID, courierID),
	); err != nil {
		return ClaimOrderCommand{}, err
	}

	return cmd, nil
}

func (c ClaimOrderCommand) Validate() error {
	return c.guard.Validate(ErrClaimOrderCommandIsNotConstructed)
}

func (c ClaimOrderCommand) OrderID() kernel.UUID   { return c.orderID }
func (c ClaimOrderCommand) CourierID() kernel.UUID { return c.courierID }
