package commands

import (
	"errors"

	"kargo/internal/core/domain/model/kernel"
	"kargo/internal/core/domain/model/order"
	"kargo/internal/pkg/guard"
)

var ErrAdvanceOrderCommandIsNotConstructed = errors.New(
	"AdvanceOrderCommand must be created via NewAdvanceOrderCommand constructor",
)

// AdvanceOrderCommand moves an order one step along the delivery: picked_up,
// in_transit or delivered.
type AdvanceOrderCommand struct { //nolint:recvcheck //using for validation
	orderID   kernel.UUID
	courierID kernel.UUID
	target    order.Status

	guard guard.ConstructorGuard
}

func NewAdvanceOrderCommand(orderID, courierID kernel.UUID, target order.Status) (AdvanceOrderCommand, error) {
	cmd := AdvanceOrderCommand{guard: guard.NewConstructorGuard()}

	if err := errors.Join(
		setID(&cmd.orderID, orderID),
		setID(&cmd.courierID, courierID),
		target.Validate(),
	); err != nil {
		return AdvanceOrderCommand{}, err
	}
	cmd.target = target

	return cmd, nil
}

func (c AdvanceOrderCommand) Validate() error {
	return c.guard.Validate(ErrAdvanceOrderCommandIsNotConstructed)
}

func (c AdvanceOrderCommand) OrderID() kernel.UUID   { return c.orderID }
func (c AdvanceOrderCommand) CourierID() kernel.UUID { return c.courierID }
func (c AdvanceOrderCommand) Target() order.Status   { return c.target }
