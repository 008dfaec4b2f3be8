package commands

import (
	"errors"
	"fmt"

	"kargo/internal/core/domain/model/kernel"
	"kargo/internal/pkg/errs"
	"kargo/internal/pkg/guard"
)

var ErrReviewOrderCommandIsNotConstructed = errors.New(
	"ReviewOrderCommand must be created via NewReviewOrderCommand constructor",
)

// Decision is the customer's answer to a pending order.
type Decision int

const (
	Approve Decision = iota + 1
	Reject
)

func (d Decision) String() string {
	switch d {
	case Approve:
		return "approve"
	case Reject:
		return "reject"
	default:
		return "unknown"
	}
}

// ReviewOrderCommand is the customer approving or rejecting a pending order.
type ReviewOrderCommand struct { //nolint:recvcheck //using for validation
	orderID    kernel.UUID
	customerID kernel.UUID
	decision   Decision

	guard guard.ConstructorGuard
}

func NewReviewOrderCommand(orderID, customerID kernel.UUID, decision Decision) (ReviewOrderCommand, error) {
	cmd := ReviewOrderCommand{decision: decision, guard: guard.NewConstructorGuard()}

	var decisionErr error
	if decision != Approve && decision != Reject {
		decisionErr = errs.NewValueIsInvalidErrorWithCause("decision", fmt.Errorf("%d is not approve or reject", decision))
	}

	if err := errors.Join(
		setID(&cmd.orderID, orderID),
		setID(&cmd.customerID, customerID),
		decisionErr,
	); err != nil {
		return ReviewOrderCommand{}, err
	}

	return cmd, nil
}

func (c ReviewOrderCommand) Validate() error {
	return c.guard.Validate(ErrReviewOrderCommandIsNotConstructed)
}

func (c ReviewOrderCommand) OrderID() kernel.UUID    { return c.orderID }
func (c ReviewOrderCommand) CustomerID() kernel.UUID { return c.customerID }
func (c ReviewOrderCommand) Decision() Decision      { return c.decision }
