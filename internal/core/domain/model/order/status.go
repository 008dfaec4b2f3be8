package order

import (
	"fmt"

	"kargo/internal/pkg/errs"
)

// Status is the lifecycle state of an order.
type Status int

const (
	// Unknown catches uninitialized values and marks "no previous status" on
	// the creation event.
	Unknown Status = iota
	Pending
	Assigned
	PickedUp
	InTransit
	Delivered
	Cancelled
)

var statusNames = map[Status]string{
	Pending:   "pending",
	Assigned:  "assigned",
	PickedUp:  "picked_up",
	InTransit: "in_transit",
	Delivered: "delivered",
	Cancelled: "cancelled",
}

// transitions lists every legal edge. Anything absent is rejected.
var transitions = map[Status]map[Status]bool{
	Pending:   {Assigned: true, Cancelled: true},
	Assigned:  {PickedUp: true},
	PickedUp:  {InTransit: true},
	InTransit: {Delivered: true},
}

// ParseStatus maps the wire/storage name back to a Status.
func ParseStatus(s string) (Status, error) {
	for st, name := range statusNames {
		if name == s {
			return st, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a valid status", s))
}

// ActiveStatuses are the states in which the courier's position is tracked
// by the order's customer.
func ActiveStatuses() []Status {
	return []Status{Assigned, PickedUp, InTransit}
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "unknown"
}

func (s Status) Validate() error {
	if _, ok := statusNames[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// IsTerminal reports whether no transition leaves s.
func (s Status) IsTerminal() bool {
	return s == Delivered || s == Cancelled
}

func (s Status) IsActive() bool {
	return s == Assigned || s == PickedUp || s == InTransit
}

func (s Status) CanTransitionTo(to Status) bool {
	return transitions[s][to]
}

// TransitionTo returns the target status when s -> to is a legal edge and an
// *errs.InvalidTransitionError otherwise.
func (s Status) TransitionTo(to Status) (Status, error) {
	if !s.CanTransitionTo(to) {
		return s, errs.NewInvalidTransitionError(s, to)
	}
	return to, nil
}

// HasCourier reports whether an order in status s must be bound to a courier.
// Cancelled orders never are: only a Pending order can be cancelled.
func (s Status) HasCourier() bool {
	return s.IsActive() || s == Delivered
}
