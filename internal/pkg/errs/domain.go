package errs

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidTransition  = errors.New("invalid transition")
	ErrForbidden          = errors.New("forbidden")
	ErrAlreadyAssigned    = errors.New("order no longer available")
	ErrInvalidLocation    = errors.New("invalid location")
	ErrStoreUnavailable   = errors.New("store unavailable")
	ErrChannelUnavailable = errors.New("channel unavailable")
)

// InvalidTransitionError is returned when a requested status change is not a
// legal edge of the order lifecycle. The caller's premise is wrong; never retry.
type InvalidTransitionError struct {
	From  string
	To    string
	Cause error
}

func NewInvalidTransitionError(from, to fmt.Stringer) *InvalidTransitionError {
	return &InvalidTransitionError{From: from.String(), To: to.String()}
}

func NewInvalidTransitionErrorWithCause(from, to fmt.Stringer, cause error) *InvalidTransitionError {
	return &InvalidTransitionError{From: from.String(), To: to.String(), Cause: cause}
}

func (e *InvalidTransitionError) Error() string {
	return withCause(fmt.Sprintf("%s: %s -> %s", ErrInvalidTransition, e.From, e.To), e.Cause)
}

func (e *InvalidTransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// ForbiddenError is returned when the actor may not perform an action on a resource.
type ForbiddenError struct {
	Actor  string
	Action string
}

func NewForbiddenError(actor fmt.Stringer, action string) *ForbiddenError {
	return &ForbiddenError{Actor: actor.String(), Action: action}
}

func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("%s: %s may not %s", ErrForbidden, e.Actor, e.Action)
}

func (e *ForbiddenError) Unwrap() error {
	return ErrForbidden
}

// AlreadyAssignedError is the losing side of a claim race. Callers re-fetch the
// available list and try another order.
type AlreadyAssignedError struct {
	OrderID string
}

func NewAlreadyAssignedError(orderID fmt.Stringer) *AlreadyAssignedError {
	return &AlreadyAssignedError{OrderID: orderID.String()}
}

func (e *AlreadyAssignedError) Error() string {
	return fmt.Sprintf("%s: %s", ErrAlreadyAssigned, e.OrderID)
}

func (e *AlreadyAssignedError) Unwrap() error {
	return ErrAlreadyAssigned
}

// InvalidLocationError wraps coordinate validation failures of a location report.
type InvalidLocationError struct {
	Cause error
}

func NewInvalidLocationError(cause error) *InvalidLocationError {
	return &InvalidLocationError{Cause: cause}
}

func (e *InvalidLocationError) Error() string {
	return withCause(ErrInvalidLocation.Error(), e.Cause)
}

func (e *InvalidLocationError) Unwrap() error {
	return ErrInvalidLocation
}

// StoreUnavailableError marks a transient persistence fault. The caller may retry
// with backoff; nothing below the caller retries on its own.
type StoreUnavailableError struct {
	Op    string
	Cause error
}

func NewStoreUnavailableError(op string, cause error) *StoreUnavailableError {
	return &StoreUnavailableError{Op: op, Cause: cause}
}

func (e *StoreUnavailableError) Error() string {
	return withCause(fmt.Sprintf("%s: %s", ErrStoreUnavailable, e.Op), e.Cause)
}

func (e *StoreUnavailableError) Unwrap() error {
	return ErrStoreUnavailable
}

// ChannelUnavailableError means a push could not be handed to a live
// connection. Pushes are best effort, so callers log it and move on.
type ChannelUnavailableError struct {
	UserID string
	Cause  error
}

func NewChannelUnavailableError(userID fmt.Stringer) *ChannelUnavailableError {
	return &ChannelUnavailableError{UserID: userID.String()}
}

func NewChannelUnavailableErrorWithCause(userID fmt.Stringer, cause error) *ChannelUnavailableError {
	return &ChannelUnavailableError{UserID: userID.String(), Cause: cause}
}

func (e *ChannelUnavailableError) Error() string {
	return withCause(fmt.Sprintf("%s: %s", ErrChannelUnavailable, e.UserID), e.Cause)
}

func (e *ChannelUnavailableError) Unwrap() error {
	return ErrChannelUnavailable
}
