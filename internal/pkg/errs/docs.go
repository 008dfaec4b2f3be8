// Package errs holds the error kinds of the order and tracking services.
//
// Every kind is a struct with a constructor, an optional cause and an Unwrap
// to a sentinel, so callers branch with errors.Is and read details with
// errors.As:
//   - ValueIsRequiredError, ValueIsInvalidError, ValueIsOutOfRangeError and
//     ObjectNotFoundError for input and lookup failures
//   - InvalidTransitionError, ForbiddenError and AlreadyAssignedError for the
//     order lifecycle
//   - InvalidLocationError for rejected courier reports
//   - StoreUnavailableError and ChannelUnavailableError for infrastructure
//
// The HTTP adapter maps sentinels to status codes in one place.
package errs
