package errs_test

import (
	"errors"
	"fmt"
	"testing"

	"kargo/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type name string

func (n name) String() string { return string(n) }

func TestInvalidTransitionError(t *testing.T) {
	err := errs.NewInvalidTransitionError(name("pending"), name("delivered"))

	assert.Equal(t, "pending", err.From)
	assert.Equal(t, "delivered", err.To)
	assert.Equal(t, "invalid transition: pending -> delivered", err.Error())
	require.ErrorIs(t, err, errs.ErrInvalidTransition)

	withCause := errs.NewInvalidTransitionErrorWithCause(name("pending"), name("assigned"), errors.New("not approved"))
	assert.Equal(t, "invalid transition: pending -> assigned (cause: not approved)", withCause.Error())
}

func TestForbiddenError(t *testing.T) {
	err := errs.NewForbiddenError(name("customer"), "claim order")

	assert.Equal(t, "forbidden: customer may not claim order", err.Error())
	require.ErrorIs(t, err, errs.ErrForbidden)
}

func TestAlreadyAssignedError(t *testing.T) {
	err := errs.NewAlreadyAssignedError(name("o-1"))

	assert.Equal(t, "o-1", err.OrderID)
	require.ErrorIs(t, err, errs.ErrAlreadyAssigned)
	require.NotErrorIs(t, err, errs.ErrInvalidTransition)
}

func TestInvalidLocationError(t *testing.T) {
	cause := errs.NewValueIsOutOfRangeError("latitude", 91.0, -90.0, 90.0)
	err := errs.NewInvalidLocationError(cause)

	require.ErrorIs(t, err, errs.ErrInvalidLocation)
	assert.Contains(t, err.Error(), "91 is latitude")
}

func TestStoreUnavailableError(t *testing.T) {
	err := errs.NewStoreUnavailableError("claim order", errors.New("connection refused"))

	require.ErrorIs(t, err, errs.ErrStoreUnavailable)
	assert.Equal(t, "store unavailable: claim order (cause: connection refused)", err.Error())

	wrapped := fmt.Errorf("handler: %w", err)
	var target *errs.StoreUnavailableError
	require.ErrorAs(t, wrapped, &target)
	assert.Equal(t, "claim order", target.Op)
}

func TestChannelUnavailableError(t *testing.T) {
	err := errs.NewChannelUnavailableError(name("u-1"))
	assert.Equal(t, "channel unavailable: u-1", err.Error())
	require.ErrorIs(t, err, errs.ErrChannelUnavailable)

	full := errs.NewChannelUnavailableErrorWithCause(name("u-1"), errors.New("send buffer full"))
	assert.Equal(t, "channel unavailable: u-1 (cause: send buffer full)", full.Error())
}
