package order_test

import (
	"testing"

	"kargo/internal/core/domain/model/order"
	"kargo/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allStatuses = []order.Status{
	order.Pending,
	order.Assigned,
	order.PickedUp,
	order.InTransit,
	order.Delivered,
	order.Cancelled,
}

func TestStatus_StringRoundTrip(t *testing.T) {
	for _, s := range allStatuses {
		parsed, err := order.ParseStatus(s.String())

		require.NoError(t, err)
		assert.Equal(t, s, parsed)
		require.NoError(t, s.Validate())
	}

	assert.Equal(t, "unknown", order.Unknown.String())
	require.ErrorIs(t, order.Unknown.Validate(), errs.ErrValueIsInvalid)

	_, err := order.ParseStatus("completed")
	require.ErrorIs(t, err, errs.ErrValueIsInvalid)
}

func TestStatus_TransitionTable(t *testing.T) {
	legal := map[[2]order.Status]bool{
		{order.Pending, order.Assigned}:    true,
		{order.Pending, order.Cancelled}:   true,
		{order.Assigned, order.PickedUp}:   true,
		{order.PickedUp, order.InTransit}:  true,
		{order.InTransit, order.Delivered}: true,
	}

	for _, from := range allStatuses {
		for _, to := range allStatuses {
			next, err := from.TransitionTo(to)
			if legal[[2]order.Status{from, to}] {
				require.NoError(t, err, "%s -> %s", from, to)
				assert.Equal(t, to, next)
				continue
			}

			require.ErrorIs(t, err, errs.ErrInvalidTransition, "%s -> %s", from, to)
			assert.Equal(t, from, next)
		}
	}
}

func TestStatus_TerminalStatesHaveNoExits(t *testing.T) {
	for _, from := range []order.Status{order.Delivered, order.Cancelled} {
		assert.True(t, from.IsTerminal())
		for _, to := range allStatuses {
			assert.False(t, from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
}

func TestStatus_Active(t *testing.T) {
	assert.ElementsMatch(t, []order.Status{order.Assigned, order.PickedUp, order.InTransit}, order.ActiveStatuses())

	for _, s := range allStatuses {
		assert.Equal(t, s == order.Assigned || s == order.PickedUp || s == order.InTransit, s.IsActive(), s.String())
	}
}
