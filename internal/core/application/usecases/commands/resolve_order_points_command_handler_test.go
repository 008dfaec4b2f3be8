package commands_test

import (
	"errors"
	"testing"

	"kargo/internal/core/application/usecases/commands"
	"kargo/internal/core/domain/model/kernel"
	"kargo/internal/core/domain/model/order"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestResolveOrderPointsCommandHandler_Handle(t *testing.T) {
	ctx := t.Context()
	resolved, _ := newPendingOrder()
	failing, _ := newPendingOrder()

	kadikoy, err := kernel.NewLocation(40.99, 29.02)
	require.NoError(t, err)
	besiktas, err := kernel.NewLocation(41.04, 29.0)
	require.NoError(t, err)

	repo := new(MockOrderRepository)
	uow := new(MockUoW)
	uow.On("OrderRepository").Return(repo).Once()
	repo.On("ListMissingPoints", ctx, 10).Return([]*order.Order{resolved, failing}, nil).Once()
	repo.On("UpdatePoints", ctx, resolved).Return(nil).Once()

	geocoder := new(MockGeocoder)
	// Both orders share addresses; the second pass fails.
	geocoder.On("Geocode", ctx, "Moda Cd. 12, Kadıköy").Return(kadikoy, nil).Once()
	geocoder.On("Geocode", ctx, "Barbaros Blv. 45, Beşiktaş").Return(besiktas, nil).Once()
	geocoder.On("Geocode", ctx, mock.Anything).Return(kernel.Location{}, errors.New("ZERO_RESULTS"))

	cmd, err := commands.NewResolveOrderPointsCommand(10)
	require.NoError(t, err)

	h := commands.NewResolveOrderPointsCommandHandler(orderUoWFactory{uow}, geocoder, discardLogger())
	n, err := h.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, 1, n)

	point, known := resolved.Pickup().Point()
	assert.True(t, known)
	assert.True(t, point.IsEqual(kadikoy))
	_, known = failing.Pickup().Point()
	assert.False(t, known)

	repo.AssertExpectations(t)
	repo.AssertNumberOfCalls(t, "UpdatePoints", 1)
	uow.AssertNotCalled(t, "Begin", mock.Anything)
}

func TestNewResolveOrderPointsCommand_BatchSize(t *testing.T) {
	_, err := commands.NewResolveOrderPointsCommand(0)

	require.Error(t, err)
}
