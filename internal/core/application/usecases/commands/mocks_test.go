package commands_test

import (
	"context"
	"time"

	"kargo/internal/core/application/usecases/commands"
	"kargo/internal/core/domain/model/kernel"
	"kargo/internal/core/domain/model/order"
	"kargo/internal/core/domain/model/tracking"
	"kargo/internal/core/ports"

	"github.com/stretchr/testify/mock"
)

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

type MockOrderRepository struct{ mock.Mock }

func (m *MockOrderRepository) Add(ctx context.Context, o *order.Order) error {
	return m.Called(ctx, o).Error(0)
}

func (m *MockOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	o, _ := args.Get(0).(*order.Order)
	return o, args.Error(1)
}

func (m *MockOrderRepository) Claim(ctx context.Context, o *order.Order, requireApproval bool) error {
	return m.Called(ctx, o, requireApproval).Error(0)
}

func (m *MockOrderRepository) UpdateStatus(ctx context.Context, o *order.Order, from order.Status) error {
	return m.Called(ctx, o, from).Error(0)
}

func (m *MockOrderRepository) Approve(ctx context.Context, o *order.Order) error {
	return m.Called(ctx, o).Error(0)
}

func (m *MockOrderRepository) UpdatePoints(ctx context.Context, o *order.Order) error {
	return m.Called(ctx, o).Error(0)
}

func (m *MockOrderRepository) ListActiveByCourier(ctx context.Context, courierID kernel.UUID) ([]*order.Order, error) {
	args := m.Called(ctx, courierID)
	orders, _ := args.Get(0).([]*order.Order)
	return orders, args.Error(1)
}

func (m *MockOrderRepository) ListMissingPoints(ctx context.Context, limit int) ([]*order.Order, error) {
	args := m.Called(ctx, limit)
	orders, _ := args.Get(0).([]*order.Order)
	return orders, args.Error(1)
}

type MockLocationRepository struct{ mock.Mock }

func (m *MockLocationRepository) Save(ctx context.Context, r *tracking.Report) error {
	return m.Called(ctx, r).Error(0)
}

func (m *MockLocationRepository) GetLatest(ctx context.Context, courierID kernel.UUID) (*tracking.Report, error) {
	args := m.Called(ctx, courierID)
	r, _ := args.Get(0).(*tracking.Report)
	return r, args.Error(1)
}

// MockUoW satisfies both commands.OrderUoW and commands.UoW.
type MockUoW struct{ mock.Mock }

func (m *MockUoW) Begin(ctx context.Context) error    { return m.Called(ctx).Error(0) }
func (m *MockUoW) Commit(ctx context.Context) error   { return m.Called(ctx).Error(0) }
func (m *MockUoW) Rollback(ctx context.Context) error { return m.Called(ctx).Error(0) }

func (m *MockUoW) OrderRepository() ports.OrderRepository {
	return m.Called().Get(0).(ports.OrderRepository)
}

func (m *MockUoW) LocationRepository() ports.LocationRepository {
	return m.Called().Get(0).(ports.LocationRepository)
}

type orderUoWFactory struct{ uow *MockUoW }

func (f orderUoWFactory) Create() commands.OrderUoW { return f.uow }

type uowFactory struct{ uow *MockUoW }

func (f uowFactory) Create() commands.UoW { return f.uow }

type MockNotifier struct{ mock.Mock }

func (m *MockNotifier) Push(ctx context.Context, userID kernel.UUID, update ports.LocationUpdate) error {
	return m.Called(ctx, userID, update).Error(0)
}

type MockGeocoder struct{ mock.Mock }

func (m *MockGeocoder) Geocode(ctx context.Context, address string) (kernel.Location, error) {
	args := m.Called(ctx, address)
	loc, _ := args.Get(0).(kernel.Location)
	return loc, args.Error(1)
}

type orderParties struct {
	business kernel.UUID
	customer kernel.UUID
}

func newPendingOrder() (*order.Order, orderParties) {
	p := orderParties{business: kernel.NewUUID(), customer: kernel.NewUUID()}
	pickup, _ := order.NewAddress("Moda Cd. 12, Kadıköy", "+90 555 000 0001")
	delivery, _ := order.NewAddress("Barbaros Blv. 45, Beşiktaş", "+90 555 000 0002")
	parcel, _ := order.NewParcel("documents", nil, nil, "")
	fee, _ := order.NewFee(5000, order.DefaultCommissionPercent)
	o, _ := order.NewOrder(kernel.NewUUID(), p.business, p.customer, pickup, delivery, parcel, fee, fixedNow)
	o.ClearEvents()
	return o, p
}

func newAssignedOrder(courier kernel.UUID) (*order.Order, orderParties) {
	o, p := newPendingOrder()
	_ = o.Assign(courier, false, fixedNow)
	o.ClearEvents()
	return o, p
}
