package queries_test

import (
	"testing"
	"time"

	"kargo/internal/adapters/out/postgres/locationrepo"
	"kargo/internal/adapters/out/postgres/orderrepo"
	"kargo/internal/adapters/out/postgres/storetest"
	"kargo/internal/core/domain/model/kernel"
	"kargo/internal/core/domain/model/order"
	"kargo/internal/core/domain/model/tracking"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const timeout = 3 * time.Second

var base = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

type noopTracker struct{}

func (noopTracker) TrackAggregate(kernel.UUID, any) {}

type fixture struct {
	t        *testing.T
	db       *gorm.DB
	orders   *orderrepo.GormOrderRepository
	location *locationrepo.GormLocationRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := storetest.OpenSQLite(t)
	return &fixture{
		t:        t,
		db:       db,
		orders:   orderrepo.NewGormOrderRepository(db, noopTracker{}, timeout),
		location: locationrepo.NewGormLocationRepository(db, timeout),
	}
}

func (f *fixture) order(business, customer kernel.UUID, createdAt time.Time, mutate func(*order.Order)) *order.Order {
	f.t.Helper()
	pickup, err := order.NewAddress("Moda Cd. 12", "+90 555 000 0001")
	require.NoError(f.t, err)
	delivery, err := order.NewAddress("Barbaros Blv. 45", "+90 555 000 0002")
	require.NoError(f.t, err)
	parcel, err := order.NewParcel("documents", nil, nil, "")
	require.NoError(f.t, err)
	fee, err := order.NewFee(5000, order.DefaultCommissionPercent)
	require.NoError(f.t, err)

	o, err := order.NewOrder(kernel.NewUUID(), business, customer, pickup, delivery, parcel, fee, createdAt)
	require.NoError(f.t, err)
	if mutate != nil {
		mutate(o)
	}
	require.NoError(f.t, f.orders.Add(f.t.Context(), o))
	return o
}

func (f *fixture) report(courier kernel.UUID, lat, lng float64, at time.Time) {
	f.t.Helper()
	r, err := tracking.NewReport(courier, lat, lng, 5, at, at)
	require.NoError(f.t, err)
	require.NoError(f.t, f.location.Save(f.t.Context(), r))
}

func claimedBy(t *testing.T, courier kernel.UUID, at time.Time) func(*order.Order) {
	return func(o *order.Order) {
		require.NoError(t, o.Assign(courier, false, at))
	}
}
