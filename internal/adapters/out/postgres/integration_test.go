package postgres_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"kargo/internal/adapters/out/postgres"
	"kargo/internal/adapters/out/postgres/storetest"
	"kargo/internal/core/application/usecases/commands"
	"kargo/internal/core/domain/model/kernel"
	"kargo/internal/core/domain/model/order"
	"kargo/internal/core/domain/model/tracking"
	"kargo/internal/pkg/errs"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// PostgresIntegrationTestSuite runs the repositories against a real
// PostgreSQL, where claim races are decided by row locks.
type PostgresIntegrationTestSuite struct {
	suite.Suite
	container *tcpostgres.PostgresContainer
	db        *gorm.DB
	factory   *postgres.GormUnitOfWorkFactory
}

func TestPostgresIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container tests in short mode")
	}
	suite.Run(t, new(PostgresIntegrationTestSuite))
}

func (s *PostgresIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:15-alpine",
		tcpostgres.WithDatabase("kargo"),
		tcpostgres.WithUsername("kargo"),
		tcpostgres.WithPassword("kargo"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	s.Require().NoError(err)
	s.container = container

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	s.Require().NoError(err)

	db, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{})
	s.Require().NoError(err)
	s.db = db

	s.Require().NoError(postgres.Migrate(db))
	s.factory = postgres.NewGormUnitOfWorkFactory(db, 3*time.Second, nil, storetest.DiscardLogger())
}

func (s *PostgresIntegrationTestSuite) TearDownSuite() {
	if s.container != nil {
		s.Require().NoError(s.container.Terminate(context.Background()))
	}
}

func (s *PostgresIntegrationTestSuite) SetupTest() {
	s.Require().NoError(s.db.Exec(
		"TRUNCATE TABLE orders, order_status_events, courier_locations, courier_location_history").Error)
}

func (s *PostgresIntegrationTestSuite) createOrder() kernel.UUID {
	cmd, err := commands.NewCreateOrderCommand(kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(),
		commands.AddressInput{Text: "Moda Cd. 12", Phone: "+90 555 000 0001"},
		commands.AddressInput{Text: "Barbaros Blv. 45", Phone: "+90 555 000 0002"},
		commands.ParcelInput{Description: "documents"}, 4000)
	s.Require().NoError(err)

	h := commands.NewCreateOrderCommandHandler(orderUoWFactory{s.factory}, 5000, clock)
	s.Require().NoError(h.Handle(context.Background(), cmd))
	return cmd.OrderID()
}

func (s *PostgresIntegrationTestSuite) TestConcurrentClaims() {
	orderID := s.createOrder()
	h := commands.NewClaimOrderCommandHandler(orderUoWFactory{s.factory}, false, clock)

	const couriers = 20
	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		wins  int
		lost  int
		start = make(chan struct{})
	)
	for range couriers {
		cmd, err := commands.NewClaimOrderCommand(orderID, kernel.NewUUID())
		s.Require().NoError(err)

		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			err := h.Handle(context.Background(), cmd)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
			case errors.Is(err, errs.ErrAlreadyAssigned):
				lost++
			}
		}()
	}
	close(start)
	wg.Wait()

	s.Equal(1, wins)
	s.Equal(couriers-1, lost)

	var events int64
	s.Require().NoError(s.db.Table("order_status_events").Where("order_id = ?", orderID.Bytes()).Count(&events).Error)
	s.Equal(int64(2), events)
}

func (s *PostgresIntegrationTestSuite) TestRoundTripAndLocations() {
	ctx := context.Background()
	orderID := s.createOrder()
	courier := kernel.NewUUID()

	claim := commands.NewClaimOrderCommandHandler(orderUoWFactory{s.factory}, false, clock)
	cmd, err := commands.NewClaimOrderCommand(orderID, courier)
	s.Require().NoError(err)
	s.Require().NoError(claim.Handle(ctx, cmd))

	uow := s.factory.Create()
	active, err := uow.OrderRepository().ListActiveByCourier(ctx, courier)
	s.Require().NoError(err)
	s.Require().Len(active, 1)
	s.Equal(order.Assigned, active[0].Status())
	s.Equal(int64(4000), active[0].Fee().Amount())

	report, err := tracking.NewReport(courier, 41.0, 29.0, 3, now, now)
	s.Require().NoError(err)
	s.Require().NoError(uow.LocationRepository().Save(ctx, report))

	latest, err := uow.LocationRepository().GetLatest(ctx, courier)
	s.Require().NoError(err)
	s.InDelta(41.0, latest.Location().Latitude(), 1e-9)
	s.WithinDuration(now, latest.RecordedAt(), time.Millisecond)
}
