package cmd

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	kargohttp "kargo/internal/adapters/in/http"
	"kargo/internal/adapters/in/ws"
	"kargo/internal/adapters/out/events"
	"kargo/internal/adapters/out/geocoding"
	"kargo/internal/adapters/out/kafka"
	"kargo/internal/adapters/out/postgres"
	"kargo/internal/adapters/out/rabbitmq"
	"kargo/internal/adapters/out/realtime"
	"kargo/internal/core/application/usecases/commands"
	"kargo/internal/core/application/usecases/queries"
	"kargo/internal/core/domain/services"
	"kargo/internal/core/ports"
	"kargo/internal/jobs"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

const geocodeTimeout = 10 * time.Second

type CompositionRoot struct {
	cfg        Config
	gormDB     *gorm.DB
	uowFactory *postgres.GormUnitOfWorkFactory
	hub        *realtime.Hub
	now        ports.Clock
	logger     *slog.Logger
	closers    []io.Closer
}

// NewCompositionRoot wires the adapters selected by cfg around db. The caller
// runs Hub() and closes the root when done.
func NewCompositionRoot(cfg Config, gormDB *gorm.DB, logger *slog.Logger) (*CompositionRoot, error) {
	root := &CompositionRoot{
		cfg:    cfg,
		gormDB: gormDB,
		hub:    realtime.NewHub(cfg.WSSendBuffer, logger),
		now:    time.Now,
		logger: logger,
	}

	publisher, err := root.newEventPublisher()
	if err != nil {
		return nil, err
	}
	root.uowFactory = postgres.NewGormUnitOfWorkFactory(gormDB, cfg.StoreTimeout, publisher, logger)

	return root, nil
}

func (c *CompositionRoot) newEventPublisher() (ports.OrderEventPublisher, error) {
	switch c.cfg.EventsBroker {
	case BrokerKafka:
		p, err := kafka.Dial(c.cfg.KafkaBrokers, c.cfg.KafkaOrderChangedTopic)
		if err != nil {
			return nil, err
		}
		c.closers = append(c.closers, p)
		c.logger.Info("publishing order events to kafka", "topic", c.cfg.KafkaOrderChangedTopic)
		return c.inBackground(p), nil
	case BrokerRabbitMQ:
		p, err := rabbitmq.Dial(c.cfg.RabbitMQURL, c.cfg.RabbitMQExchange)
		if err != nil {
			return nil, err
		}
		c.closers = append(c.closers, p)
		c.logger.Info("publishing order events to rabbitmq", "exchange", c.cfg.RabbitMQExchange)
		return c.inBackground(p), nil
	default:
		return events.NewLogPublisher(c.logger), nil
	}
}

// inBackground keeps broker round trips off the request path. Its closer is
// registered after the broker's so it drains first.
func (c *CompositionRoot) inBackground(p ports.OrderEventPublisher) ports.OrderEventPublisher {
	async := events.NewAsyncPublisher(p, c.cfg.EventsQueueSize, c.cfg.EventsPublishTimeout, c.logger)
	c.closers = append(c.closers, async)
	return async
}

func (c *CompositionRoot) Hub() *realtime.Hub {
	return c.hub
}

func (c *CompositionRoot) CreateCreateOrderCommandHandler() commands.CreateOrderCommandHandler {
	return commands.NewCreateOrderCommandHandler(c.orderUoWFactory(), c.cfg.DefaultDeliveryFee, c.now)
}

func (c *CompositionRoot) CreateClaimOrderCommandHandler() commands.ClaimOrderCommandHandler {
	return commands.NewClaimOrderCommandHandler(c.orderUoWFactory(), c.cfg.RequireCustomerApproval, c.now)
}

func (c *CompositionRoot) CreateAdvanceOrderCommandHandler() commands.AdvanceOrderCommandHandler {
	return commands.NewAdvanceOrderCommandHandler(c.orderUoWFactory(), c.now)
}

func (c *CompositionRoot) CreateReviewOrderCommandHandler() commands.ReviewOrderCommandHandler {
	return commands.NewReviewOrderCommandHandler(c.orderUoWFactory(), c.now)
}

func (c *CompositionRoot) CreateReportLocationCommandHandler() commands.ReportLocationCommandHandler {
	return commands.NewReportLocationCommandHandler(c.uowFactoryFunc(), c.hub, c.now, c.logger)
}

func (c *CompositionRoot) CreateListAvailableOrdersQueryHandler() queries.ListAvailableOrdersQueryHandler {
	return queries.NewListAvailableOrdersQueryHandler(c.gormDB, c.cfg.StoreTimeout, c.cfg.RequireCustomerApproval)
}

func (c *CompositionRoot) CreateListOrdersForActorQueryHandler() queries.ListOrdersForActorQueryHandler {
	return queries.NewListOrdersForActorQueryHandler(c.gormDB, c.cfg.StoreTimeout)
}

func (c *CompositionRoot) CreateGetOrderQueryHandler() queries.GetOrderQueryHandler {
	return queries.NewGetOrderQueryHandler(c.gormDB, c.cfg.StoreTimeout)
}

func (c *CompositionRoot) CreateGetCourierLocationQueryHandler() queries.GetCourierLocationQueryHandler {
	return queries.NewGetCourierLocationQueryHandler(c.gormDB, c.cfg.StoreTimeout)
}

// CreateRouter builds the HTTP API including the live channel.
func (c *CompositionRoot) CreateRouter(ctx context.Context) (*echo.Echo, error) {
	server := kargohttp.NewServer(services.NewAccessPolicy(), kargohttp.Handlers{
		CreateOrder:     c.CreateCreateOrderCommandHandler(),
		ClaimOrder:      c.CreateClaimOrderCommandHandler(),
		AdvanceOrder:    c.CreateAdvanceOrderCommandHandler(),
		ReviewOrder:     c.CreateReviewOrderCommandHandler(),
		ReportLocation:  c.CreateReportLocationCommandHandler(),
		ListAvailable:   c.CreateListAvailableOrdersQueryHandler(),
		ListForActor:    c.CreateListOrdersForActorQueryHandler(),
		GetOrder:        c.CreateGetOrderQueryHandler(),
		CourierLocation: c.CreateGetCourierLocationQueryHandler(),
	})
	origins := c.cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	live := ws.NewHandler(c.hub, origins, c.logger)

	return kargohttp.NewRouter(ctx, server, live.Serve, kargohttp.RouterConfig{
		JWTSecret:   c.cfg.JWTSecret,
		CORSOrigins: origins,
		Logger:      c.logger,
	})
}

// CreateJobManager schedules background geocoding when a maps key is set.
func (c *CompositionRoot) CreateJobManager() (*jobs.JobManager, error) {
	if c.cfg.GoogleMapsAPIKey == "" {
		c.logger.Info("GOOGLE_MAPS_API_KEY not set, geocoding disabled")
		return jobs.NewJobManager(c.logger), nil
	}

	geocoder, err := geocoding.NewGoogleGeocoder(c.cfg.GoogleMapsAPIKey, geocodeTimeout)
	if err != nil {
		return nil, err
	}
	handler := commands.NewResolveOrderPointsCommandHandler(c.orderUoWFactory(), geocoder, c.logger)
	job := jobs.NewGeocodeJob(&handler, c.cfg.GeocodeSchedule, jobs.DefaultGeocodeBatchSize, c.logger)

	return jobs.NewJobManager(c.logger, job), nil
}

// Close flushes queued events, then releases broker connections.
func (c *CompositionRoot) Close() error {
	var closeErrs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		closeErrs = append(closeErrs, c.closers[i].Close())
	}
	return errors.Join(closeErrs...)
}

func (c *CompositionRoot) orderUoWFactory() commands.OrderUoWFactory {
	return FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) uowFactoryFunc() commands.UoWFactory {
	return FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
}

type FuncOrderUoWFactory func() commands.OrderUoW

func (f FuncOrderUoWFactory) Create() commands.OrderUoW {
	return f()
}

type FuncUoWFactory func() commands.UoW

func (f FuncUoWFactory) Create() commands.UoW {
	return f()
}
