package jobs

import (
	"context"
	"log/slog"
	"time"

	"kargo/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
)

const (
	DefaultGeocodeSchedule  = "@every 1m"
	DefaultGeocodeBatchSize = 50
	geocodeRunTimeout       = 45 * time.Second
)

type pointsResolver interface {
	Handle(ctx context.Context, cmd commands.ResolveOrderPointsCommand) (int, error)
}

// GeocodeJob fills in missing pickup and delivery coordinates in the
// background so order creation never waits on the maps API.
type GeocodeJob struct {
	handler   pointsResolver
	schedule  string
	batchSize int
	cron      *cron.Cron
	logger    *slog.Logger
}

func NewGeocodeJob(handler pointsResolver, schedule string, batchSize int, logger *slog.Logger) *GeocodeJob {
	if schedule == "" {
		schedule = DefaultGeocodeSchedule
	}
	if batchSize <= 0 {
		batchSize = DefaultGeocodeBatchSize
	}
	return &GeocodeJob{
		handler:   handler,
		schedule:  schedule,
		batchSize: batchSize,
		cron:      cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger:    logger.With("component", "geocode_job"),
	}
}

func (j *GeocodeJob) Name() string { return "geocode" }

func (j *GeocodeJob) Start() error {
	if _, err := j.cron.AddFunc(j.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), geocodeRunTimeout)
		defer cancel()
		j.Run(ctx)
	}); err != nil {
		return err
	}

	j.cron.Start()
	j.logger.Info("geocode job started", "schedule", j.schedule, "batch_size", j.batchSize)
	return nil
}

// Run resolves one batch. Failures are logged and retried on the next tick.
func (j *GeocodeJob) Run(ctx context.Context) {
	cmd, err := commands.NewResolveOrderPointsCommand(j.batchSize)
	if err != nil {
		j.logger.ErrorContext(ctx, "invalid geocode batch", "error", err)
		return
	}

	resolved, err := j.handler.Handle(ctx, cmd)
	if err != nil {
		j.logger.ErrorContext(ctx, "geocode run failed", "resolved", resolved, "error", err)
		return
	}
	if resolved > 0 {
		j.logger.InfoContext(ctx, "order points resolved", "count", resolved)
	}
}

// Stop waits for a running batch to finish.
func (j *GeocodeJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.Info("geocode job stopped")
}
