package commands

import (
	"context"
	"errors"
	"log/slog"

	"kargo/internal/core/domain/model/tracking"
	"kargo/internal/core/ports"
	"kargo/internal/pkg/errs"
)

// ReportLocationCommandHandler stores a courier's position and pushes it to
// the customer of every order the courier is carrying. Delivery to customers
// is best effort: a missing or slow connection is logged, never returned.
type ReportLocationCommandHandler struct {
	uowFactory UoWFactory
	notifier   ports.LocationNotifier
	now        ports.Clock
	logger     *slog.Logger
}

func NewReportLocationCommandHandler(
	uowFactory UoWFactory,
	notifier ports.LocationNotifier,
	now ports.Clock,
	logger *slog.Logger,
) ReportLocationCommandHandler {
	return ReportLocationCommandHandler{
		uowFactory: uowFactory,
		notifier:   notifier,
		now:        now,
		logger:     logger.With("component", "location_report"),
	}
}

func (h *ReportLocationCommandHandler) Handle(ctx context.Context, cmd ReportLocationCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	report, err := tracking.NewReport(
		cmd.CourierID(), cmd.Latitude(), cmd.Longitude(), cmd.Accuracy(), cmd.Timestamp(), h.now(),
	)
	if err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.LocationRepository().Save(ctx, report); err != nil {
		return err
	}

	active, err := uow.OrderRepository().ListActiveByCourier(ctx, cmd.CourierID())
	if err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	for _, o := range active {
		update := ports.LocationUpdate{
			OrderID:   o.ID(),
			CourierID: report.CourierID(),
			Latitude:  report.Location().Latitude(),
			Longitude: report.Location().Longitude(),
			Timestamp: report.RecordedAt(),
		}

		pushErr := h.notifier.Push(ctx, o.CustomerID(), update)
		switch {
		case pushErr == nil:
		case errors.Is(pushErr, errs.ErrChannelUnavailable):
			h.logger.DebugContext(ctx, "customer not listening",
				"order_id", o.ID().String(), "customer_id", o.CustomerID().String())
		default:
			h.logger.WarnContext(ctx, "location push failed",
				"order_id", o.ID().String(), "customer_id", o.CustomerID().String(), "error", pushErr)
		}
	}

	return nil
}
