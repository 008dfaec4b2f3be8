package commands

import (
	"context"
	"log/slog"

	"kargo/internal/core/domain/model/kernel"
	"kargo/internal/core/domain/model/order"
	"kargo/internal/core/ports"
)

// ResolveOrderPointsCommandHandler fills in missing coordinates with the
// geocoder. An address that cannot be geocoded is skipped and retried on the
// next run; the order itself is never blocked.
type ResolveOrderPointsCommandHandler struct {
	uowFactory OrderUoWFactory
	geocoder   ports.Geocoder
	logger     *slog.Logger
}

func NewResolveOrderPointsCommandHandler(
	uowFactory OrderUoWFactory,
	geocoder ports.Geocoder,
	logger *slog.Logger,
) ResolveOrderPointsCommandHandler {
	return ResolveOrderPointsCommandHandler{
		uowFactory: uowFactory,
		geocoder:   geocoder,
		logger:     logger.With("component", "order_geocoding"),
	}
}

// Handle returns how many orders got new coordinates.
func (h *ResolveOrderPointsCommandHandler) Handle(ctx context.Context, cmd ResolveOrderPointsCommand) (int, error) {
	if err := cmd.Validate(); err != nil {
		return 0, err
	}

	// Geocoding calls are slow; no transaction is held across them.
	repo := h.uowFactory.Create().OrderRepository()

	orders, err := repo.ListMissingPoints(ctx, cmd.BatchSize())
	if err != nil {
		return 0, err
	}

	resolved := 0
	for _, o := range orders {
		changed := h.resolve(ctx, o.Pickup(), o.ResolvePickupPoint, o, "pickup")
		changed = h.resolve(ctx, o.Delivery(), o.ResolveDeliveryPoint, o, "delivery") || changed
		if !changed {
			continue
		}

		if err = repo.UpdatePoints(ctx, o); err != nil {
			return resolved, err
		}
		resolved++
	}

	return resolved, nil
}

func (h *ResolveOrderPointsCommandHandler) resolve(
	ctx context.Context,
	addr order.Address,
	set func(point kernel.Location) error,
	o *order.Order,
	which string,
) bool {
	if _, known := addr.Point(); known {
		return false
	}

	point, err := h.geocoder.Geocode(ctx, addr.Text())
	if err == nil {
		err = set(point)
	}
	if err != nil {
		h.logger.WarnContext(ctx, "geocoding failed",
			"order_id", o.ID().String(), "address", which, "error", err)
		return false
	}
	return true
}
