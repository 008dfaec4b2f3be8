package ports

import (
	"context"

	"kargo/internal/core/domain/model/kernel"
	"kargo/internal/core/domain/model/tracking"
)

// LocationRepository keeps the latest report per courier plus an append-only history.
type LocationRepository interface {
	// Save upserts the courier's latest report and appends it to the history.
	Save(ctx context.Context, report *tracking.Report) error

	// GetLatest returns the most recent report or *errs.ObjectNotFoundError.
	GetLatest(ctx context.Context, courierID kernel.UUID) (*tracking.Report, error)
}
