package locationrepo

import (
	"context"
	"errors"
	"time"

	"kargo/internal/core/domain/model/kernel"
	"kargo/internal/core/domain/model/tracking"
	"kargo/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormLocationRepository implements ports.LocationRepository.
type GormLocationRepository struct {
	db      *gorm.DB
	timeout time.Duration
}

func NewGormLocationRepository(db *gorm.DB, timeout time.Duration) *GormLocationRepository {
	return &GormLocationRepository{db: db, timeout: timeout}
}

// Save upserts the latest row and appends a history row. Reports that arrive
// out of order still replace the latest row; the history keeps both.
func (r *GormLocationRepository) Save(ctx context.Context, report *tracking.Report) error {
	if err := report.Validate(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	db := r.db.WithContext(ctx)

	latest := fromDomain(report)
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "courier_id"}},
		UpdateAll: true,
	}).Create(&latest).Error; err != nil {
		return errs.NewStoreUnavailableError("save latest location", err)
	}

	history := historyFromDomain(report)
	if err := db.Create(&history).Error; err != nil {
		return errs.NewStoreUnavailableError("append location history", err)
	}

	return nil
}

func (r *GormLocationRepository) GetLatest(ctx context.Context, courierID kernel.UUID) (*tracking.Report, error) {
	if err := courierID.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var dto LatestLocationDTO
	if err := r.db.WithContext(ctx).First(&dto, "courier_id = ?", courierID.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("courier location", courierID.String())
		}
		return nil, errs.NewStoreUnavailableError("get latest location", err)
	}

	return toDomain(dto)
}
