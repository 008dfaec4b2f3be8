package queries

import (
	"context"
	"errors"
	"time"

	"kargo/internal/core/domain/model/kernel"
	"kargo/internal/pkg/errs"

	"gorm.io/gorm"
)

// CourierLocationView is the latest accepted report of a courier.
type CourierLocationView struct {
	CourierID  kernel.UUID
	Latitude   float64
	Longitude  float64
	Accuracy   float64
	RecordedAt time.Time
}

type GetCourierLocationQueryHandler struct {
	db      *gorm.DB
	timeout time.Duration
}

func NewGetCourierLocationQueryHandler(db *gorm.DB, timeout time.Duration) GetCourierLocationQueryHandler {
	return GetCourierLocationQueryHandler{db: db, timeout: timeout}
}

func (h GetCourierLocationQueryHandler) Handle(
	ctx context.Context,
	query GetCourierLocationQuery,
) (CourierLocationView, error) {
	if err := query.Validate(); err != nil {
		return CourierLocationView{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	var row struct {
		Latitude   float64
		Longitude  float64
		Accuracy   float64
		RecordedAt time.Time
	}
	err := h.db.WithContext(ctx).Table("courier_locations").
		Select("latitude", "longitude", "accuracy", "recorded_at").
		Where("courier_id = ?", query.CourierID().Bytes()).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return CourierLocationView{}, errs.NewObjectNotFoundError("courier location", query.CourierID().String())
		}
		return CourierLocationView{}, errs.NewStoreUnavailableError("get courier location", err)
	}

	return CourierLocationView{
		CourierID:  query.CourierID(),
		Latitude:   row.Latitude,
		Longitude:  row.Longitude,
		Accuracy:   row.Accuracy,
		RecordedAt: row.RecordedAt.UTC(),
	}, nil
}
