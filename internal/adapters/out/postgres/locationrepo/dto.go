// Package locationrepo stores courier position reports: one latest row per
// courier plus an append-only history.
package locationrepo

import (
	"time"

	"kargo/internal/core/domain/model/kernel"
	"kargo/internal/core/domain/model/tracking"

	"github.com/google/uuid"
)

type LatestLocationDTO struct {
	CourierID  uuid.UUID `gorm:"type:uuid;primaryKey"`
	Latitude   float64   `gorm:"not null"`
	Longitude  float64   `gorm:"not null"`
	Accuracy   float64   `gorm:"not null"`
	RecordedAt time.Time `gorm:"not null"`
}

func (LatestLocationDTO) TableName() string {
	return "courier_locations"
}

type LocationHistoryDTO struct {
	ID         uint64    `gorm:"primaryKey;autoIncrement"`
	CourierID  uuid.UUID `gorm:"type:uuid;not null;index:idx_location_history_courier_time,priority:1"`
	Latitude   float64   `gorm:"not null"`
	Longitude  float64   `gorm:"not null"`
	Accuracy   float64   `gorm:"not null"`
	RecordedAt time.Time `gorm:"not null;index:idx_location_history_courier_time,priority:2"`
}

func (LocationHistoryDTO) TableName() string {
	return "courier_location_history"
}

func fromDomain(r *tracking.Report) LatestLocationDTO {
	return LatestLocationDTO{
		CourierID:  r.CourierID().Bytes(),
		Latitude:   r.Location().Latitude(),
		Longitude:  r.Location().Longitude(),
		Accuracy:   r.Accuracy(),
		RecordedAt: r.RecordedAt(),
	}
}

func historyFromDomain(r *tracking.Report) LocationHistoryDTO {
	latest := fromDomain(r)
	return LocationHistoryDTO{
		CourierID:  latest.CourierID,
		Latitude:   latest.Latitude,
		Longitude:  latest.Longitude,
		Accuracy:   latest.Accuracy,
		RecordedAt: latest.RecordedAt,
	}
}

func toDomain(dto LatestLocationDTO) (*tracking.Report, error) {
	courierID, err := kernel.UUIDFromBytes(dto.CourierID[:])
	if err != nil {
		return nil, err
	}
	loc, err := kernel.NewLocation(dto.Latitude, dto.Longitude)
	if err != nil {
		return nil, err
	}
	return tracking.RestoreReport(courierID, loc, dto.Accuracy, dto.RecordedAt)
}
