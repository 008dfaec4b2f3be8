// Package tracking models courier position reports.
package tracking

import (
	"errors"
	"math"
	"time"

	"kargo/internal/core/domain/model/kernel"
	"kargo/internal/pkg/errs"
)

var ErrReportIsNotConstructed = errors.New("location report must be created via NewReport or RestoreReport")

// Report is one position fix sent by a courier's device.
type Report struct {
	courierID  kernel.UUID
	location   kernel.Location
	accuracy   float64
	recordedAt time.Time

	isConstructed bool
}

// NewReport validates a fresh fix. Coordinate or accuracy problems come back
// as *errs.InvalidLocationError; a zero timestamp is replaced by now.
func NewReport(courierID kernel.UUID, latitude, longitude, accuracy float64, recordedAt, now time.Time) (*Report, error) {
	if err := courierID.Validate(); err != nil {
		return nil, err
	}

	loc, err := kernel.NewLocation(latitude, longitude)
	if math.IsNaN(accuracy) || math.IsInf(accuracy, 0) || accuracy < 0 {
		err = errors.Join(err, errs.NewValueIsOutOfRangeError("accuracy", accuracy, 0, "+Inf"))
	}
	if err != nil {
		return nil, errs.NewInvalidLocationError(err)
	}

	if recordedAt.IsZero() {
		recordedAt = now
	}

	return &Report{
		courierID:     courierID,
		location:      loc,
		accuracy:      accuracy,
		recordedAt:    recordedAt.UTC(),
		isConstructed: true,
	}, nil
}

// RestoreReport rebuilds a stored report.
func RestoreReport(courierID kernel.UUID, location kernel.Location, accuracy float64, recordedAt time.Time) (*Report, error) {
	if err := errors.Join(courierID.Validate(), location.Validate()); err != nil {
		return nil, err
	}
	return &Report{
		courierID:     courierID,
		location:      location,
		accuracy:      accuracy,
		recordedAt:    recordedAt.UTC(),
		isConstructed: true,
	}, nil
}

func (r *Report) CourierID() kernel.UUID    { return r.courierID }
func (r *Report) Location() kernel.Location { return r.location }
func (r *Report) Accuracy() float64         { return r.accuracy }
func (r *Report) RecordedAt() time.Time     { return r.recordedAt }

func (r *Report) Validate() error {
	if r == nil || !r.isConstructed {
		return ErrReportIsNotConstructed
	}
	return nil
}
