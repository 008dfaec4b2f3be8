package commands

import (
	"errors"
	"time"

	"kargo/internal/core/domain/model/kernel"
	"kargo/internal/pkg/guard"
)

var ErrReportLocationCommandIsNotConstructed = errors.New(
	"ReportLocationCommand must be created via NewReportLocationCommand constructor",
)

// ReportLocationCommand carries one position fix from a courier's device.
// Coordinate ranges are checked by the handler so that a bad fix surfaces as
// *errs.InvalidLocationError.
type ReportLocationCommand struct { //nolint:recvcheck //using for validation
	courierID kernel.UUID
	latitude  float64
	longitude float64
	accuracy  float64
	timestamp time.Time

	guard guard.ConstructorGuard
}

func NewReportLocationCommand(
	courierID kernel.UUID,
	latitude, longitude, accuracy float64,
	timestamp time.Time,
) (ReportLocationCommand, error) {
	cmd := ReportLocationCommand{
		latitude:  latitude,
		longitude: longitude,
		accuracy:  accuracy,
		timestamp: timestamp,
		guard:     guard.NewConstructorGuard(),
	}
	if err := setID(&cmd.courierID, courierID); err != nil {
		return ReportLocationCommand{}, err
	}
	return cmd, nil
}

func (c ReportLocationCommand) Validate() error {
	return c.guard.Validate(ErrReportLocationCommandIsNotConstructed)
}

func (c ReportLocationCommand) CourierID() kernel.UUID { return c.courierID }
func (c ReportLocationCommand) Latitude() float64      { return c.latitude }
func (c ReportLocationCommand) Longitude() float64     { return c.longitude }
func (c ReportLocationCommand) Accuracy() float64      { return c.accuracy }
func (c ReportLocationCommand) Timestamp() time.Time   { return c.timestamp }
