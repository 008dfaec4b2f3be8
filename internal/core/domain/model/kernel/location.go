package kernel

import (
	"errors"
	"fmt"
	"math"

	"kargo/internal/pkg/errs"
	"kargo/internal/pkg/guard"
)

const (
	MinLatitude  = -90.0
	MaxLatitude  = 90.0
	MinLongitude = -180.0
	MaxLongitude = 180.0
)

// ErrLocationIsNotConstructed is returned when a zero Location is validated.
var ErrLocationIsNotConstructed = errs.NewValueIsRequiredError("location must be created via NewLocation")

// Location is a WGS84 point. The zero value is invalid: (0, 0) is a real place
// in the Gulf of Guinea, so a constructed flag tells it apart from "unset".
//
// Example:
//
//	loc, err := kernel.NewLocation(41.0082, 28.9784)
//	if err != nil {
//	    // latitude or longitude out of range
//	}
type Location struct { //nolint:recvcheck //using for validation
	latitude  float64
	longitude float64
	guard     guard.ConstructorGuard
}

// NewLocation validates latitude in [-90, 90] and longitude in [-180, 180].
// NaN and infinities are rejected.
func NewLocation(latitude, longitude float64) (Location, error) {
	l := Location{guard: guard.NewConstructorGuard()}
	if err := errors.Join(l.setLatitude(latitude), l.setLongitude(longitude)); err != nil {
		return Location{}, err
	}
	return l, nil
}

func (l Location) Latitude() float64 {
	return l.latitude
}

func (l Location) Longitude() float64 {
	return l.longitude
}

func (l Location) IsEqual(other Location) bool {
	return l.latitude == other.latitude && l.longitude == other.longitude
}

func (l Location) String() string {
	return fmt.Sprintf("Location(%.6f,%.6f)", l.latitude, l.longitude)
}

func (l Location) Validate() error {
	return l.guard.Validate(ErrLocationIsNotConstructed)
}

func (l *Location) setLatitude(v float64) error {
	if math.IsNaN(v) || v < MinLatitude || v > MaxLatitude {
		return errs.NewValueIsOutOfRangeError("latitude", v, MinLatitude, MaxLatitude)
	}
	l.latitude = v
	return nil
}

func (l *Location) setLongitude(v float64) error {
	if math.IsNaN(v) || v < MinLongitude || v > MaxLongitude {
		return errs.NewValueIsOutOfRangeError("longitude", v, MinLongitude, MaxLongitude)
	}
	l.longitude = v
	return nil
}
