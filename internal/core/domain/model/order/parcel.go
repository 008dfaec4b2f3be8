package order

import (
	"fmt"
	"strings"

	"kargo/internal/pkg/errs"
	"kargo/internal/pkg/guard"
)

var ErrParcelIsNotConstructed = errs.NewValueIsRequiredError("parcel must be created via NewParcel")

// Parcel describes what is being carried.
type Parcel struct {
	description   string
	weightKg      *float64
	declaredValue *int64
	instructions  string
	guard         guard.ConstructorGuard
}

// NewParcel requires a description; weight (kg) and declared value (minor
// units) are optional but must be non-negative when given.
func NewParcel(description string, weightKg *float64, declaredValue *int64, instructions string) (Parcel, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return Parcel{}, errs.NewValueIsRequiredError("description")
	}
	if weightKg != nil && *weightKg <= 0 {
		return Parcel{}, errs.NewValueIsInvalidErrorWithCause("weight", fmt.Errorf("%v is not greater than 0", *weightKg))
	}
	if declaredValue != nil && *declaredValue < 0 {
		return Parcel{}, errs.NewValueIsInvalidErrorWithCause("declared value", fmt.Errorf("%d is negative", *declaredValue))
	}

	return Parcel{
		description:   description,
		weightKg:      weightKg,
		declaredValue: declaredValue,
		instructions:  strings.TrimSpace(instructions),
		guard:         guard.NewConstructorGuard(),
	}, nil
}

func (p Parcel) Description() string {
	return p.description
}

func (p Parcel) WeightKg() *float64 {
	return p.weightKg
}

func (p Parcel) DeclaredValue() *int64 {
	return p.declaredValue
}

func (p Parcel) Instructions() string {
	return p.instructions
}

func (p Parcel) Validate() error {
	return p.guard.Validate(ErrParcelIsNotConstructed)
}
