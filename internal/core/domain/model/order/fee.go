package order

import (
	"fmt"

	"kargo/internal/pkg/errs"
	"kargo/internal/pkg/guard"
)

// DefaultCommissionPercent is the platform's cut of every delivery fee.
const DefaultCommissionPercent = 15

// MaxFeeAmount keeps amount*percent inside int64.
const MaxFeeAmount int64 = 1_000_000_000_000

var ErrFeeIsNotConstructed = errs.NewValueIsRequiredError("fee must be created via NewFee")

// Fee is the delivery fee in minor currency units (kuruş) together with the
// commission rate that applied when the order was created.
type Fee struct {
	amount            int64
	commissionPercent int
	guard             guard.ConstructorGuard
}

func NewFee(amount int64, commissionPercent int) (Fee, error) {
	if amount <= 0 {
		return Fee{}, errs.NewValueIsInvalidErrorWithCause("delivery fee", fmt.Errorf("%d is not greater than 0", amount))
	}
	if amount > MaxFeeAmount {
		return Fee{}, errs.NewValueIsOutOfRangeError("delivery fee", amount, 1, MaxFeeAmount)
	}
	if commissionPercent < 0 || commissionPercent > 100 {
		return Fee{}, errs.NewValueIsOutOfRangeError("commission percent", commissionPercent, 0, 100)
	}
	return Fee{amount: amount, commissionPercent: commissionPercent, guard: guard.NewConstructorGuard()}, nil
}

func (f Fee) Amount() int64 {
	return f.amount
}

func (f Fee) CommissionPercent() int {
	return f.commissionPercent
}

// Commission is the platform share, rounded half-up to the nearest minor unit.
func (f Fee) Commission() int64 {
	return (f.amount*int64(f.commissionPercent) + 50) / 100
}

func (f Fee) CourierEarnings() int64 {
	return f.amount - f.Commission()
}

func (f Fee) Validate() error {
	return f.guard.Validate(ErrFeeIsNotConstructed)
}
