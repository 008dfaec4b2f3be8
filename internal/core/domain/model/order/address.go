package order

import (
	"errors"
	"strings"

	"kargo/internal/core/domain/model/kernel"
	"kargo/internal/pkg/errs"
	"kargo/internal/pkg/guard"
)

var ErrAddressIsNotConstructed = errs.NewValueIsRequiredError("address must be created via NewAddress")

// Address is a pickup or delivery point: the free-text address, a contact
// phone and, once known, its coordinates.
type Address struct {
	text  string
	phone string
	point *kernel.Location
	guard guard.ConstructorGuard
}

func NewAddress(text, phone string) (Address, error) {
	text = strings.TrimSpace(text)
	phone = strings.TrimSpace(phone)

	var err error
	if text == "" {
		err = errors.Join(err, errs.NewValueIsRequiredError("address"))
	}
	if phone == "" {
		err = errors.Join(err, errs.NewValueIsRequiredError("phone"))
	}
	if err != nil {
		return Address{}, err
	}

	return Address{text: text, phone: phone, guard: guard.NewConstructorGuard()}, nil
}

// WithPoint returns a copy of a carrying the given coordinates.
func (a Address) WithPoint(point kernel.Location) (Address, error) {
	if err := point.Validate(); err != nil {
		return Address{}, err
	}
	a.point = &point
	return a, nil
}

func (a Address) Text() string {
	return a.text
}

func (a Address) Phone() string {
	return a.phone
}

// Point returns the coordinates and whether they are known.
func (a Address) Point() (kernel.Location, bool) {
	if a.point == nil {
		return kernel.Location{}, false
	}
	return *a.point, true
}

func (a Address) Validate() error {
	return a.guard.Validate(ErrAddressIsNotConstructed)
}
