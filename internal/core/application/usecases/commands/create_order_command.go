package commands

import (
	"errors"

	"kargo/internal/core/domain/model/kernel"
	"kargo/internal/core/domain/model/order"
	"kargo/internal/pkg/errs"
	"kargo/internal/pkg/guard"
)

var ErrCreateOrderCommandIsNotConstructed = errors.New(
	"CreateOrderCommand must be created via NewCreateOrderCommand constructor",
)

// AddressInput is an address as submitted by the business. Latitude and
// Longitude are optional but must come together.
type AddressInput struct {
	Text      string
	Phone     string
	Latitude  *float64
	Longitude *float64
}

// ParcelInput describes the package being sent.
type ParcelInput struct {
	Description   string
	WeightKg      *float64
	DeclaredValue *int64
	Instructions  string
}

// CreateOrderCommand registers a new pending order on behalf of a business.
// A fee of zero or less is replaced by the configured default by the handler.
//
// Example:
//
//	cmd, err := NewCreateOrderCommand(kernel.NewUUID(), businessID, customerID,
//	    AddressInput{Text: "Moda Cd. 12", Phone: "+90 555 000 0001"},
//	    AddressInput{Text: "Barbaros Blv. 45", Phone: "+90 555 000 0002"},
//	    ParcelInput{Description: "documents"}, 0)
type CreateOrderCommand struct { //nolint:recvcheck //using for validation
	orderID    kernel.UUID
	businessID kernel.UUID
	customerID kernel.UUID
	pickup     order.Address
	delivery   order.Address
	parcel     order.Parcel
	fee        int64

	guard guard.ConstructorGuard
}

func NewCreateOrderCommand(
	orderID, businessID, customerID kernel.UUID,
	pickup, delivery AddressInput,
	parcel ParcelInput,
	fee int64,
) (CreateOrderCommand, error) {
	cmd := CreateOrderCommand{
		fee:   fee,
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		setID(&cmd.orderID, orderID),
		setID(&cmd.businessID, businessID),
		setID(&cmd.customerID, customerID),
		setAddress(&cmd.pickup, pickup),
		setAddress(&cmd.delivery, delivery),
		cmd.setParcel(parcel),
	); err != nil {
		return CreateOrderCommand{}, err
	}

	return cmd, nil
}

func (c CreateOrderCommand) Validate() error {
	return c.guard.Validate(ErrCreateOrderCommandIsNotConstructed)
}

func (c CreateOrderCommand) OrderID() kernel.UUID    { return c.orderID }
func (c CreateOrderCommand) BusinessID() kernel.UUID { return c.businessID }
func (c CreateOrderCommand) CustomerID() kernel.UUID { return c.customerID }
func (c CreateOrderCommand) Pickup() order.Address   { return c.pickup }
func (c CreateOrderCommand) Delivery() order.Address { return c.delivery }
func (c CreateOrderCommand) Parcel() order.Parcel    { return c.parcel }
func (c CreateOrderCommand) Fee() int64              { return c.fee }

func (c *CreateOrderCommand) setParcel(in ParcelInput) error {
	p, err := order.NewParcel(in.Description, in.WeightKg, in.DeclaredValue, in.Instructions)
	if err != nil {
		return err
	}
	c.parcel = p
	return nil
}

func setID(dst *kernel.UUID, id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	*dst = id
	return nil
}

func setAddress(dst *order.Address, in AddressInput) error {
	a, err := order.NewAddress(in.Text, in.Phone)
	if err != nil {
		return err
	}

	if in.Latitude != nil || in.Longitude != nil {
		if in.Latitude == nil || in.Longitude == nil {
			return ErrCoordinatesArePartial
		}
		point, pointErr := kernel.NewLocation(*in.Latitude, *in.Longitude)
		if pointErr != nil {
			return pointErr
		}
		if a, err = a.WithPoint(point); err != nil {
			return err
		}
	}

	*dst = a
	return nil
}

// ErrCoordinatesArePartial is returned when only one of latitude and longitude is given.
var ErrCoordinatesArePartial = errs.NewValueIsInvalidErrorWithCause(
	"coordinates", errors.New("latitude and longitude must be given together"))
