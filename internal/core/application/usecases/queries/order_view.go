package queries

import (
	"time"

	"kargo/internal/core/domain/model/kernel"
	"kargo/internal/core/domain/model/order"

	"github.com/google/uuid"
)

// OrderView is the read model of an order. Amounts are in kuruş.
type OrderView struct {
	ID         kernel.UUID
	BusinessID kernel.UUID
	CustomerID kernel.UUID
	CourierID  *kernel.UUID

	Pickup   AddressView
	Delivery AddressView

	Description   string
	WeightKg      *float64
	DeclaredValue *int64
	Instructions  string

	DeliveryFee       int64
	CommissionPercent int
	Commission        int64
	CourierEarnings   int64

	Status      string
	CancelledBy string

	CreatedAt   time.Time
	UpdatedAt   time.Time
	ApprovedAt  *time.Time
	AssignedAt  *time.Time
	PickedUpAt  *time.Time
	InTransitAt *time.Time
	DeliveredAt *time.Time
	CancelledAt *time.Time
}

type AddressView struct {
	Address   string
	Phone     string
	Latitude  *float64
	Longitude *float64
}

// orderRow mirrors the orders table column by column.
type orderRow struct {
	ID         uuid.UUID
	BusinessID uuid.UUID
	CustomerID uuid.UUID
	CourierID  *uuid.UUID

	PickupAddress     string
	PickupPhone       string
	PickupLatitude    *float64
	PickupLongitude   *float64
	DeliveryAddress   string
	DeliveryPhone     string
	DeliveryLatitude  *float64
	DeliveryLongitude *float64

	Description   string
	WeightKg      *float64
	DeclaredValue *int64
	Instructions  string

	DeliveryFee       int64
	CommissionPercent int

	Status      string
	CancelledBy *string

	CreatedAt   time.Time
	UpdatedAt   time.Time
	ApprovedAt  *time.Time
	AssignedAt  *time.Time
	PickedUpAt  *time.Time
	InTransitAt *time.Time
	DeliveredAt *time.Time
	CancelledAt *time.Time
}

const ordersTable = "orders"

func (r orderRow) view() (OrderView, error) {
	id, err := kernel.UUIDFromBytes(r.ID[:])
	if err != nil {
		return OrderView{}, err
	}
	businessID, err := kernel.UUIDFromBytes(r.BusinessID[:])
	if err != nil {
		return OrderView{}, err
	}
	customerID, err := kernel.UUIDFromBytes(r.CustomerID[:])
	if err != nil {
		return OrderView{}, err
	}
	fee, err := order.NewFee(r.DeliveryFee, r.CommissionPercent)
	if err != nil {
		return OrderView{}, err
	}

	v := OrderView{
		ID:         id,
		BusinessID: businessID,
		CustomerID: customerID,
		Pickup: AddressView{
			Address:   r.PickupAddress,
			Phone:     r.PickupPhone,
			Latitude:  r.PickupLatitude,
			Longitude: r.PickupLongitude,
		},
		Delivery: AddressView{
			Address:   r.DeliveryAddress,
			Phone:     r.DeliveryPhone,
			Latitude:  r.DeliveryLatitude,
			Longitude: r.DeliveryLongitude,
		},
		Description:       r.Description,
		WeightKg:          r.WeightKg,
		DeclaredValue:     r.DeclaredValue,
		Instructions:      r.Instructions,
		DeliveryFee:       fee.Amount(),
		CommissionPercent: fee.CommissionPercent(),
		Commission:        fee.Commission(),
		CourierEarnings:   fee.CourierEarnings(),
		Status:            r.Status,
		CreatedAt:         r.CreatedAt.UTC(),
		UpdatedAt:         r.UpdatedAt.UTC(),
		ApprovedAt:        utc(r.ApprovedAt),
		AssignedAt:        utc(r.AssignedAt),
		PickedUpAt:        utc(r.PickedUpAt),
		InTransitAt:       utc(r.InTransitAt),
		DeliveredAt:       utc(r.DeliveredAt),
		CancelledAt:       utc(r.CancelledAt),
	}
	if r.CourierID != nil {
		courierID, courierErr := kernel.UUIDFromBytes(r.CourierID[:])
		if courierErr != nil {
			return OrderView{}, courierErr
		}
		v.CourierID = &courierID
	}
	if r.CancelledBy != nil {
		v.CancelledBy = *r.CancelledBy
	}
	return v, nil
}

// IsParty reports whether userID is the business, the customer or the bound
// courier of the order.
func (v OrderView) IsParty(userID kernel.UUID) bool {
	if v.BusinessID.IsEqual(userID) || v.CustomerID.IsEqual(userID) {
		return true
	}
	return v.CourierID != nil && v.CourierID.IsEqual(userID)
}

func views(rows []orderRow) ([]OrderView, error) {
	out := make([]OrderView, 0, len(rows))
	for _, r := range rows {
		v, err := r.view()
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}
