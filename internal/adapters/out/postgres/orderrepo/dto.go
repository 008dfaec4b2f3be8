// Package orderrepo persists the order aggregate and its status history with GORM.
package orderrepo

import (
	"time"

	"kargo/internal/core/domain/model/kernel"
	"kargo/internal/core/domain/model/order"

	"github.com/google/uuid"
)

// OrderDTO is the orders table. The (status, created_at) index serves the
// unassigned pool listing.
type OrderDTO struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey"`
	BusinessID uuid.UUID  `gorm:"type:uuid;not null;index"`
	CustomerID uuid.UUID  `gorm:"type:uuid;not null;index"`
	CourierID  *uuid.UUID `gorm:"type:uuid;index"`

	Pickup   AddressDTO `gorm:"embedded;embeddedPrefix:pickup_"`
	Delivery AddressDTO `gorm:"embedded;embeddedPrefix:delivery_"`

	Description   string `gorm:"not null"`
	WeightKg      *float64
	DeclaredValue *int64
	Instructions  string

	DeliveryFee       int64 `gorm:"not null"`
	CommissionPercent int   `gorm:"not null"`

	Status      string  `gorm:"type:varchar(16);not null;index:idx_orders_status_created,priority:1"`
	CancelledBy *string `gorm:"type:varchar(16)"`

	CreatedAt   time.Time `gorm:"not null;autoCreateTime:false;index:idx_orders_status_created,priority:2"`
	UpdatedAt   time.Time `gorm:"not null;autoUpdateTime:false"`
	ApprovedAt  *time.Time
	AssignedAt  *time.Time
	PickedUpAt  *time.Time
	InTransitAt *time.Time
	DeliveredAt *time.Time
	CancelledAt *time.Time
}

func (OrderDTO) TableName() string {
	return "orders"
}

// AddressDTO is embedded twice, as pickup_* and delivery_* columns.
type AddressDTO struct {
	Address   string `gorm:"not null"`
	Phone     string `gorm:"not null"`
	Latitude  *float64
	Longitude *float64
}

// StatusEventDTO is one row of the append-only status history. FromStatus is
// NULL for the creation row.
type StatusEventDTO struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderID    uuid.UUID `gorm:"type:uuid;not null;index"`
	FromStatus *string   `gorm:"type:varchar(16)"`
	ToStatus   string    `gorm:"type:varchar(16);not null"`
	ActorID    uuid.UUID `gorm:"type:uuid;not null"`
	ActorRole  string    `gorm:"type:varchar(16);not null"`
	OccurredAt time.Time `gorm:"not null"`
}

func (StatusEventDTO) TableName() string {
	return "order_status_events"
}

func fromDomain(o *order.Order) OrderDTO {
	dto := OrderDTO{
		ID:                o.ID().Bytes(),
		BusinessID:        o.BusinessID().Bytes(),
		CustomerID:        o.CustomerID().Bytes(),
		CourierID:         rawID(o.Courier()),
		Pickup:            addressFromDomain(o.Pickup()),
		Delivery:          addressFromDomain(o.Delivery()),
		Description:       o.Parcel().Description(),
		WeightKg:          o.Parcel().WeightKg(),
		DeclaredValue:     o.Parcel().DeclaredValue(),
		Instructions:      o.Parcel().Instructions(),
		DeliveryFee:       o.Fee().Amount(),
		CommissionPercent: o.Fee().CommissionPercent(),
		Status:            o.Status().String(),
		CreatedAt:         o.CreatedAt(),
		UpdatedAt:         o.UpdatedAt(),
		ApprovedAt:        o.ApprovedAt(),
		AssignedAt:        o.AssignedAt(),
		PickedUpAt:        o.PickedUpAt(),
		InTransitAt:       o.InTransitAt(),
		DeliveredAt:       o.DeliveredAt(),
		CancelledAt:       o.CancelledAt(),
	}
	if by := o.CancelledBy(); by != nil {
		s := by.String()
		dto.CancelledBy = &s
	}
	return dto
}

func addressFromDomain(a order.Address) AddressDTO {
	dto := AddressDTO{Address: a.Text(), Phone: a.Phone()}
	if p, ok := a.Point(); ok {
		lat, lng := p.Latitude(), p.Longitude()
		dto.Latitude, dto.Longitude = &lat, &lng
	}
	return dto
}

func toDomain(dto OrderDTO) (*order.Order, error) {
	var (
		s   order.State
		err error
	)

	if s.ID, err = kernel.UUIDFromBytes(dto.ID[:]); err != nil {
		return nil, err
	}
	if s.BusinessID, err = kernel.UUIDFromBytes(dto.BusinessID[:]); err != nil {
		return nil, err
	}
	if s.CustomerID, err = kernel.UUIDFromBytes(dto.CustomerID[:]); err != nil {
		return nil, err
	}
	if dto.CourierID != nil {
		courierID, courierErr := kernel.UUIDFromBytes(dto.CourierID[:])
		if courierErr != nil {
			return nil, courierErr
		}
		s.CourierID = &courierID
	}

	if s.Pickup, err = addressToDomain(dto.Pickup); err != nil {
		return nil, err
	}
	if s.Delivery, err = addressToDomain(dto.Delivery); err != nil {
		return nil, err
	}
	if s.Parcel, err = order.NewParcel(dto.Description, dto.WeightKg, dto.DeclaredValue, dto.Instructions); err != nil {
		return nil, err
	}
	if s.Fee, err = order.NewFee(dto.DeliveryFee, dto.CommissionPercent); err != nil {
		return nil, err
	}
	if s.Status, err = order.ParseStatus(dto.Status); err != nil {
		return nil, err
	}
	if dto.CancelledBy != nil {
		role, roleErr := kernel.ParseRole(*dto.CancelledBy)
		if roleErr != nil {
			return nil, roleErr
		}
		s.CancelledBy = &role
	}

	s.CreatedAt = dto.CreatedAt.UTC()
	s.UpdatedAt = dto.UpdatedAt.UTC()
	s.ApprovedAt = utc(dto.ApprovedAt)
	s.AssignedAt = utc(dto.AssignedAt)
	s.PickedUpAt = utc(dto.PickedUpAt)
	s.InTransitAt = utc(dto.InTransitAt)
	s.DeliveredAt = utc(dto.DeliveredAt)
	s.CancelledAt = utc(dto.CancelledAt)

	return order.RestoreOrder(s)
}

func addressToDomain(dto AddressDTO) (order.Address, error) {
	a, err := order.NewAddress(dto.Address, dto.Phone)
	if err != nil {
		return order.Address{}, err
	}
	if dto.Latitude == nil || dto.Longitude == nil {
		return a, nil
	}
	point, err := kernel.NewLocation(*dto.Latitude, *dto.Longitude)
	if err != nil {
		return order.Address{}, err
	}
	return a.WithPoint(point)
}

func eventsFromDomain(events []order.StatusChanged) []StatusEventDTO {
	dtos := make([]StatusEventDTO, 0, len(events))
	for _, e := range events {
		dto := StatusEventDTO{
			ID:         e.ID.Bytes(),
			OrderID:    e.OrderID.Bytes(),
			ToStatus:   e.To.String(),
			ActorID:    e.ActorID.Bytes(),
			ActorRole:  e.ActorRole.String(),
			OccurredAt: e.OccurredAt,
		}
		if e.From != order.Unknown {
			from := e.From.String()
			dto.FromStatus = &from
		}
		dtos = append(dtos, dto)
	}
	return dtos
}

func rawID(id *kernel.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	raw := id.Bytes()
	return &raw
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}
