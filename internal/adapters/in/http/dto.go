package http

import (
	"time"

	"kargo/internal/core/application/usecases/commands"
	"kargo/internal/core/application/usecases/queries"
)

type AddressRequest struct {
	Address   string   `json:"address"`
	Phone     string   `json:"phone"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

func (r AddressRequest) input() commands.AddressInput {
	return commands.AddressInput{
		Text:      r.Address,
		Phone:     r.Phone,
		Latitude:  r.Latitude,
		Longitude: r.Longitude,
	}
}

type PackageRequest struct {
	Description   string   `json:"description"`
	WeightKg      *float64 `json:"weight_kg"`
	DeclaredValue *int64   `json:"declared_value"`
	Instructions  string   `json:"instructions"`
}

type CreateOrderRequest struct {
	CustomerID  string         `json:"customer_id"`
	Pickup      AddressRequest `json:"pickup"`
	Delivery    AddressRequest `json:"delivery"`
	Package     PackageRequest `json:"package"`
	DeliveryFee int64          `json:"delivery_fee"`
}

type AdvanceOrderRequest struct {
	Status string `json:"status"`
}

type ReportLocationRequest struct {
	Latitude  float64    `json:"latitude"`
	Longitude float64    `json:"longitude"`
	Accuracy  float64    `json:"accuracy"`
	Timestamp *time.Time `json:"timestamp"`
}

type AddressResponse struct {
	Address   string   `json:"address"`
	Phone     string   `json:"phone"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

type PackageResponse struct {
	Description   string   `json:"description"`
	WeightKg      *float64 `json:"weight_kg"`
	DeclaredValue *int64   `json:"declared_value"`
	Instructions  string   `json:"instructions,omitempty"`
}

// OrderResponse carries amounts in kuruş.
type OrderResponse struct {
	ID                string          `json:"id"`
	BusinessID        string          `json:"business_id"`
	CustomerID        string          `json:"customer_id"`
	CourierID         *string         `json:"courier_id"`
	Pickup            AddressResponse `json:"pickup"`
	Delivery          AddressResponse `json:"delivery"`
	Package           PackageResponse `json:"package"`
	DeliveryFee       int64           `json:"delivery_fee"`
	CommissionPercent int             `json:"commission_percent"`
	Commission        int64           `json:"commission"`
	CourierEarnings   int64           `json:"courier_earnings"`
	Status            string          `json:"status"`
	CancelledBy       string          `json:"cancelled_by,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
	ApprovedAt        *time.Time      `json:"approved_at"`
	AssignedAt        *time.Time      `json:"assigned_at"`
	PickedUpAt        *time.Time      `json:"picked_up_at"`
	InTransitAt       *time.Time      `json:"in_transit_at"`
	DeliveredAt       *time.Time      `json:"delivered_at"`
	CancelledAt       *time.Time      `json:"cancelled_at"`
}

func newOrderResponse(v queries.OrderView) OrderResponse {
	r := OrderResponse{
		ID:         v.ID.String(),
		BusinessID: v.BusinessID.String(),
		CustomerID: v.CustomerID.String(),
		Pickup:     AddressResponse(v.Pickup),
		Delivery:   AddressResponse(v.Delivery),
		Package: PackageResponse{
			Description:   v.Description,
			WeightKg:      v.WeightKg,
			DeclaredValue: v.DeclaredValue,
			Instructions:  v.Instructions,
		},
		DeliveryFee:       v.DeliveryFee,
		CommissionPercent: v.CommissionPercent,
		Commission:        v.Commission,
		CourierEarnings:   v.CourierEarnings,
		Status:            v.Status,
		CancelledBy:       v.CancelledBy,
		CreatedAt:         v.CreatedAt,
		UpdatedAt:         v.UpdatedAt,
		ApprovedAt:        v.ApprovedAt,
		AssignedAt:        v.AssignedAt,
		PickedUpAt:        v.PickedUpAt,
		InTransitAt:       v.InTransitAt,
		DeliveredAt:       v.DeliveredAt,
		CancelledAt:       v.CancelledAt,
	}
	if v.CourierID != nil {
		id := v.CourierID.String()
		r.CourierID = &id
	}
	return r
}

func newOrderResponses(views []queries.OrderView) []OrderResponse {
	out := make([]OrderResponse, 0, len(views))
	for _, v := range views {
		out = append(out, newOrderResponse(v))
	}
	return out
}

type CourierLocationResponse struct {
	CourierID string    `json:"courier_id"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Accuracy  float64   `json:"accuracy"`
	Timestamp time.Time `json:"timestamp"`
}
