// Package events holds the wire form of order status changes shared by the
// broker publishers, plus a publisher that only logs.
package events

import (
	"encoding/json"
	"time"

	"kargo/internal/core/domain/model/order"
)

// StatusChangedMessage is the JSON body of an order.status_changed event.
// From is empty for the creation event.
type StatusChangedMessage struct {
	EventID    string    `json:"event_id"`
	Type       string    `json:"type"`
	OrderID    string    `json:"order_id"`
	BusinessID string    `json:"business_id"`
	CustomerID string    `json:"customer_id"`
	CourierID  string    `json:"courier_id,omitempty"`
	From       string    `json:"from,omitempty"`
	To         string    `json:"to"`
	ActorID    string    `json:"actor_id"`
	ActorRole  string    `json:"actor_role"`
	OccurredAt time.Time `json:"occurred_at"`
}

func NewStatusChangedMessage(e order.StatusChanged) StatusChangedMessage {
	m := StatusChangedMessage{
		EventID:    e.ID.String(),
		Type:       order.StatusChangedEventName,
		OrderID:    e.OrderID.String(),
		BusinessID: e.BusinessID.String(),
		CustomerID: e.CustomerID.String(),
		To:         e.To.String(),
		ActorID:    e.ActorID.String(),
		ActorRole:  e.ActorRole.String(),
		OccurredAt: e.OccurredAt.UTC(),
	}
	if e.CourierID != nil {
		m.CourierID = e.CourierID.String()
	}
	if e.From != order.Unknown {
		m.From = e.From.String()
	}
	return m
}

func Encode(e order.StatusChanged) ([]byte, error) {
	return json.Marshal(NewStatusChangedMessage(e))
}

// RoutingKey is order.<target status>, e.g. order.picked_up.
func RoutingKey(e order.StatusChanged) string {
	return "order." + e.To.String()
}
