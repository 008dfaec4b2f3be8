package events_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"kargo/internal/adapters/out/events"
	"kargo/internal/core/domain/model/kernel"
	"kargo/internal/core/domain/model/order"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func statusChanged(from, to order.Status, courier *kernel.UUID) order.StatusChanged {
	return order.StatusChanged{
		ID:         kernel.NewUUID(),
		OrderID:    kernel.NewUUID(),
		BusinessID: kernel.NewUUID(),
		CustomerID: kernel.NewUUID(),
		CourierID:  courier,
		From:       from,
		To:         to,
		ActorID:    kernel.NewUUID(),
		ActorRole:  kernel.RoleCourier,
		OccurredAt: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC),
	}
}

func TestEncode(t *testing.T) {
	courier := kernel.NewUUID()
	e := statusChanged(order.Assigned, order.PickedUp, &courier)

	body, err := events.Encode(e)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, "order.status_changed", got["type"])
	assert.Equal(t, e.OrderID.String(), got["order_id"])
	assert.Equal(t, courier.String(), got["courier_id"])
	assert.Equal(t, "assigned", got["from"])
	assert.Equal(t, "picked_up", got["to"])
	assert.Equal(t, "courier", got["actor_role"])
	assert.Equal(t, "2026-03-14T09:00:00Z", got["occurred_at"])
}

func TestEncode_CreationOmitsFromAndCourier(t *testing.T) {
	body, err := events.Encode(statusChanged(order.Unknown, order.Pending, nil))
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(body, &got))
	assert.NotContains(t, got, "from")
	assert.NotContains(t, got, "courier_id")
	assert.Equal(t, "pending", got["to"])
}

func TestRoutingKey(t *testing.T) {
	assert.Equal(t, "order.in_transit", events.RoutingKey(statusChanged(order.PickedUp, order.InTransit, nil)))
	assert.Equal(t, "order.cancelled", events.RoutingKey(statusChanged(order.Pending, order.Cancelled, nil)))
}

func TestLogPublisher(t *testing.T) {
	var buf bytes.Buffer
	p := events.NewLogPublisher(slog.New(slog.NewJSONHandler(&buf, nil)))

	err := p.Publish(t.Context(), statusChanged(order.InTransit, order.Delivered, nil))

	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"to":"delivered"`)
	assert.Contains(t, buf.String(), `"component":"order_events"`)
}
