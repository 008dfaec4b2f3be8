package events

import (
	"context"
	"log/slog"

	"kargo/internal/core/domain/model/order"
	"kargo/internal/core/ports"
)

// LogPublisher writes every event to the log. It is the sink when no broker
// is configured.
type LogPublisher struct {
	logger *slog.Logger
}

var _ ports.OrderEventPublisher = (*LogPublisher)(nil)

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger.With("component", "order_events")}
}

func (p *LogPublisher) Publish(ctx context.Context, evts ...order.StatusChanged) error {
	for _, e := range evts {
		msg := NewStatusChangedMessage(e)
		p.logger.InfoContext(ctx, order.StatusChangedEventName,
			"event_id", msg.EventID,
			"order_id", msg.OrderID,
			"from", msg.From,
			"to", msg.To,
			"actor_id", msg.ActorID,
			"actor_role", msg.ActorRole,
		)
	}
	return nil
}
