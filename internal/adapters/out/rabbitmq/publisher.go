// Package rabbitmq publishes order status changes to a topic exchange with
// routing keys of the form order.<status>.
package rabbitmq

import (
	"context"
	"fmt"

	"kargo/internal/adapters/out/events"
	"kargo/internal/core/domain/model/order"
	"kargo/internal/core/ports"

	"github.com/streadway/amqp"
)

// Channel is the part of *amqp.Channel the publisher needs.
type Channel interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type Publisher struct {
	channel  Channel
	exchange string
	closers  []func() error
}

var _ ports.OrderEventPublisher = (*Publisher)(nil)

// Dial opens a connection and channel and declares a durable topic exchange.
func Dial(url, exchange string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open RabbitMQ channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}

	p := NewPublisher(ch, exchange)
	p.closers = []func() error{ch.Close, conn.Close}
	return p, nil
}

func NewPublisher(ch Channel, exchange string) *Publisher {
	return &Publisher{channel: ch, exchange: exchange}
}

func (p *Publisher) Publish(ctx context.Context, evts ...order.StatusChanged) error {
	for _, e := range evts {
		if err := ctx.Err(); err != nil {
			return err
		}

		body, err := events.Encode(e)
		if err != nil {
			return err
		}

		key := events.RoutingKey(e)
		err = p.channel.Publish(
			p.exchange,
			key,
			false,
			false,
			amqp.Publishing{
				ContentType:  "application/json",
				Body:         body,
				DeliveryMode: amqp.Persistent,
				MessageId:    e.ID.String(),
				Timestamp:    e.OccurredAt,
				Type:         order.StatusChangedEventName,
				Headers: amqp.Table{
					"order_id":   e.OrderID.String(),
					"status":     e.To.String(),
					"actor_role": e.ActorRole.String(),
				},
			},
		)
		if err != nil {
			return fmt.Errorf("failed to publish %s: %w", key, err)
		}
	}
	return nil
}

func (p *Publisher) Close() error {
	var firstErr error
	for _, c := range p.closers {
		if err := c(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
