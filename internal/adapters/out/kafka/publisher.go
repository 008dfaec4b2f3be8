// Package kafka publishes order status changes to a Kafka topic.
package kafka

import (
	"context"
	"fmt"
	"time"

	"kargo/internal/adapters/out/events"
	"kargo/internal/core/domain/model/order"
	"kargo/internal/core/ports"

	"github.com/IBM/sarama"
)

// Publisher sends one message per event, keyed by order id so the events of
// an order stay in one partition and keep their order.
type Publisher struct {
	producer sarama.SyncProducer
	topic    string
}

var _ ports.OrderEventPublisher = (*Publisher)(nil)

func NewConfig() *sarama.Config {
	cfg := sarama.NewConfig()
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 5
	cfg.Producer.Retry.Backoff = 100 * time.Millisecond
	cfg.Producer.Return.Successes = true
	cfg.Producer.Idempotent = true
	cfg.Net.MaxOpenRequests = 1
	cfg.Net.DialTimeout = 10 * time.Second
	cfg.Net.ReadTimeout = 10 * time.Second
	cfg.Net.WriteTimeout = 10 * time.Second
	return cfg
}

// Dial connects a sync producer to brokers.
func Dial(brokers []string, topic string) (*Publisher, error) {
	producer, err := sarama.NewSyncProducer(brokers, NewConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}
	return NewPublisher(producer, topic), nil
}

func NewPublisher(producer sarama.SyncProducer, topic string) *Publisher {
	return &Publisher{producer: producer, topic: topic}
}

func (p *Publisher) Publish(ctx context.Context, evts ...order.StatusChanged) error {
	if len(evts) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msgs := make([]*sarama.ProducerMessage, 0, len(evts))
	for _, e := range evts {
		body, err := events.Encode(e)
		if err != nil {
			return err
		}
		msgs = append(msgs, &sarama.ProducerMessage{
			Topic: p.topic,
			Key:   sarama.StringEncoder(e.OrderID.String()),
			Value: sarama.ByteEncoder(body),
			Headers: []sarama.RecordHeader{
				{Key: []byte("event_type"), Value: []byte(order.StatusChangedEventName)},
				{Key: []byte("status"), Value: []byte(e.To.String())},
			},
			Timestamp: e.OccurredAt,
		})
	}

	if err := p.producer.SendMessages(msgs); err != nil {
		return fmt.Errorf("failed to publish %d order events to %s: %w", len(msgs), p.topic, err)
	}
	return nil
}

func (p *Publisher) Close() error {
	return p.producer.Close()
}
