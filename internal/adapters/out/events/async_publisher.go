package events

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"kargo/internal/core/domain/model/order"
	"kargo/internal/core/ports"
)

var (
	ErrPublishQueueFull = errors.New("order event queue is full")
	ErrPublisherClosed  = errors.New("order event publisher is closed")
)

// AsyncPublisher hands events to a single background worker so a slow broker
// never holds up the request that committed them. Batches reach next in the
// order they were accepted, each under a context bounded by timeout.
type AsyncPublisher struct {
	next    ports.OrderEventPublisher
	timeout time.Duration
	logger  *slog.Logger

	mu     sync.RWMutex
	closed bool
	queue  chan []order.StatusChanged
	done   chan struct{}
}

var _ ports.OrderEventPublisher = (*AsyncPublisher)(nil)

// NewAsyncPublisher starts the worker. Close stops it after the queue drains.
func NewAsyncPublisher(next ports.OrderEventPublisher, queueSize int, timeout time.Duration, logger *slog.Logger) *AsyncPublisher {
	p := &AsyncPublisher{
		next:    next,
		timeout: timeout,
		logger:  logger.With("component", "async_order_events"),
		queue:   make(chan []order.StatusChanged, queueSize),
		done:    make(chan struct{}),
	}
	go p.run()
	return p
}

// Publish enqueues evts and returns at once. It fails instead of blocking
// when the queue is full.
func (p *AsyncPublisher) Publish(_ context.Context, evts ...order.StatusChanged) error {
	if len(evts) == 0 {
		return nil
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPublisherClosed
	}

	batch := make([]order.StatusChanged, len(evts))
	copy(batch, evts)
	select {
	case p.queue <- batch:
		return nil
	default:
		return ErrPublishQueueFull
	}
}

func (p *AsyncPublisher) run() {
	defer close(p.done)
	for batch := range p.queue {
		p.deliver(batch)
	}
}

func (p *AsyncPublisher) deliver(batch []order.StatusChanged) {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	if err := p.next.Publish(ctx, batch...); err != nil {
		p.logger.Error("publishing order events failed",
			"order_id", batch[0].OrderID.String(), "events", len(batch), "error", err)
	}
}

// Close rejects further events and waits for the accepted ones to be
// delivered. It does not close next.
func (p *AsyncPublisher) Close() error {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.queue)
	}
	p.mu.Unlock()

	<-p.done
	return nil
}
