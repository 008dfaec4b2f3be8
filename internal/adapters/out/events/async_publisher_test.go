package events_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"kargo/internal/adapters/out/events"
	"kargo/internal/core/domain/model/order"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gatedPublisher records batches and holds each one until release is closed.
type gatedPublisher struct {
	started chan struct{}
	release chan struct{}
	err     error

	mu        sync.Mutex
	batches   [][]order.StatusChanged
	deadlines []bool
}

func newGatedPublisher() *gatedPublisher {
	return &gatedPublisher{started: make(chan struct{}, 16), release: make(chan struct{})}
}

func (p *gatedPublisher) Publish(ctx context.Context, evts ...order.StatusChanged) error {
	p.started <- struct{}{}
	<-p.release

	_, hasDeadline := ctx.Deadline()
	p.mu.Lock()
	defer p.mu.Unlock()
	p.batches = append(p.batches, evts)
	p.deadlines = append(p.deadlines, hasDeadline)
	return p.err
}

func (p *gatedPublisher) recorded() [][]order.StatusChanged {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.batches
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func TestAsyncPublisher_ReturnsBeforeBrokerAnswers(t *testing.T) {
	inner := newGatedPublisher()
	p := events.NewAsyncPublisher(inner, 4, time.Second, discardLogger())

	returned := make(chan error, 1)
	go func() { returned <- p.Publish(t.Context(), statusChanged(order.Unknown, order.Pending, nil)) }()

	select {
	case err := <-returned:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Publish waited for the broker")
	}

	<-inner.started
	close(inner.release)
	require.NoError(t, p.Close())

	require.Len(t, inner.recorded(), 1)
	assert.Equal(t, []bool{true}, inner.deadlines)
}

func TestAsyncPublisher_KeepsAcceptanceOrder(t *testing.T) {
	inner := newGatedPublisher()
	close(inner.release)
	p := events.NewAsyncPublisher(inner, 8, time.Second, discardLogger())

	created := statusChanged(order.Unknown, order.Pending, nil)
	assigned := statusChanged(order.Pending, order.Assigned, nil)
	pickedUp := statusChanged(order.Assigned, order.PickedUp, nil)
	require.NoError(t, p.Publish(t.Context(), created))
	require.NoError(t, p.Publish(t.Context(), assigned, pickedUp))
	require.NoError(t, p.Close())

	got := inner.recorded()
	require.Len(t, got, 2)
	assert.Equal(t, []order.StatusChanged{created}, got[0])
	assert.Equal(t, []order.StatusChanged{assigned, pickedUp}, got[1])
}

func TestAsyncPublisher_FullQueueFailsFast(t *testing.T) {
	inner := newGatedPublisher()
	p := events.NewAsyncPublisher(inner, 1, time.Second, discardLogger())

	require.NoError(t, p.Publish(t.Context(), statusChanged(order.Unknown, order.Pending, nil)))
	<-inner.started
	require.NoError(t, p.Publish(t.Context(), statusChanged(order.Pending, order.Assigned, nil)))

	err := p.Publish(t.Context(), statusChanged(order.Pending, order.Cancelled, nil))
	require.ErrorIs(t, err, events.ErrPublishQueueFull)

	close(inner.release)
	require.NoError(t, p.Close())
	assert.Len(t, inner.recorded(), 2)
}

func TestAsyncPublisher_RejectsAfterClose(t *testing.T) {
	inner := newGatedPublisher()
	close(inner.release)
	p := events.NewAsyncPublisher(inner, 1, time.Second, discardLogger())
	require.NoError(t, p.Close())
	require.NoError(t, p.Close())

	err := p.Publish(t.Context(), statusChanged(order.Unknown, order.Pending, nil))

	require.ErrorIs(t, err, events.ErrPublisherClosed)
	assert.Empty(t, inner.recorded())
}

func TestAsyncPublisher_LogsBrokerFailures(t *testing.T) {
	inner := newGatedPublisher()
	inner.err = errors.New("broker unreachable")
	close(inner.release)

	var buf bytes.Buffer
	p := events.NewAsyncPublisher(inner, 1, time.Second, slog.New(slog.NewTextHandler(&buf, nil)))
	require.NoError(t, p.Publish(t.Context(), statusChanged(order.Unknown, order.Pending, nil)))
	require.NoError(t, p.Close())

	assert.Contains(t, buf.String(), "publishing order events failed")
	assert.Contains(t, buf.String(), "broker unreachable")
}
