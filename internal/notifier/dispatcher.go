package notifier

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/training-match/internal/metrics"
)

// ErrDispatcherClosed is returned by Notify after Close.
var ErrDispatcherClosed = errors.New("dispatcher closed")

// Dispatcher queues events and delivers them to a sink from a background
// goroutine, so a slow or failing sink never holds up the caller. When the
// queue is full the event is dropped.
type Dispatcher struct {
	sink    Notifier
	metrics metrics.Metrics
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	queue  chan Event
	done   chan struct{}
}

// NewDispatcher starts a dispatcher with room for buffer pending events.
// Each delivery is bounded by timeout.
func NewDispatcher(sink Notifier, buffer int, timeout time.Duration, m metrics.Metrics) *Dispatcher {
	if buffer <= 0 {
		buffer = 1
	}
	d := &Dispatcher{
		sink:    sink,
		metrics: m,
		timeout: timeout,
		queue:   make(chan Event, buffer),
		done:    make(chan struct{}),
	}
	go d.run()
	return d
}

// Notify enqueues the event without blocking.
func (d *Dispatcher) Notify(_ context.Context, event Event) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrDispatcherClosed
	}
	select {
	case d.queue <- event:
	default:
		log.Warn("Notification queue full, dropping event", "kind", event.Kind, "code", event.MatchCode)
		d.metrics.IncNotificationsDropped()
	}
	return nil
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for event := range d.queue {
		d.deliver(event)
	}
}

func (d *Dispatcher) deliver(event Event) {
	ctx := context.Background()
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}
	if err := d.sink.Notify(ctx, event); err != nil {
		log.Error("Failed to deliver notification", "error", err, "kind", event.Kind, "code", event.MatchCode)
		d.metrics.IncNotificationsFailed(string(event.Kind))
		return
	}
	d.metrics.IncNotificationsSent(string(event.Kind))
}

// Close stops accepting events and waits until the queue is drained or ctx ends.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	select {
	case <-d.done:
		log.Info("Notification dispatcher stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
