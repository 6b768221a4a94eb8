package notifier

import (
	"context"
	"sync"
)

// Mock is a mock implementation of the Notifier interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu sync.Mutex

	// Spy for Notify; its error is returned to the caller.
	NotifyFunc func(ctx context.Context, event Event) error

	// Call records
	Events []Event
}

var _ Notifier = (*Mock)(nil)

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{}
}

// Reset clears all call records.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = nil
}

func (m *Mock) Notify(ctx context.Context, event Event) error {
	m.mu.Lock()
	m.Events = append(m.Events, event)
	fn := m.NotifyFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, event)
	}
	return nil
}

// Kinds returns the kinds of all recorded events in order.
func (m *Mock) Kinds() []Kind {
	m.mu.Lock()
	defer m.mu.Unlock()
	kinds := make([]Kind, 0, len(m.Events))
	for _, e := range m.Events {
		kinds = append(kinds, e.Kind)
	}
	return kinds
}

// EventsOfKind returns the recorded events of one kind.
func (m *Mock) EventsOfKind(kind Kind) []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	var events []Event
	for _, e := range m.Events {
		if e.Kind == kind {
			events = append(events, e)
		}
	}
	return events
}
