// Package events carries domain events from the queue engine to in-process
// consumers (WebSocket hub, MQ bridge, metrics). The engine publishes and
// moves on; it never waits for consumers.
package events

import (
	"sync"
	"time"
)

// Domain event types emitted by the queue engine.
const (
	QueueEntryAdded    = "queue.entry_added"
	QueueCalled        = "queue.called"
	QueueStatusChanged = "queue.status_changed"
)

// Event is one domain event with a loosely typed payload. Payload keys are
// fixed per event type and documented at the emit site.
type Event struct {
	Type       string         `json:"event"`
	OccurredAt time.Time      `json:"occurredAt"`
	Payload    map[string]any `json:"payload"`
}

// Handler consumes one event. Handlers run on their own goroutine and must
// tolerate concurrent invocation.
type Handler func(Event)

// Bus is a minimal in-process publish/subscribe fan-out.
type Bus struct {
	mu       sync.RWMutex
	handlers []Handler
}

// NewBus returns an empty bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers a handler for all subsequent events.
func (b *Bus) Subscribe(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, h)
}

// Publish delivers the event to every handler asynchronously.
func (b *Bus) Publish(e Event) {
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers))
	copy(handlers, b.handlers)
	b.mu.RUnlock()
	for _, h := range handlers {
		go h(e)
	}
}
