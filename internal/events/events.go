package events

import (
	"encoding/json"
	"sync"
	"time"
)

// Event types published after a committed local mutation.
const (
	BookingSaved    = "booking.saved"
	BookingDeleted  = "booking.deleted"
	BookingStatus   = "booking.status"
	ProviderSaved   = "provider.saved"
	ProviderDeleted = "provider.deleted"
	ArchivePurged   = "archive.purged"
)

// MutationTypes lists every event that changes the mirrored collections.
var MutationTypes = []string{
	BookingSaved, BookingDeleted, BookingStatus,
	ProviderSaved, ProviderDeleted, ArchivePurged,
}

// Event represents a lightweight domain event.
type Event struct {
	Type      string
	Payload   []byte
	CreatedAt time.Time
}

// EventHandler reacts to an event.
type EventHandler func(event Event) error

// EventBus provides in-process pub/sub for events.
type EventBus struct {
	subscribers map[string][]EventHandler
	mu          sync.RWMutex
}

// NewEventBus constructs an empty bus.
func NewEventBus() *EventBus {
	return &EventBus{subscribers: make(map[string][]EventHandler)}
}

// Subscribe registers a handler for a given event type.
func (b *EventBus) Subscribe(eventType string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// SubscribeAll registers handler for each of the given types.
func (b *EventBus) SubscribeAll(types []string, handler EventHandler) {
	for _, t := range types {
		b.Subscribe(t, handler)
	}
}

// Publish notifies subscribers of the event type.
// Handlers run synchronously; caller decides concurrency model.
func (b *EventBus) Publish(event Event) {
	b.mu.RLock()
	handlers := append([]EventHandler(nil), b.subscribers[event.Type]...)
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	for _, handler := range handlers {
		_ = handler(event)
	}
}

// PublishJSON encodes payload and publishes it under eventType.
func (b *EventBus) PublishJSON(eventType string, payload any) {
	var data []byte
	if payload != nil {
		data, _ = json.Marshal(payload)
	}
	b.Publish(Event{Type: eventType, Payload: data})
}
