package events

import (
	"sync"

	"github.com/jscyril/mp3deck/api"
)

var allEventTypes = []api.EventType{
	api.EventStateChange,
	api.EventTrackLoaded,
	api.EventTrackEnded,
	api.EventSeekDegraded,
	api.EventError,
}

// EventBus handles event distribution using channels
type EventBus struct {
	subscribers map[api.EventType][]chan api.PlayerEvent
	mu          sync.RWMutex
}

// NewEventBus creates a new event bus
func NewEventBus() *EventBus {
	return &EventBus{
		subscribers: make(map[api.EventType][]chan api.PlayerEvent),
	}
}

// Subscribe returns a channel for receiving events of the specified type
func (b *EventBus) Subscribe(eventType api.EventType) <-chan api.PlayerEvent {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan api.PlayerEvent, 10)
	b.subscribers[eventType] = append(b.subscribers[eventType], ch)
	return ch
}

// SubscribeAll returns a channel for receiving all event types
func (b *EventBus) SubscribeAll() <-chan api.PlayerEvent {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan api.PlayerEvent, 20)
	for _, eventType := range allEventTypes {
		b.subscribers[eventType] = append(b.subscribers[eventType], ch)
	}
	return ch
}

// Publish broadcasts an event to all subscribers of that event type.
// It never blocks: a subscriber with a full channel misses the event.
func (b *EventBus) Publish(event api.PlayerEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subscribers[event.Type] {
		select {
		case ch <- event:
		default:
		}
	}
}

// Unsubscribe removes a subscriber channel and closes it
func (b *EventBus) Unsubscribe(ch <-chan api.PlayerEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var found chan api.PlayerEvent
	for eventType, subs := range b.subscribers {
		for i, sub := range subs {
			if sub == ch {
				found = sub
				b.subscribers[eventType] = append(subs[:i], subs[i+1:]...)
				break
			}
		}
	}
	if found != nil {
		close(found)
	}
}

// Close closes all subscriber channels
func (b *EventBus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	// SubscribeAll registers one channel under several types
	closed := make(map[chan api.PlayerEvent]bool)

	for _, subs := range b.subscribers {
		for _, ch := range subs {
			if !closed[ch] {
				close(ch)
				closed[ch] = true
			}
		}
	}
	b.subscribers = make(map[api.EventType][]chan api.PlayerEvent)
}
