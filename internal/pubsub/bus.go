package pubsub

import (
	"sync"

	"github.com/google/uuid"
)

// Handler receives the payload of a named bus event.
type Handler func(payload any)

// Subscription is returned by Bus.Subscribe. Cancel removes the handler;
// calling it more than once is harmless.
type Subscription interface {
	ID() string
	Cancel()
}

type busSubscription struct {
	id    string
	event string
	bus   *Bus
	once  sync.Once
}

func (s *busSubscription) ID() string { return s.id }

func (s *busSubscription) Cancel() {
	s.once.Do(func() { s.bus.remove(s.event, s.id) })
}

type busHandler struct {
	id string
	fn Handler
}

// Bus dispatches named events synchronously to handlers in subscription order.
// It models the host's notification mechanism: handlers run on the caller's
// goroutine, so a handler never observes another event mid-flight.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]busHandler
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{handlers: make(map[string][]busHandler)}
}

// Subscribe registers fn for event and returns a cancellable subscription.
func (b *Bus) Subscribe(event string, fn Handler) Subscription {
	sub := &busSubscription{id: uuid.NewString(), event: event, bus: b}

	b.mu.Lock()
	b.handlers[event] = append(b.handlers[event], busHandler{id: sub.id, fn: fn})
	b.mu.Unlock()

	return sub
}

// Emit calls every handler subscribed to event and returns how many ran.
func (b *Bus) Emit(event string, payload any) int {
	b.mu.RLock()
	handlers := make([]busHandler, len(b.handlers[event]))
	copy(handlers, b.handlers[event])
	b.mu.RUnlock()

	for _, h := range handlers {
		h.fn(payload)
	}
	return len(handlers)
}

// HandlerCount returns the number of handlers subscribed to event.
func (b *Bus) HandlerCount(event string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers[event])
}

func (b *Bus) remove(event, id string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	handlers := b.handlers[event]
	for i, h := range handlers {
		if h.id == id {
			b.handlers[event] = append(handlers[:i:i], handlers[i+1:]...)
			break
		}
	}
	if len(b.handlers[event]) == 0 {
		delete(b.handlers, event)
	}
}
