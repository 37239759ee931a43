package event

import (
	"sync"

	"github.com/quotewire/backend/internal/domain/shared"
)

// wildcardType subscribes a handler to every event.
const wildcardType = "*"

// HandlerRegistry maps event types to their subscribed handlers.
// Handlers registered without any event type live under the wildcard
// key and receive everything.
type HandlerRegistry struct {
	mu   sync.RWMutex
	subs map[string][]shared.EventHandler
}

func NewHandlerRegistry() *HandlerRegistry {
	return &HandlerRegistry{
		subs: make(map[string][]shared.EventHandler),
	}
}

// Register subscribes handler to the given event types, or to all
// events when none are given.
func (r *HandlerRegistry) Register(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = []string{wildcardType}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, et := range eventTypes {
		r.subs[et] = append(r.subs[et], handler)
	}
}

// Unregister drops handler from every subscription.
func (r *HandlerRegistry) Unregister(handler shared.EventHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for et, handlers := range r.subs {
		kept := handlers[:0]
		for _, h := range handlers {
			if h != handler {
				kept = append(kept, h)
			}
		}
		if len(kept) == 0 {
			delete(r.subs, et)
		} else {
			r.subs[et] = kept
		}
	}
}

// HandlersFor returns the handlers that should see an event of the
// given type: its specific subscribers followed by the wildcard ones.
func (r *HandlerRegistry) HandlersFor(eventType string) []shared.EventHandler {
	r.mu.RLock()
	defer r.mu.RUnlock()

	specific := r.subs[eventType]
	all := r.subs[wildcardType]
	out := make([]shared.EventHandler, 0, len(specific)+len(all))
	out = append(out, specific...)
	out = append(out, all...)
	return out
}
