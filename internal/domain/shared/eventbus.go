package shared

import "context"

// EventHandler consumes domain events. EventTypes declares which
// events the handler wants; an empty declaration means all of them.
type EventHandler interface {
	Handle(ctx context.Context, event DomainEvent) error
	EventTypes() []string
}

// EventPublisher is the narrow interface the application services
// depend on to emit events after a successful write.
type EventPublisher interface {
	Publish(ctx context.Context, events ...DomainEvent) error
}

// EventSubscriber wires handlers up at startup.
type EventSubscriber interface {
	// Subscribe registers a handler, for the given event types or for
	// the handler's own declared types when none are given.
	Subscribe(handler EventHandler, eventTypes ...string)
	Unsubscribe(handler EventHandler)
}

// EventBus is the full bus surface: publish, subscribe and lifecycle.
type EventBus interface {
	EventPublisher
	EventSubscriber
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}
