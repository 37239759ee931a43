// Package event delivers domain events to in-process subscribers.
// Quote lifecycle transitions and account signups are published here
// by the application services after their writes commit.
package event

import (
	"context"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/quotewire/backend/internal/domain/shared"
)

// InMemoryEventBus dispatches events synchronously within the
// publishing request. A failing or panicking handler is logged and
// never fails the publish: activity logging must not break a quote
// send or a payment confirmation.
type InMemoryEventBus struct {
	registry *HandlerRegistry
	logger   *zap.Logger
	started  atomic.Bool
}

func NewInMemoryEventBus(logger *zap.Logger) *InMemoryEventBus {
	return &InMemoryEventBus{
		registry: NewHandlerRegistry(),
		logger:   logger,
	}
}

var _ shared.EventBus = (*InMemoryEventBus)(nil)

// Publish delivers each event to its subscribers in order. Always
// returns nil; handler failures are logged per event.
func (b *InMemoryEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	for _, evt := range events {
		for _, handler := range b.registry.HandlersFor(evt.EventType()) {
			if err := b.deliver(ctx, handler, evt); err != nil {
				b.logger.Error("handler failed to process event",
					zap.String("event_type", evt.EventType()),
					zap.String("event_id", evt.EventID().String()),
					zap.Error(err),
				)
			}
		}
	}
	return nil
}

// Subscribe registers a handler. With no explicit eventTypes the
// handler's own EventTypes() declaration is used; an empty declaration
// subscribes it to everything.
func (b *InMemoryEventBus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}
	b.registry.Register(handler, eventTypes...)
	b.logger.Debug("handler subscribed", zap.Strings("event_types", eventTypes))
}

// Unsubscribe drops a handler from all event types.
func (b *InMemoryEventBus) Unsubscribe(handler shared.EventHandler) {
	b.registry.Unregister(handler)
	b.logger.Debug("handler unsubscribed")
}

func (b *InMemoryEventBus) Start(ctx context.Context) error {
	b.started.Store(true)
	b.logger.Info("event bus started")
	return nil
}

func (b *InMemoryEventBus) Stop(ctx context.Context) error {
	b.started.Store(false)
	b.logger.Info("event bus stopped")
	return nil
}

// deliver isolates handler panics so one bad subscriber cannot take
// down the publishing request or starve later subscribers.
func (b *InMemoryEventBus) deliver(ctx context.Context, handler shared.EventHandler, evt shared.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()
	return handler.Handle(ctx, evt)
}
