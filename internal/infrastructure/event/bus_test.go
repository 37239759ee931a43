package event

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/quotewire/backend/internal/domain/shared"
)

// funcHandler adapts a function into an EventHandler for tests.
type funcHandler struct {
	types []string
	fn    func(ctx context.Context, evt shared.DomainEvent) error
}

func (h *funcHandler) Handle(ctx context.Context, evt shared.DomainEvent) error {
	return h.fn(ctx, evt)
}

func (h *funcHandler) EventTypes() []string {
	return h.types
}

// recordingHandler collects every event it sees.
type recordingHandler struct {
	mu    sync.Mutex
	types []string
	seen  []shared.DomainEvent
}

func (h *recordingHandler) Handle(ctx context.Context, evt shared.DomainEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.seen = append(h.seen, evt)
	return nil
}

func (h *recordingHandler) EventTypes() []string {
	return h.types
}

func (h *recordingHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.seen)
}

func newTestEvent(eventType string) shared.DomainEvent {
	evt := shared.NewBaseDomainEvent(eventType, "Quote", uuid.New(), uuid.New())
	return &evt
}

func TestInMemoryEventBus_PublishToSubscriber(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	h := &recordingHandler{types: []string{"QuoteSent"}}
	bus.Subscribe(h)

	err := bus.Publish(context.Background(), newTestEvent("QuoteSent"))
	require.NoError(t, err)

	require.Equal(t, 1, h.count())
	assert.Equal(t, "QuoteSent", h.seen[0].EventType())
}

func TestInMemoryEventBus_TypeFiltering(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	h := &recordingHandler{types: []string{"QuotePaid"}}
	bus.Subscribe(h)

	require.NoError(t, bus.Publish(context.Background(),
		newTestEvent("QuoteCreated"),
		newTestEvent("QuotePaid"),
		newTestEvent("QuoteSent"),
	))

	require.Equal(t, 1, h.count())
	assert.Equal(t, "QuotePaid", h.seen[0].EventType())
}

func TestInMemoryEventBus_WildcardHandler(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	h := &recordingHandler{} // no declared types: sees everything
	bus.Subscribe(h)

	require.NoError(t, bus.Publish(context.Background(),
		newTestEvent("QuoteCreated"),
		newTestEvent("UserRegistered"),
	))

	assert.Equal(t, 2, h.count())
}

func TestInMemoryEventBus_ExplicitTypesOverrideHandler(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	h := &recordingHandler{types: []string{"QuoteCreated"}}
	// Subscribe for a different type than the handler declares.
	bus.Subscribe(h, "QuoteAccepted")

	require.NoError(t, bus.Publish(context.Background(),
		newTestEvent("QuoteCreated"),
		newTestEvent("QuoteAccepted"),
	))

	require.Equal(t, 1, h.count())
	assert.Equal(t, "QuoteAccepted", h.seen[0].EventType())
}

func TestInMemoryEventBus_HandlerErrorDoesNotFailPublish(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	failing := &funcHandler{
		types: []string{"QuoteSent"},
		fn: func(context.Context, shared.DomainEvent) error {
			return errors.New("notification backend down")
		},
	}
	healthy := &recordingHandler{types: []string{"QuoteSent"}}
	bus.Subscribe(failing)
	bus.Subscribe(healthy)

	err := bus.Publish(context.Background(), newTestEvent("QuoteSent"))
	require.NoError(t, err, "publish never surfaces handler errors")
	assert.Equal(t, 1, healthy.count(), "later handlers still run")
}

func TestInMemoryEventBus_HandlerPanicIsContained(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	panicking := &funcHandler{
		types: []string{"QuoteAccepted"},
		fn: func(context.Context, shared.DomainEvent) error {
			panic("nil option")
		},
	}
	healthy := &recordingHandler{types: []string{"QuoteAccepted"}}
	bus.Subscribe(panicking)
	bus.Subscribe(healthy)

	require.NotPanics(t, func() {
		_ = bus.Publish(context.Background(), newTestEvent("QuoteAccepted"))
	})
	assert.Equal(t, 1, healthy.count())
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	h := &recordingHandler{types: []string{"QuoteSent"}}
	bus.Subscribe(h)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("QuoteSent")))
	bus.Unsubscribe(h)
	require.NoError(t, bus.Publish(context.Background(), newTestEvent("QuoteSent")))

	assert.Equal(t, 1, h.count())
}

func TestInMemoryEventBus_StartStop(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	require.NoError(t, bus.Start(context.Background()))
	require.NoError(t, bus.Stop(context.Background()))
}
