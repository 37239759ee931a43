package quoting

import (
	"context"

	"github.com/quotewire/backend/internal/domain/quoting"
	"github.com/quotewire/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// QuoteActivityHandler records quote lifecycle events as structured activity
// log entries. It gives operators a single stream to follow a quote from
// creation through payment.
type QuoteActivityHandler struct {
	logger *zap.Logger
}

// NewQuoteActivityHandler creates a new activity handler
func NewQuoteActivityHandler(logger *zap.Logger) *QuoteActivityHandler {
	return &QuoteActivityHandler{logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *QuoteActivityHandler) EventTypes() []string {
	return []string{
		quoting.EventTypeQuoteCreated,
		quoting.EventTypeQuoteSent,
		quoting.EventTypeQuoteAccepted,
		quoting.EventTypeQuotePaid,
	}
}

// Handle writes one activity entry per quote lifecycle event
func (h *QuoteActivityHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	fields := []zap.Field{
		zap.String("event_id", event.EventID().String()),
		zap.String("quote_id", event.AggregateID().String()),
		zap.String("owner_id", event.OwnerID().String()),
		zap.Time("occurred_at", event.OccurredAt()),
	}

	switch e := event.(type) {
	case *quoting.QuoteCreatedEvent:
		fields = append(fields, zap.String("client_id", e.ClientID.String()))
		h.logger.Info("activity: quote created", fields...)
	case *quoting.QuoteSentEvent:
		fields = append(fields, zap.String("link_id", e.UniqueLinkID.String()))
		h.logger.Info("activity: quote sent", fields...)
	case *quoting.QuoteAcceptedEvent:
		fields = append(fields, zap.String("option_id", e.OptionID.String()))
		h.logger.Info("activity: quote accepted", fields...)
	case *quoting.QuotePaidEvent:
		h.logger.Info("activity: quote paid", fields...)
	default:
		h.logger.Debug("activity: unhandled event type",
			zap.String("event_type", event.EventType()))
	}

	return nil
}

// Ensure QuoteActivityHandler implements shared.EventHandler
var _ shared.EventHandler = (*QuoteActivityHandler)(nil)
