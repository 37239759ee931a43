package quoting

import (
	"github.com/google/uuid"
	"github.com/quotewire/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeQuote = "Quote"

// Event type constants
const (
	EventTypeQuoteCreated  = "QuoteCreated"
	EventTypeQuoteSent     = "QuoteSent"
	EventTypeQuoteAccepted = "QuoteAccepted"
	EventTypeQuotePaid     = "QuotePaid"
)

// QuoteCreatedEvent is raised when a new quote is created
type QuoteCreatedEvent struct {
	shared.BaseDomainEvent
	QuoteID  uuid.UUID `json:"quote_id"`
	ClientID uuid.UUID `json:"client_id"`
}

// NewQuoteCreatedEvent creates a new QuoteCreatedEvent
func NewQuoteCreatedEvent(quote *Quote) *QuoteCreatedEvent {
	return &QuoteCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeQuoteCreated, AggregateTypeQuote, quote.ID, quote.OwnerID),
		QuoteID:         quote.ID,
		ClientID:        quote.ClientID,
	}
}

// EventType returns the event type name
func (e *QuoteCreatedEvent) EventType() string {
	return EventTypeQuoteCreated
}

// QuoteSentEvent is raised when a quote is sent (or re-sent) to its client
type QuoteSentEvent struct {
	shared.BaseDomainEvent
	QuoteID      uuid.UUID `json:"quote_id"`
	UniqueLinkID uuid.UUID `json:"unique_link_id"`
}

// NewQuoteSentEvent creates a new QuoteSentEvent
func NewQuoteSentEvent(quote *Quote) *QuoteSentEvent {
	return &QuoteSentEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeQuoteSent, AggregateTypeQuote, quote.ID, quote.OwnerID),
		QuoteID:         quote.ID,
		UniqueLinkID:    quote.UniqueLinkID,
	}
}

// EventType returns the event type name
func (e *QuoteSentEvent) EventType() string {
	return EventTypeQuoteSent
}

// QuoteAcceptedEvent is raised when the client accepts an option
type QuoteAcceptedEvent struct {
	shared.BaseDomainEvent
	QuoteID  uuid.UUID `json:"quote_id"`
	OptionID uuid.UUID `json:"option_id"`
}

// NewQuoteAcceptedEvent creates a new QuoteAcceptedEvent
func NewQuoteAcceptedEvent(quote *Quote, optionID uuid.UUID) *QuoteAcceptedEvent {
	return &QuoteAcceptedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeQuoteAccepted, AggregateTypeQuote, quote.ID, quote.OwnerID),
		QuoteID:         quote.ID,
		OptionID:        optionID,
	}
}

// EventType returns the event type name
func (e *QuoteAcceptedEvent) EventType() string {
	return EventTypeQuoteAccepted
}

// QuotePaidEvent is raised when payment for the accepted option is confirmed
type QuotePaidEvent struct {
	shared.BaseDomainEvent
	QuoteID uuid.UUID `json:"quote_id"`
}

// NewQuotePaidEvent creates a new QuotePaidEvent
func NewQuotePaidEvent(quote *Quote) *QuotePaidEvent {
	return &QuotePaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeQuotePaid, AggregateTypeQuote, quote.ID, quote.OwnerID),
		QuoteID:         quote.ID,
	}
}

// EventType returns the event type name
func (e *QuotePaidEvent) EventType() string {
	return EventTypeQuotePaid
}
