package quoting

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/quotewire/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// QuoteStatus represents the lifecycle status of a quote
type QuoteStatus string

const (
	QuoteStatusDraft    QuoteStatus = "draft"
	QuoteStatusSent     QuoteStatus = "sent"
	QuoteStatusAccepted QuoteStatus = "accepted"
	QuoteStatusPaid     QuoteStatus = "paid"
)

// IsValid checks if the status is a valid QuoteStatus
func (s QuoteStatus) IsValid() bool {
	switch s {
	case QuoteStatusDraft, QuoteStatusSent, QuoteStatusAccepted, QuoteStatusPaid:
		return true
	}
	return false
}

// String returns the string representation of QuoteStatus
func (s QuoteStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status.
// Transitions are strictly forward; re-sending a sent quote is the one
// permitted self-transition.
func (s QuoteStatus) CanTransitionTo(target QuoteStatus) bool {
	switch s {
	case QuoteStatusDraft:
		return target == QuoteStatusSent
	case QuoteStatusSent:
		return target == QuoteStatusSent || target == QuoteStatusAccepted
	case QuoteStatusAccepted:
		return target == QuoteStatusPaid
	case QuoteStatusPaid:
		return false // Terminal state
	}
	return false
}

// QuoteOption is one selectable priced alternative within a quote.
// Options are created as a batch with the quote and immutable afterwards.
type QuoteOption struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	QuoteID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	Title       string          `gorm:"type:varchar(200);not null"`
	Description string          `gorm:"type:text"`
	Price       decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Position    int             `gorm:"not null"` // 1-based rank among siblings, preserves input order
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName returns the table name for GORM
func (QuoteOption) TableName() string {
	return "quote_options"
}

// NewQuoteOption creates a new quote option
func NewQuoteOption(quoteID uuid.UUID, title, description string, price decimal.Decimal, position int) (*QuoteOption, error) {
	if title == "" {
		return nil, shared.NewDomainError("INVALID_OPTION_TITLE", "Option title cannot be empty")
	}
	if price.IsNegative() {
		return nil, shared.NewDomainError("INVALID_OPTION_PRICE", "Option price cannot be negative")
	}
	if position < 1 {
		return nil, shared.NewDomainError("INVALID_OPTION_POSITION", "Option position must be 1-based")
	}

	now := time.Now()
	return &QuoteOption{
		ID:          uuid.New(),
		QuoteID:     quoteID,
		Title:       title,
		Description: description,
		Price:       price,
		Position:    position,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Quote represents a quote aggregate root.
// It manages the lifecycle of a job offer from draft to payment.
type Quote struct {
	shared.OwnedAggregateRoot
	ClientID          uuid.UUID     `gorm:"type:uuid;not null;index"`
	JobDescription    string        `gorm:"type:text;not null"`
	Options           []QuoteOption `gorm:"foreignKey:QuoteID"`
	Status            QuoteStatus   `gorm:"type:varchar(20);not null;default:'draft';index"`
	UniqueLinkID      uuid.UUID     `gorm:"type:uuid;not null;uniqueIndex"` // public unguessable identifier, immutable
	AcceptedOptionID  *uuid.UUID    `gorm:"type:uuid"`
	CheckoutSessionID *string       `gorm:"type:varchar(255)"`
	SentAt            *time.Time
	AcceptedAt        *time.Time
	PaidAt            *time.Time
}

// TableName returns the table name for GORM
func (Quote) TableName() string {
	return "quotes"
}

// NewQuote creates a new draft quote with a fresh unique link
func NewQuote(ownerID, clientID uuid.UUID, jobDescription string) (*Quote, error) {
	if ownerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_OWNER", "Owner ID cannot be empty")
	}
	if clientID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CLIENT", "Client ID cannot be empty")
	}
	if jobDescription == "" {
		return nil, shared.NewDomainError("INVALID_JOB_DESCRIPTION", "Job description cannot be empty")
	}

	quote := &Quote{
		OwnedAggregateRoot: shared.NewOwnedAggregateRoot(ownerID),
		ClientID:           clientID,
		JobDescription:     jobDescription,
		Options:            make([]QuoteOption, 0),
		Status:             QuoteStatusDraft,
		UniqueLinkID:       uuid.New(),
	}

	quote.AddDomainEvent(NewQuoteCreatedEvent(quote))

	return quote, nil
}

// AddOption appends a new option at the next position.
// Only allowed while the quote is a draft.
func (q *Quote) AddOption(title, description string, price decimal.Decimal) (*QuoteOption, error) {
	if q.Status != QuoteStatusDraft {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot add options to a non-draft quote")
	}

	option, err := NewQuoteOption(q.ID, title, description, price, len(q.Options)+1)
	if err != nil {
		return nil, err
	}

	q.Options = append(q.Options, *option)
	q.Touch()

	return option, nil
}

// Send marks the quote as sent to the client.
// Re-sending an already-sent quote is allowed and refreshes SentAt.
func (q *Quote) Send() error {
	if !q.Status.CanTransitionTo(QuoteStatusSent) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot send quote in %s status", q.Status))
	}
	if len(q.Options) == 0 {
		return shared.NewDomainError("NO_OPTIONS", "Cannot send quote without options")
	}

	now := time.Now()
	q.Status = QuoteStatusSent
	q.SentAt = &now
	q.UpdatedAt = now

	q.AddDomainEvent(NewQuoteSentEvent(q))

	return nil
}

// Accept records the client's choice of option together with the checkout
// session provisioned for it. The caller must have created the session
// before invoking Accept; a quote is never accepted without one.
func (q *Quote) Accept(optionID uuid.UUID, checkoutSessionID string) error {
	if q.Status != QuoteStatusSent {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot accept quote in %s status", q.Status))
	}
	if checkoutSessionID == "" {
		return shared.NewDomainError("INVALID_CHECKOUT_SESSION", "Checkout session ID cannot be empty")
	}
	if q.GetOption(optionID) == nil {
		return shared.NewDomainError("OPTION_NOT_FOUND", "Option does not belong to this quote")
	}

	now := time.Now()
	q.Status = QuoteStatusAccepted
	q.AcceptedOptionID = &optionID
	q.CheckoutSessionID = &checkoutSessionID
	q.AcceptedAt = &now
	q.UpdatedAt = now

	q.AddDomainEvent(NewQuoteAcceptedEvent(q, optionID))

	return nil
}

// MarkPaid transitions an accepted quote to paid
func (q *Quote) MarkPaid() error {
	if !q.Status.CanTransitionTo(QuoteStatusPaid) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot mark quote paid in %s status", q.Status))
	}

	now := time.Now()
	q.Status = QuoteStatusPaid
	q.PaidAt = &now
	q.UpdatedAt = now

	q.AddDomainEvent(NewQuotePaidEvent(q))

	return nil
}

// GetOption returns an option by its ID, or nil if it does not belong to this quote
func (q *Quote) GetOption(optionID uuid.UUID) *QuoteOption {
	for idx := range q.Options {
		if q.Options[idx].ID == optionID {
			return &q.Options[idx]
		}
	}
	return nil
}

// AcceptedOption returns the accepted option, or nil if none
func (q *Quote) AcceptedOption() *QuoteOption {
	if q.AcceptedOptionID == nil {
		return nil
	}
	return q.GetOption(*q.AcceptedOptionID)
}

// OptionCount returns the number of options in the quote
func (q *Quote) OptionCount() int {
	return len(q.Options)
}

// IsDraft returns true if the quote is in draft status
func (q *Quote) IsDraft() bool {
	return q.Status == QuoteStatusDraft
}

// IsSent returns true if the quote has been sent
func (q *Quote) IsSent() bool {
	return q.Status == QuoteStatusSent
}

// IsAccepted returns true if an option has been accepted
func (q *Quote) IsAccepted() bool {
	return q.Status == QuoteStatusAccepted
}

// IsPaid returns true if the quote has been paid
func (q *Quote) IsPaid() bool {
	return q.Status == QuoteStatusPaid
}

// IsTerminal returns true if the quote is in a terminal state
func (q *Quote) IsTerminal() bool {
	return q.IsPaid()
}

// CanModify returns true if the quote's options can still change
func (q *Quote) CanModify() bool {
	return q.IsDraft()
}
