package quoting

import (
	"time"

	"github.com/google/uuid"
	"github.com/quotewire/backend/internal/domain/quoting"
	"github.com/shopspring/decimal"
)

// QuoteOptionInput is one priced alternative supplied at creation time
type QuoteOptionInput struct {
	Title       string
	Description string
	Price       decimal.Decimal
}

// CreateQuoteInput contains the data needed to create a draft quote
type CreateQuoteInput struct {
	ClientName     string
	ClientEmail    string
	JobDescription string
	Options        []QuoteOptionInput
}

// ListQuotesInput narrows and pages the owner's quote list
type ListQuotesInput struct {
	Page     int
	PageSize int
	Status   string
	Search   string
}

// AcceptQuoteInput identifies the option the client picked
type AcceptQuoteInput struct {
	OptionID uuid.UUID
}

// AcceptQuoteResult carries the hosted checkout redirect
type AcceptQuoteResult struct {
	CheckoutURL string `json:"checkout_url"`
}

// QuoteOptionView is the read model for a single option
type QuoteOptionView struct {
	ID          uuid.UUID       `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Position    int             `json:"position"`
}

// QuoteView is the owner-facing read model for a quote
type QuoteView struct {
	ID               uuid.UUID         `json:"id"`
	ClientID         uuid.UUID         `json:"client_id"`
	ClientName       string            `json:"client_name"`
	ClientEmail      string            `json:"client_email"`
	JobDescription   string            `json:"job_description"`
	Status           string            `json:"status"`
	UniqueLinkID     uuid.UUID         `json:"unique_link_id"`
	Options          []QuoteOptionView `json:"options"`
	AcceptedOptionID *uuid.UUID        `json:"accepted_option_id,omitempty"`
	SentAt           *time.Time        `json:"sent_at,omitempty"`
	AcceptedAt       *time.Time        `json:"accepted_at,omitempty"`
	PaidAt           *time.Time        `json:"paid_at,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// PublicQuoteView is the client-facing read model resolved through the
// unique link. It never exposes the owner's account identifier.
type PublicQuoteView struct {
	BusinessName     string            `json:"business_name"`
	ClientName       string            `json:"client_name"`
	JobDescription   string            `json:"job_description"`
	Status           string            `json:"status"`
	Options          []QuoteOptionView `json:"options"`
	AcceptedOptionID *uuid.UUID        `json:"accepted_option_id,omitempty"`
	SentAt           *time.Time        `json:"sent_at,omitempty"`
	PaidAt           *time.Time        `json:"paid_at,omitempty"`
}

func newOptionViews(options []quoting.QuoteOption) []QuoteOptionView {
	views := make([]QuoteOptionView, 0, len(options))
	for _, opt := range options {
		views = append(views, QuoteOptionView{
			ID:          opt.ID,
			Title:       opt.Title,
			Description: opt.Description,
			Price:       opt.Price,
			Position:    opt.Position,
		})
	}
	return views
}

func newQuoteView(quote *quoting.Quote, client *quoting.Client) QuoteView {
	view := QuoteView{
		ID:               quote.ID,
		ClientID:         quote.ClientID,
		JobDescription:   quote.JobDescription,
		Status:           string(quote.Status),
		UniqueLinkID:     quote.UniqueLinkID,
		Options:          newOptionViews(quote.Options),
		AcceptedOptionID: quote.AcceptedOptionID,
		SentAt:           quote.SentAt,
		AcceptedAt:       quote.AcceptedAt,
		PaidAt:           quote.PaidAt,
		CreatedAt:        quote.CreatedAt,
		UpdatedAt:        quote.UpdatedAt,
	}
	if client != nil {
		view.ClientName = client.Name
		view.ClientEmail = client.Email
	}
	return view
}

func newPublicQuoteView(quote *quoting.Quote, client *quoting.Client, businessName string) PublicQuoteView {
	view := PublicQuoteView{
		BusinessName:     businessName,
		JobDescription:   quote.JobDescription,
		Status:           string(quote.Status),
		Options:          newOptionViews(quote.Options),
		AcceptedOptionID: quote.AcceptedOptionID,
		SentAt:           quote.SentAt,
		PaidAt:           quote.PaidAt,
	}
	if client != nil {
		view.ClientName = client.Name
	}
	return view
}
