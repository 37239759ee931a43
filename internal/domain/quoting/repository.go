package quoting

import (
	"context"

	"github.com/google/uuid"
	"github.com/quotewire/backend/internal/domain/shared"
)

// QuoteRepository defines the interface for quote persistence
type QuoteRepository interface {
	// FindByID finds a quote by ID, options preloaded in position order
	FindByID(ctx context.Context, id uuid.UUID) (*Quote, error)

	// FindByIDForOwner finds a quote by ID for a specific owner.
	// A quote owned by someone else is indistinguishable from a missing one.
	FindByIDForOwner(ctx context.Context, ownerID, id uuid.UUID) (*Quote, error)

	// FindByUniqueLink resolves a quote by its public link identifier
	FindByUniqueLink(ctx context.Context, uniqueLinkID uuid.UUID) (*Quote, error)

	// FindAllForOwner finds all quotes for an owner, newest-created first
	FindAllForOwner(ctx context.Context, ownerID uuid.UUID, filter shared.Filter) ([]Quote, error)

	// Save creates or updates a quote together with its options
	Save(ctx context.Context, quote *Quote) error

	// UpdateStatusIf performs the conditional transition fromStatus -> quote.Status.
	// The update only applies while the stored row still carries fromStatus and
	// the loaded version; a concurrent winner makes it fail with
	// CONCURRENT_MODIFICATION so exactly one racer succeeds.
	UpdateStatusIf(ctx context.Context, quote *Quote, fromStatus QuoteStatus) error

	// CountForOwner counts quotes for an owner
	CountForOwner(ctx context.Context, ownerID uuid.UUID, filter shared.Filter) (int64, error)
}

// ClientRepository defines the interface for client persistence
type ClientRepository interface {
	// FindByID finds a client by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Client, error)

	// FindByEmail finds a client by normalized email within an owner's book
	FindByEmail(ctx context.Context, ownerID uuid.UUID, email string) (*Client, error)

	// FindByIDs finds multiple clients by their IDs
	FindByIDs(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) ([]Client, error)

	// Upsert inserts the client or, when (owner, email) already exists,
	// updates the stored name and loads the existing record into client
	Upsert(ctx context.Context, client *Client) error

	// Save creates or updates a client
	Save(ctx context.Context, client *Client) error
}
