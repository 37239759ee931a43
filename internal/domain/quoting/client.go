package quoting

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/quotewire/backend/internal/domain/shared"
)

// Client represents a business's customer contact.
// Clients are deduplicated per (owner, email): quoting the same address
// again updates the existing record instead of inserting a duplicate.
type Client struct {
	shared.OwnedAggregateRoot
	Name  string `gorm:"type:varchar(200);not null"`
	Email string `gorm:"type:varchar(200);not null;uniqueIndex:idx_client_owner_email,priority:2"`
}

// TableName returns the table name for GORM
func (Client) TableName() string {
	return "clients"
}

// NewClient creates a new client contact
func NewClient(ownerID uuid.UUID, name, email string) (*Client, error) {
	if ownerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_OWNER", "Owner ID cannot be empty")
	}
	if err := validateClientName(name); err != nil {
		return nil, err
	}
	normalized, err := NormalizeEmail(email)
	if err != nil {
		return nil, err
	}

	return &Client{
		OwnedAggregateRoot: shared.NewOwnedAggregateRoot(ownerID),
		Name:               name,
		Email:              normalized,
	}, nil
}

// Rename updates the client's display name
func (c *Client) Rename(name string) error {
	if err := validateClientName(name); err != nil {
		return err
	}

	c.Name = name
	c.Touch()

	return nil
}

// NormalizeEmail lowercases and validates an email address.
// The normalized form is what the (owner, email) dedupe key is built on.
func NormalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validateEmail(email); err != nil {
		return "", err
	}
	return email, nil
}

func validateClientName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_CLIENT_NAME", "Client name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_CLIENT_NAME", "Client name cannot exceed 200 characters")
	}
	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot be empty")
	}
	if len(email) > 200 {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot exceed 200 characters")
	}
	// Basic email validation
	emailRegex := regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	if !emailRegex.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}
	return nil
}
