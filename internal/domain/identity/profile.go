package identity

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/quotewire/backend/internal/domain/shared"
)

// Profile is the public-facing identity of a business account,
// tied one-to-one to a User. The business name is what clients
// see on quotes and checkout pages.
type Profile struct {
	shared.BaseAggregateRoot
	UserID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	BusinessName string    `gorm:"type:varchar(200);not null"`
}

// TableName returns the table name for GORM
func (Profile) TableName() string {
	return "profiles"
}

// NewProfile creates a profile for a user
func NewProfile(userID uuid.UUID, businessName string) (*Profile, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}
	if err := validateBusinessName(businessName); err != nil {
		return nil, err
	}

	return &Profile{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		UserID:            userID,
		BusinessName:      businessName,
	}, nil
}

// Rename updates the business display name
func (p *Profile) Rename(businessName string) error {
	if err := validateBusinessName(businessName); err != nil {
		return err
	}

	p.BusinessName = businessName
	p.Touch()

	return nil
}

func validateBusinessName(name string) error {
	if strings.TrimSpace(name) == "" {
		return shared.NewDomainError("INVALID_BUSINESS_NAME", "Business name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_BUSINESS_NAME", "Business name cannot exceed 200 characters")
	}
	return nil
}

// NormalizeAccountEmail lowercases and validates a login email
func NormalizeAccountEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", shared.NewDomainError("INVALID_EMAIL", "Email cannot be empty")
	}
	if len(email) > 200 {
		return "", shared.NewDomainError("INVALID_EMAIL", "Email cannot exceed 200 characters")
	}
	emailRegex := regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	if !emailRegex.MatchString(email) {
		return "", shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}
	return email, nil
}
