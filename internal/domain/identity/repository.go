package identity

import (
	"context"

	"github.com/google/uuid"
)

// UserRepository defines the interface for account persistence
type UserRepository interface {
	// FindByID finds a user by ID
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)

	// FindByEmail finds a user by normalized email
	FindByEmail(ctx context.Context, email string) (*User, error)

	// ExistsByEmail checks whether an account already uses the email
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// Save creates or updates a user
	Save(ctx context.Context, user *User) error
}

// ProfileRepository defines the interface for profile persistence
type ProfileRepository interface {
	// FindByUserID finds the profile belonging to a user
	FindByUserID(ctx context.Context, userID uuid.UUID) (*Profile, error)

	// FindByUserIDs finds profiles for multiple users
	FindByUserIDs(ctx context.Context, userIDs []uuid.UUID) ([]Profile, error)

	// Save creates or updates a profile
	Save(ctx context.Context, profile *Profile) error
}
