package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/quotewire/backend/internal/domain/identity"
	"github.com/quotewire/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormProfileRepository implements ProfileRepository using GORM
type GormProfileRepository struct {
	db *gorm.DB
}

// NewGormProfileRepository creates a new GormProfileRepository
func NewGormProfileRepository(db *gorm.DB) *GormProfileRepository {
	return &GormProfileRepository{db: db}
}

var _ identity.ProfileRepository = (*GormProfileRepository)(nil)

// FindByUserID finds the profile belonging to a user
func (r *GormProfileRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*identity.Profile, error) {
	var profile identity.Profile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &profile, nil
}

// FindByUserIDs finds profiles for multiple users
func (r *GormProfileRepository) FindByUserIDs(ctx context.Context, userIDs []uuid.UUID) ([]identity.Profile, error) {
	if len(userIDs) == 0 {
		return []identity.Profile{}, nil
	}
	var profiles []identity.Profile
	if err := r.db.WithContext(ctx).Where("user_id IN ?", userIDs).Find(&profiles).Error; err != nil {
		return nil, err
	}
	return profiles, nil
}

// Save creates or updates a profile
func (r *GormProfileRepository) Save(ctx context.Context, profile *identity.Profile) error {
	return r.db.WithContext(ctx).Save(profile).Error
}
