package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/quotewire/backend/internal/domain/identity"
	"github.com/quotewire/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormUserRepository stores owner accounts in Postgres via GORM.
type GormUserRepository struct {
	db *gorm.DB
}

func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

var _ identity.UserRepository = (*GormUserRepository)(nil)

func (r *GormUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	var user identity.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// FindByEmail looks an account up by email, normalizing the input the
// same way signup did so lookups survive case and whitespace variance.
func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	normalized, err := identity.NormalizeAccountEmail(email)
	if err != nil {
		return nil, err
	}
	var user identity.User
	if err := r.db.WithContext(ctx).Where("email = ?", normalized).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// ExistsByEmail reports whether any account already claimed the email.
func (r *GormUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	normalized, err := identity.NormalizeAccountEmail(email)
	if err != nil {
		return false, err
	}
	var count int64
	if err := r.db.WithContext(ctx).Model(&identity.User{}).
		Where("email = ?", normalized).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save upserts the account row.
func (r *GormUserRepository) Save(ctx context.Context, user *identity.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}
