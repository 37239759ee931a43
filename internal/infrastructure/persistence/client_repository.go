package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/quotewire/backend/internal/domain/quoting"
	"github.com/quotewire/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormClientRepository implements ClientRepository using GORM
type GormClientRepository struct {
	db *gorm.DB
}

// NewGormClientRepository creates a new GormClientRepository
func NewGormClientRepository(db *gorm.DB) *GormClientRepository {
	return &GormClientRepository{db: db}
}

var _ quoting.ClientRepository = (*GormClientRepository)(nil)

// FindByID finds a client by its ID
func (r *GormClientRepository) FindByID(ctx context.Context, id uuid.UUID) (*quoting.Client, error) {
	var client quoting.Client
	if err := r.db.WithContext(ctx).First(&client, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &client, nil
}

// FindByEmail finds a client by normalized email within an owner's book
func (r *GormClientRepository) FindByEmail(ctx context.Context, ownerID uuid.UUID, email string) (*quoting.Client, error) {
	normalized, err := quoting.NormalizeEmail(email)
	if err != nil {
		return nil, err
	}
	var client quoting.Client
	if err := r.db.WithContext(ctx).
		Where("owner_id = ? AND email = ?", ownerID, normalized).
		First(&client).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &client, nil
}

// FindByIDs finds multiple clients by their IDs within an owner's book
func (r *GormClientRepository) FindByIDs(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) ([]quoting.Client, error) {
	if len(ids) == 0 {
		return []quoting.Client{}, nil
	}
	var clients []quoting.Client
	if err := r.db.WithContext(ctx).
		Where("owner_id = ? AND id IN ?", ownerID, ids).
		Find(&clients).Error; err != nil {
		return nil, err
	}
	return clients, nil
}

// Upsert inserts the client or, when the owner already has a client with the
// same email, updates the stored name and loads the existing record back.
func (r *GormClientRepository) Upsert(ctx context.Context, client *quoting.Client) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing quoting.Client
		err := tx.Where("owner_id = ? AND email = ?", client.GetOwnerID(), client.Email).
			First(&existing).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return tx.Create(client).Error
			}
			return err
		}

		if existing.Name != client.Name {
			existing.Name = client.Name
			existing.UpdatedAt = client.UpdatedAt
			if err := tx.Model(&existing).
				Updates(map[string]interface{}{"name": existing.Name, "updated_at": existing.UpdatedAt}).Error; err != nil {
				return err
			}
		}

		*client = existing
		return nil
	})
}

// Save creates or updates a client
func (r *GormClientRepository) Save(ctx context.Context, client *quoting.Client) error {
	return r.db.WithContext(ctx).Save(client).Error
}
