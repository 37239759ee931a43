package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/quotewire/backend/internal/domain/quoting"
	"github.com/quotewire/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormQuoteRepository implements QuoteRepository using GORM
type GormQuoteRepository struct {
	db *gorm.DB
}

// NewGormQuoteRepository creates a new GormQuoteRepository
func NewGormQuoteRepository(db *gorm.DB) *GormQuoteRepository {
	return &GormQuoteRepository{db: db}
}

var _ quoting.QuoteRepository = (*GormQuoteRepository)(nil)

// preloadOptions loads quote options in presentation order
func preloadOptions(db *gorm.DB) *gorm.DB {
	return db.Order("quote_options.position ASC")
}

// FindByID finds a quote by its ID with options preloaded
func (r *GormQuoteRepository) FindByID(ctx context.Context, id uuid.UUID) (*quoting.Quote, error) {
	var quote quoting.Quote
	if err := r.db.WithContext(ctx).
		Preload("Options", preloadOptions).
		First(&quote, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &quote, nil
}

// FindByIDForOwner finds a quote by ID scoped to an owner.
// Quotes owned by other accounts look like missing ones.
func (r *GormQuoteRepository) FindByIDForOwner(ctx context.Context, ownerID, id uuid.UUID) (*quoting.Quote, error) {
	var quote quoting.Quote
	if err := r.db.WithContext(ctx).
		Preload("Options", preloadOptions).
		Where("owner_id = ? AND id = ?", ownerID, id).
		First(&quote).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &quote, nil
}

// FindByUniqueLink resolves a quote by its public link identifier
func (r *GormQuoteRepository) FindByUniqueLink(ctx context.Context, uniqueLinkID uuid.UUID) (*quoting.Quote, error) {
	var quote quoting.Quote
	if err := r.db.WithContext(ctx).
		Preload("Options", preloadOptions).
		Where("unique_link_id = ?", uniqueLinkID).
		First(&quote).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &quote, nil
}

// FindAllForOwner finds all quotes for an owner with filtering and pagination
func (r *GormQuoteRepository) FindAllForOwner(ctx context.Context, ownerID uuid.UUID, filter shared.Filter) ([]quoting.Quote, error) {
	var quotes []quoting.Quote
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&quoting.Quote{}).
			Preload("Options", preloadOptions).
			Where("owner_id = ?", ownerID),
		filter,
	)

	if err := query.Find(&quotes).Error; err != nil {
		return nil, err
	}
	return quotes, nil
}

// Save creates or updates a quote together with its options
func (r *GormQuoteRepository) Save(ctx context.Context, quote *quoting.Quote) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Options").Save(quote).Error; err != nil {
			return err
		}

		// Remove options no longer on the quote
		optionIDs := make([]uuid.UUID, 0, len(quote.Options))
		for _, opt := range quote.Options {
			optionIDs = append(optionIDs, opt.ID)
		}
		if len(optionIDs) > 0 {
			if err := tx.Where("quote_id = ? AND id NOT IN ?", quote.ID, optionIDs).
				Delete(&quoting.QuoteOption{}).Error; err != nil {
				return err
			}
		} else {
			if err := tx.Where("quote_id = ?", quote.ID).
				Delete(&quoting.QuoteOption{}).Error; err != nil {
				return err
			}
		}

		for i := range quote.Options {
			quote.Options[i].QuoteID = quote.ID
			if err := tx.Save(&quote.Options[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// UpdateStatusIf performs the conditional transition fromStatus -> quote.Status.
// The row must still carry fromStatus and the loaded version for the update to
// apply, so exactly one of two racing transitions wins.
func (r *GormQuoteRepository) UpdateStatusIf(ctx context.Context, quote *quoting.Quote, fromStatus quoting.QuoteStatus) error {
	loadedVersion := quote.Version

	updates := map[string]interface{}{
		"status":              quote.Status,
		"accepted_option_id":  quote.AcceptedOptionID,
		"checkout_session_id": quote.CheckoutSessionID,
		"sent_at":             quote.SentAt,
		"accepted_at":         quote.AcceptedAt,
		"paid_at":             quote.PaidAt,
		"version":             loadedVersion + 1,
		"updated_at":          time.Now(),
	}

	result := r.db.WithContext(ctx).Model(&quoting.Quote{}).
		Where("id = ? AND status = ? AND version = ?", quote.ID, fromStatus, loadedVersion).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("CONCURRENT_MODIFICATION",
			"Quote was modified concurrently, please retry")
	}

	quote.Version = loadedVersion + 1
	return nil
}

// CountForOwner counts quotes for an owner matching the filter
func (r *GormQuoteRepository) CountForOwner(ctx context.Context, ownerID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&quoting.Quote{}).
		Where("owner_id = ?", ownerID)
	query = r.applyFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies filter options to the query
func (r *GormQuoteRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, QuoteSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	query = query.Order(orderBy + " " + orderDir)

	return query
}

// applyFilterWithoutPagination applies filter options except pagination and ordering
func (r *GormQuoteRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if status, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", status)
	}
	if clientID, ok := filter.Filters["client_id"]; ok {
		query = query.Where("client_id = ?", clientID)
	}
	if filter.Search != "" {
		query = query.Where("job_description ILIKE ?", "%"+filter.Search+"%")
	}
	return query
}
