package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mylittlethingz/backend/internal/domain/catalog"
	"github.com/mylittlethingz/backend/internal/domain/shared"
)

// GormItemRepository implements catalog.ItemRepository using GORM
type GormItemRepository struct {
	db *gorm.DB
}

// NewGormItemRepository creates a new GormItemRepository
func NewGormItemRepository(db *gorm.DB) *GormItemRepository {
	return &GormItemRepository{db: db}
}

// FindByID finds an item by its ID
func (r *GormItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.GiftItem, error) {
	var item catalog.GiftItem
	if err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// FindActive returns all active items
func (r *GormItemRepository) FindActive(ctx context.Context) ([]catalog.GiftItem, error) {
	var items []catalog.GiftItem
	if err := r.db.WithContext(ctx).
		Where("status = ?", catalog.ItemStatusActive).
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// FindRecentActive returns the most recently created active items
func (r *GormItemRepository) FindRecentActive(ctx context.Context, limit int) ([]catalog.GiftItem, error) {
	var items []catalog.GiftItem
	query := r.db.WithContext(ctx).
		Where("status = ?", catalog.ItemStatusActive).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Save persists an item
func (r *GormItemRepository) Save(ctx context.Context, item *catalog.GiftItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}
