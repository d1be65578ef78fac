package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mylittlethingz/backend/internal/domain/catalog"
)

// GormInteractionRepository implements catalog.InteractionRepository using GORM
type GormInteractionRepository struct {
	db *gorm.DB
}

// NewGormInteractionRepository creates a new GormInteractionRepository
func NewGormInteractionRepository(db *gorm.DB) *GormInteractionRepository {
	return &GormInteractionRepository{db: db}
}

// FindByUser returns all interactions recorded for a user
func (r *GormInteractionRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]catalog.Interaction, error) {
	var rows []catalog.Interaction
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// FindByItem returns all interactions recorded against an item
func (r *GormInteractionRepository) FindByItem(ctx context.Context, itemID uuid.UUID) ([]catalog.Interaction, error) {
	var rows []catalog.Interaction
	if err := r.db.WithContext(ctx).
		Where("item_id = ?", itemID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// FindAll returns every recorded interaction
func (r *GormInteractionRepository) FindAll(ctx context.Context) ([]catalog.Interaction, error) {
	var rows []catalog.Interaction
	if err := r.db.WithContext(ctx).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Save persists an interaction row
func (r *GormInteractionRepository) Save(ctx context.Context, interaction *catalog.Interaction) error {
	return r.db.WithContext(ctx).Save(interaction).Error
}
