package catalog

import (
	"context"

	"github.com/google/uuid"
)

// ItemRepository defines the persistence interface for gift items
type ItemRepository interface {
	// FindByID finds an item by its ID, shared.ErrNotFound when absent
	FindByID(ctx context.Context, id uuid.UUID) (*GiftItem, error)
	// FindActive returns all active items
	FindActive(ctx context.Context) ([]GiftItem, error)
	// FindRecentActive returns the most recently created active items,
	// used as the popularity fallback for cold-start users
	FindRecentActive(ctx context.Context, limit int) ([]GiftItem, error)
	// Save persists an item
	Save(ctx context.Context, item *GiftItem) error
}

// InteractionRepository defines the persistence interface for behavior rows
type InteractionRepository interface {
	// FindByUser returns all interactions recorded for a user
	FindByUser(ctx context.Context, userID uuid.UUID) ([]Interaction, error)
	// FindByItem returns all interactions recorded against an item
	FindByItem(ctx context.Context, itemID uuid.UUID) ([]Interaction, error)
	// FindAll returns every recorded interaction; callers group in memory
	FindAll(ctx context.Context) ([]Interaction, error)
	// Save persists an interaction row
	Save(ctx context.Context, interaction *Interaction) error
}
