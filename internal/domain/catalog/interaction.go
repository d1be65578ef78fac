package catalog

import (
	"time"

	"github.com/google/uuid"

	"github.com/mylittlethingz/backend/internal/domain/shared"
)

// BehaviorType classifies a single user/item interaction
type BehaviorType string

const (
	BehaviorView               BehaviorType = "view"
	BehaviorAddToCart          BehaviorType = "add_to_cart"
	BehaviorAddToWishlist      BehaviorType = "add_to_wishlist"
	BehaviorPurchase           BehaviorType = "purchase"
	BehaviorRating             BehaviorType = "rating"
	BehaviorRemoveFromWishlist BehaviorType = "remove_from_wishlist"
)

// IsValid returns true if the behavior type is known
func (b BehaviorType) IsValid() bool {
	switch b {
	case BehaviorView, BehaviorAddToCart, BehaviorAddToWishlist,
		BehaviorPurchase, BehaviorRating, BehaviorRemoveFromWishlist:
		return true
	default:
		return false
	}
}

// Interaction is a single recorded user behavior against an item.
// Rows are append-only; the scoring core only ever reads them.
type Interaction struct {
	ID          uuid.UUID    `gorm:"type:uuid;primaryKey"`
	UserID      uuid.UUID    `gorm:"type:uuid;not null;index"`
	ItemID      uuid.UUID    `gorm:"type:uuid;not null;index"`
	Behavior    BehaviorType `gorm:"type:varchar(30);not null"`
	RatingValue *int         `gorm:""` // 1..5, only for BehaviorRating
	CreatedAt   time.Time    `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (Interaction) TableName() string {
	return "user_interactions"
}

// NewInteraction records a behavior for a (user, item) pair
func NewInteraction(userID, itemID uuid.UUID, behavior BehaviorType, rating *int) (*Interaction, error) {
	if !behavior.IsValid() {
		return nil, shared.NewDomainError("INVALID_BEHAVIOR", "Unknown behavior type")
	}
	if behavior == BehaviorRating {
		if rating == nil || *rating < 1 || *rating > 5 {
			return nil, shared.NewDomainError("INVALID_RATING", "Rating must be between 1 and 5")
		}
	}
	return &Interaction{
		ID:          uuid.New(),
		UserID:      userID,
		ItemID:      itemID,
		Behavior:    behavior,
		RatingValue: rating,
		CreatedAt:   time.Now(),
	}, nil
}
