package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mylittlethingz/backend/internal/domain/shared"
)

// ItemStatus represents the status of a gift item
type ItemStatus string

const (
	ItemStatusActive   ItemStatus = "active"
	ItemStatusInactive ItemStatus = "inactive"
)

// GiftItem represents a sellable gift in the catalog.
// It is the aggregate root the scoring components read from.
type GiftItem struct {
	shared.BaseEntity
	Title        string          `gorm:"type:varchar(200);not null"`
	Description  string          `gorm:"type:text"`
	Price        decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	OfferPrice   decimal.Decimal `gorm:"type:decimal(18,2)"`
	OfferStartAt *time.Time      `gorm:""`
	OfferEndAt   *time.Time      `gorm:""`
	CategoryID   uuid.UUID       `gorm:"type:uuid;index"`
	CategoryName string          `gorm:"type:varchar(100);index"`
	Availability int             `gorm:"not null;default:0"` // units in stock
	Status       ItemStatus      `gorm:"type:varchar(20);not null;default:'active'"`
}

// TableName returns the table name for GORM
func (GiftItem) TableName() string {
	return "gift_items"
}

// NewGiftItem creates a new active gift item
func NewGiftItem(title string, price decimal.Decimal, categoryID uuid.UUID, categoryName string) (*GiftItem, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, shared.NewDomainError("INVALID_TITLE", "Title cannot be empty")
	}
	if price.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}

	return &GiftItem{
		BaseEntity:   shared.NewBaseEntity(),
		Title:        title,
		Price:        price,
		CategoryID:   categoryID,
		CategoryName: categoryName,
		Status:       ItemStatusActive,
	}, nil
}

// IsActive returns true if the item can be recommended or sold
func (i *GiftItem) IsActive() bool {
	return i.Status == ItemStatusActive
}

// HasActiveOffer returns true if an offer price applies at the given time
func (i *GiftItem) HasActiveOffer(at time.Time) bool {
	if i.OfferPrice.IsZero() || i.OfferPrice.GreaterThanOrEqual(i.Price) {
		return false
	}
	if i.OfferStartAt != nil && at.Before(*i.OfferStartAt) {
		return false
	}
	if i.OfferEndAt != nil && at.After(*i.OfferEndAt) {
		return false
	}
	return true
}

// EffectivePrice returns the offer price when an offer is active, the list price otherwise
func (i *GiftItem) EffectivePrice(at time.Time) decimal.Decimal {
	if i.HasActiveOffer(at) {
		return i.OfferPrice
	}
	return i.Price
}

// Deactivate marks the item as unavailable for recommendation
func (i *GiftItem) Deactivate() {
	i.Status = ItemStatusInactive
	i.UpdatedAt = time.Now()
}
