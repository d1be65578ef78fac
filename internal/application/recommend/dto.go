package recommend

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mylittlethingz/backend/internal/domain/catalog"
)

// Source tells which engine produced a recommendation
type Source string

const (
	// SourceModel means the active neural model scored the item
	SourceModel Source = "model"
	// SourceSimilarity means collaborative filtering produced the item
	SourceSimilarity Source = "similarity"
	// SourcePopularity means the cold-start popularity fallback was used
	SourcePopularity Source = "popularity"
)

// Recommendation is one ranked item for a user
type Recommendation struct {
	ItemID       uuid.UUID       `json:"item_id"`
	Title        string          `json:"title"`
	CategoryName string          `json:"category_name"`
	Price        decimal.Decimal `json:"price"`
	Score        float64         `json:"score"`
	Confidence   float64         `json:"confidence"`
	Source       Source          `json:"source"`
	ModelVersion int             `json:"model_version,omitempty"`
}

func newRecommendation(item *catalog.GiftItem, score, confidence float64, source Source, version int) Recommendation {
	return Recommendation{
		ItemID:       item.ID,
		Title:        item.Title,
		CategoryName: item.CategoryName,
		Price:        item.Price,
		Score:        score,
		Confidence:   confidence,
		Source:       source,
		ModelVersion: version,
	}
}

// EngineInfo describes one wired scoring engine
type EngineInfo struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

// Classification is a gift classification with its subject attached
type Classification struct {
	ItemID     uuid.UUID          `json:"item_id"`
	Title      string             `json:"title"`
	Prediction string             `json:"prediction"`
	Confidence float64            `json:"confidence"`
	Score      float64            `json:"score"`
	Features   map[string]float64 `json:"features"`
	Reasoning  []string           `json:"reasoning"`
}

// AddonInput carries the order facts the rule engine evaluates.
// A zero At means evaluation at the current time.
type AddonInput struct {
	Price     decimal.Decimal `json:"price"`
	CartTotal decimal.Decimal `json:"cart_total"`
	Occasion  string          `json:"occasion"`
	Category  string          `json:"category"`
	GiftType  string          `json:"gift_type"`
	At        time.Time       `json:"at,omitempty"`
}
