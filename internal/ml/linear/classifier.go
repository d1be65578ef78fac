package linear

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/mylittlethingz/backend/internal/domain/catalog"
	"github.com/mylittlethingz/backend/internal/domain/shared/scorer"
)

// Class labels for gift classification
const (
	ClassPremium = "Premium"
	ClassBudget  = "Budget"
)

// Feature keys of the fixed hand-engineered feature set
const (
	featPrice       = "price"
	featCategory    = "category_luxury"
	featTitle       = "title_keywords"
	featDescription = "description_keywords"
	featScarcity    = "scarcity"
)

// Price sigmoid normalization: midpoint and scale of the price axis
const (
	priceMidpoint = 2000.0
	priceScale    = 800.0
)

// scarcityFullStock is the availability treated as fully stocked
const scarcityFullStock = 20.0

// Training bounds for the perceptron-style update loop
const (
	maxTrainEpochs = 100
	errorTolerance = 0.1
)

// luxuryByCategory scores how premium a category reads, by name
var luxuryByCategory = map[string]float64{
	"jewellery":    1.0,
	"watches":      0.9,
	"hampers":      0.8,
	"perfumes":     0.8,
	"home decor":   0.6,
	"photo frames": 0.4,
	"stationery":   0.2,
	"keychains":    0.1,
}

// Keyword lexicons scored over title and description text
var premiumKeywords = []string{"luxury", "premium", "gold", "silver", "exclusive", "handcrafted", "personalized", "imported"}
var budgetKeywords = []string{"cheap", "basic", "simple", "mini", "small", "budget"}

// Weights holds the linear model coefficients, one per feature plus bias
type Weights struct {
	Bias        float64 `json:"bias"`
	Price       float64 `json:"price"`
	Category    float64 `json:"category_luxury"`
	Title       float64 `json:"title_keywords"`
	Description float64 `json:"description_keywords"`
	Scarcity    float64 `json:"scarcity"`
}

// DefaultWeights returns hand-tuned starting coefficients
func DefaultWeights() Weights {
	return Weights{
		Bias:        -0.5,
		Price:       1.2,
		Category:    0.9,
		Title:       0.6,
		Description: 0.4,
		Scarcity:    0.3,
	}
}

// Result is the classification outcome with post-hoc reasoning
type Result struct {
	Prediction string             `json:"prediction"`
	Confidence float64            `json:"confidence"`
	Score      float64            `json:"score"`
	Features   map[string]float64 `json:"features"`
	Reasoning  []string           `json:"reasoning"`
}

// Example is one labeled training item; Premium is the positive class
type Example struct {
	Item    *catalog.GiftItem
	Premium bool
}

// Classifier scores gifts with a weighted linear combination of
// hand-engineered features and classifies at score zero.
type Classifier struct {
	scorer.BaseScorer
	weights Weights
	now     func() time.Time
}

// NewClassifier creates a classifier with the given starting weights
func NewClassifier(weights Weights) *Classifier {
	return &Classifier{
		BaseScorer: scorer.NewBaseScorer(
			"linear-gift",
			scorer.ScorerTypeLinear,
			"Linear Premium/Budget gift classifier",
		),
		weights: weights,
		now:     time.Now,
	}
}

// Weights returns the current coefficients
func (c *Classifier) Weights() Weights {
	return c.weights
}

// Features computes the fixed feature set for an item
func (c *Classifier) Features(item *catalog.GiftItem) map[string]float64 {
	price, _ := item.EffectivePrice(c.now()).Float64()
	return map[string]float64{
		featPrice:       1.0 / (1.0 + math.Exp(-(price-priceMidpoint)/priceScale)),
		featCategory:    luxuryByCategory[strings.ToLower(item.CategoryName)],
		featTitle:       lexiconScore(item.Title),
		featDescription: lexiconScore(item.Description),
		featScarcity:    scarcity(item.Availability),
	}
}

// Classify scores an item and assigns Premium or Budget.
// Reasoning is explanatory only and takes no part in the decision.
func (c *Classifier) Classify(item *catalog.GiftItem) *Result {
	features := c.Features(item)
	score := c.score(features)

	prediction := ClassBudget
	if score > 0 {
		prediction = ClassPremium
	}

	confidence := math.Abs(score)
	if confidence > 1 {
		confidence = 1
	}

	return &Result{
		Prediction: prediction,
		Confidence: confidence,
		Score:      score,
		Features:   features,
		Reasoning:  c.explain(features, prediction),
	}
}

// score is bias + Σ weight × feature
func (c *Classifier) score(features map[string]float64) float64 {
	return c.weights.Bias +
		c.weights.Price*features[featPrice] +
		c.weights.Category*features[featCategory] +
		c.weights.Title*features[featTitle] +
		c.weights.Description*features[featDescription] +
		c.weights.Scarcity*features[featScarcity]
}

// Train runs perceptron-style per-sample updates until the summed
// absolute error drops under the tolerance or the epoch cap is hit.
// It returns the number of epochs run.
func (c *Classifier) Train(examples []Example, learningRate float64) int {
	if len(examples) == 0 || learningRate <= 0 {
		return 0
	}

	for epoch := 1; epoch <= maxTrainEpochs; epoch++ {
		var totalError float64
		for _, ex := range examples {
			features := c.Features(ex.Item)
			predicted := 0.0
			if c.score(features) > 0 {
				predicted = 1.0
			}
			label := 0.0
			if ex.Premium {
				label = 1.0
			}

			err := label - predicted
			totalError += math.Abs(err)
			if err == 0 {
				continue
			}

			step := learningRate * err
			c.weights.Bias += step
			c.weights.Price += step * features[featPrice]
			c.weights.Category += step * features[featCategory]
			c.weights.Title += step * features[featTitle]
			c.weights.Description += step * features[featDescription]
			c.weights.Scarcity += step * features[featScarcity]
		}
		if totalError < errorTolerance {
			return epoch
		}
	}
	return maxTrainEpochs
}

// explain generates human-readable reasons from feature magnitudes
func (c *Classifier) explain(features map[string]float64, prediction string) []string {
	type contribution struct {
		key   string
		value float64
	}
	contributions := []contribution{
		{featPrice, c.weights.Price * features[featPrice]},
		{featCategory, c.weights.Category * features[featCategory]},
		{featTitle, c.weights.Title * features[featTitle]},
		{featDescription, c.weights.Description * features[featDescription]},
		{featScarcity, c.weights.Scarcity * features[featScarcity]},
	}
	sort.SliceStable(contributions, func(i, j int) bool {
		return math.Abs(contributions[i].value) > math.Abs(contributions[j].value)
	})

	reasons := []string{fmt.Sprintf("classified as %s", prediction)}
	for _, con := range contributions[:2] {
		reasons = append(reasons, fmt.Sprintf("%s contributed %+.2f", con.key, con.value))
	}
	return reasons
}

// lexiconScore nets premium hits against budget hits in [0,1]
func lexiconScore(text string) float64 {
	lower := strings.ToLower(text)
	var score float64
	for _, kw := range premiumKeywords {
		if strings.Contains(lower, kw) {
			score += 0.25
		}
	}
	for _, kw := range budgetKeywords {
		if strings.Contains(lower, kw) {
			score -= 0.25
		}
	}
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// scarcity rises as availability falls; sold-out items read exclusive
func scarcity(availability int) float64 {
	if availability <= 0 {
		return 1
	}
	s := 1.0 - float64(availability)/scarcityFullStock
	if s < 0 {
		return 0
	}
	return s
}
