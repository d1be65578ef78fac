package addon

import (
	"github.com/mylittlethingz/backend/internal/domain/shared/scorer"
)

// Price-ladder boundaries for the tiered suggester. Both bounds are
// inclusive on the lower side.
const (
	premiumTierFloor = 5000.0
	midTierFloor     = 1000.0
)

// Suggester walks a fixed three-tier price ladder and stops at the
// first matching rule, unlike Recommender which collects all matches.
type Suggester struct {
	scorer.BaseScorer
	tiers []Rule
}

// NewSuggester creates the price-ladder suggester
func NewSuggester() *Suggester {
	return &Suggester{
		BaseScorer: scorer.NewBaseScorer(
			"addon-ladder",
			scorer.ScorerTypeRule,
			"First-match price-ladder add-on suggester",
		),
		tiers: []Rule{
			{
				Name:       "premium-tier",
				When:       Comparison{Field: FieldCartTotal, Op: OpGTE, Value: premiumTierFloor},
				Addons:     []string{"premium gift wrap", "personalized greeting card", "priority handling"},
				Confidence: 0.9,
			},
			{
				Name:       "mid-tier",
				When:       Comparison{Field: FieldCartTotal, Op: OpGTE, Value: midTierFloor},
				Addons:     []string{"gift wrap", "greeting card"},
				Confidence: 0.75,
			},
			{
				Name:       "budget-tier",
				When:       Comparison{Field: FieldCartTotal, Op: OpGTE, Value: 0},
				Addons:     []string{"greeting card"},
				Confidence: 0.6,
			},
		},
	}
}

// Suggest returns the add-ons of the first tier whose condition holds
func (s *Suggester) Suggest(ctx Context) []Suggestion {
	for _, tier := range s.tiers {
		if !tier.When.Eval(ctx) {
			continue
		}
		suggestions := make([]Suggestion, 0, len(tier.Addons))
		for _, addon := range tier.Addons {
			suggestions = append(suggestions, Suggestion{
				Addon:      addon,
				Confidence: tier.Confidence,
				Score:      tier.Confidence,
				Rule:       tier.Name,
				Category:   "price-ladder",
			})
		}
		return suggestions
	}
	return nil
}
