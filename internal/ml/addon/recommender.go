package addon

import (
	"sort"

	"github.com/mylittlethingz/backend/internal/domain/shared/scorer"
)

// Rule is one ordered (condition, add-ons, confidence) triple
type Rule struct {
	Name       string
	When       Predicate
	Addons     []string
	Confidence float64
}

// RuleCategory groups rules under a weight used for ranking matches
type RuleCategory struct {
	Name   string
	Weight float64
	Rules  []Rule
}

// Suggestion is one recommended add-on with its ranking score
type Suggestion struct {
	Addon      string  `json:"addon"`
	Confidence float64 `json:"confidence"`
	Score      float64 `json:"score"`
	Rule       string  `json:"rule"`
	Category   string  `json:"category"`
}

// Recommender evaluates every rule across all categories and ranks
// the union of matches by category weight × rule confidence. It is a
// pure function of the rule table and the input context.
type Recommender struct {
	scorer.BaseScorer
	categories []RuleCategory
}

// NewRecommender creates a rule recommender over the given categories
func NewRecommender(categories []RuleCategory) *Recommender {
	return &Recommender{
		BaseScorer: scorer.NewBaseScorer(
			"addon-rules",
			scorer.ScorerTypeRule,
			"Rule-tree add-on recommender collecting all matches",
		),
		categories: categories,
	}
}

// Recommend collects every matching rule and returns suggestions
// sorted descending by score, de-duplicated by add-on name keeping
// the highest score.
func (r *Recommender) Recommend(ctx Context) []Suggestion {
	best := make(map[string]Suggestion)
	for _, category := range r.categories {
		for _, rule := range category.Rules {
			if !rule.When.Eval(ctx) {
				continue
			}
			score := category.Weight * rule.Confidence
			for _, addon := range rule.Addons {
				if existing, ok := best[addon]; ok && existing.Score >= score {
					continue
				}
				best[addon] = Suggestion{
					Addon:      addon,
					Confidence: rule.Confidence,
					Score:      score,
					Rule:       rule.Name,
					Category:   category.Name,
				}
			}
		}
	}

	suggestions := make([]Suggestion, 0, len(best))
	for _, s := range best {
		suggestions = append(suggestions, s)
	}
	sort.SliceStable(suggestions, func(i, j int) bool {
		if suggestions[i].Score != suggestions[j].Score {
			return suggestions[i].Score > suggestions[j].Score
		}
		return suggestions[i].Addon < suggestions[j].Addon
	})
	return suggestions
}

// DefaultRecommender returns the stock rule table used in production
func DefaultRecommender() *Recommender {
	return NewRecommender([]RuleCategory{
		{
			Name:   "occasion",
			Weight: 1.0,
			Rules: []Rule{
				{
					Name:       "birthday-card",
					When:       Equals{Field: FieldOccasion, Value: "birthday"},
					Addons:     []string{"greeting card", "balloon set"},
					Confidence: 0.9,
				},
				{
					Name:       "anniversary-flowers",
					When:       Equals{Field: FieldOccasion, Value: "anniversary"},
					Addons:     []string{"rose bouquet", "greeting card"},
					Confidence: 0.85,
				},
				{
					Name:       "wedding-premium-wrap",
					When:       Equals{Field: FieldOccasion, Value: "wedding"},
					Addons:     []string{"premium gift wrap"},
					Confidence: 0.8,
				},
			},
		},
		{
			Name:   "price",
			Weight: 0.8,
			Rules: []Rule{
				{
					Name:       "premium-wrap",
					When:       Comparison{Field: FieldPrice, Op: OpGTE, Value: 5000},
					Addons:     []string{"premium gift wrap", "personalized tag"},
					Confidence: 0.9,
				},
				{
					Name:       "standard-wrap",
					When:       And{Comparison{Field: FieldPrice, Op: OpGTE, Value: 1000}, Comparison{Field: FieldPrice, Op: OpLT, Value: 5000}},
					Addons:     []string{"gift wrap"},
					Confidence: 0.7,
				},
			},
		},
		{
			Name:   "season",
			Weight: 0.6,
			Rules: []Rule{
				{
					Name:       "december-holiday",
					When:       Comparison{Field: FieldMonth, Op: OpEQ, Value: 12},
					Addons:     []string{"holiday wrap", "fairy lights"},
					Confidence: 0.75,
				},
				{
					Name: "valentine-season",
					When: Or{
						Comparison{Field: FieldMonth, Op: OpEQ, Value: 2},
						Equals{Field: FieldOccasion, Value: "valentine"},
					},
					Addons:     []string{"chocolate box"},
					Confidence: 0.7,
				},
			},
		},
		{
			Name:   "gift-type",
			Weight: 0.5,
			Rules: []Rule{
				{
					Name:       "hamper-ribbon",
					When:       Equals{Field: FieldGiftType, Value: "hamper"},
					Addons:     []string{"decorative ribbon"},
					Confidence: 0.6,
				},
			},
		},
	})
}
