package scorer

// ScorerType represents the kind of scoring engine
type ScorerType string

const (
	ScorerTypeNeural        ScorerType = "neural"
	ScorerTypeSimilarity    ScorerType = "similarity"
	ScorerTypeLinear        ScorerType = "linear"
	ScorerTypeProbabilistic ScorerType = "probabilistic"
	ScorerTypeRule          ScorerType = "rule"
)

// String returns the string representation of the scorer type
func (t ScorerType) String() string {
	return string(t)
}

// IsValid returns true if the scorer type is valid
func (t ScorerType) IsValid() bool {
	switch t {
	case ScorerTypeNeural, ScorerTypeSimilarity, ScorerTypeLinear, ScorerTypeProbabilistic, ScorerTypeRule:
		return true
	default:
		return false
	}
}

// AllScorerTypes returns all valid scorer types
func AllScorerTypes() []ScorerType {
	return []ScorerType{
		ScorerTypeNeural,
		ScorerTypeSimilarity,
		ScorerTypeLinear,
		ScorerTypeProbabilistic,
		ScorerTypeRule,
	}
}

// Scorer is the base interface for all scoring engines
type Scorer interface {
	// Name returns the unique name of the scorer
	Name() string
	// Type returns the type of the scorer
	Type() ScorerType
	// Description returns a human-readable description
	Description() string
}

// BaseScorer provides common implementation for scorers
type BaseScorer struct {
	name        string
	scorerType  ScorerType
	description string
}

// NewBaseScorer creates a new BaseScorer
func NewBaseScorer(name string, scorerType ScorerType, description string) BaseScorer {
	return BaseScorer{
		name:        name,
		scorerType:  scorerType,
		description: description,
	}
}

// Name returns the scorer name
func (s BaseScorer) Name() string {
	return s.name
}

// Type returns the scorer type
func (s BaseScorer) Type() ScorerType {
	return s.scorerType
}

// Description returns the scorer description
func (s BaseScorer) Description() string {
	return s.description
}
