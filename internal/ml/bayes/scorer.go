package bayes

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/mylittlethingz/backend/internal/domain/shared/scorer"
	"github.com/mylittlethingz/backend/internal/domain/shipping"
)

// Assumed ranges the local heuristic normalizes against
const (
	rateFloor   = 50.0
	rateCeiling = 250.0
	daysFloor   = 1.0
	daysCeiling = 7.0
)

// codPenalty is subtracted for cash-on-delivery orders, where slow
// couriers hurt collection
const codPenalty = 0.05

// reputationBumps are small additive brand adjustments matched against a
// lowercase fragment of the courier name. Ordered strongest first so a name
// matching several fragments always takes the same bump.
var reputationBumps = []struct {
	fragment string
	bump     float64
}{
	{"bluedart", 0.07},
	{"blue dart", 0.07},
	{"delhivery", 0.05},
	{"dtdc", 0.03},
	{"ekart", 0.02},
	{"xpressbees", 0.02},
}

// Config tunes the courier scorer
type Config struct {
	// Blend mixes the combined probability with raw cost/speed signals;
	// 1 means pure combined probability
	Blend float64
}

// DefaultConfig returns the production defaults
func DefaultConfig() Config {
	return Config{Blend: 1.0}
}

// ScoredOption is a courier option with its score attached
type ScoredOption struct {
	shipping.CourierOption
	Score float64 `json:"score"`
}

// Scorer ranks courier options. When an external scoring endpoint is
// configured it is consulted first; any failure, timeout or malformed
// response falls back to the local heuristic and is never surfaced.
type Scorer struct {
	scorer.BaseScorer
	external *ExternalClient
	cfg      Config
	log      *zap.Logger
}

// NewScorer creates a courier scorer. external may be nil for
// local-only scoring.
func NewScorer(external *ExternalClient, cfg Config, log *zap.Logger) *Scorer {
	if cfg.Blend <= 0 || cfg.Blend > 1 {
		cfg.Blend = DefaultConfig().Blend
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Scorer{
		BaseScorer: scorer.NewBaseScorer(
			"bayes-courier",
			scorer.ScorerTypeProbabilistic,
			"Naive-Bayes-style courier option ranker",
		),
		external: external,
		cfg:      cfg,
		log:      log,
	}
}

// CombineIndependent combines independent per-option probabilities via
// P = 1 − Π(1−pᵢ). It is monotonically non-decreasing in each input.
func CombineIndependent(ps []float64) float64 {
	miss := 1.0
	for _, p := range ps {
		miss *= 1 - clamp01(p)
	}
	return 1 - miss
}

// Rank scores the options and returns them sorted descending by score
func (s *Scorer) Rank(ctx context.Context, order shipping.ShipmentOrder, options []shipping.CourierOption) []ScoredOption {
	if len(options) == 0 {
		return nil
	}

	scores := s.externalScores(ctx, order, options)
	if scores == nil {
		scores = make([]float64, len(options))
		for i, opt := range options {
			scores[i] = s.localScore(order, opt)
		}
	}

	scored := make([]ScoredOption, len(options))
	for i, opt := range options {
		scored[i] = ScoredOption{CourierOption: opt, Score: scores[i]}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored
}

// externalScores consults the configured delegate; nil means fall back
func (s *Scorer) externalScores(ctx context.Context, order shipping.ShipmentOrder, options []shipping.CourierOption) []float64 {
	if s.external == nil {
		return nil
	}
	scores, err := s.external.Score(ctx, order, options)
	if err != nil {
		s.log.Warn("external courier scorer failed, using local heuristic", zap.Error(err))
		return nil
	}
	return scores
}

// localScore derives pseudo-likelihoods from rate and delivery days,
// combines them via the independence formula, then applies reputation
// bumps and the COD penalty.
func (s *Scorer) localScore(order shipping.ShipmentOrder, opt shipping.CourierOption) float64 {
	rate, _ := opt.Rate.Float64()
	normRate := clamp01((rate - rateFloor) / (rateCeiling - rateFloor))
	normDays := clamp01((float64(opt.EstimatedDays) - daysFloor) / (daysCeiling - daysFloor))

	pCost := 1 - normRate
	pSpeed := 1 - normDays
	combined := CombineIndependent([]float64{pCost, pSpeed})

	// Optional blend of the combined probability with the raw signals
	score := s.cfg.Blend*combined + (1-s.cfg.Blend)*(pCost+pSpeed)/2

	name := strings.ToLower(opt.CourierName)
	for _, rb := range reputationBumps {
		if strings.Contains(name, rb.fragment) {
			score += rb.bump
			break
		}
	}

	if order.IsCOD() {
		score -= codPenalty
	}
	return clamp01(score)
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
