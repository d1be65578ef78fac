package recommend

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mylittlethingz/backend/internal/domain/catalog"
	"github.com/mylittlethingz/backend/internal/domain/mlmodel"
	"github.com/mylittlethingz/backend/internal/domain/shared"
	"github.com/mylittlethingz/backend/internal/domain/shared/scorer"
	"github.com/mylittlethingz/backend/internal/domain/shipping"
	"github.com/mylittlethingz/backend/internal/ml/addon"
	"github.com/mylittlethingz/backend/internal/ml/bayes"
	"github.com/mylittlethingz/backend/internal/ml/feature"
	"github.com/mylittlethingz/backend/internal/ml/knn"
	"github.com/mylittlethingz/backend/internal/ml/linear"
	"github.com/mylittlethingz/backend/internal/ml/network"
)

// Hybrid scoring: the model prediction carries most of the weight, with
// a fixed bonus for items collaborative filtering independently surfaced
const (
	modelWeight     = 0.8
	similarityBonus = 0.2
)

// ModelLoader reconstructs the serving network from the active record
type ModelLoader interface {
	LoadActiveNetwork(ctx context.Context) (*network.Network, *feature.Normalizer, *mlmodel.ModelRecord, error)
}

// Service is the composition layer over the scoring engines. It ranks
// gifts per user with the active neural model when one exists, falls
// back to collaborative filtering otherwise, and fronts the linear
// classifier, the courier ranker and the rule engines.
type Service struct {
	items        catalog.ItemRepository
	interactions catalog.InteractionRepository
	builder      *feature.Builder
	models       ModelLoader
	neighbors    *knn.Recommender
	classifier   *linear.Classifier
	couriers     *bayes.Scorer
	addons       *addon.Recommender
	ladder       *addon.Suggester
	engines      *scorer.Registry
	log          *zap.Logger
	now          func() time.Time
}

// NewService creates a recommendation service
func NewService(
	items catalog.ItemRepository,
	interactions catalog.InteractionRepository,
	models ModelLoader,
	neighbors *knn.Recommender,
	classifier *linear.Classifier,
	couriers *bayes.Scorer,
	log *zap.Logger,
) *Service {
	s := &Service{
		items:        items,
		interactions: interactions,
		builder:      feature.NewBuilder(items, interactions),
		models:       models,
		neighbors:    neighbors,
		classifier:   classifier,
		couriers:     couriers,
		addons:       addon.DefaultRecommender(),
		ladder:       addon.NewSuggester(),
		engines:      scorer.NewRegistry(),
		log:          log,
		now:          time.Now,
	}
	for _, engine := range []scorer.Scorer{neighbors, classifier, couriers, s.addons, s.ladder} {
		if err := s.engines.Register(engine); err != nil {
			log.Warn("scoring engine not registered", zap.Error(err))
			continue
		}
		log.Info("scoring engine registered",
			zap.String("scorer", engine.Name()),
			zap.String("type", engine.Type().String()))
	}
	return s
}

// Engines describes the wired scoring engines, grouped by type
func (s *Service) Engines() []EngineInfo {
	var out []EngineInfo
	for _, t := range scorer.AllScorerTypes() {
		for _, engine := range s.engines.ByType(t) {
			out = append(out, EngineInfo{
				Name:        engine.Name(),
				Type:        engine.Type().String(),
				Description: engine.Description(),
			})
		}
	}
	return out
}

// RecommendForUser ranks gifts for a user. With an active model, every
// unseen active item is scored by the network and blended with a bonus
// for items collaborative filtering also surfaced. Without one, the
// neighbor recommender serves directly, degrading to popularity for
// cold-start users.
func (s *Service) RecommendForUser(ctx context.Context, userID uuid.UUID, limit int) ([]Recommendation, error) {
	net, norm, record, err := s.models.LoadActiveNetwork(ctx)
	if err != nil {
		if errors.Is(err, shared.ErrNoActiveModel) {
			return s.neighborRecommendations(ctx, userID, limit)
		}
		return nil, err
	}

	history, err := s.interactions.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	seen := make(map[uuid.UUID]struct{}, len(history))
	for _, row := range history {
		seen[row.ItemID] = struct{}{}
	}

	candidates, err := s.items.FindActive(ctx)
	if err != nil {
		return nil, err
	}

	surfaced, err := s.neighbors.UserRecommendations(ctx, userID, limit)
	if err != nil {
		s.log.Warn("neighbor recommender failed, scoring without similarity bonus", zap.Error(err))
		surfaced = nil
	}
	bonus := make(map[uuid.UUID]struct{}, len(surfaced))
	for _, item := range surfaced {
		bonus[item.ID] = struct{}{}
	}

	recommendations := make([]Recommendation, 0, len(candidates))
	for i := range candidates {
		item := &candidates[i]
		if _, ok := seen[item.ID]; ok {
			continue
		}

		vec, err := s.builder.Extract(ctx, userID, item.ID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				continue
			}
			return nil, err
		}
		scaled, err := norm.Apply(vec)
		if err != nil {
			return nil, err
		}
		prediction, err := net.Predict(scaled)
		if err != nil {
			return nil, err
		}

		score := modelWeight * prediction.Prediction
		if _, ok := bonus[item.ID]; ok {
			score += similarityBonus
		}
		recommendations = append(recommendations,
			newRecommendation(item, score, prediction.Confidence, SourceModel, record.Version))
	}
	if len(recommendations) == 0 {
		return s.neighborRecommendations(ctx, userID, limit)
	}

	sort.SliceStable(recommendations, func(i, j int) bool {
		if recommendations[i].Score != recommendations[j].Score {
			return recommendations[i].Score > recommendations[j].Score
		}
		return recommendations[i].ItemID.String() < recommendations[j].ItemID.String()
	})
	if limit > 0 && len(recommendations) > limit {
		recommendations = recommendations[:limit]
	}
	return recommendations, nil
}

// neighborRecommendations serves the no-model path
func (s *Service) neighborRecommendations(ctx context.Context, userID uuid.UUID, limit int) ([]Recommendation, error) {
	history, err := s.interactions.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	source := SourceSimilarity
	if len(history) == 0 {
		source = SourcePopularity
	}

	items, err := s.neighbors.UserRecommendations(ctx, userID, limit)
	if err != nil {
		return nil, err
	}

	recommendations := make([]Recommendation, 0, len(items))
	for i := range items {
		// Rank position stands in for a score on this path
		score := 1.0 - float64(i)/float64(len(items))
		recommendations = append(recommendations,
			newRecommendation(&items[i], score, 0, source, 0))
	}
	return recommendations, nil
}

// SimilarItems returns gifts similar to the given one
func (s *Service) SimilarItems(ctx context.Context, itemID uuid.UUID, limit int) ([]knn.ScoredItem, error) {
	return s.neighbors.SimilarItems(ctx, itemID, limit)
}

// ClassifyGift labels a gift Premium or Budget with reasoning
func (s *Service) ClassifyGift(ctx context.Context, itemID uuid.UUID) (*Classification, error) {
	item, err := s.items.FindByID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	result := s.classifier.Classify(item)
	return &Classification{
		ItemID:     item.ID,
		Title:      item.Title,
		Prediction: result.Prediction,
		Confidence: result.Confidence,
		Score:      result.Score,
		Features:   result.Features,
		Reasoning:  result.Reasoning,
	}, nil
}

// SuggestAddons collects every matching rule-engine suggestion for the
// given order facts, ranked by score
func (s *Service) SuggestAddons(input AddonInput) []addon.Suggestion {
	return s.addons.Recommend(s.addonContext(input))
}

// CartAddons returns the first matching tier of the price ladder
func (s *Service) CartAddons(input AddonInput) []addon.Suggestion {
	return s.ladder.Suggest(s.addonContext(input))
}

// RankCouriers orders courier options best-first for a shipment
func (s *Service) RankCouriers(ctx context.Context, order shipping.ShipmentOrder, options []shipping.CourierOption) []bayes.ScoredOption {
	return s.couriers.Rank(ctx, order, options)
}

func (s *Service) addonContext(input AddonInput) addon.Context {
	at := input.At
	if at.IsZero() {
		at = s.now()
	}
	return addon.Context{
		Price:     input.Price,
		CartTotal: input.CartTotal,
		Month:     at.Month(),
		Category:  input.Category,
		Occasion:  input.Occasion,
		GiftType:  input.GiftType,
	}
}
