package knn

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/mylittlethingz/backend/internal/domain/catalog"
	"github.com/mylittlethingz/backend/internal/domain/shared"
	"github.com/mylittlethingz/backend/internal/domain/shared/scorer"
)

// Similarity weights for item-item comparison. Category dominates,
// then price closeness, then text overlap.
const (
	weightCategory    = 0.4
	weightPrice       = 0.3
	weightTitle       = 0.2
	weightDescription = 0.1
)

// Config tunes the recommender
type Config struct {
	// Neighbors is K, the number of similar users considered
	Neighbors int
	// SimilarityThreshold filters item-item results
	SimilarityThreshold float64
	// UserSimilarityFloor is the minimum Jaccard similarity for a user
	// to count as a neighbor
	UserSimilarityFloor float64
}

// DefaultConfig returns the production defaults
func DefaultConfig() Config {
	return Config{
		Neighbors:           5,
		SimilarityThreshold: 0.3,
		UserSimilarityFloor: 0.1,
	}
}

// ScoredItem pairs an item with its similarity to the query item
type ScoredItem struct {
	Item       catalog.GiftItem `json:"item"`
	Similarity float64          `json:"similarity"`
}

// Recommender produces neighbor lists from feature similarity between
// items and Jaccard similarity between user interaction sets.
// Similarity edges are computed on demand and never stored.
type Recommender struct {
	scorer.BaseScorer
	items        catalog.ItemRepository
	interactions catalog.InteractionRepository
	cfg          Config
	now          func() time.Time
}

// NewRecommender creates a similarity recommender
func NewRecommender(items catalog.ItemRepository, interactions catalog.InteractionRepository, cfg Config) *Recommender {
	if cfg.Neighbors < 1 {
		cfg.Neighbors = DefaultConfig().Neighbors
	}
	return &Recommender{
		BaseScorer: scorer.NewBaseScorer(
			"knn",
			scorer.ScorerTypeSimilarity,
			"Feature-similarity and collaborative-filtering recommender",
		),
		items:        items,
		interactions: interactions,
		cfg:          cfg,
		now:          time.Now,
	}
}

// SimilarItems returns active items similar to the query item, sorted
// descending by similarity and filtered to the configured threshold.
// The query item itself is never part of the result.
func (r *Recommender) SimilarItems(ctx context.Context, itemID uuid.UUID, limit int) ([]ScoredItem, error) {
	target, err := r.items.FindByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if !target.IsActive() {
		return nil, shared.ErrNotFound
	}

	candidates, err := r.items.FindActive(ctx)
	if err != nil {
		return nil, err
	}

	at := r.now()
	var scored []ScoredItem
	for _, candidate := range candidates {
		if candidate.ID == target.ID {
			continue
		}
		similarity := r.itemSimilarity(target, &candidate, at)
		if similarity >= r.cfg.SimilarityThreshold {
			scored = append(scored, ScoredItem{Item: candidate, Similarity: similarity})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Similarity > scored[j].Similarity
	})
	if limit > 0 && len(scored) > limit {
		scored = scored[:limit]
	}
	return scored, nil
}

// itemSimilarity is the weighted sum of category match, price closeness
// and text-token overlap
func (r *Recommender) itemSimilarity(a, b *catalog.GiftItem, at time.Time) float64 {
	var score float64

	if a.CategoryID == b.CategoryID {
		score += weightCategory
	}

	priceA, _ := a.EffectivePrice(at).Float64()
	priceB, _ := b.EffectivePrice(at).Float64()
	if maxPrice := math.Max(priceA, priceB); maxPrice > 0 {
		score += weightPrice * (1 - math.Abs(priceA-priceB)/maxPrice)
	} else {
		score += weightPrice
	}

	score += weightTitle * jaccard(tokenize(a.Title), tokenize(b.Title))
	score += weightDescription * jaccard(tokenize(a.Description), tokenize(b.Description))
	return score
}

// UserRecommendations aggregates items from the K most similar users,
// weighted by user similarity, excluding items the target user already
// interacted with. Users without history, and users whose neighbors
// yield no new candidates, fall back to popularity ranking.
func (r *Recommender) UserRecommendations(ctx context.Context, userID uuid.UUID, limit int) ([]catalog.GiftItem, error) {
	all, err := r.interactions.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	itemSets := make(map[uuid.UUID]map[uuid.UUID]struct{})
	for _, row := range all {
		set, ok := itemSets[row.UserID]
		if !ok {
			set = make(map[uuid.UUID]struct{})
			itemSets[row.UserID] = set
		}
		set[row.ItemID] = struct{}{}
	}

	mine := itemSets[userID]
	if len(mine) == 0 {
		return r.items.FindRecentActive(ctx, limit)
	}

	type neighbor struct {
		userID     uuid.UUID
		similarity float64
	}
	var neighbors []neighbor
	for otherID, theirs := range itemSets {
		if otherID == userID {
			continue
		}
		if similarity := jaccard(mine, theirs); similarity > r.cfg.UserSimilarityFloor {
			neighbors = append(neighbors, neighbor{userID: otherID, similarity: similarity})
		}
	}
	sort.SliceStable(neighbors, func(i, j int) bool {
		return neighbors[i].similarity > neighbors[j].similarity
	})
	if len(neighbors) > r.cfg.Neighbors {
		neighbors = neighbors[:r.cfg.Neighbors]
	}

	scores := make(map[uuid.UUID]float64)
	for _, n := range neighbors {
		for itemID := range itemSets[n.userID] {
			if _, seen := mine[itemID]; seen {
				continue
			}
			scores[itemID] += n.similarity
		}
	}
	if len(scores) == 0 {
		return r.items.FindRecentActive(ctx, limit)
	}

	ranked := make([]uuid.UUID, 0, len(scores))
	for itemID := range scores {
		ranked = append(ranked, itemID)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if scores[ranked[i]] != scores[ranked[j]] {
			return scores[ranked[i]] > scores[ranked[j]]
		}
		return ranked[i].String() < ranked[j].String()
	})

	var result []catalog.GiftItem
	for _, itemID := range ranked {
		item, err := r.items.FindByID(ctx, itemID)
		if err != nil || !item.IsActive() {
			continue
		}
		result = append(result, *item)
		if limit > 0 && len(result) >= limit {
			break
		}
	}
	if len(result) == 0 {
		return r.items.FindRecentActive(ctx, limit)
	}
	return result, nil
}
