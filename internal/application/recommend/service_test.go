package recommend

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mylittlethingz/backend/internal/domain/catalog"
	"github.com/mylittlethingz/backend/internal/domain/mlmodel"
	"github.com/mylittlethingz/backend/internal/domain/shared"
	"github.com/mylittlethingz/backend/internal/domain/shipping"
	"github.com/mylittlethingz/backend/internal/ml/bayes"
	"github.com/mylittlethingz/backend/internal/ml/feature"
	"github.com/mylittlethingz/backend/internal/ml/knn"
	"github.com/mylittlethingz/backend/internal/ml/linear"
	"github.com/mylittlethingz/backend/internal/ml/network"
)

type fakeItemRepo struct {
	items map[uuid.UUID]*catalog.GiftItem
}

func newFakeItemRepo() *fakeItemRepo {
	return &fakeItemRepo{items: make(map[uuid.UUID]*catalog.GiftItem)}
}

func (r *fakeItemRepo) FindByID(_ context.Context, id uuid.UUID) (*catalog.GiftItem, error) {
	item, ok := r.items[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return item, nil
}

func (r *fakeItemRepo) FindActive(_ context.Context) ([]catalog.GiftItem, error) {
	var out []catalog.GiftItem
	for _, item := range r.items {
		if item.IsActive() {
			out = append(out, *item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out, nil
}

func (r *fakeItemRepo) FindRecentActive(ctx context.Context, limit int) ([]catalog.GiftItem, error) {
	out, err := r.FindActive(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeItemRepo) Save(_ context.Context, item *catalog.GiftItem) error {
	r.items[item.ID] = item
	return nil
}

type fakeInteractionRepo struct {
	rows []catalog.Interaction
}

func (r *fakeInteractionRepo) FindByUser(_ context.Context, userID uuid.UUID) ([]catalog.Interaction, error) {
	var out []catalog.Interaction
	for _, row := range r.rows {
		if row.UserID == userID {
			out = append(out, row)
		}
	}
	return out, nil
}

func (r *fakeInteractionRepo) FindByItem(_ context.Context, itemID uuid.UUID) ([]catalog.Interaction, error) {
	var out []catalog.Interaction
	for _, row := range r.rows {
		if row.ItemID == itemID {
			out = append(out, row)
		}
	}
	return out, nil
}

func (r *fakeInteractionRepo) FindAll(_ context.Context) ([]catalog.Interaction, error) {
	return append([]catalog.Interaction(nil), r.rows...), nil
}

func (r *fakeInteractionRepo) Save(_ context.Context, interaction *catalog.Interaction) error {
	r.rows = append(r.rows, *interaction)
	return nil
}

type fakeModelLoader struct {
	net    *network.Network
	norm   *feature.Normalizer
	record *mlmodel.ModelRecord
	err    error
}

func (l *fakeModelLoader) LoadActiveNetwork(context.Context) (*network.Network, *feature.Normalizer, *mlmodel.ModelRecord, error) {
	if l.err != nil {
		return nil, nil, nil, l.err
	}
	return l.net, l.norm, l.record, nil
}

func trainedLoader(t *testing.T) *fakeModelLoader {
	t.Helper()
	net, err := network.New(network.Config{
		LayerSizes:   []int{int(feature.FeatureCount), 4, 1},
		Activation:   network.ActivationSigmoid,
		LearningRate: 0.5,
		Seed:         42,
	})
	require.NoError(t, err)
	require.NoError(t, net.LoadParameters(net.Parameters()))

	norm := &feature.Normalizer{
		Min: make([]float64, feature.FeatureCount),
		Max: make([]float64, feature.FeatureCount),
	}
	for i := range norm.Max {
		norm.Max[i] = 1
	}

	record, err := mlmodel.NewModelRecord("gift-preference", 3, "sigmoid",
		[]int{int(feature.FeatureCount), 4, 1}, 0.5,
		`{"weights":[],"biases":[]}`, "{}", mlmodel.TrainingMetrics{})
	require.NoError(t, err)

	return &fakeModelLoader{net: net, norm: norm, record: record}
}

func newTestService(t *testing.T, items *fakeItemRepo, interactions *fakeInteractionRepo, loader ModelLoader) *Service {
	t.Helper()
	return NewService(
		items, interactions, loader,
		knn.NewRecommender(items, interactions, knn.DefaultConfig()),
		linear.NewClassifier(linear.DefaultWeights()),
		bayes.NewScorer(nil, bayes.DefaultConfig(), zap.NewNop()),
		zap.NewNop(),
	)
}

func seedItem(t *testing.T, items *fakeItemRepo, title, category string, price int64) *catalog.GiftItem {
	t.Helper()
	item, err := catalog.NewGiftItem(title, decimal.NewFromInt(price), uuid.New(), category)
	require.NoError(t, err)
	require.NoError(t, items.Save(context.Background(), item))
	return item
}

func seedInteraction(t *testing.T, interactions *fakeInteractionRepo, userID, itemID uuid.UUID, behavior catalog.BehaviorType) {
	t.Helper()
	row, err := catalog.NewInteraction(userID, itemID, behavior, nil)
	require.NoError(t, err)
	require.NoError(t, interactions.Save(context.Background(), row))
}

func TestRecommendForUser_ColdStartFallsBackToPopularity(t *testing.T) {
	items := newFakeItemRepo()
	interactions := &fakeInteractionRepo{}
	seedItem(t, items, "Photo Frame", "frames", 800)
	seedItem(t, items, "Candle Set", "candles", 400)

	svc := newTestService(t, items, interactions, &fakeModelLoader{err: shared.ErrNoActiveModel})
	recs, err := svc.RecommendForUser(context.Background(), uuid.New(), 10)
	require.NoError(t, err)
	require.NotEmpty(t, recs)
	for _, rec := range recs {
		assert.Equal(t, SourcePopularity, rec.Source)
	}
}

func TestRecommendForUser_NoModelUsesNeighbors(t *testing.T) {
	items := newFakeItemRepo()
	interactions := &fakeInteractionRepo{}
	shared1 := seedItem(t, items, "Photo Frame", "frames", 800)
	novel := seedItem(t, items, "Candle Set", "candles", 400)

	me, twin := uuid.New(), uuid.New()
	seedInteraction(t, interactions, me, shared1.ID, catalog.BehaviorPurchase)
	seedInteraction(t, interactions, twin, shared1.ID, catalog.BehaviorPurchase)
	seedInteraction(t, interactions, twin, novel.ID, catalog.BehaviorPurchase)

	svc := newTestService(t, items, interactions, &fakeModelLoader{err: shared.ErrNoActiveModel})
	recs, err := svc.RecommendForUser(context.Background(), me, 10)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, novel.ID, recs[0].ItemID)
	assert.Equal(t, SourceSimilarity, recs[0].Source)
}

func TestRecommendForUser_ModelPathExcludesSeenItems(t *testing.T) {
	items := newFakeItemRepo()
	interactions := &fakeInteractionRepo{}
	seen := seedItem(t, items, "Photo Frame", "frames", 800)
	unseen1 := seedItem(t, items, "Candle Set", "candles", 400)
	unseen2 := seedItem(t, items, "Gift Hamper", "hampers", 2500)

	userID := uuid.New()
	seedInteraction(t, interactions, userID, seen.ID, catalog.BehaviorPurchase)

	svc := newTestService(t, items, interactions, trainedLoader(t))
	recs, err := svc.RecommendForUser(context.Background(), userID, 10)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	got := map[uuid.UUID]bool{}
	for _, rec := range recs {
		got[rec.ItemID] = true
		assert.Equal(t, SourceModel, rec.Source)
		assert.Equal(t, 3, rec.ModelVersion)
		assert.GreaterOrEqual(t, rec.Score, 0.0)
		assert.LessOrEqual(t, rec.Score, 1.0)
	}
	assert.True(t, got[unseen1.ID])
	assert.True(t, got[unseen2.ID])
	assert.False(t, got[seen.ID])

	for i := 1; i < len(recs); i++ {
		assert.GreaterOrEqual(t, recs[i-1].Score, recs[i].Score)
	}
}

func TestRecommendForUser_ModelPathHonorsLimit(t *testing.T) {
	items := newFakeItemRepo()
	interactions := &fakeInteractionRepo{}
	for i := int64(0); i < 5; i++ {
		seedItem(t, items, "Gift", "gifts", 100+i*50)
	}

	svc := newTestService(t, items, interactions, trainedLoader(t))
	recs, err := svc.RecommendForUser(context.Background(), uuid.New(), 3)
	require.NoError(t, err)
	assert.Len(t, recs, 3)
}

func TestClassifyGift(t *testing.T) {
	items := newFakeItemRepo()
	item := seedItem(t, items, "Luxury Gold Watch", "watches", 8000)

	svc := newTestService(t, items, &fakeInteractionRepo{}, &fakeModelLoader{err: shared.ErrNoActiveModel})
	classification, err := svc.ClassifyGift(context.Background(), item.ID)
	require.NoError(t, err)
	assert.Equal(t, item.ID, classification.ItemID)
	assert.Equal(t, linear.ClassPremium, classification.Prediction)
	assert.NotEmpty(t, classification.Reasoning)

	_, err = svc.ClassifyGift(context.Background(), uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestSuggestAddons_OccasionRules(t *testing.T) {
	svc := newTestService(t, newFakeItemRepo(), &fakeInteractionRepo{}, &fakeModelLoader{err: shared.ErrNoActiveModel})

	suggestions := svc.SuggestAddons(AddonInput{
		Occasion:  "birthday",
		Price:     decimal.NewFromInt(500),
		CartTotal: decimal.NewFromInt(500),
		At:        time.Date(2026, time.June, 10, 0, 0, 0, 0, time.UTC),
	})
	require.NotEmpty(t, suggestions)

	names := make([]string, 0, len(suggestions))
	for _, s := range suggestions {
		names = append(names, s.Addon)
	}
	assert.Contains(t, names, "greeting card")
	assert.Contains(t, names, "balloon set")
}

func TestCartAddons_PriceLadder(t *testing.T) {
	svc := newTestService(t, newFakeItemRepo(), &fakeInteractionRepo{}, &fakeModelLoader{err: shared.ErrNoActiveModel})

	suggestions := svc.CartAddons(AddonInput{CartTotal: decimal.NewFromInt(1500)})
	require.NotEmpty(t, suggestions)
	assert.Equal(t, "mid-tier", suggestions[0].Rule)
}

func TestRankCouriers(t *testing.T) {
	svc := newTestService(t, newFakeItemRepo(), &fakeInteractionRepo{}, &fakeModelLoader{err: shared.ErrNoActiveModel})

	order := shipping.ShipmentOrder{PaymentMethod: shipping.PaymentPrepaid, WeightKg: 1}
	options := []shipping.CourierOption{
		{CourierCompanyID: 1, CourierName: "Slow Freight", Rate: decimal.NewFromInt(220), EstimatedDays: 6},
		{CourierCompanyID: 2, CourierName: "Quick Post", Rate: decimal.NewFromInt(90), EstimatedDays: 2},
	}
	ranked := svc.RankCouriers(context.Background(), order, options)
	require.Len(t, ranked, 2)
	assert.Equal(t, 2, ranked[0].CourierCompanyID)
}

func TestEngines(t *testing.T) {
	svc := newTestService(t, newFakeItemRepo(), &fakeInteractionRepo{}, &fakeModelLoader{err: shared.ErrNoActiveModel})

	engines := svc.Engines()
	require.Len(t, engines, 5)

	types := make(map[string]string, len(engines))
	for _, e := range engines {
		types[e.Name] = e.Type
		assert.NotEmpty(t, e.Description)
	}
	assert.Equal(t, "similarity", types["knn"])
	assert.Equal(t, "linear", types["linear-gift"])
	assert.Equal(t, "probabilistic", types["bayes-courier"])
	assert.Equal(t, "rule", types["addon-rules"])
	assert.Equal(t, "rule", types["addon-ladder"])
}
