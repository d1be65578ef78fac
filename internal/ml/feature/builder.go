package feature

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/mylittlethingz/backend/internal/domain/catalog"
	"github.com/mylittlethingz/backend/internal/domain/shared"
)

const (
	// categoryBoost scales category purchase share into a sensitivity
	// signal; it is a tuning factor, not a probability
	categoryBoost = 5.0
	// activityScale is the interaction count treated as full activity
	activityScale = 50.0
	// popularityScale is the interaction count treated as full popularity
	popularityScale = 100.0
	// recencyWindowDays is the window over which recency decays to zero
	recencyWindowDays = 30.0
)

// Builder derives fixed-order feature vectors for (user, item) pairs
// from historical interaction rows. It is read-only; callers batch.
type Builder struct {
	items        catalog.ItemRepository
	interactions catalog.InteractionRepository
	now          func() time.Time
}

// NewBuilder creates a feature builder over the given repositories
func NewBuilder(items catalog.ItemRepository, interactions catalog.InteractionRepository) *Builder {
	return &Builder{
		items:        items,
		interactions: interactions,
		now:          time.Now,
	}
}

// Extract derives the feature vector for a (user, item) pair.
// Missing or inactive items fail with shared.ErrNotFound; an absent
// interaction history yields neutral signals, not an error.
func (b *Builder) Extract(ctx context.Context, userID, itemID uuid.UUID) (Vector, error) {
	item, err := b.items.FindByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if !item.IsActive() {
		return nil, shared.ErrNotFound
	}

	userHistory, err := b.interactions.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	itemHistory, err := b.interactions.FindByItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	activeItems, err := b.items.FindActive(ctx)
	if err != nil {
		return nil, err
	}

	at := b.now()
	itemsByID := make(map[uuid.UUID]*catalog.GiftItem, len(activeItems))
	for i := range activeItems {
		itemsByID[activeItems[i].ID] = &activeItems[i]
	}

	var purchases []catalog.Interaction
	for _, in := range userHistory {
		if in.Behavior == catalog.BehaviorPurchase {
			purchases = append(purchases, in)
		}
	}

	v := NewVector()
	v[FeatureCategoryAffinity] = categoryAffinity(item, purchases, itemsByID)
	v[FeaturePricePreference] = pricePreference(item, purchases, activeItems, itemsByID, at)
	v[FeatureActivityLevel] = activityLevel(userHistory)
	v[FeaturePopularity] = popularity(itemHistory)
	v[FeatureRecency] = recency(userHistory, at)
	v[FeatureOfferSensitivity] = offerSensitivity(purchases, itemsByID)
	v[FeatureWishlistAffinity] = wishlistAffinity(userHistory)
	v[FeatureRatingSignal] = ratingSignal(userHistory)
	return v, nil
}

// categoryAffinity is the user's purchase share in the item's category,
// boosted by categoryBoost and clamped to 1
func categoryAffinity(item *catalog.GiftItem, purchases []catalog.Interaction, itemsByID map[uuid.UUID]*catalog.GiftItem) float64 {
	if len(purchases) == 0 {
		return NeutralSignal
	}
	inCategory := 0
	for _, p := range purchases {
		bought, ok := itemsByID[p.ItemID]
		if ok && bought.CategoryID == item.CategoryID {
			inCategory++
		}
	}
	share := float64(inCategory) / float64(len(purchases))
	return clamp01(share * categoryBoost)
}

// pricePreference compares the item's min-max-normalized price with the
// user's average purchase price on the same scale
func pricePreference(item *catalog.GiftItem, purchases []catalog.Interaction, activeItems []catalog.GiftItem, itemsByID map[uuid.UUID]*catalog.GiftItem, at time.Time) float64 {
	if len(activeItems) == 0 {
		return NeutralSignal
	}

	minPrice, _ := activeItems[0].EffectivePrice(at).Float64()
	maxPrice := minPrice
	for i := 1; i < len(activeItems); i++ {
		p, _ := activeItems[i].EffectivePrice(at).Float64()
		if p < minPrice {
			minPrice = p
		}
		if p > maxPrice {
			maxPrice = p
		}
	}
	if minPrice == maxPrice {
		return NeutralSignal
	}

	normalize := func(p float64) float64 {
		return clamp01((p - minPrice) / (maxPrice - minPrice))
	}

	itemPrice, _ := item.EffectivePrice(at).Float64()
	normItem := normalize(itemPrice)

	var total float64
	counted := 0
	for _, p := range purchases {
		bought, ok := itemsByID[p.ItemID]
		if !ok {
			continue
		}
		price, _ := bought.EffectivePrice(at).Float64()
		total += price
		counted++
	}
	if counted == 0 {
		return NeutralSignal
	}

	normAvg := normalize(total / float64(counted))
	return clamp01(1 - math.Abs(normItem-normAvg))
}

// activityLevel scales total interaction count into [0,1]
func activityLevel(history []catalog.Interaction) float64 {
	if len(history) == 0 {
		return NeutralSignal
	}
	return clamp01(float64(len(history)) / activityScale)
}

// popularity scales the item's interaction count into [0,1]
func popularity(history []catalog.Interaction) float64 {
	if len(history) == 0 {
		return NeutralSignal
	}
	return clamp01(float64(len(history)) / popularityScale)
}

// recency decays linearly over recencyWindowDays since the user's
// latest interaction
func recency(history []catalog.Interaction, at time.Time) float64 {
	if len(history) == 0 {
		return NeutralSignal
	}
	latest := history[0].CreatedAt
	for _, in := range history[1:] {
		if in.CreatedAt.After(latest) {
			latest = in.CreatedAt
		}
	}
	days := at.Sub(latest).Hours() / 24.0
	return clamp01(1 - days/recencyWindowDays)
}

// offerSensitivity is the share of the user's purchases made while an
// offer was running on the purchased item
func offerSensitivity(purchases []catalog.Interaction, itemsByID map[uuid.UUID]*catalog.GiftItem) float64 {
	counted, onOffer := 0, 0
	for _, p := range purchases {
		bought, ok := itemsByID[p.ItemID]
		if !ok {
			continue
		}
		counted++
		if bought.HasActiveOffer(p.CreatedAt) {
			onOffer++
		}
	}
	if counted == 0 {
		return NeutralSignal
	}
	return clamp01(float64(onOffer) / float64(counted))
}

// wishlistAffinity is the wishlist share of the user's interactions
func wishlistAffinity(history []catalog.Interaction) float64 {
	if len(history) == 0 {
		return NeutralSignal
	}
	adds := 0
	for _, in := range history {
		if in.Behavior == catalog.BehaviorAddToWishlist {
			adds++
		}
	}
	return clamp01(float64(adds) / float64(len(history)))
}

// ratingSignal is the user's average given rating on the 0..1 scale
func ratingSignal(history []catalog.Interaction) float64 {
	var total float64
	counted := 0
	for _, in := range history {
		if in.Behavior == catalog.BehaviorRating && in.RatingValue != nil {
			total += float64(*in.RatingValue-1) / 4.0
			counted++
		}
	}
	if counted == 0 {
		return NeutralSignal
	}
	return clamp01(total / float64(counted))
}
