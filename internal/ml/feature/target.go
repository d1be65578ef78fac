package feature

import (
	"github.com/mylittlethingz/backend/internal/domain/catalog"
)

// Preference strengths derived from behavior types. Ratings map
// linearly from 1..5 onto 0..1.
const (
	targetPurchase   = 1.0
	targetWishlist   = 0.8
	targetCart       = 0.7
	targetView       = 0.3
	targetUnwishlist = 0.1
)

// TargetFor maps a recorded behavior to the preference strength the
// network is trained against.
func TargetFor(behavior catalog.BehaviorType, rating *int) float64 {
	switch behavior {
	case catalog.BehaviorPurchase:
		return targetPurchase
	case catalog.BehaviorAddToWishlist:
		return targetWishlist
	case catalog.BehaviorAddToCart:
		return targetCart
	case catalog.BehaviorRating:
		if rating == nil {
			return NeutralSignal
		}
		return clamp01(float64(*rating-1) / 4.0)
	case catalog.BehaviorView:
		return targetView
	case catalog.BehaviorRemoveFromWishlist:
		return targetUnwishlist
	default:
		return NeutralSignal
	}
}
