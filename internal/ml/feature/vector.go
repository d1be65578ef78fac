package feature

// Feature names a fixed position in a Vector. The order is load-bearing:
// a trained network is only valid for the exact ordering it was trained
// on, so positions are assigned here and never reordered.
type Feature int

const (
	FeatureCategoryAffinity Feature = iota
	FeaturePricePreference
	FeatureActivityLevel
	FeaturePopularity
	FeatureRecency
	FeatureOfferSensitivity
	FeatureWishlistAffinity
	FeatureRatingSignal

	// FeatureCount is the fixed vector length
	FeatureCount
)

var featureNames = [...]string{
	"category_affinity",
	"price_preference",
	"activity_level",
	"popularity",
	"recency",
	"offer_sensitivity",
	"wishlist_affinity",
	"rating_signal",
}

// String returns the wire name of the feature
func (f Feature) String() string {
	if f < 0 || f >= FeatureCount {
		return "unknown"
	}
	return featureNames[f]
}

// NeutralSignal is the cold-start default used when no history exists
// for a signal, instead of failing or emitting zero.
const NeutralSignal = 0.5

// Vector is a fixed-length, fixed-order sequence of signals, each
// normalized into [0,1].
type Vector []float64

// NewVector returns a vector with every signal at the neutral default
func NewVector() Vector {
	v := make(Vector, FeatureCount)
	for i := range v {
		v[i] = NeutralSignal
	}
	return v
}

// InRange reports whether every element lies in [0,1]
func (v Vector) InRange() bool {
	for _, x := range v {
		if x < 0 || x > 1 {
			return false
		}
	}
	return true
}

// Named returns the vector keyed by feature name, for JSON consumers
func (v Vector) Named() map[string]float64 {
	out := make(map[string]float64, len(v))
	for i, x := range v {
		out[Feature(i).String()] = x
	}
	return out
}

// clamp01 bounds a signal into [0,1]
func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
