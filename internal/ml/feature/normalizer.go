package feature

import (
	"github.com/mylittlethingz/backend/internal/domain/shared"
)

// Normalizer holds per-feature min-max parameters fitted on a sample
// pool. Parameters are serialized alongside model records so serving
// uses the exact scaling training saw.
type Normalizer struct {
	Min []float64 `json:"min"`
	Max []float64 `json:"max"`
}

// FitNormalizer derives min-max parameters per column from a pool of
// raw vectors. All vectors must share one length.
func FitNormalizer(pool [][]float64) (*Normalizer, error) {
	if len(pool) == 0 {
		return nil, shared.ErrInsufficientData
	}

	width := len(pool[0])
	n := &Normalizer{
		Min: make([]float64, width),
		Max: make([]float64, width),
	}
	copy(n.Min, pool[0])
	copy(n.Max, pool[0])

	for _, v := range pool[1:] {
		if len(v) != width {
			return nil, shared.ErrDimensionMismatch
		}
		for i, x := range v {
			if x < n.Min[i] {
				n.Min[i] = x
			}
			if x > n.Max[i] {
				n.Max[i] = x
			}
		}
	}
	return n, nil
}

// Apply scales a vector into [0,1] using the fitted parameters.
// Zero-range columns normalize to the neutral default instead of
// dividing by zero.
func (n *Normalizer) Apply(v []float64) ([]float64, error) {
	if len(v) != len(n.Min) {
		return nil, shared.ErrDimensionMismatch
	}
	out := make([]float64, len(v))
	for i, x := range v {
		spread := n.Max[i] - n.Min[i]
		if spread == 0 {
			out[i] = NeutralSignal
			continue
		}
		out[i] = clamp01((x - n.Min[i]) / spread)
	}
	return out, nil
}
