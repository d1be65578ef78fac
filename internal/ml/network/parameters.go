package network

import (
	"github.com/mylittlethingz/backend/internal/domain/shared"
)

// Parameters is a serializable snapshot of a network's weights and
// biases plus the architecture they belong to. Weights and biases are
// always carried separately; loading a snapshot whose shapes do not
// match the layer-size sequence is rejected.
type Parameters struct {
	LayerSizes   []int         `json:"layer_sizes"`
	Activation   Activation    `json:"activation"`
	LearningRate float64       `json:"learning_rate"`
	Weights      [][][]float64 `json:"weights"`
	Biases       [][]float64   `json:"biases"`
}

// Parameters returns a deep copy of the network's current parameters
func (n *Network) Parameters() Parameters {
	p := Parameters{
		LayerSizes:   append([]int(nil), n.sizes...),
		Activation:   n.activation,
		LearningRate: n.learningRate,
		Weights:      make([][][]float64, len(n.weights)),
		Biases:       make([][]float64, len(n.biases)),
	}
	for l := range n.weights {
		p.Weights[l] = make([][]float64, len(n.weights[l]))
		for j := range n.weights[l] {
			p.Weights[l][j] = append([]float64(nil), n.weights[l][j]...)
		}
		p.Biases[l] = append([]float64(nil), n.biases[l]...)
	}
	return p
}

// LoadParameters replaces the network's weights and biases with a deep
// copy of the snapshot and marks the network trained. The snapshot
// shapes must match the network's layer-size sequence exactly.
func (n *Network) LoadParameters(p Parameters) error {
	if err := p.validateShape(n.sizes); err != nil {
		return err
	}

	for l := range p.Weights {
		for j := range p.Weights[l] {
			copy(n.weights[l][j], p.Weights[l][j])
		}
		copy(n.biases[l], p.Biases[l])
	}
	n.trained = true
	return nil
}

// FromParameters reconstructs a trained network from a snapshot
func FromParameters(p Parameters) (*Network, error) {
	n, err := New(Config{
		LayerSizes:   p.LayerSizes,
		Activation:   p.Activation,
		LearningRate: p.LearningRate,
	})
	if err != nil {
		return nil, err
	}
	if err := n.LoadParameters(p); err != nil {
		return nil, err
	}
	return n, nil
}

// validateShape checks the snapshot against a layer-size sequence
func (p Parameters) validateShape(sizes []int) error {
	if len(p.LayerSizes) != len(sizes) {
		return shared.ErrDimensionMismatch
	}
	for i, size := range sizes {
		if p.LayerSizes[i] != size {
			return shared.ErrDimensionMismatch
		}
	}
	if len(p.Weights) != len(sizes)-1 || len(p.Biases) != len(sizes)-1 {
		return shared.ErrDimensionMismatch
	}
	for l := 0; l < len(sizes)-1; l++ {
		if len(p.Weights[l]) != sizes[l+1] || len(p.Biases[l]) != sizes[l+1] {
			return shared.ErrDimensionMismatch
		}
		for j := range p.Weights[l] {
			if len(p.Weights[l][j]) != sizes[l] {
				return shared.ErrDimensionMismatch
			}
		}
	}
	return nil
}
