package network

import (
	"math"
	"math/rand"
	"time"

	"github.com/mylittlethingz/backend/internal/domain/shared"
)

// Config describes a network architecture
type Config struct {
	// LayerSizes is [input, hidden..., output]; at least two entries
	LayerSizes []int
	// Activation applied at every non-input layer
	Activation Activation
	// LearningRate for per-sample gradient descent updates
	LearningRate float64
	// Seed for weight initialization and epoch shuffling; 0 uses the clock
	Seed int64
}

// Sample is one training example
type Sample struct {
	Input  []float64
	Target []float64
}

// Prediction is the output of a trained network for one input
type Prediction struct {
	Prediction float64   `json:"prediction"`
	Confidence float64   `json:"confidence"`
	Raw        []float64 `json:"raw_output"`
}

// ForwardResult holds per-layer activations and pre-activation sums
type ForwardResult struct {
	// Activations has one slice per layer, including the input layer
	Activations [][]float64
	// Sums has one slice per non-input layer
	Sums [][]float64
}

// Output returns the activation of the final layer
func (r ForwardResult) Output() []float64 {
	return r.Activations[len(r.Activations)-1]
}

// Network is a feed-forward multi-layer perceptron trained by
// per-sample backpropagation. It is not safe for concurrent use.
type Network struct {
	sizes        []int
	weights      [][][]float64 // [transition][to][from]
	biases       [][]float64   // [transition][to]
	activation   Activation
	learningRate float64
	rng          *rand.Rand
	trained      bool
}

// New creates a network with Xavier-initialized weights and zero biases
func New(cfg Config) (*Network, error) {
	if len(cfg.LayerSizes) < 2 {
		return nil, shared.NewDomainError("INVALID_ARCHITECTURE", "Network needs at least an input and an output layer")
	}
	for _, size := range cfg.LayerSizes {
		if size < 1 {
			return nil, shared.NewDomainError("INVALID_ARCHITECTURE", "Layer sizes must be positive")
		}
	}
	if !cfg.Activation.IsValid() {
		return nil, shared.NewDomainError("INVALID_ACTIVATION", "Unknown activation function")
	}
	if cfg.LearningRate <= 0 {
		return nil, shared.NewDomainError("INVALID_LEARNING_RATE", "Learning rate must be positive")
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	n := &Network{
		sizes:        append([]int(nil), cfg.LayerSizes...),
		activation:   cfg.Activation,
		learningRate: cfg.LearningRate,
		rng:          rand.New(rand.NewSource(seed)),
	}
	n.initialize()
	return n, nil
}

// initialize draws weights uniformly from ±sqrt(6/(fanIn+fanOut))
func (n *Network) initialize() {
	transitions := len(n.sizes) - 1
	n.weights = make([][][]float64, transitions)
	n.biases = make([][]float64, transitions)

	for l := 0; l < transitions; l++ {
		fanIn, fanOut := n.sizes[l], n.sizes[l+1]
		limit := math.Sqrt(6.0 / float64(fanIn+fanOut))

		n.weights[l] = make([][]float64, fanOut)
		n.biases[l] = make([]float64, fanOut)
		for j := 0; j < fanOut; j++ {
			n.weights[l][j] = make([]float64, fanIn)
			for i := 0; i < fanIn; i++ {
				n.weights[l][j][i] = n.rng.Float64()*2*limit - limit
			}
		}
	}
}

// InputSize returns the expected input vector length
func (n *Network) InputSize() int {
	return n.sizes[0]
}

// OutputSize returns the output vector length
func (n *Network) OutputSize() int {
	return n.sizes[len(n.sizes)-1]
}

// Activation returns the configured activation function
func (n *Network) Activation() Activation {
	return n.activation
}

// LearningRate returns the configured learning rate
func (n *Network) LearningRate() float64 {
	return n.learningRate
}

// LayerSizes returns a copy of the layer-size sequence
func (n *Network) LayerSizes() []int {
	return append([]int(nil), n.sizes...)
}

// Forward runs a deterministic forward pass and returns all
// intermediate activations and pre-activation sums
func (n *Network) Forward(input []float64) (ForwardResult, error) {
	if len(input) != n.sizes[0] {
		return ForwardResult{}, shared.ErrDimensionMismatch
	}

	activations := make([][]float64, len(n.sizes))
	sums := make([][]float64, len(n.sizes)-1)
	activations[0] = append([]float64(nil), input...)

	for l := 0; l < len(n.sizes)-1; l++ {
		prev := activations[l]
		sums[l] = make([]float64, n.sizes[l+1])
		activations[l+1] = make([]float64, n.sizes[l+1])
		for j := 0; j < n.sizes[l+1]; j++ {
			z := n.biases[l][j]
			for i, a := range prev {
				z += n.weights[l][j][i] * a
			}
			sums[l][j] = z
			activations[l+1][j] = n.activation.apply(z)
		}
	}

	return ForwardResult{Activations: activations, Sums: sums}, nil
}

// Predict runs a forward pass on a trained network. Calling Predict
// before Train or LoadParameters fails with shared.ErrUntrainedModel.
func (n *Network) Predict(input []float64) (*Prediction, error) {
	if !n.trained {
		return nil, shared.ErrUntrainedModel
	}
	result, err := n.Forward(input)
	if err != nil {
		return nil, err
	}

	output := result.Output()
	confidence := math.Abs(output[0]-0.5) * 2
	if confidence > 1 {
		confidence = 1
	}

	return &Prediction{
		Prediction: output[0],
		Confidence: confidence,
		Raw:        append([]float64(nil), output...),
	}, nil
}

// backpropagate applies one stochastic gradient-descent update
func (n *Network) backpropagate(result ForwardResult, target []float64) {
	transitions := len(n.sizes) - 1
	deltas := make([][]float64, transitions)

	// Output layer: dE/dz = (a - t) * f'(z)
	last := transitions - 1
	deltas[last] = make([]float64, n.sizes[last+1])
	for j := range deltas[last] {
		a := result.Activations[last+1][j]
		z := result.Sums[last][j]
		deltas[last][j] = (a - target[j]) * n.activation.derivative(z, a)
	}

	// Hidden layers, back to front
	for l := last - 1; l >= 0; l-- {
		deltas[l] = make([]float64, n.sizes[l+1])
		for i := range deltas[l] {
			var sum float64
			for j, d := range deltas[l+1] {
				sum += n.weights[l+1][j][i] * d
			}
			a := result.Activations[l+1][i]
			z := result.Sums[l][i]
			deltas[l][i] = sum * n.activation.derivative(z, a)
		}
	}

	for l := 0; l < transitions; l++ {
		for j, d := range deltas[l] {
			step := n.learningRate * d
			for i, a := range result.Activations[l] {
				n.weights[l][j][i] -= step * a
			}
			n.biases[l][j] -= step
		}
	}
}

// sampleError returns the mean squared error and binary hit for one sample
func sampleError(output, target []float64) (loss float64, correct bool) {
	correct = true
	for j := range output {
		diff := output[j] - target[j]
		loss += diff * diff
		if (output[j] > 0.5) != (target[j] > 0.5) {
			correct = false
		}
	}
	return loss / float64(len(output)), correct
}
