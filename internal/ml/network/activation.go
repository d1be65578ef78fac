package network

import "math"

// Activation selects the nonlinearity applied per neuron
type Activation string

const (
	ActivationSigmoid Activation = "sigmoid"
	ActivationTanh    Activation = "tanh"
	ActivationReLU    Activation = "relu"
)

// IsValid returns true if the activation is supported
func (a Activation) IsValid() bool {
	switch a {
	case ActivationSigmoid, ActivationTanh, ActivationReLU:
		return true
	default:
		return false
	}
}

// apply computes the activation of a pre-activation sum
func (a Activation) apply(z float64) float64 {
	switch a {
	case ActivationTanh:
		return math.Tanh(z)
	case ActivationReLU:
		if z > 0 {
			return z
		}
		return 0
	default:
		return 1.0 / (1.0 + math.Exp(-z))
	}
}

// derivative computes the activation derivative. For sigmoid and tanh
// it is expressed in terms of the activation value, for relu in terms
// of the pre-activation sum.
func (a Activation) derivative(z, activated float64) float64 {
	switch a {
	case ActivationTanh:
		return 1.0 - activated*activated
	case ActivationReLU:
		if z > 0 {
			return 1
		}
		return 0
	default:
		return activated * (1.0 - activated)
	}
}
