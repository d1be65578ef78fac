package network

import (
	"context"

	"github.com/mylittlethingz/backend/internal/domain/shared"
)

const (
	// earlyStopMinEpoch is the first epoch at which early stopping may fire
	earlyStopMinEpoch = 50
	// earlyStopLookback compares the current validation loss against the
	// loss this many epochs earlier
	earlyStopLookback = 10
)

// History records per-epoch training progress
type History struct {
	TrainLoss          []float64 `json:"training_loss"`
	ValidationLoss     []float64 `json:"validation_loss"`
	TrainAccuracy      []float64 `json:"training_accuracy"`
	ValidationAccuracy []float64 `json:"validation_accuracy"`
	StoppedEarly       bool      `json:"stopped_early"`
}

// Epochs returns the number of epochs actually run
func (h *History) Epochs() int {
	return len(h.TrainLoss)
}

// FinalValidationLoss returns the last recorded validation loss
func (h *History) FinalValidationLoss() float64 {
	if len(h.ValidationLoss) == 0 {
		return 0
	}
	return h.ValidationLoss[len(h.ValidationLoss)-1]
}

// FinalValidationAccuracy returns the last recorded validation accuracy
func (h *History) FinalValidationAccuracy() float64 {
	if len(h.ValidationAccuracy) == 0 {
		return 0
	}
	return h.ValidationAccuracy[len(h.ValidationAccuracy)-1]
}

// FinalTrainLoss returns the last recorded training loss
func (h *History) FinalTrainLoss() float64 {
	if len(h.TrainLoss) == 0 {
		return 0
	}
	return h.TrainLoss[len(h.TrainLoss)-1]
}

// FinalTrainAccuracy returns the last recorded training accuracy
func (h *History) FinalTrainAccuracy() float64 {
	if len(h.TrainAccuracy) == 0 {
		return 0
	}
	return h.TrainAccuracy[len(h.TrainAccuracy)-1]
}

// Train runs stochastic gradient descent over the samples.
//
// The validation subset is the positional prefix of length
// validationSplit × len(samples): callers must pre-shuffle when their
// data carries any ordering, or validation metrics will be biased.
// Weights are updated immediately per sample. Early stopping fires once
// the validation loss stops improving against a 10-epoch lookback.
// Cancellation is checked at epoch boundaries; the partial history is
// returned alongside the context error.
func (n *Network) Train(ctx context.Context, samples []Sample, epochs int, validationSplit float64) (*History, error) {
	if len(samples) == 0 {
		return nil, shared.NewDomainError("EMPTY_TRAINING_SET", "Cannot train on an empty sample list")
	}
	if epochs < 1 {
		return nil, shared.NewDomainError("INVALID_EPOCHS", "Epoch count must be positive")
	}
	if validationSplit < 0 || validationSplit >= 1 {
		return nil, shared.NewDomainError("INVALID_SPLIT", "Validation split must be in [0, 1)")
	}
	for _, s := range samples {
		if len(s.Input) != n.sizes[0] || len(s.Target) != n.sizes[len(n.sizes)-1] {
			return nil, shared.ErrDimensionMismatch
		}
	}

	splitIndex := int(validationSplit * float64(len(samples)))
	validation := samples[:splitIndex]
	training := make([]Sample, len(samples)-splitIndex)
	copy(training, samples[splitIndex:])
	if len(training) == 0 {
		return nil, shared.NewDomainError("EMPTY_TRAINING_SET", "Validation split leaves no training samples")
	}

	history := &History{}

	for epoch := 0; epoch < epochs; epoch++ {
		if err := ctx.Err(); err != nil {
			return history, err
		}

		n.rng.Shuffle(len(training), func(i, j int) {
			training[i], training[j] = training[j], training[i]
		})

		var epochLoss float64
		var hits int
		for _, s := range training {
			result, err := n.Forward(s.Input)
			if err != nil {
				return history, err
			}
			loss, correct := sampleError(result.Output(), s.Target)
			epochLoss += loss
			if correct {
				hits++
			}
			n.backpropagate(result, s.Target)
		}

		trainLoss := epochLoss / float64(len(training))
		trainAcc := float64(hits) / float64(len(training))
		history.TrainLoss = append(history.TrainLoss, trainLoss)
		history.TrainAccuracy = append(history.TrainAccuracy, trainAcc)

		valLoss, valAcc := trainLoss, trainAcc
		if len(validation) > 0 {
			valLoss, valAcc = n.evaluate(validation)
		}
		history.ValidationLoss = append(history.ValidationLoss, valLoss)
		history.ValidationAccuracy = append(history.ValidationAccuracy, valAcc)

		if epoch > earlyStopMinEpoch && valLoss > history.ValidationLoss[epoch-earlyStopLookback] {
			history.StoppedEarly = true
			break
		}
	}

	n.trained = true
	return history, nil
}

// evaluate computes loss and accuracy without weight updates
func (n *Network) evaluate(samples []Sample) (loss, accuracy float64) {
	var total float64
	var hits int
	for _, s := range samples {
		result, err := n.Forward(s.Input)
		if err != nil {
			continue
		}
		l, correct := sampleError(result.Output(), s.Target)
		total += l
		if correct {
			hits++
		}
	}
	return total / float64(len(samples)), float64(hits) / float64(len(samples))
}
