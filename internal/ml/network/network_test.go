package network

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mylittlethingz/backend/internal/domain/shared"
)

func TestNew_InvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{
			name: "too few layers",
			cfg:  Config{LayerSizes: []int{4}, Activation: ActivationSigmoid, LearningRate: 0.1},
		},
		{
			name: "zero layer size",
			cfg:  Config{LayerSizes: []int{4, 0, 1}, Activation: ActivationSigmoid, LearningRate: 0.1},
		},
		{
			name: "unknown activation",
			cfg:  Config{LayerSizes: []int{4, 3, 1}, Activation: "softmax", LearningRate: 0.1},
		},
		{
			name: "non-positive learning rate",
			cfg:  Config{LayerSizes: []int{4, 3, 1}, Activation: ActivationSigmoid, LearningRate: 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := New(tt.cfg)
			assert.Error(t, err)
			assert.Nil(t, n)
		})
	}
}

func TestNew_XavierInitializationBounds(t *testing.T) {
	n, err := New(Config{LayerSizes: []int{3, 5, 1}, Activation: ActivationSigmoid, LearningRate: 0.1, Seed: 7})
	require.NoError(t, err)

	p := n.Parameters()
	limits := []float64{math.Sqrt(6.0 / 8.0), math.Sqrt(6.0 / 6.0)}
	for l, layer := range p.Weights {
		for _, row := range layer {
			for _, w := range row {
				assert.LessOrEqual(t, math.Abs(w), limits[l])
			}
		}
	}
	for _, layer := range p.Biases {
		for _, b := range layer {
			assert.Zero(t, b)
		}
	}
}

func TestForward_Deterministic(t *testing.T) {
	n, err := New(Config{LayerSizes: []int{2, 4, 1}, Activation: ActivationSigmoid, LearningRate: 0.1, Seed: 42})
	require.NoError(t, err)

	input := []float64{0.3, 0.7}
	first, err := n.Forward(input)
	require.NoError(t, err)
	second, err := n.Forward(input)
	require.NoError(t, err)

	assert.Equal(t, first.Output(), second.Output())
	assert.Len(t, first.Activations, 3)
	assert.Len(t, first.Sums, 2)
}

func TestForward_DimensionMismatch(t *testing.T) {
	n, err := New(Config{LayerSizes: []int{2, 4, 1}, Activation: ActivationSigmoid, LearningRate: 0.1, Seed: 1})
	require.NoError(t, err)

	_, err = n.Forward([]float64{0.1, 0.2, 0.3})
	assert.ErrorIs(t, err, shared.ErrDimensionMismatch)
}

func TestPredict_UntrainedFails(t *testing.T) {
	n, err := New(Config{LayerSizes: []int{2, 4, 1}, Activation: ActivationSigmoid, LearningRate: 0.1, Seed: 1})
	require.NoError(t, err)

	pred, err := n.Predict([]float64{0.1, 0.2})
	assert.ErrorIs(t, err, shared.ErrUntrainedModel)
	assert.Nil(t, pred)
}

func TestTrain_Convergence(t *testing.T) {
	n, err := New(Config{LayerSizes: []int{2, 4, 1}, Activation: ActivationSigmoid, LearningRate: 0.5, Seed: 42})
	require.NoError(t, err)

	samples := []Sample{
		{Input: []float64{0.1, 0.2}, Target: []float64{1.0}},
		{Input: []float64{0.9, 0.1}, Target: []float64{0.0}},
	}

	history, err := n.Train(context.Background(), samples, 1000, 0)
	require.NoError(t, err)
	require.Positive(t, history.Epochs())

	for _, s := range samples {
		pred, err := n.Predict(s.Input)
		require.NoError(t, err)
		assert.InDelta(t, s.Target[0], pred.Prediction, 0.15,
			"prediction for input %v should approach its target", s.Input)
	}

	// Loss must have improved over the run
	assert.Less(t, history.FinalTrainLoss(), history.TrainLoss[0])
}

func TestTrain_MovesOutputsTowardTargets(t *testing.T) {
	untrained, err := New(Config{LayerSizes: []int{2, 4, 1}, Activation: ActivationSigmoid, LearningRate: 0.5, Seed: 9})
	require.NoError(t, err)
	trained, err := New(Config{LayerSizes: []int{2, 4, 1}, Activation: ActivationSigmoid, LearningRate: 0.5, Seed: 9})
	require.NoError(t, err)

	samples := []Sample{
		{Input: []float64{0.1, 0.9}, Target: []float64{1.0}},
		{Input: []float64{0.2, 0.8}, Target: []float64{1.0}},
		{Input: []float64{0.8, 0.2}, Target: []float64{0.0}},
		{Input: []float64{0.9, 0.1}, Target: []float64{0.0}},
	}

	_, err = trained.Train(context.Background(), samples, 500, 0)
	require.NoError(t, err)

	closer := 0
	for _, s := range samples {
		before, err := untrained.Forward(s.Input)
		require.NoError(t, err)
		after, err := trained.Predict(s.Input)
		require.NoError(t, err)

		if math.Abs(after.Prediction-s.Target[0]) < math.Abs(before.Output()[0]-s.Target[0]) {
			closer++
		}
	}
	assert.GreaterOrEqual(t, float64(closer)/float64(len(samples)), 0.9)
}

func TestTrain_ValidationSplitIsPositionalPrefix(t *testing.T) {
	n, err := New(Config{LayerSizes: []int{1, 2, 1}, Activation: ActivationSigmoid, LearningRate: 0.1, Seed: 3})
	require.NoError(t, err)

	samples := make([]Sample, 10)
	for i := range samples {
		v := float64(i) / 10.0
		samples[i] = Sample{Input: []float64{v}, Target: []float64{v}}
	}

	history, err := n.Train(context.Background(), samples, 5, 0.2)
	require.NoError(t, err)
	assert.Len(t, history.ValidationLoss, 5)
	assert.Len(t, history.ValidationAccuracy, 5)
}

func TestTrain_EmptySamples(t *testing.T) {
	n, err := New(Config{LayerSizes: []int{2, 2, 1}, Activation: ActivationSigmoid, LearningRate: 0.1, Seed: 3})
	require.NoError(t, err)

	_, err = n.Train(context.Background(), nil, 10, 0.2)
	assert.Error(t, err)
}

func TestTrain_SampleDimensionMismatch(t *testing.T) {
	n, err := New(Config{LayerSizes: []int{2, 2, 1}, Activation: ActivationSigmoid, LearningRate: 0.1, Seed: 3})
	require.NoError(t, err)

	_, err = n.Train(context.Background(), []Sample{
		{Input: []float64{0.1}, Target: []float64{1.0}},
	}, 10, 0)
	assert.ErrorIs(t, err, shared.ErrDimensionMismatch)
}

func TestTrain_CancelledContext(t *testing.T) {
	n, err := New(Config{LayerSizes: []int{2, 2, 1}, Activation: ActivationSigmoid, LearningRate: 0.1, Seed: 3})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	history, err := n.Train(ctx, []Sample{
		{Input: []float64{0.1, 0.2}, Target: []float64{1.0}},
	}, 100, 0)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotNil(t, history)
	assert.Zero(t, history.Epochs())
}

func TestParameters_RoundTrip(t *testing.T) {
	original, err := New(Config{LayerSizes: []int{2, 4, 1}, Activation: ActivationTanh, LearningRate: 0.3, Seed: 11})
	require.NoError(t, err)

	samples := []Sample{
		{Input: []float64{0.1, 0.2}, Target: []float64{1.0}},
		{Input: []float64{0.9, 0.1}, Target: []float64{0.0}},
	}
	_, err = original.Train(context.Background(), samples, 100, 0)
	require.NoError(t, err)

	restored, err := FromParameters(original.Parameters())
	require.NoError(t, err)

	input := []float64{0.42, 0.58}
	want, err := original.Predict(input)
	require.NoError(t, err)
	got, err := restored.Predict(input)
	require.NoError(t, err)

	// Bit-identical, not merely close
	assert.Equal(t, want.Raw, got.Raw)
	assert.Equal(t, want.Prediction, got.Prediction)
}

func TestParameters_SnapshotIsDeepCopy(t *testing.T) {
	n, err := New(Config{LayerSizes: []int{2, 2, 1}, Activation: ActivationSigmoid, LearningRate: 0.5, Seed: 5})
	require.NoError(t, err)

	snapshot := n.Parameters()
	before, err := n.Forward([]float64{0.5, 0.5})
	require.NoError(t, err)

	snapshot.Weights[0][0][0] = 99

	after, err := n.Forward([]float64{0.5, 0.5})
	require.NoError(t, err)
	assert.Equal(t, before.Output(), after.Output())
}

func TestLoadParameters_ShapeMismatch(t *testing.T) {
	n, err := New(Config{LayerSizes: []int{2, 4, 1}, Activation: ActivationSigmoid, LearningRate: 0.1, Seed: 1})
	require.NoError(t, err)

	other, err := New(Config{LayerSizes: []int{3, 4, 1}, Activation: ActivationSigmoid, LearningRate: 0.1, Seed: 1})
	require.NoError(t, err)

	err = n.LoadParameters(other.Parameters())
	assert.ErrorIs(t, err, shared.ErrDimensionMismatch)

	var domainErr *shared.DomainError
	assert.True(t, errors.As(err, &domainErr))
}

func TestActivation_Derivatives(t *testing.T) {
	tests := []struct {
		name       string
		activation Activation
		z          float64
	}{
		{"sigmoid", ActivationSigmoid, 0.4},
		{"tanh", ActivationTanh, -0.3},
		{"relu positive", ActivationReLU, 1.2},
		{"relu negative", ActivationReLU, -1.2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := tt.activation.apply(tt.z)
			got := tt.activation.derivative(tt.z, a)

			// Compare against a central finite difference
			const h = 1e-6
			want := (tt.activation.apply(tt.z+h) - tt.activation.apply(tt.z-h)) / (2 * h)
			assert.InDelta(t, want, got, 1e-4)
		})
	}
}
