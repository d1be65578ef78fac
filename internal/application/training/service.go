package training

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/mylittlethingz/backend/internal/domain/catalog"
	"github.com/mylittlethingz/backend/internal/domain/mlmodel"
	"github.com/mylittlethingz/backend/internal/domain/shared"
	"github.com/mylittlethingz/backend/internal/infrastructure/config"
	"github.com/mylittlethingz/backend/internal/ml/feature"
	"github.com/mylittlethingz/backend/internal/ml/network"
)

// Service owns the model lifecycle: assembling training sets from
// interaction history, training versioned networks, and swapping the
// active record with rollback protection.
type Service struct {
	items        catalog.ItemRepository
	interactions catalog.InteractionRepository
	models       mlmodel.Repository
	builder      *feature.Builder
	cfg          config.TrainingConfig
	log          *zap.Logger
}

// NewService creates a training service
func NewService(
	items catalog.ItemRepository,
	interactions catalog.InteractionRepository,
	models mlmodel.Repository,
	cfg config.TrainingConfig,
	log *zap.Logger,
) *Service {
	return &Service{
		items:        items,
		interactions: interactions,
		models:       models,
		builder:      feature.NewBuilder(items, interactions),
		cfg:          cfg,
		log:          log,
	}
}

// TrainModel trains a new model version and activates it unconditionally.
// Use RetrainModel when an active model already exists and a regression
// must keep the previous version serving.
func (s *Service) TrainModel(ctx context.Context) (*Result, error) {
	record, history, err := s.trainOnce(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.models.SaveAndActivate(ctx, record); err != nil {
		return nil, err
	}

	s.log.Info("model trained and activated",
		zap.String("model_name", record.Name),
		zap.Int("version", record.Version),
		zap.Float64("validation_accuracy", record.ValidationAccuracy),
		zap.Int("epochs", record.Epochs),
		zap.Bool("stopped_early", history.StoppedEarly))

	return newResult(record, history, OutcomeActivated, nil), nil
}

// RetrainModel trains a new version and activates it only when its
// validation accuracy is not strictly worse than the current active
// model's. A regressing version is persisted inactive for inspection
// while the previous version keeps serving.
func (s *Service) RetrainModel(ctx context.Context) (*Result, error) {
	previous, err := s.models.FindActive(ctx, s.cfg.ModelName)
	if err != nil {
		if errors.Is(err, shared.ErrNoActiveModel) {
			return s.TrainModel(ctx)
		}
		return nil, err
	}

	record, history, err := s.trainOnce(ctx)
	if err != nil {
		return nil, err
	}

	prevAccuracy := previous.ValidationAccuracy
	if record.ValidationAccuracy < prevAccuracy {
		if err := s.models.Save(ctx, record); err != nil {
			return nil, err
		}
		s.log.Warn("retrained model regressed, keeping previous version",
			zap.String("model_name", record.Name),
			zap.Int("new_version", record.Version),
			zap.Int("active_version", previous.Version),
			zap.Float64("new_accuracy", record.ValidationAccuracy),
			zap.Float64("active_accuracy", prevAccuracy))
		return newResult(record, history, OutcomeReverted, &prevAccuracy), nil
	}

	if err := s.models.SaveAndActivate(ctx, record); err != nil {
		return nil, err
	}
	s.log.Info("retrained model activated",
		zap.String("model_name", record.Name),
		zap.Int("version", record.Version),
		zap.Float64("new_accuracy", record.ValidationAccuracy),
		zap.Float64("previous_accuracy", prevAccuracy))
	return newResult(record, history, OutcomeImproved, &prevAccuracy), nil
}

// LoadActiveNetwork reconstructs the serving network and its fitted
// normalizer from the active record. Fails with shared.ErrNoActiveModel
// when no version has been activated.
func (s *Service) LoadActiveNetwork(ctx context.Context) (*network.Network, *feature.Normalizer, *mlmodel.ModelRecord, error) {
	record, err := s.models.FindActive(ctx, s.cfg.ModelName)
	if err != nil {
		return nil, nil, nil, err
	}

	var params network.Parameters
	if err := json.Unmarshal([]byte(record.ParamsJSON), &params); err != nil {
		return nil, nil, nil, err
	}
	net, err := network.FromParameters(params)
	if err != nil {
		return nil, nil, nil, err
	}

	var norm feature.Normalizer
	if err := json.Unmarshal([]byte(record.NormalizerJSON), &norm); err != nil {
		return nil, nil, nil, err
	}
	return net, &norm, record, nil
}

// CleanupOldModels prunes superseded versions beyond the configured
// retention count and returns the number deleted.
func (s *Service) CleanupOldModels(ctx context.Context) (int64, error) {
	deleted, err := s.models.DeleteAllButNewest(ctx, s.cfg.ModelName, s.cfg.KeepModels)
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		s.log.Info("pruned old model versions",
			zap.String("model_name", s.cfg.ModelName),
			zap.Int64("deleted", deleted),
			zap.Int("kept", s.cfg.KeepModels))
	}
	return deleted, nil
}

// trainOnce assembles the sample set, trains a fresh network, and
// returns an unactivated versioned record
func (s *Service) trainOnce(ctx context.Context) (*mlmodel.ModelRecord, *network.History, error) {
	samples, err := s.buildSamples(ctx)
	if err != nil {
		return nil, nil, err
	}
	if len(samples) < s.cfg.MinSamples {
		s.log.Warn("not enough samples to train",
			zap.Int("samples", len(samples)),
			zap.Int("required", s.cfg.MinSamples))
		return nil, nil, shared.ErrInsufficientData
	}

	seed := s.cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	// Interaction rows arrive in insertion order; the validation split is
	// positional, so shuffle first.
	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(samples), func(i, j int) {
		samples[i], samples[j] = samples[j], samples[i]
	})

	pool := make([][]float64, len(samples))
	for i := range samples {
		pool[i] = samples[i].Input
	}
	norm, err := feature.FitNormalizer(pool)
	if err != nil {
		return nil, nil, err
	}
	for i := range samples {
		scaled, err := norm.Apply(samples[i].Input)
		if err != nil {
			return nil, nil, err
		}
		samples[i].Input = scaled
	}

	sizes := append([]int{int(feature.FeatureCount)}, s.cfg.HiddenLayers...)
	sizes = append(sizes, 1)
	net, err := network.New(network.Config{
		LayerSizes:   sizes,
		Activation:   network.Activation(s.cfg.Activation),
		LearningRate: s.cfg.LearningRate,
		Seed:         seed,
	})
	if err != nil {
		return nil, nil, err
	}

	start := time.Now()
	history, err := net.Train(ctx, samples, s.cfg.Epochs, s.cfg.ValidationSplit)
	if err != nil {
		return nil, nil, err
	}
	s.log.Debug("training pass finished",
		zap.Int("samples", len(samples)),
		zap.Int("epochs", history.Epochs()),
		zap.Duration("elapsed", time.Since(start)))

	version, err := s.models.NextVersion(ctx, s.cfg.ModelName)
	if err != nil {
		return nil, nil, err
	}

	paramsJSON, err := json.Marshal(net.Parameters())
	if err != nil {
		return nil, nil, err
	}
	normJSON, err := json.Marshal(norm)
	if err != nil {
		return nil, nil, err
	}

	record, err := mlmodel.NewModelRecord(
		s.cfg.ModelName, version, s.cfg.Activation, sizes, s.cfg.LearningRate,
		string(paramsJSON), string(normJSON), mlmodel.TrainingMetrics{
			TrainLoss:          history.FinalTrainLoss(),
			ValidationLoss:     history.FinalValidationLoss(),
			TrainAccuracy:      history.FinalTrainAccuracy(),
			ValidationAccuracy: history.FinalValidationAccuracy(),
			Epochs:             history.Epochs(),
			SampleCount:        len(samples),
		})
	if err != nil {
		return nil, nil, err
	}
	return record, history, nil
}

// buildSamples derives one labeled sample per interaction row. Rows
// whose item has been removed or retired are skipped, not failed on.
func (s *Service) buildSamples(ctx context.Context) ([]network.Sample, error) {
	interactions, err := s.interactions.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	samples := make([]network.Sample, 0, len(interactions))
	skipped := 0
	for _, in := range interactions {
		vec, err := s.builder.Extract(ctx, in.UserID, in.ItemID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				skipped++
				continue
			}
			return nil, err
		}
		samples = append(samples, network.Sample{
			Input:  vec,
			Target: []float64{feature.TargetFor(in.Behavior, in.RatingValue)},
		})
	}
	if skipped > 0 {
		s.log.Debug("skipped interactions with missing items", zap.Int("skipped", skipped))
	}
	return samples, nil
}
