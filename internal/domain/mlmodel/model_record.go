package mlmodel

import (
	"encoding/json"

	"github.com/mylittlethingz/backend/internal/domain/shared"
)

// ModelStatus marks whether a record is serving predictions
type ModelStatus string

const (
	ModelStatusActive   ModelStatus = "active"
	ModelStatusInactive ModelStatus = "inactive"
)

// TrainingMetrics captures the final metrics of a training run
type TrainingMetrics struct {
	TrainLoss          float64 `json:"train_loss"`
	ValidationLoss     float64 `json:"validation_loss"`
	TrainAccuracy      float64 `json:"train_accuracy"`
	ValidationAccuracy float64 `json:"validation_accuracy"`
	Epochs             int     `json:"epochs"`
	SampleCount        int     `json:"sample_count"`
}

// ModelRecord is an immutable, versioned snapshot of trained network
// parameters plus the architecture they belong to. Exactly one record
// per model name is active at a time; superseded records are kept for
// rollback until pruned.
type ModelRecord struct {
	shared.BaseEntity
	Name           string      `gorm:"type:varchar(100);not null;index:idx_model_name_version,priority:1"`
	Version        int         `gorm:"not null;index:idx_model_name_version,priority:2"`
	Status         ModelStatus `gorm:"type:varchar(20);not null;default:'inactive';index"`
	Activation     string      `gorm:"type:varchar(20);not null"`
	LayerSizes     string      `gorm:"type:text;not null"` // JSON array, [input, hidden..., output]
	LearningRate   float64     `gorm:"not null"`
	ParamsJSON     string      `gorm:"type:text;not null"` // serialized weights and biases, kept separate
	NormalizerJSON string      `gorm:"type:text"`          // per-feature min-max parameters

	TrainLoss          float64 `gorm:"not null;default:0"`
	ValidationLoss     float64 `gorm:"not null;default:0"`
	TrainAccuracy      float64 `gorm:"not null;default:0"`
	ValidationAccuracy float64 `gorm:"not null;default:0"`
	Epochs             int     `gorm:"not null;default:0"`
	SampleCount        int     `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (ModelRecord) TableName() string {
	return "model_records"
}

// NewModelRecord creates an inactive record for a finished training run
func NewModelRecord(name string, version int, activation string, layerSizes []int, learningRate float64, paramsJSON, normalizerJSON string, metrics TrainingMetrics) (*ModelRecord, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_MODEL_NAME", "Model name cannot be empty")
	}
	if version < 1 {
		return nil, shared.NewDomainError("INVALID_MODEL_VERSION", "Model version must be positive")
	}
	if len(layerSizes) < 2 {
		return nil, shared.ErrDimensionMismatch
	}

	sizes, err := json.Marshal(layerSizes)
	if err != nil {
		return nil, err
	}

	return &ModelRecord{
		BaseEntity:         shared.NewBaseEntity(),
		Name:               name,
		Version:            version,
		Status:             ModelStatusInactive,
		Activation:         activation,
		LayerSizes:         string(sizes),
		LearningRate:       learningRate,
		ParamsJSON:         paramsJSON,
		NormalizerJSON:     normalizerJSON,
		TrainLoss:          metrics.TrainLoss,
		ValidationLoss:     metrics.ValidationLoss,
		TrainAccuracy:      metrics.TrainAccuracy,
		ValidationAccuracy: metrics.ValidationAccuracy,
		Epochs:             metrics.Epochs,
		SampleCount:        metrics.SampleCount,
	}, nil
}

// IsActive returns true if this record is the serving model
func (r *ModelRecord) IsActive() bool {
	return r.Status == ModelStatusActive
}

// Sizes decodes the layer-size sequence
func (r *ModelRecord) Sizes() ([]int, error) {
	var sizes []int
	if err := json.Unmarshal([]byte(r.LayerSizes), &sizes); err != nil {
		return nil, err
	}
	if len(sizes) < 2 {
		return nil, shared.ErrDimensionMismatch
	}
	return sizes, nil
}

// Metrics returns the training metrics of this record
func (r *ModelRecord) Metrics() TrainingMetrics {
	return TrainingMetrics{
		TrainLoss:          r.TrainLoss,
		ValidationLoss:     r.ValidationLoss,
		TrainAccuracy:      r.TrainAccuracy,
		ValidationAccuracy: r.ValidationAccuracy,
		Epochs:             r.Epochs,
		SampleCount:        r.SampleCount,
	}
}
