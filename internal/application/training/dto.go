package training

import (
	"github.com/google/uuid"

	"github.com/mylittlethingz/backend/internal/domain/mlmodel"
	"github.com/mylittlethingz/backend/internal/ml/network"
)

// Outcome classifies what a training run did to the active model
type Outcome string

const (
	// OutcomeActivated means the new version was activated unconditionally
	OutcomeActivated Outcome = "activated"
	// OutcomeImproved means the new version replaced the previous active one
	OutcomeImproved Outcome = "improved"
	// OutcomeReverted means the new version regressed and was shelved
	// while the previous version keeps serving
	OutcomeReverted Outcome = "reverted"
)

// Result summarizes one training run
type Result struct {
	RecordID         uuid.UUID               `json:"record_id"`
	ModelName        string                  `json:"model_name"`
	Version          int                     `json:"version"`
	Outcome          Outcome                 `json:"outcome"`
	Metrics          mlmodel.TrainingMetrics `json:"metrics"`
	StoppedEarly     bool                    `json:"stopped_early"`
	PreviousAccuracy *float64                `json:"previous_accuracy,omitempty"`
}

func newResult(record *mlmodel.ModelRecord, history *network.History, outcome Outcome, previousAccuracy *float64) *Result {
	return &Result{
		RecordID:         record.ID,
		ModelName:        record.Name,
		Version:          record.Version,
		Outcome:          outcome,
		Metrics:          record.Metrics(),
		StoppedEarly:     history.StoppedEarly,
		PreviousAccuracy: previousAccuracy,
	}
}
