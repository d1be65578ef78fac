package mlmodel

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the persistence interface for model records.
//
// The active flag is the only shared mutable state in the scoring core:
// implementations must perform SaveAndActivate and Activate inside a
// single transaction so concurrent retrains can never leave two or zero
// active records for one model name.
type Repository interface {
	// FindByID finds a record by its ID, shared.ErrNotFound when absent
	FindByID(ctx context.Context, id uuid.UUID) (*ModelRecord, error)
	// FindActive returns the active record for a model name,
	// shared.ErrNoActiveModel when none exists
	FindActive(ctx context.Context, name string) (*ModelRecord, error)
	// NextVersion returns 1 + the highest existing version for a model name
	NextVersion(ctx context.Context, name string) (int, error)
	// Save persists a record without touching active flags
	Save(ctx context.Context, record *ModelRecord) error
	// SaveAndActivate persists the record and makes it the single active
	// record for its model name, deactivating any prior active record
	SaveAndActivate(ctx context.Context, record *ModelRecord) error
	// Activate makes an existing record the single active one for its name
	Activate(ctx context.Context, id uuid.UUID) error
	// DeleteAllButNewest removes all but the keep most recently created
	// records for a model name, returning the number deleted
	DeleteAllButNewest(ctx context.Context, name string, keep int) (int64, error)
}
