package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mylittlethingz/backend/internal/domain/mlmodel"
	"github.com/mylittlethingz/backend/internal/domain/shared"
)

// GormModelRecordRepository implements mlmodel.Repository using GORM.
// Active-flag changes run inside transactions: the deactivate/activate
// pair is a critical section and must never be observed half-done.
type GormModelRecordRepository struct {
	db *gorm.DB
}

// NewGormModelRecordRepository creates a new GormModelRecordRepository
func NewGormModelRecordRepository(db *gorm.DB) *GormModelRecordRepository {
	return &GormModelRecordRepository{db: db}
}

// FindByID finds a record by its ID
func (r *GormModelRecordRepository) FindByID(ctx context.Context, id uuid.UUID) (*mlmodel.ModelRecord, error) {
	var record mlmodel.ModelRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

// FindActive returns the single active record for a model name
func (r *GormModelRecordRepository) FindActive(ctx context.Context, name string) (*mlmodel.ModelRecord, error) {
	var record mlmodel.ModelRecord
	if err := r.db.WithContext(ctx).
		Where("name = ? AND status = ?", name, mlmodel.ModelStatusActive).
		First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNoActiveModel
		}
		return nil, err
	}
	return &record, nil
}

// NextVersion returns 1 + the highest existing version for a model name
func (r *GormModelRecordRepository) NextVersion(ctx context.Context, name string) (int, error) {
	var maxVersion *int
	if err := r.db.WithContext(ctx).
		Model(&mlmodel.ModelRecord{}).
		Where("name = ?", name).
		Select("MAX(version)").
		Scan(&maxVersion).Error; err != nil {
		return 0, err
	}
	if maxVersion == nil {
		return 1, nil
	}
	return *maxVersion + 1, nil
}

// Save persists a record without touching active flags
func (r *GormModelRecordRepository) Save(ctx context.Context, record *mlmodel.ModelRecord) error {
	return r.db.WithContext(ctx).Save(record).Error
}

// SaveAndActivate persists the record and atomically makes it the
// single active record for its model name
func (r *GormModelRecordRepository) SaveAndActivate(ctx context.Context, record *mlmodel.ModelRecord) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&mlmodel.ModelRecord{}).
			Where("name = ? AND status = ?", record.Name, mlmodel.ModelStatusActive).
			Update("status", mlmodel.ModelStatusInactive).Error; err != nil {
			return err
		}
		record.Status = mlmodel.ModelStatusActive
		return tx.Save(record).Error
	})
}

// Activate atomically makes an existing record the single active one
// for its model name
func (r *GormModelRecordRepository) Activate(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var record mlmodel.ModelRecord
		if err := tx.First(&record, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.ErrNotFound
			}
			return err
		}
		if err := tx.Model(&mlmodel.ModelRecord{}).
			Where("name = ? AND status = ?", record.Name, mlmodel.ModelStatusActive).
			Update("status", mlmodel.ModelStatusInactive).Error; err != nil {
			return err
		}
		return tx.Model(&mlmodel.ModelRecord{}).
			Where("id = ?", id).
			Update("status", mlmodel.ModelStatusActive).Error
	})
}

// DeleteAllButNewest removes all but the keep most recently created
// records for a model name
func (r *GormModelRecordRepository) DeleteAllButNewest(ctx context.Context, name string, keep int) (int64, error) {
	if keep < 1 {
		return 0, shared.NewDomainError("INVALID_RETENTION", "Retention count must be at least 1")
	}

	var keepIDs []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&mlmodel.ModelRecord{}).
		Where("name = ?", name).
		Order("created_at DESC").
		Limit(keep).
		Pluck("id", &keepIDs).Error; err != nil {
		return 0, err
	}

	result := r.db.WithContext(ctx).
		Where("name = ? AND id NOT IN ?", name, keepIDs).
		Delete(&mlmodel.ModelRecord{})
	return result.RowsAffected, result.Error
}
