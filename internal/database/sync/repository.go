// Package sync stores the progress of the capacity refresh so the HTTP API
// can report it while a task runs in the background.
//
// # Interface Implementation
//
//	var _ tasks.ProgressReporter = (*Repository)(nil)
//
// # Usage
//
//	repo := sync.NewRepository(db)
//	err := repo.StartSync(len(sessionTypes))
//	err = repo.RecordItem("search.sessiontype=BRK", true)
//	err = repo.CompleteSync(true, "")
package sync

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/session-catalog/internal/entities"
)

// staleAfter marks a running refresh as interrupted when it stops reporting.
const staleAfter = 30 * time.Minute

// Repository handles all sync progress database operations.
type Repository struct {
	db       *gorm.DB
	syncType entities.SyncType
}

// NewRepository creates a repository for the capacity refresh.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db, syncType: entities.SyncTypeCapacity}
}

// NewRepositoryWithType creates a sync repository for a specific sync type.
func NewRepositoryWithType(db *gorm.DB, syncType entities.SyncType) *Repository {
	return &Repository{db: db, syncType: syncType}
}

// GetSyncProgress retrieves the progress for the configured sync type.
func (r *Repository) GetSyncProgress() (*entities.SyncProgress, error) {
	var progress entities.SyncProgress
	err := r.db.Where("sync_type = ?", r.syncType).First(&progress).Error
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

// StartSync creates or resets the progress record for a refresh over
// totalItems filter values.
func (r *Repository) StartSync(totalItems int) error {
	now := time.Now()
	progress := entities.SyncProgress{
		SyncType:   r.syncType,
		Status:     entities.SyncStatusRunning,
		TotalItems: totalItems,
		StartedAt:  now,
		UpdatedAt:  now,
	}

	var existing entities.SyncProgress
	err := r.db.Where("sync_type = ?", r.syncType).First(&existing).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return r.db.Create(&progress).Error
	case err != nil:
		return err
	}

	progress.ID = existing.ID
	return r.db.Save(&progress).Error
}

// RecordItem counts one finished filter value. Counters are incremented in
// SQL so concurrent workers do not overwrite each other.
func (r *Repository) RecordItem(item string, succeeded bool) error {
	column := "succeeded"
	if !succeeded {
		column = "failed"
	}
	return r.db.Model(&entities.SyncProgress{}).
		Where("sync_type = ?", r.syncType).
		Updates(map[string]any{
			"processed":    gorm.Expr("processed + 1"),
			column:         gorm.Expr(column + " + 1"),
			"current_item": item,
			"updated_at":   time.Now(),
		}).Error
}

// CompleteSync marks the refresh as completed or failed.
func (r *Repository) CompleteSync(succeeded bool, errorMsg string) error {
	now := time.Now()
	status := entities.SyncStatusCompleted
	if !succeeded {
		status = entities.SyncStatusFailed
	}

	updates := map[string]any{
		"status":       status,
		"current_item": "",
		"updated_at":   now,
		"completed_at": now,
	}
	if errorMsg != "" {
		updates["error"] = errorMsg
	}
	return r.db.Model(&entities.SyncProgress{}).
		Where("sync_type = ?", r.syncType).
		Updates(updates).Error
}

// IsSyncRunning reports whether a refresh is in progress. A refresh that
// has not reported for staleAfter is marked failed.
func (r *Repository) IsSyncRunning() (bool, error) {
	var progress entities.SyncProgress
	err := r.db.Where("sync_type = ? AND status = ?", r.syncType, entities.SyncStatusRunning).First(&progress).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if progress.UpdatedAt.Before(time.Now().Add(-staleAfter)) {
		_ = r.CompleteSync(false, "refresh was interrupted")
		return false, nil
	}

	return true, nil
}
