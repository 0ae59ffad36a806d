// Package snapshots persists pipeline runs: one Snapshot row per run and
// one SessionRecord row per normalized session.
package snapshots

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mrlokans/session-catalog/internal/entities"
)

// ErrNotFound is returned when no snapshot matches.
var ErrNotFound = errors.New("snapshot not found")

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Run is one pipeline run to persist.
type Run struct {
	Event    string
	Filter   string
	Sessions []entities.Session
	Rejected int
	TakenAt  time.Time
}

// Save stores a run and its sessions in one transaction and returns the
// snapshot with its generated RunID.
func (r *Repository) Save(run Run) (*entities.Snapshot, error) {
	records := make([]entities.SessionRecord, 0, len(run.Sessions))
	for _, s := range run.Sessions {
		records = append(records, entities.NewSessionRecord(s))
	}

	takenAt := run.TakenAt
	if takenAt.IsZero() {
		takenAt = time.Now()
	}

	snap := &entities.Snapshot{
		RunID:         uuid.NewString(),
		Event:         run.Event,
		Filter:        run.Filter,
		SessionCount:  len(run.Sessions),
		RejectedCount: run.Rejected,
		TakenAt:       takenAt.UTC(),
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(snap).Error; err != nil {
			return fmt.Errorf("failed to create snapshot: %w", err)
		}
		if len(records) == 0 {
			return nil
		}
		for i := range records {
			records[i].SnapshotID = snap.ID
		}
		if err := tx.CreateInBatches(records, 200).Error; err != nil {
			return fmt.Errorf("failed to store sessions: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// Latest returns the newest snapshot for an event and filter. Empty
// arguments match any value.
func (r *Repository) Latest(event, filter string) (*entities.Snapshot, error) {
	query := r.db.Order("taken_at DESC, id DESC")
	if event != "" {
		query = query.Where("event = ?", event)
	}
	if filter != "" {
		query = query.Where("filter = ?", filter)
	}

	var snap entities.Snapshot
	if err := query.First(&snap).Error; err != nil {
		return nil, notFound(err)
	}
	return &snap, nil
}

func (r *Repository) GetByID(id uint) (*entities.Snapshot, error) {
	var snap entities.Snapshot
	if err := r.db.First(&snap, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &snap, nil
}

// List returns the newest snapshots first.
func (r *Repository) List(limit int) ([]entities.Snapshot, error) {
	if limit <= 0 {
		limit = 50
	}
	var snaps []entities.Snapshot
	err := r.db.Order("taken_at DESC, id DESC").Limit(limit).Find(&snaps).Error
	return snaps, err
}

// Sessions returns the sessions of a snapshot ordered by start time, with
// unscheduled sessions last.
func (r *Repository) Sessions(snapshotID uint) ([]entities.SessionRecord, error) {
	if _, err := r.GetByID(snapshotID); err != nil {
		return nil, err
	}
	var records []entities.SessionRecord
	err := r.db.Where("snapshot_id = ?", snapshotID).
		Order("start_at IS NULL, start_at, code").
		Find(&records).Error
	return records, err
}

// DeleteOlderThan removes snapshots taken before now-maxAge together with
// their sessions. It returns the number of snapshots removed.
func (r *Repository) DeleteOlderThan(maxAge time.Duration) (int64, error) {
	cutoff := time.Now().Add(-maxAge).UTC()
	var deleted int64

	err := r.db.Transaction(func(tx *gorm.DB) error {
		old := tx.Model(&entities.Snapshot{}).Select("id").Where("taken_at < ?", cutoff)
		if err := tx.Where("snapshot_id IN (?)", old).Delete(&entities.SessionRecord{}).Error; err != nil {
			return err
		}
		res := tx.Where("taken_at < ?", cutoff).Delete(&entities.Snapshot{})
		deleted = res.RowsAffected
		return res.Error
	})
	return deleted, err
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
