package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"
)

// SnapshotPruner deletes snapshots older than a cutoff.
type SnapshotPruner interface {
	DeleteOlderThan(maxAge time.Duration) (int64, error)
}

// PruneSnapshotsTask removes snapshots past the retention window.
type PruneSnapshotsTask struct {
	MaxAge time.Duration `json:"max_age"`
}

// Config returns the queue configuration for prune tasks.
func (t PruneSnapshotsTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "prune_snapshots",
		MaxAttempts: 1,
		Backoff:     time.Minute,
		Timeout:     time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// PruneSnapshotsProcessor creates a processor function for PruneSnapshotsTask.
func PruneSnapshotsProcessor(pruner SnapshotPruner) backlite.QueueProcessor[PruneSnapshotsTask] {
	return func(ctx context.Context, task PruneSnapshotsTask) error {
		if pruner == nil {
			return fmt.Errorf("snapshot pruner not configured")
		}
		if task.MaxAge <= 0 {
			return fmt.Errorf("prune snapshots: max age must be positive, got %v", task.MaxAge)
		}

		deleted, err := pruner.DeleteOlderThan(task.MaxAge)
		if err != nil {
			return fmt.Errorf("prune snapshots: %w", err)
		}

		log.Printf("[TASK] Pruned %d snapshots older than %v", deleted, task.MaxAge)
		return nil
	}
}

// NewPruneSnapshotsQueue creates a backlite queue for prune tasks. Pruning
// is a single short delete, so only the retention setting applies.
func NewPruneSnapshotsQueue(pruner SnapshotPruner, cfg Config) backlite.Queue {
	return Config{RetentionDuration: cfg.RetentionDuration}.applyTo(backlite.NewQueue(PruneSnapshotsProcessor(pruner)))
}
