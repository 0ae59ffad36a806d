package http

import (
	"context"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/session-catalog/internal/entities"
)

// Each controller depends on the narrowest interface it needs; the
// production implementations live in internal/database and internal/tasks.

// SnapshotStore provides read access to stored snapshots.
type SnapshotStore interface {
	Latest(event, filter string) (*entities.Snapshot, error)
	GetByID(id uint) (*entities.Snapshot, error)
	List(limit int) ([]entities.Snapshot, error)
	Sessions(snapshotID uint) ([]entities.SessionRecord, error)
}

// RefreshTrigger enqueues a capacity refresh and returns its task id. An
// empty id means a refresh is already running.
type RefreshTrigger interface {
	RunNow(ctx context.Context) (string, error)
}

// TaskStatusReader looks up queued tasks.
type TaskStatusReader interface {
	Status(ctx context.Context, taskID string) (backlite.TaskStatus, error)
}

// ProgressReader exposes the state of the last refresh.
type ProgressReader interface {
	GetSyncProgress() (*entities.SyncProgress, error)
}
