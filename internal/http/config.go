package http

import (
	"github.com/mrlokans/session-catalog/internal/database"
)

// RouterConfig contains all dependencies needed to create the HTTP router.
// Optional dependencies left nil disable their routes.
type RouterConfig struct {
	Database  *database.Database
	Snapshots SnapshotStore

	// Default event for snapshot lookups without ?event=
	Event string

	// Refresh endpoints (optional)
	Refresh  RefreshTrigger
	Tasks    TaskStatusReader
	Progress ProgressReader

	Version string
}
