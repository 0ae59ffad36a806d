// Package database provides the data access layer for service mode.
//
// # Architecture
//
//	database/
//	├── database.go      # Connection setup and migrations
//	├── snapshots/       # Persisted pipeline runs and their sessions
//	└── sync/            # Progress of the running refresh
//
// # Using Sub-packages
//
//	db, err := database.NewDatabase("./sessions.db")
//
//	snapshotsRepo := snapshots.NewRepository(db.DB)
//	progressRepo := sync.NewRepositoryWithType(db.DB, entities.SyncTypeCapacity)
//
//	snap, err := snapshotsRepo.Latest("amsterdam-2024", "search.sessiontype=BRK")
//
// # Interface Implementations
//
//   - snapshots.Repository: implements http.SnapshotStore
//   - snapshots.Exporter: implements exporters.SessionExporter
//   - sync.Repository: implements tasks.ProgressReporter
package database
