// Package interfaces documents the core abstractions used throughout the application.
//
// # Interface Categories
//
// ## Ingestion
//
//   - Source: yields raw search items for a set of filters (internal/importers/pipeline.go).
//     *rainfocus.Client is the production implementation.
//   - Exporter / SessionExporter: consumes normalized sessions
//     (internal/importers/pipeline.go, internal/exporters/generic.go)
//
// ## Data Access Interfaces
//
//   - SnapshotStore: read access to stored snapshots (internal/http/stores.go)
//   - SnapshotSaver, SnapshotPruner: snapshot writes from queue tasks (internal/tasks)
//
// ## Task Queue & Scheduling
//
//   - Enqueuer: persists a backlite task and reads its status (internal/scheduler/capacity_sync.go)
//   - RefreshTrigger, TaskStatusReader: refresh endpoints (internal/http/stores.go)
//
// ## Progress Tracking Interfaces
//
//   - ProgressReporter: refresh progress per session type (internal/tasks/refresh.go)
//   - RunningChecker, ProgressReader: read side of the same record
//
// # Adding a New Export Sink
//
//  1. Implement SessionExporter in internal/exporters/
//
//     type CSVExporter struct {
//         Path string
//     }
//
//     func (e *CSVExporter) Export(sessions []entities.Session) (ExportResult, error)
//
//  2. Add a compile-time check to checks.go
//
//  3. Append it to the exporters.Multi built by the CLI command that needs it
//
// # Adding a New Filter Dimension
//
// Filters are plain form fields of the search request. Add the field name
// next to FilterSessionType in internal/rainfocus/client.go and fan out over
// its values with importers.FanOut, one pipeline run per value.
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces. This catches missing methods at compile time rather than runtime:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// See checks.go for examples.
package interfaces
