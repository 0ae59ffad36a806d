package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/session-catalog/internal/database/snapshots"
	"github.com/mrlokans/session-catalog/internal/database/sync"
	"github.com/mrlokans/session-catalog/internal/exporters"
	"github.com/mrlokans/session-catalog/internal/http"
	"github.com/mrlokans/session-catalog/internal/importers"
	"github.com/mrlokans/session-catalog/internal/rainfocus"
	"github.com/mrlokans/session-catalog/internal/scheduler"
	"github.com/mrlokans/session-catalog/internal/tasks"
)

// =============================================================================
// Ingestion
// =============================================================================

var _ importers.Source = (*rainfocus.Client)(nil)

// =============================================================================
// Export Sinks
// =============================================================================

var _ exporters.SessionExporter = (*exporters.SpreadsheetExporter)(nil)
var _ exporters.SessionExporter = (*exporters.CapacityReport)(nil)
var _ exporters.SessionExporter = (*exporters.CalendarExporter)(nil)
var _ exporters.SessionExporter = (*exporters.ElasticIndexer)(nil)
var _ exporters.SessionExporter = (*exporters.KafkaPublisher)(nil)
var _ exporters.SessionExporter = (*snapshots.Exporter)(nil)
var _ importers.Exporter = exporters.Multi(nil)

// =============================================================================
// Data Access Layer
// =============================================================================

var _ http.SnapshotStore = (*snapshots.Repository)(nil)
var _ tasks.SnapshotSaver = (*snapshots.Repository)(nil)
var _ tasks.SnapshotPruner = (*snapshots.Repository)(nil)

// =============================================================================
// Task Queue & Scheduling
// =============================================================================

var _ scheduler.Enqueuer = (*tasks.Client)(nil)
var _ http.TaskStatusReader = (*tasks.Client)(nil)
var _ http.RefreshTrigger = (*scheduler.CapacitySyncScheduler)(nil)

// =============================================================================
// Progress Tracking
// =============================================================================

var _ tasks.ProgressReporter = (*sync.Repository)(nil)
var _ scheduler.RunningChecker = (*sync.Repository)(nil)
var _ http.ProgressReader = (*sync.Repository)(nil)
