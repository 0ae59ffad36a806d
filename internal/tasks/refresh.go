package tasks

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/session-catalog/internal/database/snapshots"
	"github.com/mrlokans/session-catalog/internal/entities"
	"github.com/mrlokans/session-catalog/internal/events"
	"github.com/mrlokans/session-catalog/internal/importers"
	"github.com/mrlokans/session-catalog/internal/metrics"
	"github.com/mrlokans/session-catalog/internal/rainfocus"
)

// ErrNoSessionTypes is returned when neither the task nor the event profile
// names a session type to refresh.
var ErrNoSessionTypes = errors.New("no session types to refresh")

// RefreshSnapshotTask captures current seat availability for an event, one
// snapshot per session type.
type RefreshSnapshotTask struct {
	Event        string   `json:"event"`
	SessionTypes []string `json:"session_types,omitempty"`
}

// Config returns the queue configuration for snapshot refreshes.
func (t RefreshSnapshotTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "refresh_snapshot",
		MaxAttempts: 2,
		Backoff:     time.Minute,
		Timeout:     10 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// SnapshotSaver persists one pipeline run.
type SnapshotSaver interface {
	Save(run snapshots.Run) (*entities.Snapshot, error)
}

// ProgressReporter records refresh progress, one item per session type.
type ProgressReporter interface {
	StartSync(totalItems int) error
	RecordItem(item string, succeeded bool) error
	CompleteSync(succeeded bool, errorMsg string) error
}

// RefreshSummary describes one finished refresh.
type RefreshSummary struct {
	Event     string
	Snapshots []*entities.Snapshot
	Failed    []importers.TaskResult[string]
}

// Refresher runs the capacity pipeline for every session type of an event.
type Refresher struct {
	source   importers.Source
	profiles *events.Registry
	store    SnapshotSaver
	progress ProgressReporter
	workers  int
	now      func() time.Time
}

// NewRefresher wires a refresher. progress may be nil.
func NewRefresher(source importers.Source, profiles *events.Registry, store SnapshotSaver, progress ProgressReporter, workers int) *Refresher {
	return &Refresher{
		source:   source,
		profiles: profiles,
		store:    store,
		progress: progress,
		workers:  workers,
		now:      time.Now,
	}
}

// Refresh fetches, normalizes and stores a snapshot per session type. Types
// are processed concurrently; one failing type does not stop the others.
// An error is returned only when no snapshot could be stored.
func (r *Refresher) Refresh(ctx context.Context, task RefreshSnapshotTask) (RefreshSummary, error) {
	summary := RefreshSummary{Event: task.Event}

	profile, err := r.profiles.Lookup(task.Event)
	if err != nil {
		return summary, err
	}
	types := task.SessionTypes
	if len(types) == 0 {
		types = profile.SessionTypes
	}
	if len(types) == 0 {
		return summary, fmt.Errorf("%w for event %s", ErrNoSessionTypes, profile.Name)
	}

	normalizer := importers.NewNormalizer(profile.TimezoneOffset)
	normalizer.TrackCapacity = true
	pipeline := importers.NewPipeline(r.source, normalizer, nil)

	r.report(func(p ProgressReporter) error { return p.StartSync(len(types)) })
	log.Printf("[TASK] Refreshing %s: %d session types", profile.Name, len(types))

	var mu sync.Mutex
	taken := make(map[string]*entities.Snapshot, len(types))
	results := importers.FanOut(ctx, r.workers, types, func(ctx context.Context, sessionType string) error {
		filters := rainfocus.Filters{rainfocus.FilterSessionType: sessionType}
		result, err := pipeline.Run(ctx, filters)
		if err != nil {
			return err
		}
		snap, err := r.store.Save(snapshots.Run{
			Event:    profile.Name,
			Filter:   filters.String(),
			Sessions: result.Sessions,
			Rejected: len(result.Rejected),
			TakenAt:  r.now(),
		})
		if err != nil {
			return fmt.Errorf("store %s: %w", filters, err)
		}
		mu.Lock()
		taken[sessionType] = snap
		mu.Unlock()
		return nil
	}, func(res importers.TaskResult[string]) {
		if res.Failed() {
			log.Printf("[TASK] Session type %s failed after %v: %v", res.Input, res.Duration.Round(time.Millisecond), res.Err)
		}
		r.report(func(p ProgressReporter) error { return p.RecordItem(res.Input, !res.Failed()) })
	})

	for _, res := range results {
		if snap, ok := taken[res.Input]; ok && !res.Failed() {
			summary.Snapshots = append(summary.Snapshots, snap)
		}
	}
	summary.Failed = importers.Failures(results)

	if len(summary.Snapshots) > 0 {
		metrics.LastSnapshot.WithLabelValues(profile.Name).Set(float64(r.now().Unix()))
	}

	errMsg := failureMessage(summary.Failed)
	r.report(func(p ProgressReporter) error { return p.CompleteSync(len(summary.Failed) == 0, errMsg) })
	log.Printf("[TASK] Refreshed %s: %d snapshots stored, %d session types failed",
		profile.Name, len(summary.Snapshots), len(summary.Failed))

	if len(summary.Snapshots) == 0 {
		return summary, fmt.Errorf("refresh %s: every session type failed: %s", profile.Name, errMsg)
	}
	return summary, nil
}

func (r *Refresher) report(fn func(ProgressReporter) error) {
	if r.progress == nil {
		return
	}
	if err := fn(r.progress); err != nil {
		log.Printf("[TASK] Failed to record refresh progress: %v", err)
	}
}

func failureMessage(failed []importers.TaskResult[string]) string {
	if len(failed) == 0 {
		return ""
	}
	parts := make([]string, 0, len(failed))
	for _, f := range failed {
		parts = append(parts, fmt.Sprintf("%s: %v", f.Input, f.Err))
	}
	return strings.Join(parts, "; ")
}

// RefreshSnapshotProcessor creates a processor function for RefreshSnapshotTask.
func RefreshSnapshotProcessor(refresher *Refresher) backlite.QueueProcessor[RefreshSnapshotTask] {
	return func(ctx context.Context, task RefreshSnapshotTask) error {
		if refresher == nil {
			return fmt.Errorf("refresher not configured")
		}
		_, err := refresher.Refresh(ctx, task)
		return err
	}
}

// NewRefreshSnapshotQueue creates a backlite queue for snapshot refreshes
// using the configured attempts, backoff, timeout and retention.
func NewRefreshSnapshotQueue(refresher *Refresher, cfg Config) backlite.Queue {
	return cfg.applyTo(backlite.NewQueue(RefreshSnapshotProcessor(refresher)))
}
