package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/robfig/cron/v3"

	"github.com/mrlokans/session-catalog/internal/tasks"
)

// Enqueuer persists a task for the queue workers and reports its status.
// *tasks.Client implements it.
type Enqueuer interface {
	Enqueue(ctx context.Context, task backlite.Task) (string, error)
	Status(ctx context.Context, taskID string) (backlite.TaskStatus, error)
}

// RunningChecker reports whether a refresh is already in progress.
type RunningChecker interface {
	IsSyncRunning() (bool, error)
}

// CapacitySyncConfig describes what the scheduler refreshes and how often.
type CapacitySyncConfig struct {
	Schedule     string
	Event        string
	SessionTypes []string      // empty means the event profile's defaults
	Retention    time.Duration // snapshots older than this are pruned after each refresh; 0 keeps all
}

// CapacitySyncScheduler periodically enqueues snapshot refreshes.
type CapacitySyncScheduler struct {
	cfg      CapacitySyncConfig
	enqueuer Enqueuer
	running  RunningChecker

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	cancelFunc context.CancelFunc

	// enqueueMu serializes RunNow; lastRefreshID is the last refresh it queued.
	enqueueMu     sync.Mutex
	lastRefreshID string
}

// NewCapacitySyncScheduler creates a new scheduler instance. running may be
// nil, in which case a refresh is enqueued on every tick.
func NewCapacitySyncScheduler(cfg CapacitySyncConfig, enqueuer Enqueuer, running RunningChecker) *CapacitySyncScheduler {
	return &CapacitySyncScheduler{
		cfg:      cfg,
		enqueuer: enqueuer,
		running:  running,
		cron:     cron.New(cron.WithParser(parser)),
	}
}

// Start registers the cron job and starts the scheduler.
func (s *CapacitySyncScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if err := ValidateCronSchedule(s.cfg.Schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.cfg.Schedule, err)
	}

	entryID, err := s.cron.AddFunc(s.cfg.Schedule, func() {
		if _, err := s.RunNow(context.Background()); err != nil {
			log.Printf("Capacity sync: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule capacity sync: %w", err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	nextRun, _ := GetNextRunTime(s.cfg.Schedule, time.Now())
	log.Printf("Capacity sync scheduler: started for %s with schedule '%s' (%s). Next run: %v",
		s.cfg.Event,
		s.cfg.Schedule,
		GetCronDescription(s.cfg.Schedule),
		nextRun)

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop waits for a running tick to finish and stops the scheduler.
func (s *CapacitySyncScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	if s.cancelFunc != nil {
		s.cancelFunc()
	}
	s.isRunning = false
	s.cancelFunc = nil

	log.Printf("Capacity sync scheduler: stopped")
}

// RunNow enqueues a refresh immediately, followed by a prune when a
// retention is configured. It returns the refresh task id, or "" when a
// refresh is already queued or running.
func (s *CapacitySyncScheduler) RunNow(ctx context.Context) (string, error) {
	s.enqueueMu.Lock()
	defer s.enqueueMu.Unlock()

	busy, err := s.refreshInFlight(ctx)
	if err != nil {
		return "", err
	}
	if busy {
		log.Printf("Capacity sync: skipped (refresh already queued or running)")
		return "", nil
	}

	id, err := s.enqueuer.Enqueue(ctx, tasks.RefreshSnapshotTask{
		Event:        s.cfg.Event,
		SessionTypes: s.cfg.SessionTypes,
	})
	if err != nil {
		return "", err
	}
	s.lastRefreshID = id
	log.Printf("Capacity sync: enqueued refresh %s for %s", id, s.cfg.Event)

	if s.cfg.Retention > 0 {
		if _, err := s.enqueuer.Enqueue(ctx, tasks.PruneSnapshotsTask{MaxAge: s.cfg.Retention}); err != nil {
			log.Printf("Capacity sync: failed to enqueue prune: %v", err)
		}
	}
	return id, nil
}

// refreshInFlight reports a refresh this scheduler queued that has not
// finished yet, or one a worker is running according to sync progress.
func (s *CapacitySyncScheduler) refreshInFlight(ctx context.Context) (bool, error) {
	if s.lastRefreshID != "" {
		status, err := s.enqueuer.Status(ctx, s.lastRefreshID)
		if err != nil {
			return false, fmt.Errorf("check queued refresh: %w", err)
		}
		if status == backlite.TaskStatusPending || status == backlite.TaskStatusRunning {
			return true, nil
		}
	}
	if s.running != nil {
		busy, err := s.running.IsSyncRunning()
		if err != nil {
			return false, fmt.Errorf("check running refresh: %w", err)
		}
		return busy, nil
	}
	return false, nil
}

// IsRunning returns whether the scheduler is active
func (s *CapacitySyncScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRunTime returns when the next refresh will be enqueued.
func (s *CapacitySyncScheduler) GetNextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}

	for _, entry := range s.cron.Entries() {
		if entry.ID == s.entryID {
			t := entry.Next
			return &t
		}
	}
	return nil
}
