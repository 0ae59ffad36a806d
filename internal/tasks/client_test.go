package tasks

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/session-catalog/internal/config"
)

func TestNewClient(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	cfg := DefaultConfig()
	cfg.Workers = 1

	client, err := NewClient(dbPath, cfg)
	require.NoError(t, err)
	require.NotNil(t, client)

	tasksDBPath := filepath.Join(tmpDir, "test-tasks.db")
	_, err = os.Stat(tasksDBPath)
	assert.NoError(t, err, "tasks database should be created")

	err = client.Close()
	assert.NoError(t, err)
}

func TestClientStartStop(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	cfg := DefaultConfig()
	cfg.Workers = 1

	client, err := NewClient(dbPath, cfg)
	require.NoError(t, err)
	defer client.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go client.Start(ctx)

	time.Sleep(50 * time.Millisecond)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer stopCancel()

	success := client.Stop(stopCtx)
	assert.True(t, success, "stop should succeed gracefully")
}

type TestTask struct {
	Value string `json:"value"`
}

func (t TestTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "test_task",
		MaxAttempts: 1,
		Backoff:     time.Second,
		Timeout:     5 * time.Second,
	}
}

func TestTaskEnqueue(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	cfg := DefaultConfig()
	cfg.Workers = 1

	client, err := NewClient(dbPath, cfg)
	require.NoError(t, err)
	defer client.Close()

	executed := make(chan string, 1)
	queue := backlite.NewQueue(func(ctx context.Context, task TestTask) error {
		executed <- task.Value
		return nil
	})
	client.Register(queue)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go client.Start(ctx)

	id, err := client.Enqueue(ctx, TestTask{Value: "hello"})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	select {
	case val := <-executed:
		assert.Equal(t, "hello", val)
	case <-time.After(5 * time.Second):
		t.Fatal("task was not executed within timeout")
	}
}

func TestQueueDBPath(t *testing.T) {
	assert.Equal(t, "data/session-catalog-tasks.db", QueueDBPath("data/session-catalog.db"))
	assert.Equal(t, "catalog-tasks", QueueDBPath("catalog"))
}

func TestTaskStatusAfterEnqueue(t *testing.T) {
	client, err := NewClient(filepath.Join(t.TempDir(), "test.db"), DefaultConfig())
	require.NoError(t, err)
	defer client.Close()
	client.Register(backlite.NewQueue(func(ctx context.Context, task TestTask) error { return nil }))

	id, err := client.Enqueue(context.Background(), TestTask{Value: "queued"})
	require.NoError(t, err)

	status, err := client.Status(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, backlite.TaskStatusPending, status)
}

func TestRefreshSnapshotTaskConfig(t *testing.T) {
	cfg := RefreshSnapshotTask{Event: "amsterdam-2024"}.Config()

	assert.Equal(t, "refresh_snapshot", cfg.Name)
	assert.Equal(t, 2, cfg.MaxAttempts)
	assert.Equal(t, 10*time.Minute, cfg.Timeout)
	assert.NotNil(t, cfg.Retention)
}

func TestPruneSnapshotsTaskConfig(t *testing.T) {
	cfg := PruneSnapshotsTask{MaxAge: time.Hour}.Config()

	assert.Equal(t, "prune_snapshots", cfg.Name)
	assert.Equal(t, 1, cfg.MaxAttempts)
}

func TestNewRefreshSnapshotQueue_UsesConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxRetries = 7
	cfg.RetryDelay = 5 * time.Second
	cfg.TaskTimeout = 3 * time.Minute
	cfg.RetentionDuration = 2 * time.Hour

	qc := NewRefreshSnapshotQueue(nil, cfg).Config()

	assert.Equal(t, "refresh_snapshot", qc.Name)
	assert.Equal(t, 7, qc.MaxAttempts)
	assert.Equal(t, 5*time.Second, qc.Backoff)
	assert.Equal(t, 3*time.Minute, qc.Timeout)
	require.NotNil(t, qc.Retention)
	assert.Equal(t, 2*time.Hour, qc.Retention.Duration)
}

func TestNewRefreshSnapshotQueue_ZeroConfigKeepsTaskDefaults(t *testing.T) {
	qc := NewRefreshSnapshotQueue(nil, Config{}).Config()

	assert.Equal(t, 2, qc.MaxAttempts)
	assert.Equal(t, time.Minute, qc.Backoff)
	assert.Equal(t, 10*time.Minute, qc.Timeout)
}

func TestNewPruneSnapshotsQueue_OnlyRetentionApplies(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxRetries = 7
	cfg.TaskTimeout = time.Hour
	cfg.RetentionDuration = 6 * time.Hour

	qc := NewPruneSnapshotsQueue(nil, cfg).Config()

	assert.Equal(t, 1, qc.MaxAttempts)
	assert.Equal(t, time.Minute, qc.Timeout)
	require.NotNil(t, qc.Retention)
	assert.Equal(t, 6*time.Hour, qc.Retention.Duration)
}

func TestRefreshQueueRetriesPerConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Workers = 1
	cfg.MaxRetries = 1

	client, err := NewClient(filepath.Join(t.TempDir(), "test.db"), cfg)
	require.NoError(t, err)
	defer client.Close()
	client.Register(NewRefreshSnapshotQueue(nil, cfg))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go client.Start(ctx)

	id, err := client.Enqueue(ctx, RefreshSnapshotTask{Event: "amsterdam-2024"})
	require.NoError(t, err)

	// With a single attempt the unconfigured refresher fails without a retry.
	require.Eventually(t, func() bool {
		status, err := client.Status(ctx, id)
		return err == nil && status == backlite.TaskStatusFailure
	}, 5*time.Second, 20*time.Millisecond)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, time.Minute, cfg.RetryDelay)
	assert.Equal(t, 10*time.Minute, cfg.TaskTimeout)
	assert.Equal(t, 15*time.Minute, cfg.ReleaseAfter)
	assert.Equal(t, time.Hour, cfg.CleanupInterval)
	assert.Equal(t, 24*time.Hour, cfg.RetentionDuration)
}

func TestFromAppConfig(t *testing.T) {
	cfg := FromAppConfig(config.Tasks{Workers: 4, TaskTimeout: time.Minute})

	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, time.Minute, cfg.TaskTimeout)
	assert.Equal(t, 3, cfg.MaxRetries, "unset values keep defaults")
	assert.Equal(t, 15*time.Minute, cfg.ReleaseAfter)
}
