package tasks

import (
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/session-catalog/internal/config"
)

// Config holds configuration for the refresh queue.
type Config struct {
	// Workers is the number of concurrent queue workers. Default: 2
	Workers int

	// MaxRetries caps attempts for a failed refresh. Default: 3
	MaxRetries int

	// RetryDelay is the backoff between attempts. Default: 1m
	RetryDelay time.Duration

	// TaskTimeout bounds one refresh, all pages of all session types. Default: 10m
	TaskTimeout time.Duration

	// ReleaseAfter is when stuck tasks are released back to queue. Default: 15m
	ReleaseAfter time.Duration

	CleanupInterval time.Duration

	// RetentionDuration keeps finished tasks queryable via Status. Default: 24h
	RetentionDuration time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Workers:           2,
		MaxRetries:        3,
		RetryDelay:        1 * time.Minute,
		TaskTimeout:       10 * time.Minute,
		ReleaseAfter:      15 * time.Minute,
		CleanupInterval:   1 * time.Hour,
		RetentionDuration: 24 * time.Hour,
	}
}

// FromAppConfig maps the environment settings, keeping defaults for unset
// values.
func FromAppConfig(c config.Tasks) Config {
	cfg := DefaultConfig()
	if c.Workers > 0 {
		cfg.Workers = c.Workers
	}
	if c.MaxRetries > 0 {
		cfg.MaxRetries = c.MaxRetries
	}
	if c.RetryDelay > 0 {
		cfg.RetryDelay = c.RetryDelay
	}
	if c.TaskTimeout > 0 {
		cfg.TaskTimeout = c.TaskTimeout
	}
	if c.ReleaseAfter > 0 {
		cfg.ReleaseAfter = c.ReleaseAfter
	}
	if c.CleanupInterval > 0 {
		cfg.CleanupInterval = c.CleanupInterval
	}
	if c.RetentionDuration > 0 {
		cfg.RetentionDuration = c.RetentionDuration
	}
	return cfg
}

// applyTo overrides a queue's attempt, backoff, timeout and retention
// settings. Zero values keep the task type's own defaults.
func (c Config) applyTo(q backlite.Queue) backlite.Queue {
	qc := q.Config()
	if c.MaxRetries > 0 {
		qc.MaxAttempts = c.MaxRetries
	}
	if c.RetryDelay > 0 {
		qc.Backoff = c.RetryDelay
	}
	if c.TaskTimeout > 0 {
		qc.Timeout = c.TaskTimeout
	}
	if c.RetentionDuration > 0 && qc.Retention != nil {
		qc.Retention.Duration = c.RetentionDuration
	}
	return q
}
