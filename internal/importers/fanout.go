package importers

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/mrlokans/session-catalog/internal/metrics"
)

// DefaultWorkers matches what the search API tolerates before throttling.
const DefaultWorkers = 10

// TaskResult is the outcome of one fan-out unit.
type TaskResult[T any] struct {
	Input    T
	Err      error
	Duration time.Duration
}

func (r TaskResult[T]) Failed() bool {
	return r.Err != nil
}

// FanOut runs fn once per input with at most workers running at a time.
// Each unit's error or panic is captured in its own result and never stops
// the others. Results come back in input order. onDone, if set, is called
// once per finished unit, never concurrently.
func FanOut[T any](ctx context.Context, workers int, inputs []T, fn func(context.Context, T) error, onDone func(TaskResult[T])) []TaskResult[T] {
	if workers <= 0 {
		workers = DefaultWorkers
	}

	results := make([]TaskResult[T], len(inputs))
	var mu sync.Mutex

	p := pool.New().WithMaxGoroutines(workers)
	for i, in := range inputs {
		p.Go(func() {
			start := time.Now()
			err := runUnit(ctx, fn, in)
			res := TaskResult[T]{Input: in, Err: err, Duration: time.Since(start)}
			results[i] = res

			if err != nil {
				metrics.Tasks.WithLabelValues("failed").Inc()
			} else {
				metrics.Tasks.WithLabelValues("succeeded").Inc()
			}

			if onDone != nil {
				mu.Lock()
				onDone(res)
				mu.Unlock()
			}
		})
	}
	p.Wait()

	return results
}

func runUnit[T any](ctx context.Context, fn func(context.Context, T) error, in T) (err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[FANOUT] Unit %v panicked: %v", in, r)
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn(ctx, in)
}

// Failures returns the failed results.
func Failures[T any](results []TaskResult[T]) []TaskResult[T] {
	var failed []TaskResult[T]
	for _, r := range results {
		if r.Failed() {
			failed = append(failed, r)
		}
	}
	return failed
}
