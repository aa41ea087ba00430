// Package parallel runs independent cluster operations concurrently under a
// bounded task budget and collects what they produced.
package parallel

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

const (
	minConcurrency = 2
	// maxConcurrencyCap keeps resource fan-outs from flooding the API server.
	maxConcurrencyCap = 8
)

// DefaultMaxConcurrency derives the task budget from the host CPU count,
// clamped to [minConcurrency, maxConcurrencyCap].
func DefaultMaxConcurrency() int64 {
	return min(max(int64(runtime.NumCPU()), minConcurrency), maxConcurrencyCap)
}

// Task is one unit of work scheduled on the executor.
type Task func(ctx context.Context) error

// Executor runs tasks concurrently while a weighted semaphore enforces the
// budget.
type Executor struct {
	maxConcurrency int64
}

// NewExecutor creates an executor. A non-positive budget selects
// DefaultMaxConcurrency.
func NewExecutor(maxConcurrency int64) *Executor {
	if maxConcurrency <= 0 {
		maxConcurrency = DefaultMaxConcurrency()
	}

	return &Executor{maxConcurrency: maxConcurrency}
}

// Execute runs the tasks and returns the first failure, cancelling the rest.
// A single task runs inline without goroutine machinery.
func (executor *Executor) Execute(ctx context.Context, tasks ...Task) error {
	switch len(tasks) {
	case 0:
		return nil
	case 1:
		return tasks[0](ctx)
	}

	sem := semaphore.NewWeighted(executor.maxConcurrency)
	group, groupCtx := errgroup.WithContext(ctx)

	for _, task := range tasks {
		group.Go(func() error {
			err := sem.Acquire(groupCtx, 1)
			if err != nil {
				return fmt.Errorf("acquire semaphore: %w", err)
			}

			defer sem.Release(1)

			return task(groupCtx)
		})
	}

	err := group.Wait()
	if err != nil {
		return fmt.Errorf("parallel execution: %w", err)
	}

	return nil
}

// SyncWriter serializes writes from concurrent tasks so progress lines do
// not interleave mid-line.
type SyncWriter struct {
	mu     sync.Mutex
	writer io.Writer
}

// NewSyncWriter wraps writer with a mutex.
func NewSyncWriter(writer io.Writer) *SyncWriter {
	return &SyncWriter{writer: writer}
}

// Write forwards to the wrapped writer under the lock.
func (syncWriter *SyncWriter) Write(data []byte) (int, error) {
	syncWriter.mu.Lock()
	defer syncWriter.mu.Unlock()

	written, err := syncWriter.writer.Write(data)
	if err != nil {
		return written, fmt.Errorf("sync write: %w", err)
	}

	return written, nil
}

// Results accumulates values produced by concurrent tasks. Failures travel
// through the executor's error return, so only successes land here.
type Results[T any] struct {
	mu     sync.Mutex
	values []T
}

// NewResults creates an empty collector.
func NewResults[T any]() *Results[T] {
	return &Results[T]{}
}

// Add records one produced value.
func (results *Results[T]) Add(value T) {
	results.mu.Lock()
	defer results.mu.Unlock()

	results.values = append(results.values, value)
}

// Values returns everything recorded so far.
func (results *Results[T]) Values() []T {
	results.mu.Lock()
	defer results.mu.Unlock()

	return results.values
}
