// Package parallel runs independent per-column work on a bounded pool of
// goroutines.
//
// Cleaning steps such as normalization and imputation treat every column on
// its own, so each column is a work item. Results come back in input order
// and the first error stops the remaining items.
package parallel

import (
	"context"
	"runtime"
	"sync"
)

// WorkerPool manages a pool of goroutines for parallel processing
type WorkerPool struct {
	numWorkers int
	ctx        context.Context
	cancel     context.CancelFunc
}

// NewWorkerPool creates a pool sized for n work items: at most n workers and
// never more than the CPU count. n <= 0 means one worker per CPU.
func NewWorkerPool(n int) *WorkerPool {
	return NewWorkerPoolContext(context.Background(), n)
}

// NewWorkerPoolContext is NewWorkerPool bound to ctx; cancelling ctx stops
// pending items.
func NewWorkerPoolContext(ctx context.Context, n int) *WorkerPool {
	numWorkers := runtime.NumCPU()
	if n > 0 && n < numWorkers {
		numWorkers = n
	}

	ctx, cancel := context.WithCancel(ctx)

	return &WorkerPool{
		numWorkers: numWorkers,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Workers returns the number of goroutines Map starts.
func (wp *WorkerPool) Workers() int {
	return wp.numWorkers
}

// Map calls worker on every item and returns the results in input order.
//
// On the first error the pool stops handing out items and Map returns that
// error together with the results that did complete; the zero value marks
// items that never ran or failed. Callers owning resources in R must release
// the non-zero entries.
func Map[T, R any](
	wp *WorkerPool,
	items []T,
	worker func(int, T) (R, error),
) ([]R, error) {
	results := make([]R, len(items))
	if len(items) == 0 {
		return results, nil
	}

	ctx, cancel := context.WithCancel(wp.ctx)
	defer cancel()

	itemCh := make(chan indexedItem[T])

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)
	for i := 0; i < wp.numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range itemCh {
				if ctx.Err() != nil {
					continue
				}
				result, err := worker(item.index, item.value)
				if err != nil {
					errOnce.Do(func() {
						firstErr = err
						cancel()
					})
					continue
				}
				// each index is written by exactly one worker
				results[item.index] = result
			}
		}()
	}

	func() {
		defer close(itemCh)
		for i, item := range items {
			select {
			case <-ctx.Done():
				return
			case itemCh <- indexedItem[T]{index: i, value: item}:
			}
		}
	}()
	wg.Wait()

	if firstErr != nil {
		return results, firstErr
	}
	if err := wp.ctx.Err(); err != nil {
		return results, err
	}
	return results, nil
}

// Close shuts down the worker pool
func (wp *WorkerPool) Close() {
	wp.cancel()
}

// indexedItem holds an item with its index
type indexedItem[T any] struct {
	index int
	value T
}
