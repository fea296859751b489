package parallel_test

import (
	"context"
	"errors"
	"runtime"
	"sync/atomic"
	"testing"
	"time"

	"github.com/paveg/prep/internal/parallel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWorkerPool(t *testing.T) {
	pool := parallel.NewWorkerPool(0)
	defer pool.Close()
	assert.Equal(t, runtime.NumCPU(), pool.Workers())

	single := parallel.NewWorkerPool(1)
	defer single.Close()
	assert.Equal(t, 1, single.Workers())

	huge := parallel.NewWorkerPool(1 << 20)
	defer huge.Close()
	assert.Equal(t, runtime.NumCPU(), huge.Workers())
}

func TestMapPreservesOrder(t *testing.T) {
	pool := parallel.NewWorkerPool(4)
	defer pool.Close()

	input := []string{"target", "age", "income", "city", "smoker"}
	results, err := parallel.Map(pool, input, func(i int, name string) (string, error) {
		// later items finish first
		time.Sleep(time.Duration(len(input)-i) * time.Millisecond)
		return name + "_scaled", nil
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"target_scaled", "age_scaled", "income_scaled", "city_scaled", "smoker_scaled"}, results)
}

func TestMapEmpty(t *testing.T) {
	pool := parallel.NewWorkerPool(2)
	defer pool.Close()

	results, err := parallel.Map(pool, []int{}, func(_ int, x int) (int, error) {
		return x, nil
	})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestMapStopsOnError(t *testing.T) {
	pool := parallel.NewWorkerPool(1)
	defer pool.Close()

	boom := errors.New("column b failed")
	var calls atomic.Int32
	results, err := parallel.Map(pool, []string{"a", "b", "c", "d"}, func(_ int, name string) (int, error) {
		calls.Add(1)
		if name == "b" {
			return 0, boom
		}
		return len(name), nil
	})

	require.ErrorIs(t, err, boom)
	assert.Equal(t, 1, results[0], "completed results are returned for release")
	assert.Zero(t, results[1])
	assert.Equal(t, int32(2), calls.Load(), "items after the failure are skipped")
}

func TestMapCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	pool := parallel.NewWorkerPoolContext(ctx, 2)
	defer pool.Close()
	cancel()

	_, err := parallel.Map(pool, []int{1, 2, 3}, func(_ int, x int) (int, error) {
		return x, nil
	})
	require.ErrorIs(t, err, context.Canceled)
}

func TestMapConcurrency(t *testing.T) {
	pool := parallel.NewWorkerPool(4)
	defer pool.Close()

	var running, peak atomic.Int32
	items := make([]int, 32)
	_, err := parallel.Map(pool, items, func(_ int, _ int) (struct{}, error) {
		n := running.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(time.Millisecond)
		running.Add(-1)
		return struct{}{}, nil
	})
	require.NoError(t, err)
	assert.LessOrEqual(t, peak.Load(), int32(pool.Workers()))
}
