package worker

import (
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

func TestGetRegistry(t *testing.T) {
	t.Cleanup(func() { Remove("reg-test") })

	p1 := Get("reg-test")
	p2 := Get("reg-test", WithWorkers(4)) // options ignored on second call

	assert.Same(t, p1, p2)
	assert.Equal(t, 0, p2.workers)
}

func TestRemove(t *testing.T) {
	p1 := Get("remove-test")
	Remove("remove-test")
	p2 := Get("remove-test")
	t.Cleanup(func() { Remove("remove-test") })

	assert.NotSame(t, p1, p2)
}

func TestInlinePool(t *testing.T) {
	p := Get("inline-test")
	t.Cleanup(func() { Remove("inline-test") })

	job := p.Apply(func() (any, error) { return 42, nil })

	// inline pools finish the job inside Apply
	assert.True(t, job.Ready())
	assert.True(t, job.Successful())

	v, err := job.Get()
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestInlinePoolError(t *testing.T) {
	p := Get("inline-err-test")
	t.Cleanup(func() { Remove("inline-err-test") })

	job := p.Apply(func() (any, error) { return nil, errBoom })

	assert.True(t, job.Ready())
	assert.False(t, job.Successful())

	_, err := job.Get()
	assert.ErrorIs(t, err, errBoom)
}

func TestParallelPool(t *testing.T) {
	p := Get("parallel-test", WithWorkers(4))
	t.Cleanup(func() { Remove("parallel-test") })

	var counter atomic.Int64
	for i := 0; i < 20; i++ {
		p.Apply(func() (any, error) {
			counter.Add(1)
			return i * i, nil
		})
	}

	results, err := p.Results(false)
	require.NoError(t, err)
	assert.Len(t, results, 20)
	assert.Equal(t, int64(20), counter.Load())

	// results arrive in application order
	for i, r := range results {
		assert.Equal(t, i*i, r)
	}
}

func TestResultsFailSafe(t *testing.T) {
	p := Get("failsafe-test", WithWorkers(2))
	t.Cleanup(func() { Remove("failsafe-test") })

	p.Apply(func() (any, error) { return "ok", nil })
	p.Apply(func() (any, error) { return nil, errBoom })
	p.Apply(func() (any, error) { return "also ok", nil })

	t.Run("fail safe substitutes errors", func(t *testing.T) {
		results, err := p.Results(true)
		require.NoError(t, err)
		require.Len(t, results, 3)
		assert.Equal(t, "ok", results[0])
		assert.ErrorIs(t, results[1].(error), errBoom)
		assert.Equal(t, "also ok", results[2])
	})

	t.Run("fail fast returns the error", func(t *testing.T) {
		_, err := p.Results(false)
		assert.ErrorIs(t, err, errBoom)
	})
}

func TestStats(t *testing.T) {
	p := Get("stats-test")
	t.Cleanup(func() { Remove("stats-test") })

	p.Apply(func() (any, error) { return 1, nil })
	p.Apply(func() (any, error) { return nil, errBoom })
	p.Apply(func() (any, error) { return 3, nil })

	completed, errored, total := p.Stats()
	assert.Equal(t, 3, completed)
	assert.Equal(t, 1, errored)
	assert.Equal(t, 3, total)
}

func TestClearJobs(t *testing.T) {
	p := Get("clear-test")
	t.Cleanup(func() { Remove("clear-test") })

	p.Apply(func() (any, error) { return 1, nil })
	require.Len(t, p.Jobs(), 1)

	p.ClearJobs()
	assert.Empty(t, p.Jobs())

	_, _, total := p.Stats()
	assert.Zero(t, total)
}

func TestWaitTimeout(t *testing.T) {
	p := Get("wait-test", WithWorkers(1))
	t.Cleanup(func() { Remove("wait-test") })

	release := make(chan struct{})
	job := p.Apply(func() (any, error) {
		<-release
		return nil, nil
	})

	assert.False(t, job.Wait(10*time.Millisecond))

	close(release)
	assert.True(t, job.Wait(0))

	p.Close()
}

func TestCloseDrains(t *testing.T) {
	p := Get("close-test", WithWorkers(2))
	t.Cleanup(func() { Remove("close-test") })

	var counter atomic.Int64
	for i := 0; i < 10; i++ {
		p.Apply(func() (any, error) {
			time.Sleep(time.Millisecond)
			counter.Add(1)
			return nil, nil
		})
	}

	p.Close()
	assert.Equal(t, int64(10), counter.Load())
}

func TestCloseAfterFailureTerminates(t *testing.T) {
	p := Get("close-fail-test", WithWorkers(1))
	t.Cleanup(func() { Remove("close-fail-test") })

	job := p.Apply(func() (any, error) { return nil, errBoom })
	job.Wait(0)

	p.Close()

	next := p.Apply(func() (any, error) { return 1, nil })
	_, err := next.Get()
	assert.ErrorIs(t, err, ErrTerminated)
}

func TestCloseAlwaysWaitDrains(t *testing.T) {
	p := Get("close-always-wait-test", WithWorkers(2), WithAlwaysWait())
	t.Cleanup(func() { Remove("close-always-wait-test") })

	var counter atomic.Int64
	p.Apply(func() (any, error) { return nil, errBoom })
	for i := 0; i < 5; i++ {
		p.Apply(func() (any, error) {
			counter.Add(1)
			return nil, nil
		})
	}

	p.Close()
	assert.Equal(t, int64(5), counter.Load())
}

func TestApplyAfterTerminate(t *testing.T) {
	p := Get("terminate-test", WithWorkers(1))
	t.Cleanup(func() { Remove("terminate-test") })

	p.Terminate()

	job := p.Apply(func() (any, error) { return 1, nil })
	_, err := job.Get()
	assert.ErrorIs(t, err, ErrTerminated)
	assert.False(t, job.Successful())
}

func BenchmarkInlineApply(b *testing.B) {
	p := Get(fmt.Sprintf("bench-%d", b.N))
	defer Remove(fmt.Sprintf("bench-%d", b.N))

	for i := 0; i < b.N; i++ {
		p.Apply(func() (any, error) { return i, nil })
	}
}
