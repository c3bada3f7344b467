package worker

import (
	"sync"
	"time"
)

// Job holds the deferred result of an applied function. Errors raised by the
// function are captured and surface only when the result is collected.
type Job struct {
	fn   Func
	done chan struct{}
	once sync.Once

	value any
	err   error
}

// execute runs the job's function exactly once.
func (j *Job) execute() {
	j.once.Do(func() {
		defer close(j.done)
		j.value, j.err = j.fn()
	})
}

// fail settles the job with err if it has not run yet.
func (j *Job) fail(err error) {
	j.once.Do(func() {
		j.err = err
		close(j.done)
	})
}

// Get blocks until the job finished and returns its result. A failed job
// returns its captured error.
func (j *Job) Get() (any, error) {
	<-j.done
	return j.value, j.err
}

// Wait blocks until the job finished or timeout elapsed, reporting whether
// the job is done. A zero timeout waits forever.
func (j *Job) Wait(timeout time.Duration) bool {
	if timeout <= 0 {
		<-j.done
		return true
	}
	select {
	case <-j.done:
		return true
	case <-time.After(timeout):
		return false
	}
}

// Ready reports whether the job has finished.
func (j *Job) Ready() bool {
	select {
	case <-j.done:
		return true
	default:
		return false
	}
}

// Successful reports whether the job finished without an error. It is only
// meaningful once Ready returns true.
func (j *Job) Successful() bool {
	return j.Ready() && j.err == nil
}
