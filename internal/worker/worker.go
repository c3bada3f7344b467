// Package worker abstracts serial and parallel execution behind one
// interface. Functions are applied to a named pool; with no workers they run
// inline, otherwise they are dispatched to a fixed set of goroutines. Either
// way the result is a Job whose error handling is postponed until collection.
package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// ErrTerminated is reported by jobs cancelled by Pool.Terminate before they
// could run.
var ErrTerminated = errors.New("worker pool terminated")

// Func is a unit of work.
type Func func() (any, error)

// registry of named pools
var (
	registryMu sync.Mutex
	registry   = make(map[string]*Pool)
)

// Option configures a Pool at creation time.
type Option func(*Pool)

// WithWorkers sets the number of worker goroutines. Zero (the default) means
// jobs run inline when applied.
func WithWorkers(n int) Option {
	return func(p *Pool) { p.workers = n }
}

// WithAlwaysWait makes Close behave like a normal drain even after a job
// failed; without it Terminate is the expected emergency path.
func WithAlwaysWait() Option {
	return func(p *Pool) { p.alwaysWait = true }
}

// Get returns the pool registered under name, creating it with the given
// options on first use. Later calls ignore the options, so a pool never needs
// to be passed between the parts of an application.
func Get(name string, opts ...Option) *Pool {
	registryMu.Lock()
	defer registryMu.Unlock()

	if p, ok := registry[name]; ok {
		return p
	}
	p := newPool(name, opts...)
	registry[name] = p
	return p
}

// Remove drops the pool registered under name, terminating it first.
func Remove(name string) {
	registryMu.Lock()
	p, ok := registry[name]
	delete(registry, name)
	registryMu.Unlock()

	if ok {
		p.Terminate()
	}
}

// Pool runs jobs either inline or on worker goroutines.
type Pool struct {
	name       string
	workers    int
	alwaysWait bool

	ctx    context.Context
	cancel context.CancelFunc
	queue  chan *Job
	wg     sync.WaitGroup

	mu   sync.Mutex
	jobs []*Job
}

func newPool(name string, opts ...Option) *Pool {
	p := &Pool{name: name}
	for _, o := range opts {
		o(p)
	}

	if p.workers > 0 {
		p.ctx, p.cancel = context.WithCancel(context.Background())
		p.queue = make(chan *Job)
		for i := 0; i < p.workers; i++ {
			p.wg.Add(1)
			go p.run()
		}
	}
	return p
}

func (p *Pool) run() {
	defer p.wg.Done()
	for {
		select {
		case <-p.ctx.Done():
			return
		case job, ok := <-p.queue:
			if !ok {
				return
			}
			job.execute()
		}
	}
}

// Apply submits fn to the pool and returns its Job. Inline pools execute fn
// before returning.
func (p *Pool) Apply(fn Func) *Job {
	job := &Job{fn: fn, done: make(chan struct{})}

	p.mu.Lock()
	p.jobs = append(p.jobs, job)
	p.mu.Unlock()

	if p.workers == 0 {
		job.execute()
		return job
	}

	select {
	case p.queue <- job:
	case <-p.ctx.Done():
		job.fail(ErrTerminated)
	}
	return job
}

// Jobs returns the jobs applied so far.
func (p *Pool) Jobs() []*Job {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*Job(nil), p.jobs...)
}

// ClearJobs drops the recorded jobs. Outstanding work is unaffected.
func (p *Pool) ClearJobs() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.jobs = nil
}

// Results waits for all jobs and returns their values. With failSafe the
// error of a failed job is substituted into the result slice; otherwise the
// first error aborts the collection.
func (p *Pool) Results(failSafe bool) ([]any, error) {
	jobs := p.Jobs()

	out := make([]any, 0, len(jobs))
	for _, job := range jobs {
		v, err := job.Get()
		if err != nil {
			if !failSafe {
				return nil, err
			}
			log.Debug().Str("pool", p.name).Err(err).Msg("collecting failed job")
			out = append(out, err)
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

// Stats returns the number of completed jobs, the number of failed jobs and
// the total number of applied jobs.
func (p *Pool) Stats() (completed, errored, total int) {
	for _, job := range p.Jobs() {
		if job.Ready() {
			completed++
			if !job.Successful() {
				errored++
			}
		}
	}
	return completed, errored, len(p.Jobs())
}

// Wait blocks until all applied jobs finished or timeout elapsed. A zero
// timeout waits forever.
func (p *Pool) Wait(timeout time.Duration) {
	var deadline <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		deadline = timer.C
	}

	for _, job := range p.Jobs() {
		select {
		case <-job.done:
		case <-deadline:
			return
		}
	}
}

// Close stops the workers. Outstanding work is drained, except that a job
// having already failed makes Close terminate instead; WithAlwaysWait forces
// the drain regardless.
func (p *Pool) Close() {
	if p.workers == 0 {
		return
	}
	if !p.alwaysWait {
		if _, errored, _ := p.Stats(); errored > 0 {
			p.Terminate()
			return
		}
	}
	p.Wait(0)
	p.cancel()
	p.wg.Wait()
}

// Terminate cancels outstanding work and stops the workers: emergency exit.
func (p *Pool) Terminate() {
	if p.workers == 0 {
		return
	}
	p.cancel()
	p.wg.Wait()

	// jobs still queued will never run; mark them failed
	for _, job := range p.Jobs() {
		job.fail(ErrTerminated)
	}
}
