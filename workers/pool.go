package workers

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vocdoni/davinci-das/log"
)

// ErrPoolStopped is the result of jobs submitted to, or still queued in, a
// stopped pool.
var ErrPoolStopped = errors.New("worker pool stopped")

// defaultQueueFactor sizes the job queue as a multiple of the number of
// workers when no queue size is given.
const defaultQueueFactor = 4

// Job describes a unit of work scheduled in a Pool.
type Job struct {
	ID        uuid.UUID
	Name      string
	Submitted time.Time

	run    func(ctx context.Context)
	cancel func(err error)
}

// Pool runs jobs on a fixed number of goroutines. Jobs are taken from a
// bounded queue in submission order; Submit blocks while the queue is full.
type Pool struct {
	ctx        context.Context
	cancel     context.CancelFunc
	numWorkers int
	queue      chan *Job
	wg         sync.WaitGroup

	mu         sync.RWMutex // guards stopped against in-flight submissions
	stopped    bool
	startOnce  sync.Once
	stopOnce   sync.Once
	pendingMtx sync.RWMutex
	pending    map[uuid.UUID]*Job
}

// NewPool creates a pool with the given number of workers and queue size.
// Non positive values default to the number of CPUs and to a multiple of the
// worker count.
func NewPool(numWorkers, queueSize int) *Pool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	if queueSize <= 0 {
		queueSize = defaultQueueFactor * numWorkers
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Pool{
		ctx:        ctx,
		cancel:     cancel,
		numWorkers: numWorkers,
		queue:      make(chan *Job, queueSize),
		pending:    make(map[uuid.UUID]*Job),
	}
}

// Start launches the workers. The pool stops when ctx is done or Stop is
// called. Calling Start more than once has no effect.
func (p *Pool) Start(ctx context.Context) {
	p.startOnce.Do(func() {
		log.Debugw("starting worker pool", "workers", p.numWorkers, "queue", cap(p.queue))
		for range p.numWorkers {
			p.wg.Add(1)
			go p.worker()
		}
		go func() {
			select {
			case <-ctx.Done():
				p.Stop()
			case <-p.ctx.Done():
			}
		}()
	})
}

// Stop cancels the running jobs' context, waits for the workers to exit and
// resolves every queued job with ErrPoolStopped. It is safe to call Stop
// several times and concurrently with Submit.
func (p *Pool) Stop() {
	p.stopOnce.Do(func() {
		p.cancel()
		p.mu.Lock()
		p.stopped = true
		p.mu.Unlock()
		p.wg.Wait()

		// no more senders, drain what is left
		close(p.queue)
		dropped := 0
		for job := range p.queue {
			job.cancel(ErrPoolStopped)
			p.done(job)
			dropped++
		}
		log.Debugw("worker pool stopped", "dropped", dropped)
	})
}

// Pending returns the number of jobs submitted and not yet finished.
func (p *Pool) Pending() int {
	p.pendingMtx.RLock()
	defer p.pendingMtx.RUnlock()
	return len(p.pending)
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for {
		select {
		case <-p.ctx.Done():
			return
		case job := <-p.queue:
			if p.ctx.Err() != nil {
				job.cancel(ErrPoolStopped)
			} else {
				job.run(p.ctx)
			}
			p.done(job)
		}
	}
}

func (p *Pool) done(job *Job) {
	p.pendingMtx.Lock()
	delete(p.pending, job.ID)
	p.pendingMtx.Unlock()
}

// enqueue schedules the job, or cancels it when the pool is stopped.
func (p *Pool) enqueue(job *Job) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		job.cancel(ErrPoolStopped)
		return
	}
	p.pendingMtx.Lock()
	p.pending[job.ID] = job
	p.pendingMtx.Unlock()

	select {
	case p.queue <- job:
	case <-p.ctx.Done():
		job.cancel(ErrPoolStopped)
		p.done(job)
	}
}

// Future is the eventual result of a job submitted to a Pool.
type Future[T any] struct {
	id   uuid.UUID
	once sync.Once
	done chan struct{}
	val  T
	err  error
}

func (f *Future[T]) resolve(val T, err error) {
	f.once.Do(func() {
		f.val, f.err = val, err
		close(f.done)
	})
}

// ID returns the identifier of the underlying job.
func (f *Future[T]) ID() uuid.UUID { return f.id }

// Done returns a channel closed when the result is available.
func (f *Future[T]) Done() <-chan struct{} { return f.done }

// Wait blocks until the job finishes or ctx is done. Cancelling ctx does not
// cancel the job itself.
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Submit schedules fn on the pool and returns a future resolved with its
// result. A panic in fn resolves the future with an error.
func Submit[T any](p *Pool, name string, fn func(ctx context.Context) (T, error)) *Future[T] {
	f := &Future[T]{id: uuid.New(), done: make(chan struct{})}
	job := &Job{
		ID:        f.id,
		Name:      name,
		Submitted: time.Now(),
	}
	job.cancel = func(err error) {
		var zero T
		f.resolve(zero, err)
	}
	job.run = func(ctx context.Context) {
		start := time.Now()
		defer func() {
			if r := recover(); r != nil {
				err := fmt.Errorf("job %s panicked: %v", name, r)
				log.Errorw(err, "worker pool job failed")
				job.cancel(err)
			}
		}()
		val, err := fn(ctx)
		f.resolve(val, err)
		log.Debugw("job finished",
			"id", job.ID.String(),
			"name", name,
			"queued", start.Sub(job.Submitted).String(),
			"took", time.Since(start).String(),
			"error", err)
	}
	p.enqueue(job)
	return f
}
