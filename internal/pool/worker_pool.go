// Package pool provides the bounded worker pool behind a coordinator.
// This package is internal and should not be imported by external projects.
package pool

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/BaSui01/taskflow/types"
)

// Task represents a unit of work.
type Task func(ctx context.Context) error

// WorkerPool manages a fixed-size set of worker goroutines. Lifecycle
// is create -> submit -> Close; no state survives Close.
type WorkerPool struct {
	maxWorkers  int
	taskQueue   chan taskWrapper
	workerCount atomic.Int32
	activeCount atomic.Int32
	closed      atomic.Bool
	wg          sync.WaitGroup

	// Counters
	submitted atomic.Int64
	completed atomic.Int64
	failed    atomic.Int64
	rejected  atomic.Int64
}

type taskWrapper struct {
	task   Task
	ctx    context.Context
	result chan error
}

// Config configures the pool.
type Config struct {
	MaxWorkers int `json:"max_workers"`
	QueueSize  int `json:"queue_size"`
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxWorkers: 4,
		QueueSize:  64,
	}
}

// New creates a worker pool. Workers are spawned lazily on submission,
// never exceeding MaxWorkers.
func New(config Config) *WorkerPool {
	if config.MaxWorkers < 1 {
		config.MaxWorkers = 1
	}
	if config.QueueSize < 1 {
		config.QueueSize = DefaultConfig().QueueSize
	}
	return &WorkerPool{
		maxWorkers: config.MaxWorkers,
		taskQueue:  make(chan taskWrapper, config.QueueSize),
	}
}

// Submit enqueues a task without waiting for its completion.
func (p *WorkerPool) Submit(ctx context.Context, task Task) error {
	if p.closed.Load() {
		return types.NewError(types.ErrPoolClosed, "submit on closed pool")
	}

	wrapper := taskWrapper{task: task, ctx: ctx}

	select {
	case p.taskQueue <- wrapper:
		p.submitted.Add(1)
		p.ensureWorker()
		return nil
	case <-ctx.Done():
		p.rejected.Add(1)
		return ctx.Err()
	}
}

// SubmitWait submits a task and waits for completion.
func (p *WorkerPool) SubmitWait(ctx context.Context, task Task) error {
	if p.closed.Load() {
		return types.NewError(types.ErrPoolClosed, "submit on closed pool")
	}

	wrapper := taskWrapper{
		task:   task,
		ctx:    ctx,
		result: make(chan error, 1),
	}

	select {
	case p.taskQueue <- wrapper:
		p.submitted.Add(1)
		p.ensureWorker()
	case <-ctx.Done():
		p.rejected.Add(1)
		return ctx.Err()
	}

	select {
	case err := <-wrapper.result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *WorkerPool) ensureWorker() {
	for {
		current := p.workerCount.Load()
		if current >= int32(p.maxWorkers) {
			return
		}
		if p.workerCount.CompareAndSwap(current, current+1) {
			p.wg.Add(1)
			go p.worker()
			return
		}
	}
}

func (p *WorkerPool) worker() {
	defer p.wg.Done()

	for wrapper := range p.taskQueue {
		p.activeCount.Add(1)
		err := p.executeTask(wrapper)
		p.activeCount.Add(-1)

		if wrapper.result != nil {
			wrapper.result <- err
			close(wrapper.result)
		}

		if err != nil {
			p.failed.Add(1)
		} else {
			p.completed.Add(1)
		}
	}
}

func (p *WorkerPool) executeTask(wrapper taskWrapper) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = types.NewError(types.ErrWorkerFault, "task panicked").
				WithCause(fmt.Errorf("%v", r))
		}
	}()

	return wrapper.task(wrapper.ctx)
}

// Close closes the pool and waits for all queued tasks to finish.
// The pool cannot be reused afterwards.
func (p *WorkerPool) Close() {
	if p.closed.Swap(true) {
		return
	}
	close(p.taskQueue)
	p.wg.Wait()
}

// Stats returns pool statistics.
func (p *WorkerPool) Stats() Stats {
	return Stats{
		Workers:   int(p.workerCount.Load()),
		Active:    int(p.activeCount.Load()),
		Queued:    len(p.taskQueue),
		Submitted: p.submitted.Load(),
		Completed: p.completed.Load(),
		Failed:    p.failed.Load(),
		Rejected:  p.rejected.Load(),
	}
}

// Stats contains pool statistics.
type Stats struct {
	Workers   int   `json:"workers"`
	Active    int   `json:"active"`
	Queued    int   `json:"queued"`
	Submitted int64 `json:"submitted"`
	Completed int64 `json:"completed"`
	Failed    int64 `json:"failed"`
	Rejected  int64 `json:"rejected"`
}
