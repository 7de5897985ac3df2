// Package queue provides the bounded task queue used to feed workers.
// This package is internal and should not be imported by external projects.
package queue

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/BaSui01/taskflow/types"
)

// Config configures a queue.
type Config struct {
	Size int `json:"size"`
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{Size: 256}
}

// Queue is a bounded FIFO visible to multiple workers. Receivers that
// poll with TryReceive observe queue exhaustion without blocking, which
// is how queue-fed workers decide to exit.
type Queue[T any] struct {
	ch     chan T
	closed atomic.Bool
	once   sync.Once

	// mu orders Send against Close: Close takes the write lock, so it
	// cannot close the channel while a Send holds the read lock.
	mu sync.RWMutex

	// Counters
	sends    atomic.Int64
	receives atomic.Int64
}

// New creates a queue with the configured capacity.
func New[T any](config Config) *Queue[T] {
	size := config.Size
	if size <= 0 {
		size = DefaultConfig().Size
	}
	return &Queue[T]{ch: make(chan T, size)}
}

// Fill sends every value in order. It is a convenience for seeding an
// input queue before workers start.
func (q *Queue[T]) Fill(ctx context.Context, values []T) error {
	for _, v := range values {
		if err := q.Send(ctx, v); err != nil {
			return err
		}
	}
	return nil
}

// Send sends a value to the queue, blocking until there is room.
// Safe against a concurrent Close, which waits for in-flight sends.
func (q *Queue[T]) Send(ctx context.Context, v T) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed.Load() {
		return types.NewError(types.ErrQueueClosed, "send on closed queue")
	}
	select {
	case q.ch <- v:
		q.sends.Add(1)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Receive receives a value, blocking until one is available or the
// queue is closed and drained.
func (q *Queue[T]) Receive(ctx context.Context) (T, error) {
	select {
	case v, ok := <-q.ch:
		if !ok {
			var zero T
			return zero, types.NewError(types.ErrQueueClosed, "queue closed and drained")
		}
		q.receives.Add(1)
		return v, nil
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// TryReceive attempts a non-blocking receive. ok is false when the
// queue is currently empty.
func (q *Queue[T]) TryReceive() (T, bool) {
	select {
	case v, ok := <-q.ch:
		if !ok {
			var zero T
			return zero, false
		}
		q.receives.Add(1)
		return v, true
	default:
		var zero T
		return zero, false
	}
}

// Close closes the queue for sending. Buffered values remain
// receivable. Safe to call more than once and concurrently with Send;
// it blocks until in-flight sends have completed.
func (q *Queue[T]) Close() {
	q.once.Do(func() {
		q.mu.Lock()
		defer q.mu.Unlock()
		q.closed.Store(true)
		close(q.ch)
	})
}

// Drain receives everything currently buffered without blocking.
func (q *Queue[T]) Drain() []T {
	var out []T
	for {
		v, ok := q.TryReceive()
		if !ok {
			return out
		}
		out = append(out, v)
	}
}

// Len returns the current number of buffered items.
func (q *Queue[T]) Len() int {
	return len(q.ch)
}

// Cap returns the queue capacity.
func (q *Queue[T]) Cap() int {
	return cap(q.ch)
}

// Stats returns send/receive counters.
func (q *Queue[T]) Stats() (sends, receives int64) {
	return q.sends.Load(), q.receives.Load()
}
