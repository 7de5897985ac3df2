// Package taskflow provides a top-level convenience entry point for running
// a function over a task list in parallel with minimal boilerplate.
//
// Usage:
//
//	import "github.com/BaSui01/taskflow"
//
//	results, err := taskflow.Map(ctx, payloads, fn)
//	results, err := taskflow.Map(ctx, payloads, fn, taskflow.WithWorkers(4))
//
// This is a thin wrapper around [coordinator.Coordinator]; use the
// coordinator package directly when you need queue-fed workers, nested
// sub-pools, or a shared result store.
package taskflow

import (
	"context"

	"go.uber.org/zap"

	"github.com/BaSui01/taskflow/coordinator"
	"github.com/BaSui01/taskflow/store"
	"github.com/BaSui01/taskflow/types"
)

// Option configures the coordinator built by [Map].
type Option func(*options)

type options struct {
	config coordinator.Config
	logger *zap.Logger
	serial bool
	nested bool
}

// WithWorkers sets the number of parallel workers.
func WithWorkers(n int) Option {
	return func(o *options) { o.config.Workers = n }
}

// WithMaxTotalWorkers caps the total concurrency budget, nested pools included.
func WithMaxTotalWorkers(n int) Option {
	return func(o *options) { o.config.MaxTotalWorkers = n }
}

// WithLogger sets a custom zap logger. Defaults to zap.NewNop().
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithSerial forces the serial baseline instead of the worker pool.
func WithSerial() Option {
	return func(o *options) { o.serial = true }
}

// WithNesting lets workers whose chunk exceeds threshold split it again
// across a sub-pool of subWorkers.
func WithNesting(subWorkers, threshold int) Option {
	return func(o *options) {
		o.nested = true
		o.config.SubWorkers = subWorkers
		o.config.NestThreshold = threshold
	}
}

// Map applies fn to every payload and returns the values in payload order.
func Map(ctx context.Context, payloads []int64, fn types.TaskFunc, opts ...Option) ([]float64, error) {
	o := &options{config: coordinator.DefaultConfig()}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}

	c := coordinator.New(o.config, o.logger)
	items := types.Items(payloads)

	var results []types.WorkerResult
	var err error
	if o.serial {
		results, err = c.RunSerial(ctx, items, fn)
	} else {
		results, err = c.Run(ctx, items, fn)
	}
	if err != nil {
		return nil, err
	}

	values := make([]float64, len(results))
	for _, r := range results {
		values[r.Index] = r.Value
	}
	return values, nil
}

// MapStore applies fn to every payload and writes each result into st as
// soon as it is computed, so st can be polled for partial progress.
// Nesting applies when enabled via [WithNesting].
func MapStore(ctx context.Context, payloads []int64, fn types.TaskFunc, st store.ResultStore, opts ...Option) error {
	o := &options{config: coordinator.DefaultConfig()}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	c := coordinator.New(o.config, o.logger)
	if o.nested {
		return c.RunNested(ctx, types.Items(payloads), fn, st)
	}
	return c.RunToStore(ctx, types.Items(payloads), fn, st)
}

// Compare runs the same payloads serially and in parallel and reports the
// wall-clock timings side by side.
func Compare(ctx context.Context, payloads []int64, fn types.TaskFunc, opts ...Option) (*coordinator.Comparison, error) {
	o := &options{config: coordinator.DefaultConfig()}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	return coordinator.New(o.config, o.logger).Compare(ctx, types.Items(payloads), fn)
}
