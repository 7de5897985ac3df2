package types

import "context"

// contextKey is used for storing values in context.Context.
type contextKey string

const (
	keyRunID    contextKey = "run_id"
	keyWorkerID contextKey = "worker_id"
)

// WithRunID adds run ID to context.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, keyRunID, runID)
}

// RunID extracts run ID from context.
func RunID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(keyRunID).(string)
	return v, ok && v != ""
}

// WithWorkerID adds worker ID to context.
func WithWorkerID(ctx context.Context, workerID string) context.Context {
	return context.WithValue(ctx, keyWorkerID, workerID)
}

// WorkerID extracts worker ID from context.
func WorkerID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(keyWorkerID).(string)
	return v, ok && v != ""
}
