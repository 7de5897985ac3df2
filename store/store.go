package store

import (
	"context"

	"github.com/BaSui01/taskflow/types"
)

// ResultStore is the synchronization boundary around the shared
// result mapping. Implementations serialize access internally;
// concurrent writers to disjoint (workerID, subtaskID) keys are safe.
// No transaction spans multiple keys, so a mid-run reader may observe
// a partially populated mapping.
type ResultStore interface {
	// Put writes one result cell. Each (workerID, subtaskID) cell may
	// be written exactly once; a second write returns DUPLICATE_KEY.
	Put(ctx context.Context, workerID, subtaskID string, result types.WorkerResult) error

	// Get reads one cell. ok is false when the cell is not yet written.
	Get(ctx context.Context, workerID, subtaskID string) (types.WorkerResult, bool, error)

	// Worker returns a copy of all cells written under one worker.
	Worker(ctx context.Context, workerID string) (map[string]types.WorkerResult, error)

	// Snapshot returns a copy of the full mapping as it exists now.
	Snapshot(ctx context.Context) (map[string]map[string]types.WorkerResult, error)

	// Len returns the total number of written cells.
	Len(ctx context.Context) (int, error)

	// Backend names the storage backend, used as a metrics label.
	Backend() string

	// Close releases the store. Further operations return STORE_CLOSED.
	Close() error
}

// Flatten collapses a snapshot into a single index->result mapping,
// which is how tests check that nested runs cover every item exactly
// once.
func Flatten(snapshot map[string]map[string]types.WorkerResult) map[int]types.WorkerResult {
	out := make(map[int]types.WorkerResult)
	for _, inner := range snapshot {
		for _, r := range inner {
			out[r.Index] = r
		}
	}
	return out
}
