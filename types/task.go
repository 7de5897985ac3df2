package types

import "context"

// WorkItem is one unit of work: an opaque integer payload plus the index
// identifying its position in the original task list. Immutable once
// created; consumed by exactly one worker.
type WorkItem struct {
	Index   int   `json:"index"`
	Payload int64 `json:"payload"`
}

// WorkerResult pairs a WorkItem's index with the computed value.
// Immutable once produced.
type WorkerResult struct {
	Index int     `json:"index"`
	Value float64 `json:"value"`
}

// TaskFunc is the computation applied to a single work item. It must be
// pure with respect to the item: serial and parallel runs over the same
// function produce identical values at every index.
type TaskFunc func(ctx context.Context, item WorkItem) (float64, error)

// Items builds a work-item list from raw payloads, indexed in order.
func Items(payloads []int64) []WorkItem {
	items := make([]WorkItem, len(payloads))
	for i, p := range payloads {
		items[i] = WorkItem{Index: i, Payload: p}
	}
	return items
}

// Sequence builds the work-item list [0..n-1] with payload == index.
func Sequence(n int) []WorkItem {
	items := make([]WorkItem, n)
	for i := range items {
		items[i] = WorkItem{Index: i, Payload: int64(i)}
	}
	return items
}
