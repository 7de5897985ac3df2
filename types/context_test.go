package types

import (
	"context"
	"testing"
)

func TestContextHelpers(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	ctx = WithRunID(ctx, "run")
	if got, ok := RunID(ctx); !ok || got != "run" {
		t.Fatalf("RunID mismatch: %v %v", got, ok)
	}

	ctx = WithWorkerID(ctx, "worker-1")
	if got, ok := WorkerID(ctx); !ok || got != "worker-1" {
		t.Fatalf("WorkerID mismatch: %v %v", got, ok)
	}

	if _, ok := RunID(context.Background()); ok {
		t.Fatalf("expected missing RunID on empty context")
	}
}

func TestSequenceAndItems(t *testing.T) {
	t.Parallel()

	seq := Sequence(3)
	if len(seq) != 3 || seq[2].Index != 2 || seq[2].Payload != 2 {
		t.Fatalf("Sequence mismatch: %+v", seq)
	}

	items := Items([]int64{7, 9})
	if items[0].Index != 0 || items[0].Payload != 7 || items[1].Index != 1 {
		t.Fatalf("Items mismatch: %+v", items)
	}

	if got := Sequence(0); len(got) != 0 {
		t.Fatalf("expected empty sequence, got %+v", got)
	}
}
