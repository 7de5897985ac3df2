package coordinator

import (
	"context"
	"errors"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/BaSui01/taskflow/testutil"
	"github.com/BaSui01/taskflow/types"
	"github.com/BaSui01/taskflow/workload"
)

func TestRunQueue(t *testing.T) {
	ctx := testutil.TestContext(t)
	c := New(testConfig(3), zap.NewNop())

	results, err := c.RunQueue(ctx, types.Sequence(20), doubler)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertResultIndices(t, results, 20)
	// Drain 后按下标重排，输出与串行一致
	for i, r := range results {
		if r.Index != i || r.Value != float64(2*i) {
			t.Errorf("result[%d] = %+v, expected index %d value %v", i, r, i, float64(2*i))
		}
	}
}

func TestRunQueueEmpty(t *testing.T) {
	ctx := testutil.TestContext(t)
	c := New(testConfig(3), zap.NewNop())

	results, err := c.RunQueue(ctx, nil, doubler)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected empty results, got %d", len(results))
	}
}

// 每个任务恰好被一个 worker 消费
func TestRunQueueEachItemOnce(t *testing.T) {
	ctx := testutil.TestContext(t)
	c := New(testConfig(4), zap.NewNop())

	var mu sync.Mutex
	seen := make(map[int]int)
	fn := func(ctx context.Context, item types.WorkItem) (float64, error) {
		mu.Lock()
		seen[item.Index]++
		mu.Unlock()
		return float64(item.Payload), nil
	}

	if _, err := c.RunQueue(ctx, types.Sequence(50), fn); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 50; i++ {
		if seen[i] != 1 {
			t.Errorf("item %d consumed %d times, expected exactly once", i, seen[i])
		}
	}
}

func TestRunQueueWorkerFault(t *testing.T) {
	ctx := testutil.TestContext(t)
	c := New(testConfig(2), zap.NewNop())

	boom := errors.New("boom")
	fn := func(ctx context.Context, item types.WorkItem) (float64, error) {
		if item.Index == 7 {
			return 0, boom
		}
		return 0, nil
	}

	results, err := c.RunQueue(ctx, types.Sequence(15), fn)
	if err == nil {
		t.Fatal("expected error when an item fails")
	}
	if results != nil {
		t.Errorf("expected nil results on fault, got %d", len(results))
	}
	if !types.IsErrorCode(err, types.ErrWorkerFault) {
		t.Errorf("expected WORKER_FAULT, got %v", err)
	}
	if !errors.Is(err, boom) {
		t.Errorf("fault should wrap the task error, got %v", err)
	}
}

// 不同权重的任务经队列取用后依然全部完成，顺序无关
func TestRunQueueMixedWeights(t *testing.T) {
	ctx := testutil.TestContext(t)
	c := New(testConfig(3), zap.NewNop())

	fn := func(ctx context.Context, item types.WorkItem) (float64, error) {
		return workload.SumRandom(int(item.Payload)%5*200+10, item.Payload), nil
	}

	results, err := c.RunQueue(ctx, types.Sequence(30), fn)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertResultIndices(t, results, 30)

	serial, err := c.RunSerial(ctx, types.Sequence(30), fn)
	if err != nil {
		t.Fatalf("serial baseline failed: %v", err)
	}
	testutil.AssertResultsEqual(t, serial, results)
}
