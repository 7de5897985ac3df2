package coordinator

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/taskflow/store"
	"github.com/BaSui01/taskflow/testutil"
	"github.com/BaSui01/taskflow/types"
)

func TestRunToStore(t *testing.T) {
	ctx := testutil.TestContext(t)
	c := New(testConfig(2), zap.NewNop())
	st := store.NewMemoryStore(zap.NewNop())
	defer st.Close()

	if err := c.RunToStore(ctx, types.Sequence(12), doubler, st); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	snapshot, err := st.Snapshot(ctx)
	if err != nil {
		t.Fatalf("snapshot failed: %v", err)
	}
	flat := store.Flatten(snapshot)
	if len(flat) != 12 {
		t.Fatalf("expected 12 stored results, got %d", len(flat))
	}
	for i := 0; i < 12; i++ {
		r, ok := flat[i]
		if !ok {
			t.Errorf("index %d missing from store", i)
			continue
		}
		if r.Value != float64(2*i) {
			t.Errorf("stored[%d] = %v, expected %v", i, r.Value, float64(2*i))
		}
	}
}

// 运行中途可以通过 Snapshot 观察到部分进度
func TestRunToStorePartialProgress(t *testing.T) {
	ctx := testutil.TestContext(t)
	c := New(testConfig(2), zap.NewNop())
	st := store.NewMemoryStore(zap.NewNop())
	defer st.Close()

	release := make(chan struct{})
	fn := func(ctx context.Context, item types.WorkItem) (float64, error) {
		if item.Index == 11 {
			// 最后一个任务等外部观察完成后才放行
			select {
			case <-release:
			case <-ctx.Done():
				return 0, ctx.Err()
			}
		}
		return float64(item.Payload), nil
	}

	done := make(chan error, 1)
	go func() {
		done <- c.RunToStore(ctx, types.Sequence(12), fn, st)
	}()

	// 等到除被门挡住的任务外都已写入
	testutil.AssertEventuallyTrue(t, func() bool {
		n, err := st.Len(ctx)
		return err == nil && n >= 10
	}, 5*time.Second)

	n, err := st.Len(ctx)
	if err != nil {
		t.Fatalf("len failed: %v", err)
	}
	if n >= 12 {
		t.Errorf("expected partial progress, store already holds %d", n)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("run failed: %v", err)
	}
	final, err := st.Len(ctx)
	if err != nil {
		t.Fatalf("len failed: %v", err)
	}
	if final != 12 {
		t.Errorf("expected 12 results after completion, got %d", final)
	}
}

func TestRunNested(t *testing.T) {
	ctx := testutil.TestContext(t)
	cfg := testConfig(2)
	cfg.SubWorkers = 2
	cfg.NestThreshold = 4
	c := New(cfg, zap.NewNop())
	st := store.NewMemoryStore(zap.NewNop())
	defer st.Close()

	// chunk 大小 16 > NestThreshold，两个顶层 worker 都会升级为子协调器
	if err := c.RunNested(ctx, types.Sequence(32), doubler, st); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	snapshot, err := st.Snapshot(ctx)
	if err != nil {
		t.Fatalf("snapshot failed: %v", err)
	}
	if len(snapshot) != 2 {
		t.Errorf("expected 2 top-level workers in store, got %d", len(snapshot))
	}
	flat := store.Flatten(snapshot)
	if len(flat) != 32 {
		t.Fatalf("expected 32 leaf results, got %d", len(flat))
	}
	for i := 0; i < 32; i++ {
		if flat[i].Value != float64(2*i) {
			t.Errorf("stored[%d] = %v, expected %v", i, flat[i].Value, float64(2*i))
		}
	}
}

func TestRunNestedBelowThreshold(t *testing.T) {
	ctx := testutil.TestContext(t)
	cfg := testConfig(4)
	cfg.SubWorkers = 2
	cfg.NestThreshold = 100
	c := New(cfg, zap.NewNop())
	st := store.NewMemoryStore(zap.NewNop())
	defer st.Close()

	// 没有 chunk 超过阈值，退化为普通 store 模式
	if err := c.RunNested(ctx, types.Sequence(20), doubler, st); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	n, err := st.Len(ctx)
	if err != nil {
		t.Fatalf("len failed: %v", err)
	}
	if n != 20 {
		t.Errorf("expected 20 results, got %d", n)
	}
}

func TestRunNestedWorkerFault(t *testing.T) {
	ctx := testutil.TestContext(t)
	cfg := testConfig(2)
	cfg.SubWorkers = 2
	cfg.NestThreshold = 2
	c := New(cfg, zap.NewNop())
	st := store.NewMemoryStore(zap.NewNop())
	defer st.Close()

	boom := errors.New("boom")
	fn := func(ctx context.Context, item types.WorkItem) (float64, error) {
		if item.Index == 9 {
			return 0, boom
		}
		return 0, nil
	}

	err := c.RunNested(ctx, types.Sequence(16), fn, st)
	if err == nil {
		t.Fatal("expected error when a leaf item fails")
	}
	if !types.IsErrorCode(err, types.ErrWorkerFault) {
		t.Errorf("expected WORKER_FAULT, got %v", err)
	}
	if got := c.State(); got != StateFailed {
		t.Errorf("expected state failed, got %s", got)
	}
}

func TestRunToStoreEmpty(t *testing.T) {
	ctx := testutil.TestContext(t)
	c := New(testConfig(2), zap.NewNop())
	st := store.NewMemoryStore(zap.NewNop())
	defer st.Close()

	if err := c.RunToStore(ctx, nil, doubler, st); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	n, err := st.Len(ctx)
	if err != nil {
		t.Fatalf("len failed: %v", err)
	}
	if n != 0 {
		t.Errorf("expected empty store, got %d", n)
	}
}
