package coordinator

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/BaSui01/taskflow/store"
	"github.com/BaSui01/taskflow/types"
	"github.com/BaSui01/taskflow/workload"
)

// 属性：任意 N 与 K 的组合下，每种并行模式都产出与串行完全一致的结果集，
// 下标恰好覆盖 {0..N-1}。
func TestRunModesProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 60).Draw(t, "n")
		k := rapid.IntRange(1, 8).Draw(t, "k")
		mode := rapid.SampledFrom([]string{"pool", "queue", "nested"}).Draw(t, "mode")

		cfg := DefaultConfig()
		cfg.Workers = k
		cfg.SubWorkers = rapid.IntRange(1, 4).Draw(t, "sub_workers")
		cfg.NestThreshold = rapid.IntRange(1, 16).Draw(t, "nest_threshold")
		c := New(cfg, zap.NewNop())

		items := types.Sequence(n)
		fn := func(ctx context.Context, item types.WorkItem) (float64, error) {
			return workload.Double(item.Payload), nil
		}

		ctx := context.Background()
		var results []types.WorkerResult
		switch mode {
		case "pool":
			var err error
			results, err = c.Run(ctx, items, fn)
			if err != nil {
				t.Fatalf("pool run failed: %v", err)
			}
		case "queue":
			var err error
			results, err = c.RunQueue(ctx, items, fn)
			if err != nil {
				t.Fatalf("queue run failed: %v", err)
			}
		case "nested":
			st := store.NewMemoryStore(zap.NewNop())
			defer st.Close()
			if err := c.RunNested(ctx, items, fn, st); err != nil {
				t.Fatalf("nested run failed: %v", err)
			}
			snapshot, err := st.Snapshot(ctx)
			if err != nil {
				t.Fatalf("snapshot failed: %v", err)
			}
			flat := store.Flatten(snapshot)
			results = make([]types.WorkerResult, 0, len(flat))
			for i := 0; i < n; i++ {
				r, ok := flat[i]
				if !ok {
					t.Fatalf("index %d missing from store", i)
				}
				results = append(results, r)
			}
		}

		if len(results) != n {
			t.Fatalf("expected %d results, got %d", n, len(results))
		}
		seen := make(map[int]bool, n)
		for _, r := range results {
			if r.Index < 0 || r.Index >= n {
				t.Fatalf("index %d out of range [0, %d)", r.Index, n)
			}
			if seen[r.Index] {
				t.Fatalf("duplicate index %d", r.Index)
			}
			seen[r.Index] = true
			if r.Value != workload.Double(int64(r.Index)) {
				t.Fatalf("result[%d] = %v, expected %v", r.Index, r.Value, workload.Double(int64(r.Index)))
			}
		}
	})
}
