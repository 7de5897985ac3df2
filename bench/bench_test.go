package bench

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BaSui01/taskflow/coordinator"
	"github.com/BaSui01/taskflow/types"
)

func testCoordinator(workers int) *coordinator.Coordinator {
	cfg := coordinator.DefaultConfig()
	cfg.Workers = workers
	return coordinator.New(cfg, zap.NewNop())
}

func TestRunnerGrid(t *testing.T) {
	runner := NewRunner(testCoordinator(2), zap.NewNop()).WithConfig(Config{
		Modes:      []Mode{ModeSerial, ModePool, ModeQueue},
		TaskCounts: []int{4, 8},
		Weights:    []Weight{WeightLight},
		Repeats:    1,
	})

	report, err := runner.Run(context.Background(), 2)
	require.NoError(t, err)

	// 1 权重 × 2 任务数 × 3 模式
	assert.Len(t, report.Measurements, 6)
	for _, m := range report.Measurements {
		assert.Positive(t, m.Elapsed, "cell %s/%d should have a timing", m.Mode, m.Tasks)
		if m.Mode == ModeSerial {
			assert.Equal(t, 1.0, m.Speedup)
		} else {
			assert.Positive(t, m.Speedup)
		}
	}
}

// 串行基线与 Modes 排列顺序无关：并行模式排在 serial 前面也要得到加速比
func TestRunnerModeOrderIndependent(t *testing.T) {
	runner := NewRunner(testCoordinator(2), zap.NewNop()).WithConfig(Config{
		Modes:      []Mode{ModePool, ModeQueue, ModeSerial},
		TaskCounts: []int{4},
		Weights:    []Weight{WeightLight},
		Repeats:    1,
	})

	report, err := runner.Run(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, report.Measurements, 3)

	for _, m := range report.Measurements {
		if m.Mode == ModeSerial {
			assert.Equal(t, 1.0, m.Speedup)
		} else {
			assert.Positive(t, m.Speedup, "cell %s/%d should have a baseline", m.Mode, m.Tasks)
		}
	}
}

func TestRunnerUnknownWeight(t *testing.T) {
	runner := NewRunner(testCoordinator(2), zap.NewNop()).WithConfig(Config{
		Modes:      []Mode{ModeSerial},
		TaskCounts: []int{4},
		Weights:    []Weight{"colossal"},
		Repeats:    1,
	})

	_, err := runner.Run(context.Background(), 2)
	require.Error(t, err)
	assert.True(t, types.IsErrorCode(err, types.ErrInvalidConfig))
}

func TestRunnerUnknownMode(t *testing.T) {
	runner := NewRunner(testCoordinator(2), zap.NewNop()).WithConfig(Config{
		Modes:      []Mode{"threads"},
		TaskCounts: []int{4},
		Weights:    []Weight{WeightLight},
		Repeats:    1,
	})

	_, err := runner.Run(context.Background(), 2)
	require.Error(t, err)
	assert.True(t, types.IsErrorCode(err, types.ErrInvalidConfig))
}

func TestReportTable(t *testing.T) {
	runner := NewRunner(testCoordinator(2), zap.NewNop()).WithConfig(Config{
		Modes:      []Mode{ModeSerial, ModePool},
		TaskCounts: []int{4},
		Weights:    []Weight{WeightLight},
		Repeats:    1,
	})

	report, err := runner.Run(context.Background(), 2)
	require.NoError(t, err)

	table := report.Table()
	assert.Contains(t, table, "workers: 2")
	assert.Contains(t, table, "serial")
	assert.Contains(t, table, "pool")
	assert.Equal(t, 5, strings.Count(table, "\n"), "header + separator + 2 rows + workers line")
}

// BenchmarkRunSerial 串行基线
func BenchmarkRunSerial(b *testing.B) {
	coord := testCoordinator(1)
	items := types.Sequence(32)
	fn := taskForWeight(weightIterations[WeightLight])

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := coord.RunSerial(context.Background(), items, fn); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkRunPool pool 模式
func BenchmarkRunPool(b *testing.B) {
	coord := testCoordinator(4)
	items := types.Sequence(32)
	fn := taskForWeight(weightIterations[WeightLight])

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := coord.Run(context.Background(), items, fn); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkRunQueue 队列模式
func BenchmarkRunQueue(b *testing.B) {
	coord := testCoordinator(4)
	items := types.Sequence(32)
	fn := taskForWeight(weightIterations[WeightLight])

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := coord.RunQueue(context.Background(), items, fn); err != nil {
			b.Fatal(err)
		}
	}
}
