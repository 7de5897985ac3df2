// =============================================================================
// 🚀 TaskFlow 运行模式基准网格
// =============================================================================
// 在 模式 × 任务数 × 任务权重 的网格上测量各运行模式的墙钟耗时，
// 输出与串行基线的加速比对照表。
//
// 使用方法:
//
//	runner := bench.NewRunner(coord, logger)
//	report, err := runner.Run(ctx)
//	fmt.Print(report.Table())
// =============================================================================
package bench

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/taskflow/coordinator"
	"github.com/BaSui01/taskflow/types"
	"github.com/BaSui01/taskflow/workload"
)

// Mode 基准覆盖的运行模式
type Mode string

const (
	ModeSerial Mode = "serial"
	ModePool   Mode = "pool"
	ModeQueue  Mode = "queue"
)

// Weight 单个任务的计算量档位
type Weight string

const (
	WeightLight  Weight = "light"
	WeightMedium Weight = "medium"
	WeightHeavy  Weight = "heavy"
)

// weightIterations 各档位对应的 Leibniz 级数项数
var weightIterations = map[Weight]int{
	WeightLight:  1_000,
	WeightMedium: 50_000,
	WeightHeavy:  500_000,
}

// Config 基准网格配置
type Config struct {
	Modes      []Mode   `json:"modes" yaml:"modes"`
	TaskCounts []int    `json:"task_counts" yaml:"task_counts"`
	Weights    []Weight `json:"weights" yaml:"weights"`
	// Repeats 每个格子重复测量次数，取最小值以压制噪声
	Repeats int `json:"repeats" yaml:"repeats"`
}

// DefaultConfig 返回默认网格
func DefaultConfig() Config {
	return Config{
		Modes:      []Mode{ModeSerial, ModePool, ModeQueue},
		TaskCounts: []int{8, 32, 128},
		Weights:    []Weight{WeightLight, WeightMedium},
		Repeats:    3,
	}
}

// Measurement 网格中一个格子的测量结果
type Measurement struct {
	Mode    Mode          `json:"mode"`
	Tasks   int           `json:"tasks"`
	Weight  Weight        `json:"weight"`
	Elapsed time.Duration `json:"elapsed"`
	// Speedup 相对同规模串行基线的加速比；串行格子为 1
	Speedup float64 `json:"speedup"`
}

// Report 一次完整网格运行的结果
type Report struct {
	Workers      int           `json:"workers"`
	Measurements []Measurement `json:"measurements"`
}

// Runner 在协调器上执行基准网格
type Runner struct {
	config Config
	coord  *coordinator.Coordinator
	logger *zap.Logger
}

// NewRunner 创建基准执行器
func NewRunner(coord *coordinator.Coordinator, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		config: DefaultConfig(),
		coord:  coord,
		logger: logger.With(zap.String("component", "bench")),
	}
}

// WithConfig 覆盖默认网格
func (r *Runner) WithConfig(config Config) *Runner {
	r.config = config
	return r
}

// Run 遍历整个网格。每个 (权重, 任务数) 组合先测一次串行基线，
// 并行格子据此计算加速比，与 Modes 中的排列顺序无关。
func (r *Runner) Run(ctx context.Context, workers int) (*Report, error) {
	if r.config.Repeats < 1 {
		r.config.Repeats = 1
	}
	report := &Report{Workers: workers}

	for _, weight := range r.config.Weights {
		iterations, ok := weightIterations[weight]
		if !ok {
			return nil, types.NewError(types.ErrInvalidConfig,
				fmt.Sprintf("unknown weight %q", weight))
		}
		fn := taskForWeight(iterations)

		for _, tasks := range r.config.TaskCounts {
			items := types.Sequence(tasks)

			// 串行基线与模式顺序无关，总是先测一次
			serialBase, err := r.measure(ctx, ModeSerial, items, fn)
			if err != nil {
				return nil, err
			}

			for _, mode := range r.config.Modes {
				var elapsed time.Duration
				if mode == ModeSerial {
					elapsed = serialBase
				} else {
					elapsed, err = r.measure(ctx, mode, items, fn)
					if err != nil {
						return nil, err
					}
				}
				m := Measurement{Mode: mode, Tasks: tasks, Weight: weight, Elapsed: elapsed}
				if mode == ModeSerial {
					m.Speedup = 1
				} else if elapsed > 0 {
					m.Speedup = float64(serialBase) / float64(elapsed)
				}
				report.Measurements = append(report.Measurements, m)
				r.logger.Info("cell measured",
					zap.String("mode", string(mode)),
					zap.Int("tasks", tasks),
					zap.String("weight", string(weight)),
					zap.Duration("elapsed", elapsed),
				)
			}
		}
	}
	return report, nil
}

// measure 测一个格子，取 Repeats 次中的最小耗时
func (r *Runner) measure(ctx context.Context, mode Mode, items []types.WorkItem, fn types.TaskFunc) (time.Duration, error) {
	var best time.Duration
	for i := 0; i < r.config.Repeats; i++ {
		started := time.Now()
		var err error
		switch mode {
		case ModeSerial:
			_, err = r.coord.RunSerial(ctx, items, fn)
		case ModePool:
			_, err = r.coord.Run(ctx, items, fn)
		case ModeQueue:
			_, err = r.coord.RunQueue(ctx, items, fn)
		default:
			return 0, types.NewError(types.ErrInvalidConfig,
				fmt.Sprintf("unknown mode %q", mode))
		}
		if err != nil {
			return 0, err
		}
		elapsed := time.Since(started)
		if best == 0 || elapsed < best {
			best = elapsed
		}
	}
	return best, nil
}

// taskForWeight 返回固定计算量的纯任务函数
func taskForWeight(iterations int) types.TaskFunc {
	return func(ctx context.Context, item types.WorkItem) (float64, error) {
		return workload.LeibnizPi(iterations), nil
	}
}

// Table 渲染对照表，按权重分组
func (r *Report) Table() string {
	var b strings.Builder
	fmt.Fprintf(&b, "workers: %d\n", r.Workers)
	fmt.Fprintf(&b, "%-8s %-8s %-8s %12s %10s\n", "weight", "mode", "tasks", "elapsed", "speedup")
	fmt.Fprintln(&b, strings.Repeat("-", 50))
	for _, m := range r.Measurements {
		fmt.Fprintf(&b, "%-8s %-8s %-8d %12s %9.2fx\n",
			m.Weight, m.Mode, m.Tasks, m.Elapsed.Round(time.Microsecond), m.Speedup)
	}
	return b.String()
}
