package coordinator

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/BaSui01/taskflow/internal/metrics"
	"github.com/BaSui01/taskflow/internal/pool"
	"github.com/BaSui01/taskflow/types"
)

// Config 协调器配置
type Config struct {
	// Workers 顶层 worker 数（K）
	Workers int `json:"workers"`
	// SubWorkers 每个子协调器的 worker 数上限
	SubWorkers int `json:"sub_workers"`
	// NestThreshold chunk 超过该大小时 worker 升级为子协调器
	NestThreshold int `json:"nest_threshold"`
	// MaxTotalWorkers 全局并发上限（含嵌套子池）
	MaxTotalWorkers int `json:"max_total_workers"`
	// QueueSize pool 任务队列容量
	QueueSize int `json:"queue_size"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	workers := runtime.NumCPU() / 2
	if workers < 1 {
		workers = 1
	}
	return Config{
		Workers:         workers,
		SubWorkers:      2,
		NestThreshold:   8,
		MaxTotalWorkers: runtime.NumCPU(),
		QueueSize:       256,
	}
}

// validate 校验并补全配置
func (c *Config) validate() error {
	if c.Workers < 1 {
		return types.NewError(types.ErrInvalidConfig,
			fmt.Sprintf("workers must be >= 1, got %d", c.Workers))
	}
	if c.SubWorkers < 1 {
		c.SubWorkers = 1
	}
	if c.NestThreshold < 1 {
		c.NestThreshold = DefaultConfig().NestThreshold
	}
	if c.QueueSize < 1 {
		c.QueueSize = DefaultConfig().QueueSize
	}
	if c.MaxTotalWorkers < c.Workers {
		c.MaxTotalWorkers = c.Workers
	}
	return nil
}

// Coordinator 并行协调器
// 将任务列表切分为连续 chunk 派发给有界 worker 集合，join 后按下标重组。
// 一个 Coordinator 可以多次运行；State 反映最近一次运行的状态。
type Coordinator struct {
	config    Config
	logger    *zap.Logger
	collector *metrics.Collector
	sem       *semaphore.Weighted
	state     stateMachine
}

// New 创建协调器。配置在首次运行时校验。
func New(config Config, logger *zap.Logger) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{
		config: config,
		logger: logger.With(zap.String("component", "coordinator")),
	}
}

// WithMetrics 挂接指标收集器
func (c *Coordinator) WithMetrics(collector *metrics.Collector) *Coordinator {
	c.collector = collector
	return c
}

// State 返回最近一次运行的状态
func (c *Coordinator) State() State {
	return c.state.get()
}

// begin 校验配置并初始化一次运行；返回该运行的标识。
func (c *Coordinator) begin(mode string, n int) (string, error) {
	c.state.set(StateIdle)
	if err := c.config.validate(); err != nil {
		return "", err
	}
	if c.sem == nil {
		c.sem = semaphore.NewWeighted(int64(c.config.MaxTotalWorkers))
	}
	runID := uuid.NewString()[:8]
	c.logger.Info("run starting",
		zap.String("run_id", runID),
		zap.String("mode", mode),
		zap.Int("items", n),
		zap.Int("workers", c.config.Workers),
	)
	if c.collector != nil {
		c.collector.RecordDispatch(mode, n)
	}
	return runID, nil
}

// finish 记录一次运行的结束
func (c *Coordinator) finish(mode, runID string, started time.Time, err error) {
	elapsed := time.Since(started)
	if c.collector != nil {
		c.collector.RecordRun(mode, elapsed)
	}
	if err != nil {
		c.state.set(StateFailed)
		c.logger.Error("run failed",
			zap.String("run_id", runID),
			zap.String("mode", mode),
			zap.Duration("elapsed", elapsed),
			zap.Error(err),
		)
		return
	}
	c.state.set(StateDone)
	c.logger.Info("run finished",
		zap.String("run_id", runID),
		zap.String("mode", mode),
		zap.Duration("elapsed", elapsed),
	)
}

// runItem 执行单个任务：全局信号量限流 + 指标记录。
func (c *Coordinator) runItem(ctx context.Context, mode, workerID string, item types.WorkItem, fn types.TaskFunc) (types.WorkerResult, error) {
	if err := c.sem.Acquire(ctx, 1); err != nil {
		return types.WorkerResult{}, err
	}
	defer c.sem.Release(1)

	if c.collector != nil {
		c.collector.WorkerStarted(mode)
		defer c.collector.WorkerFinished(mode)
	}

	started := time.Now()
	value, err := fn(types.WithWorkerID(ctx, workerID), item)
	if c.collector != nil {
		c.collector.RecordTask(mode, time.Since(started), err)
	}
	if err != nil {
		return types.WorkerResult{}, err
	}
	return types.WorkerResult{Index: item.Index, Value: value}, nil
}

// RunSerial 串行基线：单 goroutine 按顺序计算全部任务。
func (c *Coordinator) RunSerial(ctx context.Context, items []types.WorkItem, fn types.TaskFunc) ([]types.WorkerResult, error) {
	const mode = "serial"
	runID, err := c.begin(mode, len(items))
	if err != nil {
		return nil, err
	}
	ctx = types.WithRunID(ctx, runID)
	started := time.Now()

	c.state.set(StateRunning)
	results := make([]types.WorkerResult, 0, len(items))
	for _, item := range items {
		r, err := c.runItem(ctx, mode, "serial", item, fn)
		if err != nil {
			wrapped := types.NewError(types.ErrWorkerFault, fmt.Sprintf("item %d failed", item.Index)).
				WithWorker("serial").WithCause(err)
			c.finish(mode, runID, started, wrapped)
			return nil, wrapped
		}
		results = append(results, r)
	}
	c.finish(mode, runID, started, nil)
	return results, nil
}

// Run 并行执行：K 个 worker 的固定大小 pool，一个 chunk 对应一个任务。
// 结果按 WorkItem 下标重组，与 worker 完成顺序无关。
func (c *Coordinator) Run(ctx context.Context, items []types.WorkItem, fn types.TaskFunc) ([]types.WorkerResult, error) {
	const mode = "pool"
	runID, err := c.begin(mode, len(items))
	if err != nil {
		return nil, err
	}
	ctx = types.WithRunID(ctx, runID)
	started := time.Now()

	n := len(items)
	if n == 0 {
		// 不派发任何 worker
		c.finish(mode, runID, started, nil)
		return []types.WorkerResult{}, nil
	}

	c.state.set(StateDispatching)
	chunks := Chunks(items, c.config.Workers)
	results := make([]types.WorkerResult, n)
	errCh := make(chan error, len(chunks))

	p := pool.New(pool.Config{MaxWorkers: c.config.Workers, QueueSize: c.config.QueueSize})
	for i, chunk := range chunks {
		workerID := fmt.Sprintf("%s-w%d", runID, i)
		chunk := chunk
		task := func(ctx context.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = types.NewError(types.ErrWorkerFault, "worker panicked").
						WithWorker(workerID).WithCause(fmt.Errorf("%v", r))
					errCh <- err
				}
			}()
			for _, item := range chunk {
				r, itemErr := c.runItem(ctx, mode, workerID, item, fn)
				if itemErr != nil {
					err = types.NewError(types.ErrWorkerFault, fmt.Sprintf("item %d failed", item.Index)).
						WithWorker(workerID).WithCause(itemErr)
					errCh <- err
					return err
				}
				// chunk 之间不相交，按下标写入无需加锁
				results[item.Index] = r
			}
			return nil
		}
		if err := p.Submit(ctx, task); err != nil {
			p.Close()
			wrapped := types.NewError(types.ErrRunAborted, "dispatch failed").WithCause(err)
			c.finish(mode, runID, started, wrapped)
			return nil, wrapped
		}
	}

	c.state.set(StateRunning)
	p.Close() // join：等待全部 chunk 结束

	c.state.set(StateCollecting)
	close(errCh)
	if firstErr := <-errCh; firstErr != nil {
		c.finish(mode, runID, started, firstErr)
		return nil, firstErr
	}

	c.finish(mode, runID, started, nil)
	return results, nil
}

// Comparison 串行与并行的墙钟耗时对比
type Comparison struct {
	Items    int                  `json:"items"`
	Serial   time.Duration        `json:"serial"`
	Parallel time.Duration        `json:"parallel"`
	Speedup  float64              `json:"speedup"`
	Results  []types.WorkerResult `json:"-"`
}

// Compare 对同一批任务分别做串行与并行计算并对比耗时。
// 两种模式对纯函数必须产出逐下标相同的结果。
func (c *Coordinator) Compare(ctx context.Context, items []types.WorkItem, fn types.TaskFunc) (*Comparison, error) {
	serialStart := time.Now()
	serial, err := c.RunSerial(ctx, items, fn)
	if err != nil {
		return nil, err
	}
	serialElapsed := time.Since(serialStart)

	parallelStart := time.Now()
	parallel, err := c.Run(ctx, items, fn)
	if err != nil {
		return nil, err
	}
	parallelElapsed := time.Since(parallelStart)

	for i := range serial {
		if serial[i] != parallel[i] {
			return nil, types.NewError(types.ErrRunAborted,
				fmt.Sprintf("serial and parallel results diverge at index %d", i))
		}
	}

	cmp := &Comparison{
		Items:    len(items),
		Serial:   serialElapsed,
		Parallel: parallelElapsed,
		Results:  parallel,
	}
	if parallelElapsed > 0 {
		cmp.Speedup = float64(serialElapsed) / float64(parallelElapsed)
	}
	return cmp, nil
}
