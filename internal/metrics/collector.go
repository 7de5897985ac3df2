// Package metrics provides internal metrics collection.
// This package is internal and should not be imported by external projects.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// =============================================================================
// 📊 指标收集器
// =============================================================================

// Collector 指标收集器
type Collector struct {
	// 调度指标
	tasksDispatched *prometheus.CounterVec
	tasksCompleted  *prometheus.CounterVec
	tasksFailed     *prometheus.CounterVec
	taskDuration    *prometheus.HistogramVec

	// Pool 指标
	workersActive *prometheus.GaugeVec

	// 存储指标
	storeWrites *prometheus.CounterVec

	// 运行指标
	runDuration *prometheus.HistogramVec

	logger *zap.Logger
}

// NewCollector 创建指标收集器
func NewCollector(namespace string, logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Collector{
		logger: logger.With(zap.String("component", "metrics")),
	}

	// 调度指标
	c.tasksDispatched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_dispatched_total",
			Help:      "Total number of work items dispatched to workers",
		},
		[]string{"mode"},
	)

	c.tasksCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_completed_total",
			Help:      "Total number of work items completed",
		},
		[]string{"mode"},
	)

	c.tasksFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_failed_total",
			Help:      "Total number of work items that faulted",
		},
		[]string{"mode"},
	)

	c.taskDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "task_duration_seconds",
			Help:      "Per-item computation duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"mode"},
	)

	// Pool 指标
	c.workersActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "workers_active",
			Help:      "Number of workers currently executing a chunk",
		},
		[]string{"pool"},
	)

	// 存储指标
	c.storeWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_writes_total",
			Help:      "Total number of result cells written to the shared store",
		},
		[]string{"backend"},
	)

	// 运行指标
	c.runDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Whole coordinator run duration in seconds",
			Buckets:   []float64{.01, .05, .1, .5, 1, 5, 10, 30, 60, 300},
		},
		[]string{"mode"},
	)

	return c
}

// =============================================================================
// 🎯 记录方法
// =============================================================================

// RecordDispatch 记录一次任务派发
func (c *Collector) RecordDispatch(mode string, n int) {
	c.tasksDispatched.WithLabelValues(mode).Add(float64(n))
}

// RecordTask 记录一个任务的完成或失败
func (c *Collector) RecordTask(mode string, duration time.Duration, err error) {
	if err != nil {
		c.tasksFailed.WithLabelValues(mode).Inc()
	} else {
		c.tasksCompleted.WithLabelValues(mode).Inc()
	}
	c.taskDuration.WithLabelValues(mode).Observe(duration.Seconds())
}

// RecordRun 记录一次完整运行
func (c *Collector) RecordRun(mode string, duration time.Duration) {
	c.runDuration.WithLabelValues(mode).Observe(duration.Seconds())
}

// WorkerStarted 记录一个 worker 开始执行
func (c *Collector) WorkerStarted(pool string) {
	c.workersActive.WithLabelValues(pool).Inc()
}

// WorkerFinished 记录一个 worker 结束执行
func (c *Collector) WorkerFinished(pool string) {
	c.workersActive.WithLabelValues(pool).Dec()
}

// RecordStoreWrite 记录一次共享存储写入
func (c *Collector) RecordStoreWrite(backend string) {
	c.storeWrites.WithLabelValues(backend).Inc()
}
