// =============================================================================
// TaskFlow 主入口
// =============================================================================
// 并行任务库的命令行演示入口，包含各运行模式与基准网格
//
// 使用方法:
//
//	taskflow run --mode pool                  # 固定 pool 并行
//	taskflow run --mode queue --tasks 64      # 队列取用模式
//	taskflow run --mode nested                # 嵌套子池模式
//	taskflow run --mode store --redis         # 共享存储（Redis 后端）
//	taskflow bench                            # 基准网格
//	taskflow version                          # 显示版本信息
// =============================================================================

package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/BaSui01/taskflow/bench"
	"github.com/BaSui01/taskflow/config"
	"github.com/BaSui01/taskflow/coordinator"
	"github.com/BaSui01/taskflow/internal/metrics"
	"github.com/BaSui01/taskflow/store"
	"github.com/BaSui01/taskflow/types"
	"github.com/BaSui01/taskflow/workload"
)

// =============================================================================
// 📦 版本信息（构建时注入）
// =============================================================================

var (
	Version   = "dev"
	BuildTime = "unknown"
)

// =============================================================================
// 🎯 主函数
// =============================================================================

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "run":
		runDemo(os.Args[2:])
	case "bench":
		runBench(os.Args[2:])
	case "version":
		printVersion()
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

// =============================================================================
// 🖥️ run 命令
// =============================================================================

func runDemo(args []string) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	mode := fs.String("mode", "pool", "Run mode: serial|pool|queue|nested|store")
	tasks := fs.Int("tasks", 32, "Number of tasks")
	useRedis := fs.Bool("redis", false, "Use the Redis result store for store/nested modes")
	fs.Parse(args)

	cfg, logger := loadConfig(*configPath)
	defer logger.Sync()

	logger.Info("Starting TaskFlow",
		zap.String("version", Version),
		zap.String("mode", *mode),
		zap.Int("tasks", *tasks),
	)

	collector := startMetrics(cfg, logger)

	coord := coordinator.New(coordinatorConfig(cfg), logger)
	if collector != nil {
		coord = coord.WithMetrics(collector)
	}

	ctx := context.Background()
	items := types.Sequence(*tasks)
	fn := func(ctx context.Context, item types.WorkItem) (float64, error) {
		return workload.LeibnizPi(int(item.Payload)*1000 + 1), nil
	}

	started := time.Now()
	var err error
	switch *mode {
	case "serial":
		_, err = coord.RunSerial(ctx, items, fn)
	case "pool":
		var cmp *coordinator.Comparison
		cmp, err = coord.Compare(ctx, items, fn)
		if err == nil {
			fmt.Printf("serial:   %v\nparallel: %v\nspeedup:  %.2fx\n",
				cmp.Serial, cmp.Parallel, cmp.Speedup)
		}
	case "queue":
		_, err = coord.RunQueue(ctx, items, fn)
	case "nested", "store":
		var st store.ResultStore
		st, err = openStore(cfg, *useRedis, logger)
		if err != nil {
			break
		}
		defer st.Close()
		if *mode == "nested" {
			err = coord.RunNested(ctx, items, fn, st)
		} else {
			err = coord.RunToStore(ctx, items, fn, st)
		}
		if err == nil {
			printStore(ctx, st)
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown mode: %s\n", *mode)
		os.Exit(1)
	}
	if err != nil {
		logger.Error("run failed", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("TaskFlow finished",
		zap.String("mode", *mode),
		zap.Duration("elapsed", time.Since(started)),
	)
}

// =============================================================================
// 🚀 bench 命令
// =============================================================================

func runBench(args []string) {
	fs := flag.NewFlagSet("bench", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	repeats := fs.Int("repeats", 3, "Repeats per grid cell")
	fs.Parse(args)

	cfg, logger := loadConfig(*configPath)
	defer logger.Sync()

	coord := coordinator.New(coordinatorConfig(cfg), logger)

	benchCfg := bench.DefaultConfig()
	benchCfg.Repeats = *repeats
	runner := bench.NewRunner(coord, logger).WithConfig(benchCfg)

	report, err := runner.Run(context.Background(), cfg.Coordinator.Workers)
	if err != nil {
		logger.Error("bench failed", zap.Error(err))
		os.Exit(1)
	}
	fmt.Print(report.Table())
}

// =============================================================================
// 🔧 配置与依赖装配
// =============================================================================

func loadConfig(path string) (*config.Config, *zap.Logger) {
	loader := config.NewLoader()
	if path != "" {
		loader = loader.WithConfigPath(path)
	}
	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid config: %v\n", err)
		os.Exit(1)
	}
	return cfg, initLogger(cfg.Log)
}

func coordinatorConfig(cfg *config.Config) coordinator.Config {
	return coordinator.Config{
		Workers:         cfg.Coordinator.Workers,
		SubWorkers:      cfg.Coordinator.SubWorkers,
		NestThreshold:   cfg.Coordinator.NestThreshold,
		MaxTotalWorkers: cfg.Coordinator.MaxTotalWorkers,
		QueueSize:       cfg.Coordinator.QueueSize,
	}
}

// startMetrics 按配置启动独立的 /metrics 端口
func startMetrics(cfg *config.Config, logger *zap.Logger) *metrics.Collector {
	if !cfg.Metrics.Enabled {
		return nil
	}
	collector := metrics.NewCollector(cfg.Metrics.Namespace, logger)
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	addr := fmt.Sprintf(":%d", cfg.Metrics.Port)
	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			logger.Warn("metrics server stopped", zap.Error(err))
		}
	}()
	logger.Info("metrics server listening", zap.String("addr", addr))
	return collector
}

// openStore 选择结果存储后端
func openStore(cfg *config.Config, forceRedis bool, logger *zap.Logger) (store.ResultStore, error) {
	if forceRedis || cfg.Redis.Enabled {
		return store.NewRedisStore(store.RedisConfig{
			Addr:      cfg.Redis.Addr,
			Password:  cfg.Redis.Password,
			DB:        cfg.Redis.DB,
			KeyPrefix: cfg.Redis.KeyPrefix,
		}, logger)
	}
	return store.NewMemoryStore(logger), nil
}

// printStore 打印共享存储的最终布局：每个 worker 名下的子任务数
func printStore(ctx context.Context, st store.ResultStore) {
	snapshot, err := st.Snapshot(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "snapshot failed: %v\n", err)
		return
	}
	total := 0
	for workerID, cells := range snapshot {
		fmt.Printf("%-16s %d subtasks\n", workerID, len(cells))
		total += len(cells)
	}
	fmt.Printf("total: %d results\n", total)
}

// =============================================================================
// 📋 版本和帮助
// =============================================================================

func printVersion() {
	fmt.Printf("TaskFlow %s\n", Version)
	fmt.Printf("  Build Time: %s\n", BuildTime)
}

func printUsage() {
	fmt.Println(`TaskFlow - Parallel Worker Patterns

Usage:
  taskflow <command> [options]

Commands:
  run       Execute one run mode over a generated task list
  bench     Run the mode x tasks x weight benchmark grid
  version   Show version information
  help      Show this help message

Options for 'run':
  --mode <m>        serial | pool | queue | nested | store
  --tasks <n>       Number of tasks (default 32)
  --redis           Use the Redis result store
  --config <path>   Path to configuration file (YAML)

Examples:
  taskflow run --mode pool --tasks 64
  taskflow run --mode nested
  taskflow run --mode store --redis
  taskflow bench --repeats 5
  taskflow version`)
}

// =============================================================================
// 🔧 日志初始化
// =============================================================================

func initLogger(cfg config.LogConfig) *zap.Logger {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var encoderConfig zapcore.EncoderConfig
	if cfg.Format == "console" {
		encoderConfig = zap.NewDevelopmentEncoderConfig()
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		encoderConfig = zap.NewProductionEncoderConfig()
		encoderConfig.TimeKey = "timestamp"
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	zapConfig := zap.Config{
		Level:            zap.NewAtomicLevelAt(level),
		Development:      cfg.Format == "console",
		Encoding:         "json",
		EncoderConfig:    encoderConfig,
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}
	if cfg.Format == "console" {
		zapConfig.Encoding = "console"
	}

	logger, err := zapConfig.Build(zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	if err != nil {
		logger, _ = zap.NewProduction()
	}
	return logger
}
