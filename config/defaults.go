// =============================================================================
// 📦 TaskFlow 默认配置
// =============================================================================
// 提供所有配置项的合理默认值
// =============================================================================
package config

import (
	"fmt"
	"runtime"
)

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Coordinator: DefaultCoordinatorConfig(),
		Redis:       DefaultRedisConfig(),
		Log:         DefaultLogConfig(),
		Metrics:     DefaultMetricsConfig(),
	}
}

// DefaultCoordinatorConfig 返回默认协调器配置
func DefaultCoordinatorConfig() CoordinatorConfig {
	workers := runtime.NumCPU() / 2
	if workers < 1 {
		workers = 1
	}
	return CoordinatorConfig{
		Workers:         workers,
		SubWorkers:      2,
		NestThreshold:   8,
		MaxTotalWorkers: runtime.NumCPU(),
		QueueSize:       256,
	}
}

// DefaultRedisConfig 返回默认 Redis 配置
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Enabled:   false,
		Addr:      "localhost:6379",
		Password:  "",
		DB:        0,
		KeyPrefix: "taskflow:results",
	}
}

// DefaultLogConfig 返回默认日志配置
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:  "info",
		Format: "console",
	}
}

// DefaultMetricsConfig 返回默认指标配置
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Enabled:   false,
		Namespace: "taskflow",
		Port:      9091,
	}
}

// Validate 校验配置
func (c *Config) Validate() error {
	if c.Coordinator.Workers < 1 {
		return fmt.Errorf("coordinator.workers must be >= 1, got %d", c.Coordinator.Workers)
	}
	if c.Coordinator.SubWorkers < 1 {
		return fmt.Errorf("coordinator.sub_workers must be >= 1, got %d", c.Coordinator.SubWorkers)
	}
	if c.Coordinator.MaxTotalWorkers < c.Coordinator.Workers {
		return fmt.Errorf("coordinator.max_total_workers (%d) must be >= coordinator.workers (%d)",
			c.Coordinator.MaxTotalWorkers, c.Coordinator.Workers)
	}
	if c.Coordinator.NestThreshold < 1 {
		return fmt.Errorf("coordinator.nest_threshold must be >= 1, got %d", c.Coordinator.NestThreshold)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug/info/warn/error, got %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("log.format must be json or console, got %q", c.Log.Format)
	}
	return nil
}
