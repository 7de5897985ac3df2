package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/BaSui01/taskflow/types"
)

// RedisConfig Redis 后端配置
type RedisConfig struct {
	// Redis 地址
	Addr string `yaml:"addr" json:"addr"`

	// 密码
	Password string `yaml:"password" json:"password"`

	// 数据库编号
	DB int `yaml:"db" json:"db"`

	// 键前缀，每个 worker 的结果存在 "<prefix>:<worker id>" hash 中
	KeyPrefix string `yaml:"key_prefix" json:"key_prefix"`

	// 最大重试次数
	MaxRetries int `yaml:"max_retries" json:"max_retries"`

	// 连接池大小
	PoolSize int `yaml:"pool_size" json:"pool_size"`
}

// DefaultRedisConfig 返回默认 Redis 配置
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Addr:       "localhost:6379",
		Password:   "",
		DB:         0,
		KeyPrefix:  "taskflow:results",
		MaxRetries: 3,
		PoolSize:   10,
	}
}

// RedisStore 基于 Redis hash 的 ResultStore。每个 worker 对应一个 hash，
// field 为 subtask id。HSETNX 保证每个格子恰好写入一次，跨进程的观察者
// 可以在运行中途读取部分进度。
type RedisStore struct {
	redis  *redis.Client
	config RedisConfig
	logger *zap.Logger
	mu     sync.RWMutex
	closed bool
}

// NewRedisStore 创建 Redis 后端的结果存储
func NewRedisStore(config RedisConfig, logger *zap.Logger) (*RedisStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.KeyPrefix == "" {
		config.KeyPrefix = DefaultRedisConfig().KeyPrefix
	}

	client := redis.NewClient(&redis.Options{
		Addr:       config.Addr,
		Password:   config.Password,
		DB:         config.DB,
		MaxRetries: config.MaxRetries,
		PoolSize:   config.PoolSize,
	})

	// 测试连接
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	s := &RedisStore{
		redis:  client,
		config: config,
		logger: logger.With(zap.String("component", "store"), zap.String("backend", "redis")),
	}

	s.logger.Info("redis result store initialized",
		zap.String("addr", config.Addr),
		zap.String("key_prefix", config.KeyPrefix),
	)

	return s, nil
}

func (s *RedisStore) key(workerID string) string {
	return s.config.KeyPrefix + ":" + workerID
}

// Put 写入一个结果格子，重复写入返回 DUPLICATE_KEY
func (s *RedisStore) Put(ctx context.Context, workerID, subtaskID string, result types.WorkerResult) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return types.NewError(types.ErrStoreClosed, "put on closed store")
	}

	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}

	set, err := s.redis.HSetNX(ctx, s.key(workerID), subtaskID, data).Result()
	if err != nil {
		s.logger.Error("store put failed",
			zap.String("worker_id", workerID),
			zap.String("subtask_id", subtaskID),
			zap.Error(err),
		)
		return fmt.Errorf("store put failed: %w", err)
	}
	if !set {
		return types.NewError(types.ErrDuplicateKey, "cell already written").WithWorker(workerID)
	}
	return nil
}

// Get 读取一个格子
func (s *RedisStore) Get(ctx context.Context, workerID, subtaskID string) (types.WorkerResult, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return types.WorkerResult{}, false, types.NewError(types.ErrStoreClosed, "get on closed store")
	}

	data, err := s.redis.HGet(ctx, s.key(workerID), subtaskID).Result()
	if err == redis.Nil {
		return types.WorkerResult{}, false, nil
	}
	if err != nil {
		return types.WorkerResult{}, false, fmt.Errorf("store get failed: %w", err)
	}

	var r types.WorkerResult
	if err := json.Unmarshal([]byte(data), &r); err != nil {
		return types.WorkerResult{}, false, fmt.Errorf("unmarshal result: %w", err)
	}
	return r, true, nil
}

// Worker 返回一个 worker 的全部格子
func (s *RedisStore) Worker(ctx context.Context, workerID string) (map[string]types.WorkerResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, types.NewError(types.ErrStoreClosed, "read on closed store")
	}

	fields, err := s.redis.HGetAll(ctx, s.key(workerID)).Result()
	if err != nil {
		return nil, fmt.Errorf("store read failed: %w", err)
	}

	out := make(map[string]types.WorkerResult, len(fields))
	for k, v := range fields {
		var r types.WorkerResult
		if err := json.Unmarshal([]byte(v), &r); err != nil {
			return nil, fmt.Errorf("unmarshal result: %w", err)
		}
		out[k] = r
	}
	return out, nil
}

// Snapshot 返回完整映射的一份拷贝
func (s *RedisStore) Snapshot(ctx context.Context) (map[string]map[string]types.WorkerResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, types.NewError(types.ErrStoreClosed, "snapshot on closed store")
	}
	return s.snapshotLocked(ctx)
}

func (s *RedisStore) snapshotLocked(ctx context.Context) (map[string]map[string]types.WorkerResult, error) {
	out := make(map[string]map[string]types.WorkerResult)
	prefix := s.config.KeyPrefix + ":"

	iter := s.redis.Scan(ctx, 0, prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		workerID := key[len(prefix):]

		fields, err := s.redis.HGetAll(ctx, key).Result()
		if err != nil {
			return nil, fmt.Errorf("store snapshot failed: %w", err)
		}
		inner := make(map[string]types.WorkerResult, len(fields))
		for k, v := range fields {
			var r types.WorkerResult
			if err := json.Unmarshal([]byte(v), &r); err != nil {
				return nil, fmt.Errorf("unmarshal result: %w", err)
			}
			inner[k] = r
		}
		out[workerID] = inner
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("store snapshot scan failed: %w", err)
	}
	return out, nil
}

// Len 返回已写入格子的总数
func (s *RedisStore) Len(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return 0, types.NewError(types.ErrStoreClosed, "len on closed store")
	}
	snapshot, err := s.snapshotLocked(ctx)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, inner := range snapshot {
		n += len(inner)
	}
	return n, nil
}

// Backend 返回后端名，用作指标标签
func (s *RedisStore) Backend() string {
	return "redis"
}

// Close 关闭 Redis 连接。幂等。
func (s *RedisStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.redis.Close()
}
