// Copyright (c) TaskFlow Authors.
// Licensed under the MIT License.

/*
Package store 提供跨 worker 共享的结果存储。

# 概述

store 实现了协调器的共享结果存储：一个以 (worker id, subtask id) 为键的
两级映射。所有读写都经过同步边界，原始映射从不直接暴露。每个格子只允许
写入一次（append-only），重复写入返回 DUPLICATE_KEY。外部观察者可以在
运行中途通过 Snapshot 轮询部分进度。

# 后端

  - MemoryStore — 互斥锁保护的进程内映射
  - RedisStore  — 每个 worker 一个 Redis hash，支持跨进程观察

# 使用方法

	s := store.NewMemoryStore(logger)
	err := s.Put(ctx, "worker-1", "subtask-3", types.WorkerResult{Index: 3, Value: 6})
	snapshot := s.Snapshot(ctx)
*/
package store
