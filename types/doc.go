// Copyright (c) TaskFlow Authors.
// Licensed under the MIT License.

/*
Package types 提供 TaskFlow 的全局共享类型定义。

# 概述

types 是最底层的公共包，不依赖任何内部包，为 coordinator、store、bench
等上层模块提供统一的类型契约。所有跨包共享的结构体、枚举和错误码均
定义于此，以避免循环依赖。

# 核心类型

  - WorkItem          — 不可变工作项（Index + Payload）
  - WorkerResult      — 不可变计算结果（Index + Value）
  - TaskFunc          — 纯计算函数签名 func(WorkItem) (float64, error)
  - Error / ErrorCode — 结构化错误体系，含 WorkerID 标记与 Unwrap 链

# 主要能力

  - Context 传播：WithRunID / WithWorkerID
  - 错误工具链：NewError / WithCause / WithWorker / IsErrorCode
*/
package types
