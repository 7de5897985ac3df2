// Copyright (c) TaskFlow Authors.
// Licensed under the MIT License.

/*
Package coordinator 提供并行 worker 协调与执行引擎。

# 概述

coordinator 包实现了 TaskFlow 的核心契约：给定 N 个相互独立的计算任务和
worker 数 K，将任务切分为至多 K 个连续 chunk，每个 chunk 派发给一个
worker，等待全部 worker 正常结束后按原始下标重组结果。支持四种执行模式，
分别对应进程池、显式进程加队列、嵌套子池和共享存储四种经典协调模式。

# 核心类型

  - Coordinator — 协调器（partition / dispatch / collect）
  - Config      — worker 数、子池上限、嵌套阈值与全局并发上限
  - State       — 每次运行的状态机 Idle → Dispatching → Running →
    Collecting → Done，Running/Collecting 可进入终态 Failed
  - Comparison  — 串行与并行的墙钟耗时对比

# 执行模式

  - RunSerial  — 串行基线，单 goroutine 顺序计算
  - Run        — 固定大小 worker pool，chunk 派发，join 后重组
  - RunQueue   — 输入队列喂给 K 个 worker，非阻塞取任务直至队列耗尽
  - RunNested  — chunk 超过阈值的 worker 升级为子协调器，结果以
    (worker id, subtask id) 为键直接写入共享存储，可中途轮询

# 失败语义

任何 worker 的未捕获错误（含 panic）都会在 collect 阶段汇总为一个
WORKER_FAULT 错误并标记出错 worker 的身份；不做部分结果恢复，不重试。
全局并发（含嵌套子池）由一个带权信号量限制在 MaxTotalWorkers 之内。
*/
package coordinator
