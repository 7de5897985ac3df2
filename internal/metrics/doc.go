// 版权所有 2026 TaskFlow Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 metrics 提供基于 Prometheus 的内部指标采集能力，覆盖
调度、Pool 与共享存储三个维度。

# 概述

本包通过 Collector 统一注册和记录 Prometheus 指标，使用 promauto
自动注册机制，避免手动管理 Registry。所有指标按 namespace 隔离。

# 主要能力

  - 调度指标：任务派发/完成/失败计数、单任务耗时直方图，按 mode
    （serial/pool/queue/nested）分组。
  - Pool 指标：活跃 worker 数 Gauge，按 pool（top/sub）分组。
  - 存储指标：共享存储写入计数，按 backend（memory/redis）分组。
  - 运行指标：整次运行耗时直方图，用于串行与并行的对比。
*/
package metrics
