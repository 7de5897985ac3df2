// Copyright (c) TaskFlow Authors.
// Licensed under the MIT License.

/*
Package main 提供 TaskFlow 命令行程序入口。

# 概述

cmd/taskflow 是 TaskFlow 并行任务库的可执行入口，用于演示和对比
各运行模式。程序支持 YAML 配置文件加载、环境变量覆盖、结构化日志
（zap）以及可选的 Prometheus 指标端口。

# 主要能力

  - 子命令：run（执行指定模式的演示）、bench（基准网格）、version
  - 运行模式：serial、pool、queue、nested、store
  - 结果存储：内存后端，或经 --redis / 配置启用 Redis 后端
  - Metrics 服务器：独立端口暴露 /metrics（Prometheus）
  - 构建注入：Version、BuildTime 通过 ldflags 设置
*/
package main
