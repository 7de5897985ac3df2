package coordinator

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/BaSui01/taskflow/internal/pool"
	"github.com/BaSui01/taskflow/store"
	"github.com/BaSui01/taskflow/types"
)

// RunToStore 共享存储模式：结果不经过 join/collect 通道返回，而是每算完
// 一个子任务就立即写入 ResultStore[worker id][subtask id]，外部观察者可以
// 在运行中途通过 Snapshot 轮询部分进度。
func (c *Coordinator) RunToStore(ctx context.Context, items []types.WorkItem, fn types.TaskFunc, st store.ResultStore) error {
	const mode = "store"
	runID, err := c.begin(mode, len(items))
	if err != nil {
		return err
	}
	ctx = types.WithRunID(ctx, runID)
	started := time.Now()

	n := len(items)
	if n == 0 {
		c.finish(mode, runID, started, nil)
		return nil
	}

	c.state.set(StateDispatching)
	chunks := Chunks(items, c.config.Workers)
	errCh := make(chan error, len(chunks))

	p := pool.New(pool.Config{MaxWorkers: c.config.Workers, QueueSize: c.config.QueueSize})
	for i, chunk := range chunks {
		workerID := fmt.Sprintf("%s-w%d", runID, i)
		chunk := chunk
		if err := p.Submit(ctx, func(ctx context.Context) error {
			if err := c.workChunkToStore(ctx, mode, workerID, chunk, fn, st); err != nil {
				errCh <- err
				return err
			}
			return nil
		}); err != nil {
			p.Close()
			wrapped := types.NewError(types.ErrRunAborted, "dispatch failed").WithCause(err)
			c.finish(mode, runID, started, wrapped)
			return wrapped
		}
	}

	c.state.set(StateRunning)
	p.Close()

	c.state.set(StateCollecting)
	close(errCh)
	if firstErr := <-errCh; firstErr != nil {
		c.finish(mode, runID, started, firstErr)
		return firstErr
	}

	if err := c.checkComplete(ctx, st, n); err != nil {
		c.finish(mode, runID, started, err)
		return err
	}

	c.finish(mode, runID, started, nil)
	return nil
}

// RunNested 嵌套模式：顶层显式派发 K 个 worker，chunk 超过 NestThreshold
// 的 worker 升级为子协调器，用自己的有界子池再切分一次；所有结果都以
// 顶层 worker 的身份写入共享存储。全局信号量保证
// 顶层数 × 子池上限 不会超出 MaxTotalWorkers 的并发预算。
func (c *Coordinator) RunNested(ctx context.Context, items []types.WorkItem, fn types.TaskFunc, st store.ResultStore) error {
	const mode = "nested"
	runID, err := c.begin(mode, len(items))
	if err != nil {
		return err
	}
	ctx = types.WithRunID(ctx, runID)
	started := time.Now()

	n := len(items)
	if n == 0 {
		c.finish(mode, runID, started, nil)
		return nil
	}

	c.state.set(StateDispatching)
	chunks := Chunks(items, c.config.Workers)

	c.state.set(StateRunning)
	g, gctx := errgroup.WithContext(ctx)
	for i, chunk := range chunks {
		workerID := fmt.Sprintf("%s-w%d", runID, i)
		chunk := chunk
		g.Go(func() error {
			if len(chunk) > c.config.NestThreshold && c.config.SubWorkers > 1 {
				return c.workChunkNested(gctx, mode, workerID, chunk, fn, st)
			}
			return c.workChunkToStore(gctx, mode, workerID, chunk, fn, st)
		})
	}

	err = g.Wait()
	c.state.set(StateCollecting)
	if err != nil {
		c.finish(mode, runID, started, err)
		return err
	}

	if err := c.checkComplete(ctx, st, n); err != nil {
		c.finish(mode, runID, started, err)
		return err
	}

	c.finish(mode, runID, started, nil)
	return nil
}

// workChunkToStore 顺序计算一个 chunk，每个结果立即写入共享存储。
func (c *Coordinator) workChunkToStore(ctx context.Context, mode, workerID string, chunk []types.WorkItem, fn types.TaskFunc, st store.ResultStore) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = types.NewError(types.ErrWorkerFault, "worker panicked").
				WithWorker(workerID).WithCause(fmt.Errorf("%v", r))
		}
	}()

	for _, item := range chunk {
		r, itemErr := c.runItem(ctx, mode, workerID, item, fn)
		if itemErr != nil {
			return types.NewError(types.ErrWorkerFault, fmt.Sprintf("item %d failed", item.Index)).
				WithWorker(workerID).WithCause(itemErr)
		}
		if putErr := st.Put(ctx, workerID, subtaskID(item), r); putErr != nil {
			return types.NewError(types.ErrWorkerFault, fmt.Sprintf("store write for item %d failed", item.Index)).
				WithWorker(workerID).WithCause(putErr)
		}
		if c.collector != nil {
			c.collector.RecordStoreWrite(st.Backend())
		}
	}
	return nil
}

// workChunkNested 子协调器：把自己的 chunk 再切成 SubWorkers 份，经有界
// 子池执行，结果仍写在本 worker 名下。
func (c *Coordinator) workChunkNested(ctx context.Context, mode, workerID string, chunk []types.WorkItem, fn types.TaskFunc, st store.ResultStore) error {
	subChunks := Chunks(chunk, c.config.SubWorkers)
	errCh := make(chan error, len(subChunks))

	sub := pool.New(pool.Config{MaxWorkers: c.config.SubWorkers, QueueSize: c.config.QueueSize})
	for _, subChunk := range subChunks {
		subChunk := subChunk
		if err := sub.Submit(ctx, func(ctx context.Context) error {
			if err := c.workChunkToStore(ctx, mode, workerID, subChunk, fn, st); err != nil {
				errCh <- err
				return err
			}
			return nil
		}); err != nil {
			sub.Close()
			return types.NewError(types.ErrRunAborted, "sub-pool dispatch failed").
				WithWorker(workerID).WithCause(err)
		}
	}
	sub.Close()

	close(errCh)
	return <-errCh
}

// checkComplete 验证共享存储恰好覆盖全部 n 个任务，没有孤儿格子。
func (c *Coordinator) checkComplete(ctx context.Context, st store.ResultStore, n int) error {
	count, err := st.Len(ctx)
	if err != nil {
		return types.NewError(types.ErrRunAborted, "store readback failed").WithCause(err)
	}
	if count != n {
		return types.NewError(types.ErrRunAborted,
			fmt.Sprintf("store holds %d cells, expected %d", count, n))
	}
	return nil
}

// subtaskID 子任务在共享存储里的键
func subtaskID(item types.WorkItem) string {
	return fmt.Sprintf("sub-%d", item.Index)
}
