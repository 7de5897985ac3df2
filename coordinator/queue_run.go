package coordinator

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/BaSui01/taskflow/internal/queue"
	"github.com/BaSui01/taskflow/types"
)

// RunQueue 显式 worker 加队列模式：任务先全部进入输入队列，K 个 worker
// 以非阻塞方式取任务，直到队列耗尽自行退出。与 Run 相比没有预先切分的
// chunk，任务被哪一个 worker 拿到取决于调度时机，重到轻的任务自然均衡。
func (c *Coordinator) RunQueue(ctx context.Context, items []types.WorkItem, fn types.TaskFunc) ([]types.WorkerResult, error) {
	const mode = "queue"
	runID, err := c.begin(mode, len(items))
	if err != nil {
		return nil, err
	}
	ctx = types.WithRunID(ctx, runID)
	started := time.Now()

	n := len(items)
	if n == 0 {
		c.finish(mode, runID, started, nil)
		return []types.WorkerResult{}, nil
	}

	c.state.set(StateDispatching)
	in := queue.New[types.WorkItem](queue.Config{Size: n})
	if err := in.Fill(ctx, items); err != nil {
		wrapped := types.NewError(types.ErrRunAborted, "queue fill failed").WithCause(err)
		c.finish(mode, runID, started, wrapped)
		return nil, wrapped
	}
	in.Close()
	out := queue.New[types.WorkerResult](queue.Config{Size: n})

	c.state.set(StateRunning)
	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < c.config.Workers; w++ {
		workerID := fmt.Sprintf("%s-w%d", runID, w)
		g.Go(func() error {
			for {
				item, ok := in.TryReceive()
				if !ok {
					return nil // 队列耗尽，worker 退出
				}
				r, err := c.runItem(gctx, mode, workerID, item, fn)
				if err != nil {
					return types.NewError(types.ErrWorkerFault, fmt.Sprintf("item %d failed", item.Index)).
						WithWorker(workerID).WithCause(err)
				}
				if err := out.Send(gctx, r); err != nil {
					return err
				}
			}
		})
	}

	err = g.Wait()
	c.state.set(StateCollecting)
	if err != nil {
		c.finish(mode, runID, started, err)
		return nil, err
	}

	// 完成顺序是乱序的，按输入下标重排后结果是确定的
	results := out.Drain()
	sort.Slice(results, func(i, j int) bool { return results[i].Index < results[j].Index })

	if len(results) != n {
		wrapped := types.NewError(types.ErrRunAborted,
			fmt.Sprintf("expected %d results, collected %d", n, len(results)))
		c.finish(mode, runID, started, wrapped)
		return nil, wrapped
	}

	c.finish(mode, runID, started, nil)
	return results, nil
}
