// =============================================================================
// 🧪 测试辅助函数
// =============================================================================
// 提供通用的测试辅助函数和断言
//
// 使用方法:
//
//	testutil.AssertResultIndices(t, results, 10)
//	testutil.AssertEventuallyTrue(t, func() bool { return condition }, 5*time.Second)
// =============================================================================
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/BaSui01/taskflow/types"
)

// =============================================================================
// 🎯 上下文辅助
// =============================================================================

// TestContext 返回带超时的测试上下文
func TestContext(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// TestContextWithTimeout 返回带自定义超时的测试上下文
func TestContextWithTimeout(t *testing.T, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	t.Cleanup(cancel)
	return ctx
}

// CancelledContext 返回已取消的上下文
func CancelledContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	return ctx
}

// =============================================================================
// 🔍 断言辅助
// =============================================================================

// AssertResultIndices 断言结果下标恰好覆盖 {0..n-1}，无重复无遗漏
func AssertResultIndices(t *testing.T, results []types.WorkerResult, n int) {
	t.Helper()

	if len(results) != n {
		t.Errorf("result count mismatch: expected %d, got %d", n, len(results))
		return
	}
	seen := make(map[int]bool, n)
	for _, r := range results {
		if r.Index < 0 || r.Index >= n {
			t.Errorf("index %d out of range [0, %d)", r.Index, n)
			return
		}
		if seen[r.Index] {
			t.Errorf("duplicate index %d", r.Index)
			return
		}
		seen[r.Index] = true
	}
}

// AssertResultsEqual 断言两个结果切片逐项相等
func AssertResultsEqual(t *testing.T, expected, actual []types.WorkerResult) {
	t.Helper()

	if len(expected) != len(actual) {
		t.Errorf("result count mismatch: expected %d, got %d", len(expected), len(actual))
		return
	}
	for i := range expected {
		if expected[i] != actual[i] {
			t.Errorf("result[%d] mismatch: expected %+v, got %+v", i, expected[i], actual[i])
		}
	}
}

// AssertEventuallyTrue 断言条件最终为真
func AssertEventuallyTrue(t *testing.T, condition func() bool, timeout time.Duration) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Errorf("condition not satisfied within %v", timeout)
}
