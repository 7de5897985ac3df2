package coordinator

import "github.com/BaSui01/taskflow/types"

// Chunks splits items into at most k contiguous chunks whose sizes
// differ by no more than one. Fewer than k chunks come back when there
// are fewer items than workers; no chunk is ever empty.
func Chunks(items []types.WorkItem, k int) [][]types.WorkItem {
	n := len(items)
	if n == 0 || k < 1 {
		return nil
	}
	if k > n {
		k = n
	}

	chunks := make([][]types.WorkItem, 0, k)
	base := n / k
	extra := n % k

	start := 0
	for i := 0; i < k; i++ {
		size := base
		if i < extra {
			size++
		}
		chunks = append(chunks, items[start:start+size])
		start += size
	}
	return chunks
}
