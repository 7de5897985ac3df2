package coordinator

import (
	"testing"

	"github.com/BaSui01/taskflow/types"
)

func TestChunks(t *testing.T) {
	tests := []struct {
		name     string
		n        int
		k        int
		wantLens []int
	}{
		{"even split", 8, 4, []int{2, 2, 2, 2}},
		{"remainder goes first", 10, 3, []int{4, 3, 3}},
		{"fewer items than workers", 2, 5, []int{1, 1}},
		{"single worker", 5, 1, []int{5}},
		{"single item", 1, 4, []int{1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := Chunks(types.Sequence(tt.n), tt.k)
			if len(chunks) != len(tt.wantLens) {
				t.Fatalf("expected %d chunks, got %d", len(tt.wantLens), len(chunks))
			}
			next := 0
			for i, chunk := range chunks {
				if len(chunk) != tt.wantLens[i] {
					t.Errorf("chunk %d: expected len %d, got %d", i, tt.wantLens[i], len(chunk))
				}
				if len(chunk) == 0 {
					t.Errorf("chunk %d is empty", i)
				}
				for _, item := range chunk {
					if item.Index != next {
						t.Errorf("expected contiguous index %d, got %d", next, item.Index)
					}
					next++
				}
			}
			if next != tt.n {
				t.Errorf("chunks cover %d items, expected %d", next, tt.n)
			}
		})
	}
}

func TestChunksEmpty(t *testing.T) {
	if got := Chunks(nil, 4); got != nil {
		t.Errorf("expected nil for empty input, got %v", got)
	}
	if got := Chunks(types.Sequence(3), 0); got != nil {
		t.Errorf("expected nil for k=0, got %v", got)
	}
}
