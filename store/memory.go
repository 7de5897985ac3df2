package store

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/BaSui01/taskflow/types"
)

// MemoryStore is the in-process ResultStore: a two-level map guarded by
// one mutex. It is the Go rendering of a manager-owned shared dict —
// callers never touch the map itself.
type MemoryStore struct {
	mu     sync.RWMutex
	cells  map[string]map[string]types.WorkerResult
	closed bool
	logger *zap.Logger
}

// NewMemoryStore creates an empty in-process store.
func NewMemoryStore(logger *zap.Logger) *MemoryStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MemoryStore{
		cells:  make(map[string]map[string]types.WorkerResult),
		logger: logger.With(zap.String("component", "store")),
	}
}

// Put writes one result cell, exactly once per key.
func (s *MemoryStore) Put(ctx context.Context, workerID, subtaskID string, result types.WorkerResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return types.NewError(types.ErrStoreClosed, "put on closed store")
	}

	inner, ok := s.cells[workerID]
	if !ok {
		inner = make(map[string]types.WorkerResult)
		s.cells[workerID] = inner
	}
	if _, exists := inner[subtaskID]; exists {
		return types.NewError(types.ErrDuplicateKey, "cell already written").WithWorker(workerID)
	}
	inner[subtaskID] = result
	return nil
}

// Get reads one cell.
func (s *MemoryStore) Get(ctx context.Context, workerID, subtaskID string) (types.WorkerResult, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return types.WorkerResult{}, false, types.NewError(types.ErrStoreClosed, "get on closed store")
	}
	r, ok := s.cells[workerID][subtaskID]
	return r, ok, nil
}

// Worker returns a copy of one worker's cells.
func (s *MemoryStore) Worker(ctx context.Context, workerID string) (map[string]types.WorkerResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, types.NewError(types.ErrStoreClosed, "read on closed store")
	}
	out := make(map[string]types.WorkerResult, len(s.cells[workerID]))
	for k, v := range s.cells[workerID] {
		out[k] = v
	}
	return out, nil
}

// Snapshot returns a deep copy of the full mapping.
func (s *MemoryStore) Snapshot(ctx context.Context) (map[string]map[string]types.WorkerResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, types.NewError(types.ErrStoreClosed, "snapshot on closed store")
	}
	out := make(map[string]map[string]types.WorkerResult, len(s.cells))
	for w, inner := range s.cells {
		cp := make(map[string]types.WorkerResult, len(inner))
		for k, v := range inner {
			cp[k] = v
		}
		out[w] = cp
	}
	return out, nil
}

// Len returns the total number of written cells.
func (s *MemoryStore) Len(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return 0, types.NewError(types.ErrStoreClosed, "len on closed store")
	}
	n := 0
	for _, inner := range s.cells {
		n += len(inner)
	}
	return n, nil
}

// Backend names the backend for metrics labels.
func (s *MemoryStore) Backend() string {
	return "memory"
}

// Close releases the store. Idempotent.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
