package lock

import (
	"context"
	"sync"
	"time"
)

// Memory is the single-node lock service: a process-wide map from key
// to expiry instant.  Insertion goes through sync.Map's atomic
// insert-if-absent, so two concurrent acquirers never both succeed;
// there is no coarse mutex around acquisition.  Expired entries are
// evicted lazily on the next acquire attempt.
type Memory struct {
	entries sync.Map // key -> expiry (int64, UnixNano)
}

// NewMemory returns an empty in-process lock service.
func NewMemory() *Memory {
	return &Memory{}
}

// Acquire implements Service.  The context is unused; acquisition never
// blocks.
func (m *Memory) Acquire(_ context.Context, key string, ttl time.Duration) (bool, error) {
	now := time.Now()
	if v, ok := m.entries.Load(key); ok {
		if now.UnixNano() < v.(int64) {
			// Lock is actively held.
			return false, nil
		}
		// Lazy eviction.  CompareAndDelete keeps the removal atomic
		// against a concurrent holder refreshing the same key.
		m.entries.CompareAndDelete(key, v)
	}
	_, loaded := m.entries.LoadOrStore(key, now.Add(ttl).UnixNano())
	return !loaded, nil
}

// Release implements Service.
func (m *Memory) Release(_ context.Context, key string) error {
	m.entries.Delete(key)
	return nil
}
