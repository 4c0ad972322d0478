package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	"strategy-validator/internal/observability"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time // zero means no expiry
}

// Memory is an in-process Cache.
type Memory struct {
	mu    sync.RWMutex
	data  map[string]memoryEntry
	ttl   time.Duration
	clock func() time.Time
}

// NewMemory creates a memory cache. A zero ttl keeps entries until invalidated.
func NewMemory(ttl time.Duration) *Memory {
	return &Memory{
		data:  make(map[string]memoryEntry),
		ttl:   ttl,
		clock: time.Now,
	}
}

// WithClock sets a custom clock for expiry checks.
func (m *Memory) WithClock(clock func() time.Time) *Memory {
	m.clock = clock
	return m
}

// Backend returns "memory".
func (m *Memory) Backend() string { return BackendMemory }

// Get returns a copy of the cached value.
func (m *Memory) Get(_ context.Context, key Key) ([]byte, bool, error) {
	if err := key.validate(); err != nil {
		observability.RecordCache(BackendMemory, "error")
		return nil, false, err
	}

	m.mu.RLock()
	e, ok := m.data[key.String()]
	m.mu.RUnlock()

	if !ok || (!e.expiresAt.IsZero() && !m.clock().Before(e.expiresAt)) {
		observability.RecordCache(BackendMemory, "miss")
		return nil, false, nil
	}
	observability.RecordCache(BackendMemory, "hit")

	out := make([]byte, len(e.value))
	copy(out, e.value)
	return out, true, nil
}

// Set stores a copy of value, replacing any previous entry.
func (m *Memory) Set(_ context.Context, key Key, value []byte) error {
	if err := key.validate(); err != nil {
		return err
	}

	e := memoryEntry{value: make([]byte, len(value))}
	copy(e.value, value)
	if m.ttl > 0 {
		e.expiresAt = m.clock().Add(m.ttl)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key.String()] = e
	return nil
}

// Invalidate removes all entries for tableHash.
func (m *Memory) Invalidate(_ context.Context, tableHash string) (int, error) {
	prefix := tablePrefix(tableHash)

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			delete(m.data, k)
			removed++
		}
	}
	return removed, nil
}

// Len returns the number of stored entries, expired ones included.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}
