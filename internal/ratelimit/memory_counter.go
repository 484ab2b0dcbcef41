package ratelimit

import (
	"context"
	"sync"
	"time"
)

type MemoryCounter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	now     func() time.Time
}

type bucket struct {
	count int64
	start time.Time
}

func NewMemoryCounter() *MemoryCounter {
	return &MemoryCounter{
		buckets: make(map[string]*bucket),
		now:     time.Now,
	}
}

func (m *MemoryCounter) Hit(_ context.Context, key string, window time.Duration) (int64, error) {
	start := windowStart(m.now(), window)

	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.buckets[key]
	if !ok || !b.start.Equal(start) {
		b = &bucket{start: start}
		m.buckets[key] = b
	}
	b.count++

	if len(m.buckets) > 10000 {
		m.evict(start)
	}
	return b.count, nil
}

// evict drops buckets of past windows.
func (m *MemoryCounter) evict(current time.Time) {
	for k, b := range m.buckets {
		if b.start.Before(current) {
			delete(m.buckets, k)
		}
	}
}
