package repository

import (
	"context"
	"sync"
	"time"
)

const (
	memoryCacheMaxEntries    = 10_000
	memoryCacheSweepInterval = 10 * time.Minute
)

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// MemoryCache is used when no Redis address is configured. Expired entries
// are swept periodically and the number of entries is capped.
type MemoryCache struct {
	mu         sync.Mutex
	data       map[string]memoryEntry
	maxEntries int
	now        func() time.Time
	stopSweep  chan struct{}
	stopOnce   sync.Once
}

func NewMemoryCache() *MemoryCache {
	m := &MemoryCache{
		data:       make(map[string]memoryEntry),
		maxEntries: memoryCacheMaxEntries,
		now:        time.Now,
		stopSweep:  make(chan struct{}),
	}
	go m.sweepLoop()
	return m
}

func (m *MemoryCache) sweepLoop() {
	ticker := time.NewTicker(memoryCacheSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.sweep()
		case <-m.stopSweep:
			return
		}
	}
}

func (m *MemoryCache) sweep() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sweepLocked()
}

func (m *MemoryCache) sweepLocked() {
	now := m.now()
	for key, entry := range m.data {
		if !entry.expiresAt.IsZero() && now.After(entry.expiresAt) {
			delete(m.data, key)
		}
	}
}

func (m *MemoryCache) Stop() {
	m.stopOnce.Do(func() { close(m.stopSweep) })
}

func (m *MemoryCache) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.data)
}

func (m *MemoryCache) Get(_ context.Context, key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.data[key]
	if !ok {
		return "", false
	}
	if !entry.expiresAt.IsZero() && m.now().After(entry.expiresAt) {
		delete(m.data, key)
		return "", false
	}
	return entry.value, true
}

// Set stores value under key; a zero ttl never expires. When the cache is
// full, expired entries are dropped first and then an arbitrary one.
func (m *MemoryCache) Set(_ context.Context, key string, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.data[key]; !exists && len(m.data) >= m.maxEntries {
		m.sweepLocked()
		for evict := range m.data {
			if len(m.data) < m.maxEntries {
				break
			}
			delete(m.data, evict)
		}
	}

	entry := memoryEntry{value: value}
	if ttl > 0 {
		entry.expiresAt = m.now().Add(ttl)
	}
	m.data[key] = entry
	return nil
}
