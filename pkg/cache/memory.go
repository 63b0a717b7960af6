package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

type memoryItem struct {
	value    []byte
	expireAt time.Time
}

func (m *memoryItem) expired() bool {
	return !m.expireAt.IsZero() && time.Now().After(m.expireAt)
}

// Memory implements Service with an in-process map, LRU eviction and
// periodic expiry sweeps.
type Memory struct {
	data          map[string]*memoryItem
	access        map[string]time.Time
	mutex         sync.RWMutex
	maxEntries    int
	cleanupTicker *time.Ticker
	done          chan struct{}
}

// NewMemory creates an in-memory cache.
func NewMemory(opts ...MemoryOption) *Memory {
	cfg := &MemoryConfig{
		MaxEntries:      256,
		CleanupInterval: 5 * time.Minute,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	m := &Memory{
		data:          make(map[string]*memoryItem),
		access:        make(map[string]time.Time),
		maxEntries:    cfg.MaxEntries,
		cleanupTicker: time.NewTicker(cfg.CleanupInterval),
		done:          make(chan struct{}),
	}

	go m.cleanupExpired()
	return m
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	item, ok := m.data[key]
	if !ok || item.expired() {
		if ok {
			delete(m.data, key)
			delete(m.access, key)
		}
		return nil, ErrCacheMiss
	}

	m.access[key] = time.Now()
	return item.value, nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if len(m.data) >= m.maxEntries {
		m.evictLRU()
	}

	var expireAt time.Time
	if ttl > 0 {
		expireAt = time.Now().Add(ttl)
	}

	m.data[key] = &memoryItem{value: value, expireAt: expireAt}
	m.access[key] = time.Now()
	return nil
}

func (m *Memory) Delete(_ context.Context, keys ...string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for _, key := range keys {
		delete(m.data, key)
		delete(m.access, key)
	}
	return nil
}

func (m *Memory) DeleteByPattern(_ context.Context, pattern string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for key := range m.data {
		if matchPattern(pattern, key) {
			delete(m.data, key)
			delete(m.access, key)
		}
	}
	return nil
}

// matchPattern supports Redis-style trailing * globs, which is the only
// pattern shape callers use. Keys may contain slashes.
func matchPattern(pattern, key string) bool {
	if prefix, ok := strings.CutSuffix(pattern, "*"); ok {
		return strings.HasPrefix(key, prefix)
	}
	return pattern == key
}

func (m *Memory) Exists(_ context.Context, keys ...string) (bool, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	for _, key := range keys {
		if item, ok := m.data[key]; ok && !item.expired() {
			return true, nil
		}
	}
	return false, nil
}

// Len returns the current number of entries, expired ones included.
func (m *Memory) Len() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.data)
}

func (m *Memory) evictLRU() {
	var oldestKey string
	oldestTime := time.Now()

	for key, accessTime := range m.access {
		if accessTime.Before(oldestTime) {
			oldestTime = accessTime
			oldestKey = key
		}
	}

	if oldestKey != "" {
		delete(m.data, oldestKey)
		delete(m.access, oldestKey)
	}
}

func (m *Memory) cleanupExpired() {
	for {
		select {
		case <-m.done:
			return
		case <-m.cleanupTicker.C:
			m.mutex.Lock()
			for key, item := range m.data {
				if item.expired() {
					delete(m.data, key)
					delete(m.access, key)
				}
			}
			m.mutex.Unlock()
		}
	}
}

// Close stops the cleanup goroutine.
func (m *Memory) Close() error {
	m.cleanupTicker.Stop()
	close(m.done)
	return nil
}
