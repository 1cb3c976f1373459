package cache

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryCache is an in-process cache with per-entry TTL. Expired entries
// are dropped on read and by a background sweep.
type MemoryCache struct {
	entries map[string]memoryEntry
	mu      sync.RWMutex
	config  Config
	now     func() time.Time
	stopCh  chan struct{}
	doneCh  chan struct{}
	closed  sync.Once
}

// NewMemoryCache creates a memory cache and starts its cleanup goroutine.
// Call Close to stop it.
func NewMemoryCache(config Config) *MemoryCache {
	mc := &MemoryCache{
		entries: make(map[string]memoryEntry),
		config:  applyDefaults(config),
		now:     time.Now,
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}

	go mc.cleanup()

	return mc
}

// Get returns the value stored under key, or nil if absent or expired.
func (mc *MemoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	mc.mu.RLock()
	entry, ok := mc.entries[key]
	mc.mu.RUnlock()

	if !ok {
		return nil, nil
	}
	if !mc.now().Before(entry.expiresAt) {
		mc.expire(key)
		return nil, nil
	}
	return decode(entry.value)
}

// expire deletes key if it is still expired once the write lock is held.
// A Set may have replaced it since the caller's read.
func (mc *MemoryCache) expire(key string) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	if entry, ok := mc.entries[key]; ok && !mc.now().Before(entry.expiresAt) {
		delete(mc.entries, key)
	}
}

// Set stores value under key for the configured TTL.
func (mc *MemoryCache) Set(ctx context.Context, key string, value []byte) error {
	stored := encode(value, mc.config.CompressAbove)

	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.entries[key] = memoryEntry{value: stored, expiresAt: mc.now().Add(mc.config.TTL)}
	return nil
}

// Len reports the number of stored entries, expired or not.
func (mc *MemoryCache) Len() int {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	return len(mc.entries)
}

// Close stops the cleanup goroutine. It is safe to call more than once.
func (mc *MemoryCache) Close() error {
	mc.closed.Do(func() {
		close(mc.stopCh)
		<-mc.doneCh
	})
	return nil
}

func (mc *MemoryCache) cleanup() {
	ticker := time.NewTicker(mc.config.CleanupInterval)
	defer ticker.Stop()
	defer close(mc.doneCh)

	for {
		select {
		case <-ticker.C:
			mc.removeExpired()
		case <-mc.stopCh:
			return
		}
	}
}

func (mc *MemoryCache) removeExpired() {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	now := mc.now()
	for key, entry := range mc.entries {
		if !now.Before(entry.expiresAt) {
			delete(mc.entries, key)
		}
	}
}
