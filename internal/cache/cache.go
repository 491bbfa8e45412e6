// Package cache keeps rendered pages in memory for the preview server.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"io/fs"
	"sync"
	"sync/atomic"
	"time"
)

// Entry is one rendered page.
type Entry struct {
	Body      []byte
	ETag      string
	ModTime   time.Time // Source modification time at render
	Size      int64     // Source size at render
	ExpiresAt time.Time
}

// NewEntry builds an entry for body rendered from a source with the given stat.
func NewEntry(body []byte, info fs.FileInfo) *Entry {
	sum := sha256.Sum256(body)
	e := &Entry{
		Body: body,
		ETag: `"` + hex.EncodeToString(sum[:8]) + `"`,
	}
	if info != nil {
		e.ModTime = info.ModTime()
		e.Size = info.Size()
	}
	return e
}

// IsExpired returns true if the entry has expired
func (e *Entry) IsExpired() bool {
	return !e.ExpiresAt.IsZero() && time.Now().After(e.ExpiresAt)
}

// Fresh reports whether the entry was rendered from the source described by info.
func (e *Entry) Fresh(info fs.FileInfo) bool {
	return info != nil && e.Size == info.Size() && e.ModTime.Equal(info.ModTime())
}

// PageCache is an in-memory page cache with TTL support
type PageCache struct {
	mu      sync.RWMutex
	entries map[string]*Entry
	ttl     time.Duration

	hits   atomic.Int64
	misses atomic.Int64

	// For background cleanup
	cleanupInterval time.Duration
	stopCleanup     chan struct{}
	stopOnce        sync.Once
}

// New creates a page cache. A zero ttl keeps entries until invalidated.
func New(ttl time.Duration) *PageCache {
	c := &PageCache{
		entries:         make(map[string]*Entry),
		ttl:             ttl,
		cleanupInterval: time.Minute,
		stopCleanup:     make(chan struct{}),
	}
	go c.cleanupLoop()
	return c
}

// Get returns the entry for key if present and not expired.
func (c *PageCache) Get(key string) (*Entry, bool) {
	c.mu.RLock()
	entry, exists := c.entries[key]
	c.mu.RUnlock()

	if !exists {
		c.misses.Add(1)
		return nil, false
	}

	if entry.IsExpired() {
		c.Invalidate(key)
		c.misses.Add(1)
		return nil, false
	}

	c.hits.Add(1)
	return entry, true
}

// Put stores entry under key, stamping its expiry from the cache TTL.
func (c *PageCache) Put(key string, entry *Entry) {
	if c.ttl > 0 {
		entry.ExpiresAt = time.Now().Add(c.ttl)
	}

	c.mu.Lock()
	c.entries[key] = entry
	c.mu.Unlock()
}

// Invalidate removes an entry from the cache
func (c *PageCache) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// InvalidateAll removes all entries from the cache
func (c *PageCache) InvalidateAll() {
	c.mu.Lock()
	c.entries = make(map[string]*Entry)
	c.mu.Unlock()
}

// Stats returns the hit and miss counters.
func (c *PageCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// cleanupLoop periodically removes expired entries
func (c *PageCache) cleanupLoop() {
	ticker := time.NewTicker(c.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.cleanup()
		case <-c.stopCleanup:
			return
		}
	}
}

func (c *PageCache) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key, entry := range c.entries {
		if entry.IsExpired() {
			delete(c.entries, key)
		}
	}
}

// Stop stops the background cleanup goroutine
// Safe to call multiple times
func (c *PageCache) Stop() {
	c.stopOnce.Do(func() {
		close(c.stopCleanup)
	})
}

// Len returns the number of entries in the cache
func (c *PageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
