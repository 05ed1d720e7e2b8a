package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
	"time"

	"github.com/use-agent/mapscrape/models"
)

// entry holds a cached batch with its creation timestamp.
type entry struct {
	batch     *models.ScrapeBatch
	createdAt time.Time
}

// Cache is a simple in-memory cache of finished batches.
// It is safe for concurrent use.
type Cache struct {
	mu         sync.RWMutex
	store      map[string]*entry
	maxEntries int
	now        func() time.Time
}

// New creates a new Cache with the given maximum number of entries.
// A background goroutine runs every 5 minutes to evict expired entries
// (older than 1 hour).
func New(maxEntries int) *Cache {
	c := newCache(maxEntries)
	go c.cleanupLoop()
	return c
}

func newCache(maxEntries int) *Cache {
	if maxEntries <= 0 {
		maxEntries = 1
	}
	return &Cache{
		store:      make(map[string]*entry),
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// Key generates a cache key from the term and the ordered variants. Terms
// differing only in case or surrounding space share a key.
func Key(term string, variants []string) string {
	h := sha256.New()
	h.Write([]byte(strings.ToLower(strings.TrimSpace(term))))
	for _, v := range variants {
		h.Write([]byte("|"))
		h.Write([]byte(strings.TrimSpace(v)))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Get retrieves a cached batch if it exists and is younger than maxAge.
// maxAge is in milliseconds. If maxAge <= 0, no cache lookup is performed.
func (c *Cache) Get(key string, maxAgeMs int) (*models.ScrapeBatch, bool) {
	if maxAgeMs <= 0 {
		return nil, false
	}

	c.mu.RLock()
	e, ok := c.store[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}

	maxAge := time.Duration(maxAgeMs) * time.Millisecond
	if c.now().Sub(e.createdAt) > maxAge {
		return nil, false
	}

	return e.batch, true
}

// Set stores a finished batch. Failed batches are not cached. If the cache
// is at capacity, a random entry is evicted to make room.
func (c *Cache) Set(key string, batch *models.ScrapeBatch) {
	if batch == nil || batch.Status == models.StatusFailed {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Evict one random entry if at capacity (map iteration is random in Go).
	if _, exists := c.store[key]; !exists && len(c.store) >= c.maxEntries {
		for k := range c.store {
			delete(c.store, k)
			break
		}
	}

	c.store[key] = &entry{
		batch:     batch,
		createdAt: c.now(),
	}
}

// Len returns the number of cached batches.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.store)
}

// cleanupLoop evicts entries older than 1 hour every 5 minutes.
func (c *Cache) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		c.evictOlderThan(time.Hour)
	}
}

func (c *Cache) evictOlderThan(age time.Duration) {
	cutoff := c.now().Add(-age)
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, e := range c.store {
		if e.createdAt.Before(cutoff) {
			delete(c.store, k)
		}
	}
}
