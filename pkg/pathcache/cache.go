package pathcache

import (
	"context"
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/matzehuels/convroute/pkg/format"
	"github.com/matzehuels/convroute/pkg/observability"
)

// DefaultMaxSize is the capacity used when none is configured.
const DefaultMaxSize = 1000

// keyType labels route cache events for observability hooks.
const keyType = "route"

// Key identifies a cached route.
type Key struct {
	From   string // Source MIME type
	To     string // Destination MIME type
	Simple bool   // Simple-mode search
}

// NewKey builds the key for a route from fromMIME to toMIME.
func NewKey(fromMIME, toMIME string, simple bool) Key {
	return Key{From: fromMIME, To: toMIME, Simple: simple}
}

// String renders the key as "from->to[:simple]".
func (k Key) String() string {
	if k.Simple {
		return fmt.Sprintf("%s->%s:simple", k.From, k.To)
	}
	return fmt.Sprintf("%s->%s", k.From, k.To)
}

// Entry is a cached route.
type Entry struct {
	Path      []format.PathStep `json:"path"`
	Timestamp time.Time         `json:"timestamp"`
	HitCount  int               `json:"hitCount"`
}

// Cache is a bounded LRU of routes plus search metrics.
type Cache struct {
	mu      sync.Mutex
	entries *lru.Cache[Key, *Entry]
	maxSize int
	metrics metricsAggregator
	now     func() time.Time
	purging bool // Clear in progress; removals are not evictions
}

// New creates a cache holding at most maxSize routes. A maxSize below one
// selects DefaultMaxSize.
func New(maxSize int) *Cache {
	if maxSize < 1 {
		maxSize = DefaultMaxSize
	}
	c := &Cache{maxSize: maxSize, now: time.Now}
	entries, err := lru.NewWithEvict(maxSize, func(Key, *Entry) {
		if !c.purging {
			observability.Cache().OnCacheEvict(context.Background(), keyType)
		}
	})
	if err != nil {
		// Only returned for a non-positive size, excluded above.
		panic(err)
	}
	c.entries = entries
	return c
}

// Get returns a copy of the route cached under k. A hit increments the
// entry's hit count and the global hit counter and marks the entry most
// recently used; a miss increments the miss counter.
func (c *Cache) Get(ctx context.Context, k Key) ([]format.PathStep, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries.Get(k)
	if !ok {
		c.metrics.cacheMisses++
		observability.Cache().OnCacheMiss(ctx, keyType)
		return nil, false
	}
	e.HitCount++
	c.metrics.cacheHits++
	observability.Cache().OnCacheHit(ctx, keyType)
	return format.ClonePath(e.Path), true
}

// Peek returns a copy of the entry under k without touching recency or
// counters.
func (c *Cache) Peek(k Key) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries.Peek(k)
	if !ok {
		return Entry{}, false
	}
	return Entry{Path: format.ClonePath(e.Path), Timestamp: e.Timestamp, HitCount: e.HitCount}, true
}

// Set stores path under k, evicting the least recently used entry first
// when the cache is full. Replacing an existing entry resets its hit count.
func (c *Cache) Set(ctx context.Context, k Key, path []format.PathStep) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries.Add(k, &Entry{Path: format.ClonePath(path), Timestamp: c.now()})
	observability.Cache().OnCacheSet(ctx, keyType, len(path))
}

// RecordSearch folds one search into the metrics: total count, running
// mean and max duration, and timeout count.
func (c *Cache) RecordSearch(d time.Duration, timedOut bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.metrics.record(d, timedOut)
}

// Metrics returns a snapshot of the performance metrics.
func (c *Cache) Metrics() Metrics {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.metrics.snapshot()
}

// HitRate returns hits / (hits + misses), or 0 before any lookup.
func (c *Cache) HitRate() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.metrics.hitRate()
}

// Size returns the number of cached routes.
func (c *Cache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries.Len()
}

// MaxSize returns the capacity.
func (c *Cache) MaxSize() int { return c.maxSize }

// Keys returns the cached keys from least to most recently used.
func (c *Cache) Keys() []Key {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries.Keys()
}

// Clear removes all routes. Metrics are kept.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.purging = true
	c.entries.Purge()
	c.purging = false
}

// ResetMetrics zeroes the performance metrics.
func (c *Cache) ResetMetrics() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.metrics = metricsAggregator{}
}
