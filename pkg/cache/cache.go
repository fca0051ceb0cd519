// Package cache provides a bounded, time-expiring, least-recently-used
// store keyed by opaque fingerprints. It memoizes fusion results so the
// same input never pays for recomputation twice within the TTL window.
package cache

import (
	"sync"
	"time"
)

const (
	// DefaultMaxSize bounds the number of cached entries.
	DefaultMaxSize = 1000

	// DefaultTTL is the shared time-to-live for all entries.
	DefaultTTL = time.Hour
)

// Stats is the observable state of the cache. Hit and miss counters are
// monotonic and reset only by Clear.
type Stats struct {
	Size       int     `json:"size" yaml:"size"`
	MaxSize    int     `json:"max_size" yaml:"maxSize"`
	Hits       int64   `json:"hits" yaml:"hits"`
	Misses     int64   `json:"misses" yaml:"misses"`
	HitRate    float64 `json:"hit_rate" yaml:"hitRate"`
	TTLSeconds int     `json:"ttl" yaml:"ttl"`
}

type entry[V any] struct {
	key       string
	value     V
	createdAt time.Time
	node      *node
}

// Cache is a mutex-guarded LRU cache with lazy TTL expiry. A Get that
// hits promotes the entry; a Put over capacity evicts the single
// least-recently-used entry. Expired entries are removed on access and
// reported as misses. Safe for concurrent use.
type Cache[V any] struct {
	mu      sync.Mutex
	lookup  map[string]*entry[V]
	order   *list
	maxSize int
	ttl     time.Duration
	hits    int64
	misses  int64
	now     func() time.Time
}

// New creates a cache with the given capacity and TTL. Non-positive
// arguments fall back to the defaults.
func New[V any](maxSize int, ttl time.Duration) *Cache[V] {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache[V]{
		lookup:  make(map[string]*entry[V], maxSize),
		order:   newList(),
		maxSize: maxSize,
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the cached value for key if present and not expired.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	e, ok := c.lookup[key]
	if !ok {
		c.misses++
		return zero, false
	}

	if c.now().Sub(e.createdAt) > c.ttl {
		c.order.remove(e.node)
		delete(c.lookup, key)
		c.misses++
		return zero, false
	}

	c.order.remove(e.node)
	e.node = c.order.pushFront(key)
	c.hits++
	return e.value, true
}

// Put stores the value under key, evicting the least-recently-used
// entry if the cache is at capacity. Replacing an existing key counts
// as a fresh insert: the entry's age and recency both reset.
func (c *Cache[V]) Put(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.lookup[key]; ok {
		e.value = value
		e.createdAt = c.now()
		c.order.remove(e.node)
		e.node = c.order.pushFront(key)
		return
	}

	if len(c.lookup) >= c.maxSize {
		if oldest, ok := c.order.popBack(); ok {
			delete(c.lookup, oldest)
		}
	}

	c.lookup[key] = &entry[V]{
		key:       key,
		value:     value,
		createdAt: c.now(),
		node:      c.order.pushFront(key),
	}
}

// Stats reports current size and counter values.
func (c *Cache[V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := c.hits + c.misses
	rate := 0.0
	if total > 0 {
		rate = float64(c.hits) / float64(total)
	}
	return Stats{
		Size:       len(c.lookup),
		MaxSize:    c.maxSize,
		Hits:       c.hits,
		Misses:     c.misses,
		HitRate:    rate,
		TTLSeconds: int(c.ttl.Seconds()),
	}
}

// Clear removes all entries and resets the hit/miss counters.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lookup = make(map[string]*entry[V], c.maxSize)
	c.order = newList()
	c.hits = 0
	c.misses = 0
}
