// Package infra provides the in-process caching used by the memoized Stash queries.
package infra

import (
	"container/list"
	"sync"
)

// DefaultMaxCacheEntries is used when a cache is created with a non-positive capacity
const DefaultMaxCacheEntries = 128

// CacheStats reports cache usage in the shape consumed by health_check
type CacheStats struct {
	Hits     int64 `json:"hits"`
	Misses   int64 `json:"misses"`
	CurrSize int   `json:"currsize"`
	MaxSize  int   `json:"maxsize"`
}

type cacheEntry[V any] struct {
	key   string
	value V
}

// Cache is a fixed-capacity LRU cache. Every lookup counts as a hit or a miss
// and inserting past capacity evicts the least recently used entry.
type Cache[V any] struct {
	mu         sync.Mutex
	maxEntries int
	ll         *list.List // front is most recently used
	items      map[string]*list.Element

	hits   int64
	misses int64
}

// NewCache creates a new LRU cache with the specified max entries
func NewCache[V any](maxEntries int) *Cache[V] {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxCacheEntries
	}
	return &Cache[V]{
		maxEntries: maxEntries,
		ll:         list.New(),
		items:      make(map[string]*list.Element),
	}
}

// Get returns the cached value for key and marks it most recently used
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		c.ll.MoveToFront(el)
		c.hits++
		return el.Value.(*cacheEntry[V]).value, true
	}
	c.misses++
	var zero V
	return zero, false
}

// peek returns the cached value without touching recency or counters
func (c *Cache[V]) peek(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		return el.Value.(*cacheEntry[V]).value, true
	}
	var zero V
	return zero, false
}

// Set stores value under key, evicting the least recently used entry when full
func (c *Cache[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		el.Value.(*cacheEntry[V]).value = value
		c.ll.MoveToFront(el)
		return
	}

	c.items[key] = c.ll.PushFront(&cacheEntry[V]{key: key, value: value})
	for c.ll.Len() > c.maxEntries {
		oldest := c.ll.Back()
		c.ll.Remove(oldest)
		delete(c.items, oldest.Value.(*cacheEntry[V]).key)
	}
}

// Clear drops every entry and resets the counters
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.ll.Init()
	c.items = make(map[string]*list.Element)
	c.hits, c.misses = 0, 0
}

// Size returns the current number of entries in the cache
func (c *Cache[V]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}

// Stats returns hit/miss counters and sizes
func (c *Cache[V]) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CacheStats{
		Hits:     c.hits,
		Misses:   c.misses,
		CurrSize: c.ll.Len(),
		MaxSize:  c.maxEntries,
	}
}
