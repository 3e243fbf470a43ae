package minecraft

import (
	"container/list"
	"sync"
	"time"
)

const (
	// DefaultCacheSize is the default number of version URLs to cache.
	DefaultCacheSize = 1000

	// DefaultCacheTTL is the default time-to-live for cached version URLs.
	DefaultCacheTTL = 1 * time.Hour
)

// CacheEntry is a cached version manifest entry.
type CacheEntry struct {
	Version   VersionInfo
	Timestamp time.Time
}

// Cache is a thread-safe LRU cache of version manifest entries keyed by
// version id.
type Cache struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	items    map[string]*list.Element
	lru      *list.List
}

type cacheItem struct {
	key   string
	value CacheEntry
}

// NewCache creates a new LRU cache.
func NewCache(capacity int, ttl time.Duration) *Cache {
	if capacity <= 0 {
		capacity = DefaultCacheSize
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}

	return &Cache{
		capacity: capacity,
		ttl:      ttl,
		items:    make(map[string]*list.Element),
		lru:      list.New(),
	}
}

// Get returns the entry for a version id, or nil if it is missing or expired.
func (c *Cache) Get(id string) *CacheEntry {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, exists := c.items[id]
	if !exists {
		return nil
	}

	item := elem.Value.(*cacheItem)
	if time.Since(item.value.Timestamp) > c.ttl {
		c.lru.Remove(elem)
		delete(c.items, id)
		return nil
	}

	c.lru.MoveToFront(elem)
	entry := item.value
	return &entry
}

// Set adds or updates the entry for a version.
func (c *Cache) Set(v VersionInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry := CacheEntry{Version: v, Timestamp: time.Now()}

	if elem, exists := c.items[v.ID]; exists {
		c.lru.MoveToFront(elem)
		elem.Value.(*cacheItem).value = entry
		return
	}

	elem := c.lru.PushFront(&cacheItem{key: v.ID, value: entry})
	c.items[v.ID] = elem

	if c.lru.Len() > c.capacity {
		c.evictOldest()
	}
}

// evictOldest removes the least recently used entry.
// Must be called with lock held.
func (c *Cache) evictOldest() {
	elem := c.lru.Back()
	if elem == nil {
		return
	}

	c.lru.Remove(elem)
	delete(c.items, elem.Value.(*cacheItem).key)
}

// Clear removes all entries from the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*list.Element)
	c.lru = list.New()
}

// Len returns the number of entries in the cache.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.lru.Len()
}
