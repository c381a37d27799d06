package cache

import (
	"sync"
	"time"
)

// ============================================================================
// IN-MEMORY CACHE WITH TTL
// ============================================================================
// Thread-safe key/value cache with automatic expiration, used to absorb
// repeated upstream GraphQL queries.
//
// Usage:
//   c := cache.New(5*time.Minute, 10*time.Minute)
//   c.Set("feeds:idf", feeds)
//   if v, found := c.Get("feeds:idf"); found { ... }

// Item is one cached value with its expiration timestamp.
type Item struct {
	Value      interface{}
	Expiration int64 // Unix nanoseconds, 0 means no expiry
}

// Cache is a thread-safe key-value store with TTL.
type Cache struct {
	items             map[string]Item
	mu                sync.RWMutex
	defaultExpiration time.Duration
	cleanupInterval   time.Duration
	stopCleanup       chan bool
}

// New creates a cache with a default TTL. cleanupInterval drives the
// periodic sweep of expired items.
func New(defaultExpiration, cleanupInterval time.Duration) *Cache {
	c := &Cache{
		items:             make(map[string]Item),
		defaultExpiration: defaultExpiration,
		cleanupInterval:   cleanupInterval,
		stopCleanup:       make(chan bool),
	}
	go c.startCleanupTimer()
	return c
}

// Set stores a value with the default TTL.
func (c *Cache) Set(key string, value interface{}) {
	c.SetWithTTL(key, value, c.defaultExpiration)
}

// SetWithTTL stores a value with a specific TTL.
func (c *Cache) SetWithTTL(key string, value interface{}, duration time.Duration) {
	var expiration int64
	if duration > 0 {
		expiration = time.Now().Add(duration).UnixNano()
	}

	c.mu.Lock()
	c.items[key] = Item{Value: value, Expiration: expiration}
	c.mu.Unlock()
}

// Get returns (value, true) when the key exists and has not expired.
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	item, found := c.items[key]
	c.mu.RUnlock()

	if !found {
		return nil, false
	}
	if item.Expiration > 0 && time.Now().UnixNano() > item.Expiration {
		c.Delete(key)
		return nil, false
	}
	return item.Value, true
}

// Delete removes a key.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
}

// DeletePrefix removes every key starting with the given prefix and returns
// how many were removed. Useful to invalidate one query class at a time
// (e.g. "feeds:" after a reconciliation pass).
func (c *Cache) DeletePrefix(prefix string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	count := 0
	for key := range c.items {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			delete(c.items, key)
			count++
		}
	}
	return count
}

// Clear removes everything.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.items = make(map[string]Item)
	c.mu.Unlock()
}

// Count returns the number of items held, expired included.
func (c *Cache) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Stats describes the current cache content.
type Stats struct {
	TotalItems   int     `json:"total_items"`
	ExpiredItems int     `json:"expired_items"`
	ValidItems   int     `json:"valid_items"`
	MemoryEstMB  float64 `json:"memory_est_mb"`
}

// GetStats returns current cache statistics.
func (c *Cache) GetStats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := Stats{TotalItems: len(c.items)}
	now := time.Now().UnixNano()
	for _, item := range c.items {
		if item.Expiration > 0 && now > item.Expiration {
			stats.ExpiredItems++
		} else {
			stats.ValidItems++
		}
	}
	// Rough estimate: ~1KB per item.
	stats.MemoryEstMB = float64(stats.TotalItems) * 1.0 / 1024.0
	return stats
}

func (c *Cache) startCleanupTimer() {
	ticker := time.NewTicker(c.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.deleteExpired()
		case <-c.stopCleanup:
			return
		}
	}
}

func (c *Cache) deleteExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now().UnixNano()
	for key, item := range c.items {
		if item.Expiration > 0 && now > item.Expiration {
			delete(c.items, key)
		}
	}
}

// Stop halts the cleanup goroutine.
func (c *Cache) Stop() {
	c.stopCleanup <- true
}

// ============================================================================
// REGISTRY - ONE CACHE PER UPSTREAM QUERY CLASS
// ============================================================================
// Network topology barely moves, line shapes move slowly, timetables move
// within the day and realtime data is stale within a minute. The registry is
// passed explicitly into the API client; there is no package-level cache
// state.

// Registry groups the caches for the different upstream query classes.
type Registry struct {
	Networks   *Cache // feeds/agencies, TTL 24h
	Lines      *Cache // routes/patterns, TTL 6h
	Stops      *Cache // stop details, TTL 6h
	Timetables *Cache // scheduled departures, TTL 15m
	Realtime   *Cache // realtime departures, TTL 30s
}

// NewRegistry builds the registry with the standard TTLs.
func NewRegistry() *Registry {
	return &Registry{
		Networks:   New(24*time.Hour, time.Hour),
		Lines:      New(6*time.Hour, time.Hour),
		Stops:      New(6*time.Hour, time.Hour),
		Timetables: New(15*time.Minute, 30*time.Minute),
		Realtime:   New(30*time.Second, time.Minute),
	}
}

// StatsByClass returns statistics for every cache in the registry.
func (r *Registry) StatsByClass() map[string]Stats {
	return map[string]Stats{
		"networks":   r.Networks.GetStats(),
		"lines":      r.Lines.GetStats(),
		"stops":      r.Stops.GetStats(),
		"timetables": r.Timetables.GetStats(),
		"realtime":   r.Realtime.GetStats(),
	}
}

// ClearAll empties every cache in the registry.
func (r *Registry) ClearAll() {
	r.Networks.Clear()
	r.Lines.Clear()
	r.Stops.Clear()
	r.Timetables.Clear()
	r.Realtime.Clear()
}

// Stop halts every cleanup goroutine in the registry.
func (r *Registry) Stop() {
	r.Networks.Stop()
	r.Lines.Stop()
	r.Stops.Stop()
	r.Timetables.Stop()
	r.Realtime.Stop()
}
