package cache

import (
	"container/list"
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// memoryEntry holds a cached value with its insertion timestamp.
type memoryEntry[V any] struct {
	key      string
	value    V
	inserted time.Time
}

// InMemoryCache is a thread-safe in-memory cache with TTL and a size bound.
// Entries are kept in insertion order, so the oldest entry is always first.
type InMemoryCache[V any] struct {
	mu         sync.RWMutex
	items      map[string]*list.Element
	order      *list.List
	ttl        time.Duration
	maxEntries int
	now        func() time.Time

	hits        atomic.Int64
	misses      atomic.Int64
	expirations atomic.Int64
	evictions   atomic.Int64
}

// NewInMemoryCache creates a new in-memory cache.
// If ttlSeconds is 0 or negative, entries never expire.
// If maxEntries is 0 or negative, the cache is unbounded.
func NewInMemoryCache[V any](ttlSeconds, maxEntries int, opts ...Option) *InMemoryCache[V] {
	o := buildOptions(opts)
	if maxEntries < 0 {
		maxEntries = 0
	}
	return &InMemoryCache[V]{
		items:      make(map[string]*list.Element),
		order:      list.New(),
		ttl:        seconds(ttlSeconds),
		maxEntries: maxEntries,
		now:        o.now,
	}
}

// Get retrieves a value from the cache.
// Returns the value and true if found and not expired, zero value and false otherwise.
func (c *InMemoryCache[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	el, ok := c.items[key]
	if !ok || c.expired(el.Value.(*memoryEntry[V]), c.now()) {
		c.misses.Add(1)
		var zero V
		return zero, false
	}

	c.hits.Add(1)
	return el.Value.(*memoryEntry[V]).value, true
}

// Put stores a value in the cache and runs Cleanup.
// Overwriting a key refreshes its timestamp and makes it the newest entry.
func (c *InMemoryCache[V]) Put(key string, value V) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if el, ok := c.items[key]; ok {
		e := el.Value.(*memoryEntry[V])
		e.value = value
		e.inserted = now
		c.order.MoveToBack(el)
	} else {
		c.items[key] = c.order.PushBack(&memoryEntry[V]{key: key, value: value, inserted: now})
	}

	c.cleanup(now)
	return nil
}

// Cleanup removes every expired entry, then evicts the oldest entries until
// the cache holds at most maxEntries.
func (c *InMemoryCache[V]) Cleanup() (expired, evicted int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cleanup(c.now())
}

// cleanup must be called with the write lock held.
func (c *InMemoryCache[V]) cleanup(now time.Time) (expired, evicted int) {
	if c.ttl > 0 {
		for el := c.order.Front(); el != nil; {
			e := el.Value.(*memoryEntry[V])
			if !c.expired(e, now) {
				break
			}
			next := el.Next()
			c.remove(el)
			expired++
			el = next
		}
	}

	if c.maxEntries > 0 {
		for c.order.Len() > c.maxEntries {
			c.remove(c.order.Front())
			evicted++
		}
	}

	c.expirations.Add(int64(expired))
	c.evictions.Add(int64(evicted))
	return expired, evicted
}

func (c *InMemoryCache[V]) remove(el *list.Element) {
	c.order.Remove(el)
	delete(c.items, el.Value.(*memoryEntry[V]).key)
}

func (c *InMemoryCache[V]) expired(e *memoryEntry[V], now time.Time) bool {
	return c.ttl > 0 && now.Sub(e.inserted) >= c.ttl
}

// Run cleans the cache every interval until ctx is done.
func (c *InMemoryCache[V]) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Cleanup()
		}
	}
}

// Len returns the number of entries in the cache (including expired ones).
func (c *InMemoryCache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.order.Len()
}

// Clear removes all entries from the cache.
func (c *InMemoryCache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]*list.Element)
	c.order.Init()
}

// Keys returns the keys from oldest to newest.
func (c *InMemoryCache[V]) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	keys := make([]string, 0, c.order.Len())
	for el := c.order.Front(); el != nil; el = el.Next() {
		keys = append(keys, el.Value.(*memoryEntry[V]).key)
	}
	return keys
}

// TTL returns the configured time-to-live, zero when entries never expire.
func (c *InMemoryCache[V]) TTL() time.Duration {
	return c.ttl
}

// MaxEntries returns the configured size bound, zero when unbounded.
func (c *InMemoryCache[V]) MaxEntries() int {
	return c.maxEntries
}

// Stats returns a snapshot of the cache counters.
func (c *InMemoryCache[V]) Stats() Stats {
	return Stats{
		Entries:     c.Len(),
		MaxEntries:  c.maxEntries,
		TTL:         c.ttl,
		Hits:        c.hits.Load(),
		Misses:      c.misses.Load(),
		Expirations: c.expirations.Load(),
		Evictions:   c.evictions.Load(),
	}
}

// Verify InMemoryCache implements Cache
var _ Cache[string] = (*InMemoryCache[string])(nil)
