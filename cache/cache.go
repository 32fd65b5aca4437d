// Package cache provides bounded, expiring translation caches.
//
// Both implementations follow the same maintenance rule: expired entries are
// purged first, then the oldest remaining entries are evicted until the entry
// count is within the configured maximum.
package cache

import "time"

// Cache is a bounded, time-expiring key-value store.
type Cache[V any] interface {
	// Get returns the value if present and younger than the TTL. It never evicts.
	Get(key string) (V, bool)

	// Put stores a value with the current timestamp and runs Cleanup.
	Put(key string, value V) error

	// Len returns the number of stored entries, expired ones included until cleanup.
	Len() int

	// Cleanup removes expired entries, then evicts the oldest beyond the maximum.
	Cleanup() (expired, evicted int)

	// Clear removes all entries.
	Clear()

	// Stats returns a snapshot of the cache counters.
	Stats() Stats
}

// Stats is a snapshot of cache counters.
type Stats struct {
	Entries     int
	MaxEntries  int
	TTL         time.Duration
	Hits        int64
	Misses      int64
	Expirations int64
	Evictions   int64
	Errors      int64 // Backend failures, always zero for the in-memory cache
}

// Option configures a cache.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func seconds(n int) time.Duration {
	if n <= 0 {
		return 0 // No expiration
	}
	return time.Duration(n) * time.Second
}
