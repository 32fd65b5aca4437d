package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "queryfarmer:"

// RedisCache is a Redis-backed cache shared by several processes.
// Values are stored as JSON with a native TTL; a sorted set scored by
// insertion time in milliseconds drives cleanup.
type RedisCache[V any] struct {
	client     *redis.Client
	ttl        time.Duration
	maxEntries int
	keyPrefix  string
	indexKey   string
	timeout    time.Duration
	now        func() time.Time

	hits        atomic.Int64
	misses      atomic.Int64
	expirations atomic.Int64
	evictions   atomic.Int64
	failures    atomic.Int64
}

// RedisConfig holds configuration for the Redis cache.
type RedisConfig struct {
	URL        string        // Redis connection URL (e.g., "redis://localhost:6379")
	TTL        int           // TTL in seconds (0 = no expiration)
	MaxEntries int           // Size bound (0 = unbounded)
	KeyPrefix  string        // Prefix for all keys (default: "queryfarmer:")
	Timeout    time.Duration // Per-operation timeout (default: 2s)
}

// NewRedisCache connects to Redis and creates a cache.
func NewRedisCache[V any](cfg RedisConfig, opts ...Option) (*RedisCache[V], error) {
	redisOpts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(redisOpts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return NewRedisCacheFromClient[V](client, cfg, opts...), nil
}

// NewRedisCacheFromClient creates a RedisCache from an existing Redis client.
func NewRedisCacheFromClient[V any](client *redis.Client, cfg RedisConfig, opts ...Option) *RedisCache[V] {
	o := buildOptions(opts)

	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	maxEntries := cfg.MaxEntries
	if maxEntries < 0 {
		maxEntries = 0
	}

	return &RedisCache[V]{
		client:     client,
		ttl:        seconds(cfg.TTL),
		maxEntries: maxEntries,
		keyPrefix:  prefix,
		indexKey:   prefix + "_index",
		timeout:    timeout,
		now:        o.now,
	}
}

// Get retrieves a value from Redis. Backend errors are reported as misses.
func (c *RedisCache[V]) Get(key string) (V, bool) {
	var zero V
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	data, err := c.client.Get(ctx, c.keyPrefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.failures.Add(1)
		}
		c.misses.Add(1)
		return zero, false
	}

	var value V
	if err := json.Unmarshal(data, &value); err != nil {
		c.failures.Add(1)
		c.misses.Add(1)
		return zero, false
	}

	c.hits.Add(1)
	return value, true
}

// Put stores a value with the configured TTL, records it in the index and
// runs cleanup.
func (c *RedisCache[V]) Put(key string, value V) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode cache value: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	now := c.now()
	if err := c.client.Set(ctx, c.keyPrefix+key, string(data), c.ttl).Err(); err != nil {
		c.failures.Add(1)
		return fmt.Errorf("redis set: %w", err)
	}
	if err := c.client.ZAdd(ctx, c.indexKey, redis.Z{Score: float64(now.UnixMilli()), Member: key}).Err(); err != nil {
		c.failures.Add(1)
		return fmt.Errorf("redis index: %w", err)
	}

	if _, _, err := c.cleanup(ctx, now); err != nil {
		return err
	}
	return nil
}

// Cleanup drops expired index entries, then evicts the oldest entries beyond
// the size bound. Errors are counted in Stats.
func (c *RedisCache[V]) Cleanup() (expired, evicted int) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	expired, evicted, _ = c.cleanup(ctx, c.now())
	return expired, evicted
}

func (c *RedisCache[V]) cleanup(ctx context.Context, now time.Time) (expired, evicted int, err error) {
	if c.ttl > 0 {
		cutoff := now.Add(-c.ttl).UnixMilli()
		n, err := c.client.ZRemRangeByScore(ctx, c.indexKey, "-inf", strconv.FormatInt(cutoff, 10)).Result()
		if err != nil {
			c.failures.Add(1)
			return 0, 0, fmt.Errorf("redis expire index: %w", err)
		}
		expired = int(n)
		c.expirations.Add(n)
	}

	if c.maxEntries > 0 {
		count, err := c.client.ZCard(ctx, c.indexKey).Result()
		if err != nil {
			c.failures.Add(1)
			return expired, 0, fmt.Errorf("redis count: %w", err)
		}
		if excess := count - int64(c.maxEntries); excess > 0 {
			oldest, err := c.client.ZPopMin(ctx, c.indexKey, excess).Result()
			if err != nil {
				c.failures.Add(1)
				return expired, 0, fmt.Errorf("redis evict: %w", err)
			}
			keys := make([]string, 0, len(oldest))
			for _, z := range oldest {
				keys = append(keys, c.keyPrefix+fmt.Sprint(z.Member))
			}
			if len(keys) > 0 {
				if err := c.client.Del(ctx, keys...).Err(); err != nil {
					c.failures.Add(1)
					return expired, 0, fmt.Errorf("redis delete: %w", err)
				}
			}
			evicted = len(keys)
			c.evictions.Add(int64(evicted))
		}
	}

	return expired, evicted, nil
}

// Len returns the number of indexed entries.
func (c *RedisCache[V]) Len() int {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	n, err := c.client.ZCard(ctx, c.indexKey).Result()
	if err != nil {
		c.failures.Add(1)
		return 0
	}
	return int(n)
}

// Clear deletes every indexed entry and the index itself.
func (c *RedisCache[V]) Clear() {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	members, err := c.client.ZRange(ctx, c.indexKey, 0, -1).Result()
	if err != nil {
		c.failures.Add(1)
		return
	}
	keys := make([]string, 0, len(members)+1)
	for _, m := range members {
		keys = append(keys, c.keyPrefix+m)
	}
	keys = append(keys, c.indexKey)
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.failures.Add(1)
	}
}

// Stats returns a snapshot of the cache counters.
func (c *RedisCache[V]) Stats() Stats {
	return Stats{
		Entries:     c.Len(),
		MaxEntries:  c.maxEntries,
		TTL:         c.ttl,
		Hits:        c.hits.Load(),
		Misses:      c.misses.Load(),
		Expirations: c.expirations.Load(),
		Evictions:   c.evictions.Load(),
		Errors:      c.failures.Load(),
	}
}

// TTL returns the configured time-to-live, zero when entries never expire.
func (c *RedisCache[V]) TTL() time.Duration {
	return c.ttl
}

// MaxEntries returns the configured size bound, zero when unbounded.
func (c *RedisCache[V]) MaxEntries() int {
	return c.maxEntries
}

// Close closes the Redis connection.
func (c *RedisCache[V]) Close() error {
	return c.client.Close()
}

// Ping tests the Redis connection.
func (c *RedisCache[V]) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Verify RedisCache implements Cache
var _ Cache[string] = (*RedisCache[string])(nil)
