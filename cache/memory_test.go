package cache

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"testing"
	"time"
)

// fakeClock is a manually advanced clock for TTL tests
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestInMemoryCache_GetPut(t *testing.T) {
	c := NewInMemoryCache[string](3600, 10) // 1 hour TTL

	if err := c.Put("key1", "value1"); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	val, ok := c.Get("key1")
	if !ok {
		t.Error("Get should return true for existing key")
	}
	if val != "value1" {
		t.Errorf("Get returned %q, want %q", val, "value1")
	}

	// Test missing key
	val, ok = c.Get("nonexistent")
	if ok {
		t.Error("Get should return false for missing key")
	}
	if val != "" {
		t.Errorf("Get should return zero value for missing key, got %q", val)
	}
}

func TestInMemoryCache_TTL(t *testing.T) {
	clock := newFakeClock()
	c := NewInMemoryCache[string](60, 0, WithClock(clock.Now))

	c.Put("key1", "value1")

	clock.Advance(59 * time.Second)
	if _, ok := c.Get("key1"); !ok {
		t.Error("Value should be available before TTL")
	}

	clock.Advance(time.Second)
	if _, ok := c.Get("key1"); ok {
		t.Error("Value should be expired at exactly TTL")
	}
}

func TestInMemoryCache_GetDoesNotEvict(t *testing.T) {
	clock := newFakeClock()
	c := NewInMemoryCache[string](1, 0, WithClock(clock.Now))

	c.Put("key1", "value1")
	clock.Advance(2 * time.Second)

	if _, ok := c.Get("key1"); ok {
		t.Fatal("Expired value should not be returned")
	}
	if c.Len() != 1 {
		t.Errorf("Get must not evict; expected 1 entry, got %d", c.Len())
	}

	expired, evicted := c.Cleanup()
	if expired != 1 || evicted != 0 {
		t.Errorf("Cleanup() = (%d, %d), want (1, 0)", expired, evicted)
	}
	if c.Len() != 0 {
		t.Errorf("Expected empty cache after cleanup, got %d", c.Len())
	}
}

func TestInMemoryCache_NoTTL(t *testing.T) {
	clock := newFakeClock()
	c := NewInMemoryCache[string](0, 0, WithClock(clock.Now))

	c.Put("key1", "value1")
	clock.Advance(365 * 24 * time.Hour)

	if val, ok := c.Get("key1"); !ok || val != "value1" {
		t.Error("Value should never expire without TTL")
	}
	if c.TTL() != 0 {
		t.Errorf("TTL() = %v, want 0", c.TTL())
	}
}

func TestInMemoryCache_SizeBound(t *testing.T) {
	clock := newFakeClock()
	c := NewInMemoryCache[int](3600, 3, WithClock(clock.Now))

	for i := 0; i < 10; i++ {
		c.Put(fmt.Sprintf("k%d", i), i)
		clock.Advance(time.Second)
		if c.Len() > 3 {
			t.Fatalf("Cache grew to %d entries, max 3", c.Len())
		}
	}

	want := []string{"k7", "k8", "k9"}
	if got := c.Keys(); !reflect.DeepEqual(got, want) {
		t.Errorf("Keys() = %v, want %v", got, want)
	}
	if s := c.Stats(); s.Evictions != 7 {
		t.Errorf("Expected 7 evictions, got %d", s.Evictions)
	}
}

func TestInMemoryCache_ExpiredPurgedBeforeEviction(t *testing.T) {
	clock := newFakeClock()
	c := NewInMemoryCache[string](100, 3, WithClock(clock.Now))

	c.Put("stale", "s")
	clock.Advance(50 * time.Second)
	c.Put("fresh1", "a")
	c.Put("fresh2", "b")
	clock.Advance(60 * time.Second) // stale is now 110s old

	c.Put("fresh3", "c")

	want := []string{"fresh1", "fresh2", "fresh3"}
	if got := c.Keys(); !reflect.DeepEqual(got, want) {
		t.Errorf("Keys() = %v, want %v", got, want)
	}
	s := c.Stats()
	if s.Expirations != 1 || s.Evictions != 0 {
		t.Errorf("Expected 1 expiration and 0 evictions, got %+v", s)
	}
}

func TestInMemoryCache_OverwriteRefreshes(t *testing.T) {
	clock := newFakeClock()
	c := NewInMemoryCache[string](10, 2, WithClock(clock.Now))

	c.Put("a", "1")
	clock.Advance(time.Second)
	c.Put("b", "2")
	clock.Advance(time.Second)
	c.Put("a", "3") // a becomes newest
	c.Put("c", "4") // evicts b

	if _, ok := c.Get("b"); ok {
		t.Error("Expected b to be evicted as the oldest entry")
	}
	if val, ok := c.Get("a"); !ok || val != "3" {
		t.Errorf("Get(a) = %q, %v; want 3, true", val, ok)
	}

	clock.Advance(9 * time.Second)
	if _, ok := c.Get("a"); !ok {
		t.Error("Overwrite should refresh the timestamp")
	}
}

func TestInMemoryCache_Clear(t *testing.T) {
	c := NewInMemoryCache[string](3600, 0)

	c.Put("key1", "value1")
	c.Put("key2", "value2")

	if c.Len() != 2 {
		t.Errorf("Expected 2 entries, got %d", c.Len())
	}

	c.Clear()

	if c.Len() != 0 {
		t.Errorf("Expected 0 entries after clear, got %d", c.Len())
	}

	c.Put("key3", "value3")
	if got := c.Keys(); !reflect.DeepEqual(got, []string{"key3"}) {
		t.Errorf("Keys() after clear = %v", got)
	}
}

func TestInMemoryCache_Stats(t *testing.T) {
	c := NewInMemoryCache[string](7200, 50)

	c.Put("k", "v")
	c.Get("k")
	c.Get("k")
	c.Get("missing")

	s := c.Stats()
	if s.Hits != 2 || s.Misses != 1 {
		t.Errorf("Expected 2 hits and 1 miss, got %+v", s)
	}
	if s.Entries != 1 || s.MaxEntries != 50 || s.TTL != 2*time.Hour {
		t.Errorf("Unexpected stats %+v", s)
	}
}

func TestInMemoryCache_Run(t *testing.T) {
	clock := newFakeClock()
	c := NewInMemoryCache[string](1, 0, WithClock(clock.Now))
	c.Put("key1", "value1")
	clock.Advance(5 * time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.Run(ctx, 5*time.Millisecond)
		close(done)
	}()

	deadline := time.Now().Add(time.Second)
	for c.Len() != 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	<-done

	if c.Len() != 0 {
		t.Errorf("Expected janitor to purge expired entry, got %d entries", c.Len())
	}
}

func TestInMemoryCache_Concurrent(t *testing.T) {
	c := NewInMemoryCache[int](3600, 25)
	var wg sync.WaitGroup

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := fmt.Sprintf("key%d", n)
			c.Put(key, n)
			c.Get(key)
			if n%10 == 0 {
				c.Cleanup()
			}
		}(i)
	}

	wg.Wait()

	if c.Len() > 25 {
		t.Errorf("Expected at most 25 entries, got %d", c.Len())
	}
	if len(c.Keys()) != c.Len() {
		t.Errorf("Index and order list disagree: %d keys, %d entries", len(c.Keys()), c.Len())
	}
}
