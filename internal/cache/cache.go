package cache

import (
	"strconv"
	"sync"
	"time"
)

// Cache is a concurrency-safe in-memory TTL cache. Expiry is computed at
// write time and checked lazily at read time; an expired entry is removed by
// the read that discovers it. There is no background sweep and no size bound
// beyond TTL eviction.
type Cache struct {
	mu      sync.Mutex
	entries map[string]entry

	hits   int64
	misses int64

	// now is swappable for tests.
	now func() time.Time
}

type entry struct {
	value     any
	expiresAt time.Time // zero means no expiry
}

// Stats carries cache counters for the health endpoint.
type Stats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
	Keys   int   `json:"keys"`
}

// New creates an empty cache using the wall clock.
func New() *Cache {
	return NewWithClock(time.Now)
}

// NewWithClock creates a cache with an injectable time source.
func NewWithClock(now func() time.Time) *Cache {
	return &Cache{
		entries: make(map[string]entry),
		now:     now,
	}
}

// Get returns the value stored under key, or false when the key is absent or
// its entry has expired. A stale entry is deleted on the lookup that finds it.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		c.misses++
		return nil, false
	}
	if c.expired(e) {
		delete(c.entries, key)
		c.misses++
		return nil, false
	}
	c.hits++
	return e.value, true
}

// Set stores value under key for the given TTL. A ttl <= 0 stores the entry
// without expiry.
func (c *Cache) Set(key string, value any, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := entry{value: value}
	if ttl > 0 {
		e.expiresAt = c.now().Add(ttl)
	}
	c.entries[key] = e
}

// Incr atomically increments the integer counter stored under key and returns
// the new value. A missing or expired key starts from zero and, like the
// Redis INCR it mirrors, carries no expiry until Expire is called.
func (c *Cache) Incr(key string) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok || c.expired(e) {
		c.entries[key] = entry{value: int64(1)}
		return 1
	}
	n := asInt64(e.value) + 1
	e.value = n
	c.entries[key] = e
	return n
}

// Expire sets the TTL of an existing key. It reports whether the key existed.
func (c *Cache) Expire(key string, ttl time.Duration) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok || c.expired(e) {
		delete(c.entries, key)
		return false
	}
	e.expiresAt = c.now().Add(ttl)
	c.entries[key] = e
	return true
}

// TTL returns the remaining lifetime of a key, -1 when the key has no expiry
// and -2 when the key does not exist.
func (c *Cache) TTL(key string) time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok || c.expired(e) {
		delete(c.entries, key)
		return -2
	}
	if e.expiresAt.IsZero() {
		return -1
	}
	return e.expiresAt.Sub(c.now())
}

// Delete removes a key.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Clear drops all entries. Counters are kept.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
}

// Stats returns hit/miss counters and the number of live keys. Expired but
// not yet collected entries are excluded from the key count.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := 0
	for _, e := range c.entries {
		if !c.expired(e) {
			keys++
		}
	}
	return Stats{Hits: c.hits, Misses: c.misses, Keys: keys}
}

func (c *Cache) expired(e entry) bool {
	return !e.expiresAt.IsZero() && !e.expiresAt.After(c.now())
}

func asInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case string:
		parsed, err := strconv.ParseInt(n, 10, 64)
		if err == nil {
			return parsed
		}
	}
	return 0
}
