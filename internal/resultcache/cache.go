// Package resultcache holds previously computed translation and coaching
// results so repeated or near-duplicate inputs never re-trigger paid calls.
package resultcache

import (
	"sort"
	"sync"
	"time"
)

const (
	// DefaultTTL is how long a result stays servable.
	DefaultTTL = 45 * time.Second
	// DefaultMaxEntries is the hard cap on stored results. Oldest entries
	// are evicted first once the cap is exceeded.
	DefaultMaxEntries = 300
)

type entry struct {
	value string
	ts    time.Time
}

// Cache maps a normalized request fingerprint to a previously computed
// result. Translation and coaching entries share the same storage and
// eviction policy, partitioned only by key prefix.
//
// Eviction runs before every lookup: expired entries are purged, then if the
// cache still exceeds its cap the oldest-by-timestamp entries are dropped.
type Cache struct {
	ttl time.Duration
	max int
	now func() time.Time

	mu      sync.Mutex
	entries map[string]entry
}

// Option configures a Cache.
type Option func(*Cache)

// WithTTL overrides the entry TTL.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithMaxEntries overrides the entry cap.
func WithMaxEntries(max int) Option {
	return func(c *Cache) {
		if max > 0 {
			c.max = max
		}
	}
}

// WithNowFunc replaces the clock. Intended for tests.
func WithNowFunc(now func() time.Time) Option {
	return func(c *Cache) {
		c.now = now
	}
}

// New creates a result cache with the default TTL and cap.
func New(opts ...Option) *Cache {
	c := &Cache{
		ttl:     DefaultTTL,
		max:     DefaultMaxEntries,
		now:     time.Now,
		entries: make(map[string]entry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached value for key if present and fresh.
func (c *Cache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.evictLocked(c.now())
	e, ok := c.entries[key]
	if !ok {
		return "", false
	}
	return e.value, true
}

// Put stores value under key, stamped with the current time.
func (c *Cache) Put(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.entries[key] = entry{value: value, ts: now}
	c.evictLocked(now)
}

// Len returns the number of live entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.evictLocked(c.now())
	return len(c.entries)
}

// Sweep purges expired entries and enforces the cap. The per-request
// eviction already keeps the cache bounded; Sweep exists for the scheduled
// maintenance pass so an idle session does not pin stale results in memory.
func (c *Cache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	before := len(c.entries)
	c.evictLocked(c.now())
	return before - len(c.entries)
}

// evictLocked purges expired entries, then drops oldest entries while over
// the cap. Must be called with c.mu held.
func (c *Cache) evictLocked(now time.Time) {
	cutoff := now.Add(-c.ttl)
	for key, e := range c.entries {
		if e.ts.Before(cutoff) {
			delete(c.entries, key)
		}
	}

	if len(c.entries) <= c.max {
		return
	}

	type keyed struct {
		key string
		ts  time.Time
	}
	ordered := make([]keyed, 0, len(c.entries))
	for key, e := range c.entries {
		ordered = append(ordered, keyed{key: key, ts: e.ts})
	}
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].ts.Before(ordered[j].ts)
	})

	for _, item := range ordered[:len(c.entries)-c.max] {
		delete(c.entries, item.key)
	}
}
