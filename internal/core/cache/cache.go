// Package cache provides a concurrency-safe in-memory key/value store with
// per-entry time-to-live expiration and capacity-bounded eviction.
//
// Reads (Get, Len, Statistics) proceed concurrently under a shared lock;
// every mutation (Set, invalidation, eviction, the background sweep) runs
// under the exclusive lock so no caller ever observes a partially evicted
// map. Expired entries are dropped lazily on read and in bulk by the
// Sweeper.
package cache

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"
)

// ErrWrongType is returned by Get when a key holds a value of a different
// type than the one requested. The read still counts as a miss, so hit and
// miss rates stay complementary, but the mismatch is observable both through
// the error and through Statistics.TypeMismatches.
var ErrWrongType = errors.New("cache: stored value has a different type")

// Cache is an expiring key/value store. Values are heterogeneous; typed
// access goes through the package-level Get function. The zero value is not
// usable, construct with New.
type Cache struct {
	mu   sync.RWMutex
	data map[string]*entry
	cfg  config
	ctrs counters
}

// New creates a Cache with the given options.
func New(opts ...Option) *Cache {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Cache{
		data: make(map[string]*entry),
		cfg:  cfg,
	}
}

// Get retrieves the value stored under key as type V. It returns false and
// counts a miss when the key is unknown or expired; expired entries are
// removed on the way out. A stored value of the wrong type additionally
// returns ErrWrongType. On a hit the entry's last-access time is refreshed.
func Get[V any](c *Cache, key string) (V, bool, error) {
	var zero V

	c.mu.RLock()
	ent, ok := c.data[key]
	if !ok {
		c.mu.RUnlock()
		c.miss(key)
		return zero, false, nil
	}

	now := c.cfg.clock.Now()
	if ent.expired(now) {
		c.mu.RUnlock()
		c.removeIfExpired(key)
		c.miss(key)
		return zero, false, nil
	}

	v, ok := ent.value.(V)
	if !ok {
		c.mu.RUnlock()
		c.ctrs.mismatches.Add(1)
		c.miss(key)
		return zero, false, ErrWrongType
	}

	ent.touch(now)
	c.mu.RUnlock()
	c.hit(key)
	return v, true, nil
}

// Set stores value under key with the configured default TTL, evicting the
// least-recently-accessed entries first when the cache is at capacity.
func (c *Cache) Set(key string, value any) {
	c.SetWithTTL(key, value, 0)
}

// SetWithTTL stores value under key. A ttl of zero or less falls back to the
// configured default. If the cache is at or above capacity the oldest
// max(1, capacity/5) entries by last access are evicted before insertion,
// so the size never exceeds capacity once Set returns.
func (c *Cache) SetWithTTL(key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.cfg.defaultTTL
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Degenerate no-cache mode: with zero capacity nothing is ever stored.
	if c.cfg.capacity <= 0 {
		return
	}

	if len(c.data) >= c.cfg.capacity {
		c.evictOldest(max(1, c.cfg.capacity/5))
	}
	c.data[key] = newEntry(value, c.cfg.clock.Now(), ttl)
}

// Invalidate removes the entry stored under key, if any.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	delete(c.data, key)
	c.mu.Unlock()
}

// InvalidateAll removes every entry. Hit/miss counters are kept.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	c.data = make(map[string]*entry)
	c.mu.Unlock()
}

// Clear removes every entry and resets all counters.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.data = make(map[string]*entry)
	c.ctrs.reset()
	c.mu.Unlock()
}

// ClearExpired removes exactly the entries whose expiration is before the
// current time and reports how many were removed. Live entries, including
// their last-access times, are untouched.
func (c *Cache) ClearExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.removeExpired(c.cfg.clock.Now())
}

// RemoveByPrefix removes all entries whose key starts with prefix and
// reports how many were removed.
func (c *Cache) RemoveByPrefix(prefix string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key := range c.data {
		if strings.HasPrefix(key, prefix) {
			delete(c.data, key)
			removed++
		}
	}
	return removed
}

// Shrink evicts least-recently-accessed entries until the cache holds at
// most half its capacity, reporting how many were evicted.
func (c *Cache) Shrink() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.shrinkTo(c.cfg.capacity / 2)
}

// ReleaseMemory is the memory-pressure response: it removes expired entries
// first and, if occupancy still exceeds half the capacity, shrinks to a
// quarter of capacity by evicting the least-recently-accessed entries. The
// whole sequence runs in one exclusive section, so a pressure signal
// arriving during a sweep coalesces with it instead of interleaving.
func (c *Cache) ReleaseMemory() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := c.removeExpired(c.cfg.clock.Now())
	if len(c.data) > c.cfg.capacity/2 {
		removed += c.shrinkTo(c.cfg.capacity / 4)
	}
	return removed
}

// Len returns the number of entries currently stored. It may include
// expired entries the sweeper has not removed yet.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}

// Capacity returns the configured maximum number of entries.
func (c *Cache) Capacity() int {
	return c.cfg.capacity
}

// Statistics returns a snapshot of the cache counters and occupancy. The
// Expired count is derived on demand and reflects entries currently past
// their expiration that have not been removed yet.
func (c *Cache) Statistics() Statistics {
	c.mu.RLock()
	defer c.mu.RUnlock()

	now := c.cfg.clock.Now()
	expired := 0
	for _, ent := range c.data {
		if ent.expired(now) {
			expired++
		}
	}

	return Statistics{
		Hits:           c.ctrs.hits.Load(),
		Misses:         c.ctrs.misses.Load(),
		TypeMismatches: c.ctrs.mismatches.Load(),
		Evictions:      c.ctrs.evictions.Load(),
		Items:          len(c.data),
		Expired:        expired,
		Capacity:       c.cfg.capacity,
	}
}

func (c *Cache) hit(key string) {
	c.ctrs.hits.Add(1)
	if c.cfg.onHit != nil {
		c.cfg.onHit(key)
	}
}

func (c *Cache) miss(key string) {
	c.ctrs.misses.Add(1)
	if c.cfg.onMiss != nil {
		c.cfg.onMiss(key)
	}
}

// removeIfExpired drops key under the write lock, re-checking expiry in case
// a concurrent Set replaced the entry after the read lock was released.
func (c *Cache) removeIfExpired(key string) {
	c.mu.Lock()
	if ent, ok := c.data[key]; ok && ent.expired(c.cfg.clock.Now()) {
		delete(c.data, key)
	}
	c.mu.Unlock()
}

// evictOldest removes up to n entries ranked by ascending last-access time.
// Caller must hold the write lock.
func (c *Cache) evictOldest(n int) int {
	if n <= 0 || len(c.data) == 0 {
		return 0
	}

	type aged struct {
		key    string
		access int64
	}
	ranked := make([]aged, 0, len(c.data))
	for key, ent := range c.data {
		ranked = append(ranked, aged{key: key, access: ent.lastAccess.Load()})
	}
	sort.Slice(ranked, func(i, j int) bool {
		return ranked[i].access < ranked[j].access
	})

	if n > len(ranked) {
		n = len(ranked)
	}
	for _, victim := range ranked[:n] {
		delete(c.data, victim.key)
		c.ctrs.evictions.Add(1)
		if c.cfg.onEvict != nil {
			c.cfg.onEvict(victim.key)
		}
	}
	return n
}

// removeExpired drops every entry expired at now. Caller must hold the
// write lock.
func (c *Cache) removeExpired(now time.Time) int {
	removed := 0
	for key, ent := range c.data {
		if ent.expired(now) {
			delete(c.data, key)
			removed++
		}
	}
	return removed
}

// shrinkTo evicts least-recently-accessed entries until at most target
// remain. Caller must hold the write lock.
func (c *Cache) shrinkTo(target int) int {
	if target < 0 {
		target = 0
	}
	if len(c.data) <= target {
		return 0
	}
	return c.evictOldest(len(c.data) - target)
}
