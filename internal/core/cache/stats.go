package cache

import "sync/atomic"

// counters holds the hot-path counters using atomics so reads sharing the
// RLock can update them without taking the write lock.
type counters struct {
	hits       atomic.Int64
	misses     atomic.Int64
	mismatches atomic.Int64
	evictions  atomic.Int64
}

func (c *counters) reset() {
	c.hits.Store(0)
	c.misses.Store(0)
	c.mismatches.Store(0)
	c.evictions.Store(0)
}

// Statistics is a point-in-time snapshot of cache counters and occupancy.
type Statistics struct {
	Hits           int64 `json:"hits"`
	Misses         int64 `json:"misses"`
	TypeMismatches int64 `json:"type_mismatches"`
	Evictions      int64 `json:"evictions"`
	Items          int   `json:"items"`
	Expired        int   `json:"expired"`
	Capacity       int   `json:"capacity"`
}

// HitRate returns the fraction of requests served from the cache, between 0
// and 1. Returns 0 if there have been no requests.
func (s Statistics) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// MissRate returns the fraction of requests not served from the cache.
// HitRate and MissRate sum to 1 whenever any request has occurred.
func (s Statistics) MissRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Misses) / float64(total)
}
