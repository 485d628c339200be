package cache

import (
	"sync/atomic"
	"time"
)

// entry is a single cached value. The value and expiry never change after
// creation (Set replaces the whole entry), so readers only need the map lock
// to reach it. Last-access time is atomic so hits can refresh it while
// holding the read lock.
type entry struct {
	value      any
	expiresAt  time.Time
	lastAccess atomic.Int64 // unix nanos
}

func newEntry(value any, now time.Time, ttl time.Duration) *entry {
	e := &entry{
		value:     value,
		expiresAt: now.Add(ttl),
	}
	e.lastAccess.Store(now.UnixNano())
	return e
}

func (e *entry) expired(now time.Time) bool {
	return now.After(e.expiresAt)
}

func (e *entry) touch(now time.Time) {
	e.lastAccess.Store(now.UnixNano())
}
