package cache

import "time"

const (
	// DefaultCapacity is the default maximum number of entries.
	DefaultCapacity = 100

	// DefaultTTL is the default time-to-live applied when Set is called
	// without an explicit TTL.
	DefaultTTL = 5 * time.Minute

	// DefaultSweepInterval is how often the background Sweeper removes
	// expired entries.
	DefaultSweepInterval = time.Minute
)

type config struct {
	capacity   int
	defaultTTL time.Duration
	clock      Clock
	onHit      func(key string)
	onMiss     func(key string)
	onEvict    func(key string)
}

func defaultConfig() config {
	return config{
		capacity:   DefaultCapacity,
		defaultTTL: DefaultTTL,
		clock:      realClock{},
	}
}

// Option configures a Cache.
type Option func(*config)

// WithCapacity sets the maximum number of entries. Zero is a valid
// configuration: every Set becomes a no-op and the cache stays empty.
func WithCapacity(n int) Option {
	return func(c *config) {
		if n >= 0 {
			c.capacity = n
		}
	}
}

// WithDefaultTTL sets the time-to-live used when Set is called without an
// explicit TTL.
func WithDefaultTTL(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.defaultTTL = d
		}
	}
}

// WithClock sets a custom clock for time operations.
// Useful for testing TTL behavior.
func WithClock(clk Clock) Option {
	return func(c *config) {
		if clk != nil {
			c.clock = clk
		}
	}
}

// OnHit sets a callback invoked on cache hits.
func OnHit(fn func(key string)) Option {
	return func(c *config) {
		c.onHit = fn
	}
}

// OnMiss sets a callback invoked on cache misses, including expired and
// type-mismatched reads.
func OnMiss(fn func(key string)) Option {
	return func(c *config) {
		c.onMiss = fn
	}
}

// OnEvict sets a callback invoked when an entry is removed to reclaim space
// (capacity eviction, Shrink, ReleaseMemory). Expiry and explicit
// invalidation do not trigger it.
func OnEvict(fn func(key string)) Option {
	return func(c *config) {
		c.onEvict = fn
	}
}
