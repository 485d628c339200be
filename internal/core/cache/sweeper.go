package cache

import (
	"context"
	"log/slog"
	"time"
)

// Sweeper periodically removes expired entries from a Cache.
type Sweeper struct {
	cache    *Cache
	interval time.Duration
	log      *slog.Logger
}

// NewSweeper creates a Sweeper for the given cache. A non-positive interval
// falls back to DefaultSweepInterval.
func NewSweeper(c *Cache, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &Sweeper{
		cache:    c,
		interval: interval,
		log:      slog.Default().With("component", "cache.sweeper"),
	}
}

// Start runs the sweep loop until ctx is cancelled. It blocks, so run it in
// its own goroutine.
func (s *Sweeper) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Debug("sweeper stopped")
			return
		case <-ticker.C:
			if removed := s.cache.ClearExpired(); removed > 0 {
				s.log.Debug("swept expired entries", "removed", removed, "remaining", s.cache.Len())
			}
		}
	}
}
