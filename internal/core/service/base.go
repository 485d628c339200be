// Package service provides the composition point business services embed:
// cache, error pipeline and instrumentation behind absorb-all execution
// semantics.
package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/tankoni/Crulish-sub003/internal/core/cache"
	"github.com/tankoni/Crulish-sub003/internal/core/errs"
	"github.com/tankoni/Crulish-sub003/internal/core/perf"
)

// Base bundles the infrastructure a business service needs. Construct one
// per service with NewBase; the underlying cache, pipeline and tracker are
// shared across services and injected explicitly.
type Base struct {
	name   string
	cache  *cache.Cache
	errors *errs.Pipeline
	perf   *perf.Tracker
	log    *slog.Logger
	flight singleflight.Group
}

// NewBase creates a Base for the named service.
func NewBase(name string, c *cache.Cache, p *errs.Pipeline, t *perf.Tracker) *Base {
	return &Base{
		name:   name,
		cache:  c,
		errors: p,
		perf:   t,
		log:    slog.Default().With("service", name),
	}
}

// Name returns the service name.
func (b *Base) Name() string { return b.name }

// Cache returns the shared cache.
func (b *Base) Cache() *cache.Cache { return b.cache }

// Errors returns the shared error pipeline.
func (b *Base) Errors() *errs.Pipeline { return b.errors }

// Perf returns the shared operation tracker.
func (b *Base) Perf() *perf.Tracker { return b.perf }

// Execute runs fn timed under "service.op", always recording the elapsed
// duration, including time up to a failure or cancellation point. On error
// the failure is routed to the error pipeline with that operation context
// and absence is returned: callers observe presence or absence of a result,
// never the raw failure.
func Execute[T any](ctx context.Context, b *Base, op string, fn func(ctx context.Context) (T, error)) (T, bool) {
	opName := b.opName(op)

	start := time.Now()
	v, err := fn(ctx)
	b.perf.Record(opName, time.Since(start))

	if err != nil {
		b.errors.Handle(ctx, err, opName)
		var zero T
		return zero, false
	}
	return v, true
}

// Do is Execute for operations without a result.
func Do(ctx context.Context, b *Base, op string, fn func(ctx context.Context) error) bool {
	_, ok := Execute(ctx, b, op, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return ok
}

// CachedOrFetch returns the value cached under key, or fetches it with
// provider and stores it before returning. Concurrent callers for the same
// key share a single provider invocation. A cached entry of the wrong type
// is treated as a miss and overwritten by the fetched value; the mismatch
// stays observable in cache statistics. Provider errors propagate to the
// caller; wrap fetch call sites in Execute for absorb semantics.
func CachedOrFetch[T any](ctx context.Context, b *Base, key string, ttl time.Duration, provider func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	v, ok, err := cache.Get[T](b.cache, key)
	if ok {
		return v, nil
	}
	if err != nil {
		b.log.Debug("cached value has wrong type, refetching", "key", key)
	}

	res, err, _ := b.flight.Do(key, func() (any, error) {
		fetched, ferr := provider(ctx)
		if ferr != nil {
			return nil, ferr
		}
		b.cache.SetWithTTL(key, fetched, ttl)
		return fetched, nil
	})
	if err != nil {
		return zero, err
	}

	typed, ok := res.(T)
	if !ok {
		// a concurrent caller fetched a different type under this key
		return zero, cache.ErrWrongType
	}
	return typed, nil
}

// InvalidateCache removes key from the cache.
func (b *Base) InvalidateCache(key string) {
	b.cache.Invalidate(key)
}

// InvalidateCachePrefix removes all cached keys with the given prefix and
// reports how many were removed.
func (b *Base) InvalidateCachePrefix(prefix string) int {
	return b.cache.RemoveByPrefix(prefix)
}

// Key builds a cache key from parts, prefixed with the service name:
// a Base named "article" turns ("detail", "42") into "article:detail:42".
func (b *Base) Key(parts ...string) string {
	return strings.Join(append([]string{b.name}, parts...), ":")
}

func (b *Base) opName(op string) string {
	return b.name + "." + op
}
