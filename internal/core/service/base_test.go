package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tankoni/Crulish-sub003/internal/core/cache"
	"github.com/tankoni/Crulish-sub003/internal/core/errs"
	"github.com/tankoni/Crulish-sub003/internal/core/perf"
)

func newTestBase(name string) *Base {
	return NewBase(
		name,
		cache.New(),
		errs.NewPipeline(errs.Config{ThrottleInterval: time.Nanosecond}, nil),
		perf.NewTracker(),
	)
}

func TestExecuteSuccess(t *testing.T) {
	b := newTestBase("article")

	v, ok := Execute(context.Background(), b, "fetch", func(ctx context.Context) (string, error) {
		return "content", nil
	})

	if !ok || v != "content" {
		t.Fatalf("got (%q, %v), want (content, true)", v, ok)
	}

	stats, tracked := b.Perf().Snapshot().Operations["article.fetch"]
	if !tracked || stats.Calls != 1 {
		t.Errorf("operation should be recorded once, got %+v", stats)
	}
	if b.Errors().Statistics().Total != 0 {
		t.Error("success should not touch the error pipeline")
	}
}

func TestExecuteAbsorbsFailure(t *testing.T) {
	b := newTestBase("article")

	v, ok := Execute(context.Background(), b, "fetch", func(ctx context.Context) (string, error) {
		return "", errs.New(errs.KindStorage, "disk full")
	})

	if ok || v != "" {
		t.Fatalf("failure should return absent, got (%q, %v)", v, ok)
	}

	recs := b.Errors().History(1)
	if len(recs) != 1 {
		t.Fatal("failure should reach the pipeline")
	}
	if recs[0].Context != "article.fetch" {
		t.Errorf("record context = %q, want article.fetch", recs[0].Context)
	}

	stats := b.Perf().Snapshot().Operations["article.fetch"]
	if stats.Calls != 1 {
		t.Error("duration should be recorded even on failure")
	}
}

func TestExecuteCancellationClassified(t *testing.T) {
	b := newTestBase("doc")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, ok := Execute(ctx, b, "convert", func(ctx context.Context) (int, error) {
		return 0, ctx.Err()
	})

	if ok {
		t.Fatal("cancelled operation should return absent")
	}
	recs := b.Errors().History(1)
	if len(recs) != 1 || recs[0].Kind != errs.KindCancelled {
		t.Errorf("cancellation should classify as cancelled, got %+v", recs)
	}
	if b.Perf().Snapshot().Operations["doc.convert"].Calls != 1 {
		t.Error("duration up to the cancellation point should be recorded")
	}
}

func TestDo(t *testing.T) {
	b := newTestBase("progress")

	if !Do(context.Background(), b, "sync", func(ctx context.Context) error { return nil }) {
		t.Error("successful Do should return true")
	}
	if Do(context.Background(), b, "sync", func(ctx context.Context) error { return errors.New("boom") }) {
		t.Error("failed Do should return false")
	}
}

func TestCachedOrFetchStoresAndReuses(t *testing.T) {
	b := newTestBase("dict")

	calls := 0
	provider := func(ctx context.Context) (int, error) {
		calls++
		return 7, nil
	}

	v, err := CachedOrFetch(context.Background(), b, b.Key("word", "go"), time.Minute, provider)
	if err != nil || v != 7 {
		t.Fatalf("got (%d, %v), want (7, nil)", v, err)
	}

	v, err = CachedOrFetch(context.Background(), b, b.Key("word", "go"), time.Minute, provider)
	if err != nil || v != 7 {
		t.Fatalf("second call got (%d, %v), want (7, nil)", v, err)
	}
	if calls != 1 {
		t.Errorf("provider calls = %d, want 1 (second call served from cache)", calls)
	}
	if hits := b.Cache().Statistics().Hits; hits != 1 {
		t.Errorf("cache hits = %d, want 1", hits)
	}
}

func TestCachedOrFetchPropagatesProviderError(t *testing.T) {
	b := newTestBase("dict")

	boom := errors.New("upstream down")
	_, err := CachedOrFetch(context.Background(), b, "k", time.Minute, func(ctx context.Context) (int, error) {
		return 0, boom
	})

	if !errors.Is(err, boom) {
		t.Fatalf("provider error should propagate, got %v", err)
	}
	if b.Cache().Len() != 0 {
		t.Error("failed fetches should not cache anything")
	}
}

func TestCachedOrFetchSelfHealsWrongType(t *testing.T) {
	b := newTestBase("dict")

	b.Cache().Set("k", "a string")

	calls := 0
	v, err := CachedOrFetch(context.Background(), b, "k", time.Minute, func(ctx context.Context) (int, error) {
		calls++
		return 42, nil
	})

	if err != nil || v != 42 {
		t.Fatalf("got (%d, %v), want (42, nil)", v, err)
	}
	if calls != 1 {
		t.Error("wrong-typed entry should trigger a refetch")
	}

	healed, ok, err := cache.Get[int](b.Cache(), "k")
	if err != nil || !ok || healed != 42 {
		t.Errorf("entry should be overwritten with the fetched value, got (%d, %v, %v)", healed, ok, err)
	}
	if b.Cache().Statistics().TypeMismatches != 1 {
		t.Error("the mismatch should stay observable in cache statistics")
	}
}

func TestCachedOrFetchSingleflight(t *testing.T) {
	b := newTestBase("article")

	var calls atomic.Int32
	proceed := make(chan struct{})
	provider := func(ctx context.Context) (int, error) {
		calls.Add(1)
		<-proceed
		return 42, nil
	}

	var wg sync.WaitGroup
	results := make([]int, 3)
	fetchErrs := make([]error, 3)
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			results[idx], fetchErrs[idx] = CachedOrFetch(context.Background(), b, "hot", time.Minute, provider)
		}(i)
	}

	// give goroutines time to coalesce on the same in-flight fetch
	time.Sleep(10 * time.Millisecond)
	close(proceed)
	wg.Wait()

	if got := calls.Load(); got != 1 {
		t.Errorf("provider calls = %d, want 1 (singleflight)", got)
	}
	for i := 0; i < 3; i++ {
		if fetchErrs[i] != nil || results[i] != 42 {
			t.Errorf("goroutine %d got (%d, %v), want (42, nil)", i, results[i], fetchErrs[i])
		}
	}
}

func TestInvalidateProxies(t *testing.T) {
	b := newTestBase("article")

	b.Cache().Set(b.Key("detail", "1"), 1)
	b.Cache().Set(b.Key("detail", "2"), 2)
	b.Cache().Set(b.Key("list"), []int{1, 2})

	b.InvalidateCache(b.Key("list"))
	if _, ok, _ := cache.Get[[]int](b.Cache(), b.Key("list")); ok {
		t.Error("InvalidateCache should remove the key")
	}

	if removed := b.InvalidateCachePrefix(b.Key("detail")); removed != 2 {
		t.Errorf("removed = %d, want 2", removed)
	}
	if b.Cache().Len() != 0 {
		t.Error("prefix invalidation should remove both detail keys")
	}
}

func TestKey(t *testing.T) {
	b := newTestBase("article")

	if got := b.Key("detail", "42"); got != "article:detail:42" {
		t.Errorf("key = %q, want article:detail:42", got)
	}
	if got := b.Key(); got != "article" {
		t.Errorf("bare key = %q, want article", got)
	}
}
