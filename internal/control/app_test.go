package control

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tankoni/Crulish-sub003/internal/core/cache"
	"github.com/tankoni/Crulish-sub003/internal/core/config"
	"github.com/tankoni/Crulish-sub003/internal/core/errs"
	"github.com/tankoni/Crulish-sub003/internal/infra/metrics"
)

func testConfig() Config {
	return Config{
		Port: 0,
		Cache: config.CacheConfig{
			Capacity:      10,
			DefaultTTL:    time.Minute,
			SweepInterval: time.Minute,
		},
		Errors: config.ErrorsConfig{
			HistoryCapacity:  10,
			ThrottleInterval: 5 * time.Second,
		},
	}
}

func newTestApp(t *testing.T) *App {
	t.Helper()
	app, err := NewApp(testConfig())
	if err != nil {
		t.Fatalf("NewApp failed: %v", err)
	}
	return app
}

func TestNewApp_InitializesComponents(t *testing.T) {
	app := newTestApp(t)

	if app.Cache() == nil || app.Errors() == nil || app.Perf() == nil {
		t.Fatal("expected all components to be initialized")
	}
	if app.Cache().Capacity() != 10 {
		t.Errorf("expected capacity 10, got %d", app.Cache().Capacity())
	}
}

func TestApp_CacheMetricHooks(t *testing.T) {
	app := newTestApp(t)

	hitsBefore := testutil.ToFloat64(metrics.CacheHits)
	missesBefore := testutil.ToFloat64(metrics.CacheMisses)

	app.Cache().Set("k", 1)
	if _, ok, _ := cache.Get[int](app.Cache(), "k"); !ok {
		t.Fatal("expected a hit")
	}
	if _, ok, _ := cache.Get[int](app.Cache(), "absent"); ok {
		t.Fatal("expected a miss")
	}

	if got := testutil.ToFloat64(metrics.CacheHits) - hitsBefore; got != 1 {
		t.Errorf("expected hit counter +1, got %v", got)
	}
	if got := testutil.ToFloat64(metrics.CacheMisses) - missesBefore; got != 1 {
		t.Errorf("expected miss counter +1, got %v", got)
	}
}

func TestApp_ErrorMetricHooks(t *testing.T) {
	app := newTestApp(t)

	total := metrics.ErrorsTotal.WithLabelValues("network", "warning")
	failures := metrics.OperationFailures.WithLabelValues("feed.pull")
	throttled := metrics.ErrorsThrottled.WithLabelValues("network")

	totalBefore := testutil.ToFloat64(total)
	failuresBefore := testutil.ToFloat64(failures)
	throttledBefore := testutil.ToFloat64(throttled)

	app.Errors().Handle(context.Background(), errs.New(errs.KindNetwork, "connection reset"), "feed.pull")
	// Same kind inside the throttle interval.
	app.Errors().Handle(context.Background(), errs.New(errs.KindNetwork, "connection reset"), "feed.pull")

	if got := testutil.ToFloat64(total) - totalBefore; got != 1 {
		t.Errorf("expected error counter +1, got %v", got)
	}
	if got := testutil.ToFloat64(failures) - failuresBefore; got != 1 {
		t.Errorf("expected failure counter +1, got %v", got)
	}
	if got := testutil.ToFloat64(throttled) - throttledBefore; got != 1 {
		t.Errorf("expected throttled counter +1, got %v", got)
	}
}

func TestApp_RecoveryMetricHook(t *testing.T) {
	app := newTestApp(t)
	app.Errors().RegisterStrategy(errs.KindTimeout, errs.StrategyFunc(func(context.Context, error) error {
		return nil
	}))

	recoveries := metrics.ErrorRecoveries.WithLabelValues("timeout", "success")
	before := testutil.ToFloat64(recoveries)

	app.Errors().Handle(context.Background(), errs.New(errs.KindTimeout, "deadline exceeded"), "feed.pull")

	if got := testutil.ToFloat64(recoveries) - before; got != 1 {
		t.Errorf("expected recovery counter +1, got %v", got)
	}
	if app.Errors().IsShowingError() {
		t.Error("recovered error should not be surfaced")
	}
}

func TestApp_OperationDurationHook(t *testing.T) {
	app := newTestApp(t)

	app.Perf().Record("article.fetch", 25*time.Millisecond)

	if got := testutil.CollectAndCount(metrics.OperationDuration); got < 1 {
		t.Errorf("expected at least one duration series, got %d", got)
	}
}

func TestApp_StartStop(t *testing.T) {
	app := newTestApp(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := app.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	time.Sleep(50 * time.Millisecond)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer stopCancel()
	if err := app.Stop(stopCtx); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
}
