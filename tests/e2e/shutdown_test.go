package e2e

import (
	"context"
	"testing"
	"time"

	"github.com/tankoni/Crulish-sub003/internal/control"
	"github.com/tankoni/Crulish-sub003/internal/core/config"
	"github.com/tankoni/Crulish-sub003/internal/infra/pressure"
)

func TestGracefulShutdown(t *testing.T) {
	// No external infrastructure; enough config to start every worker.
	cfg := control.Config{
		Port: 0,
		Cache: config.CacheConfig{
			Capacity:      10,
			DefaultTTL:    time.Minute,
			SweepInterval: 50 * time.Millisecond,
		},
		Errors: config.ErrorsConfig{
			HistoryCapacity:  10,
			ThrottleInterval: time.Second,
		},
		Pressure: pressure.Config{
			Enabled:        true,
			Interval:       50 * time.Millisecond,
			HighWaterBytes: 1 << 40,
		},
	}

	app, err := control.NewApp(cfg)
	if err != nil {
		t.Fatalf("Failed to create app: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	if err := app.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	// The sweeper collects an expired entry while the app runs.
	app.Cache().SetWithTTL("ephemeral", 1, 20*time.Millisecond)
	time.Sleep(200 * time.Millisecond)
	if got := app.Cache().Len(); got != 0 {
		t.Errorf("Expected the sweeper to clear the cache, %d entries left", got)
	}

	cancel()

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer stopCancel()

	if err := app.Stop(stopCtx); err != nil {
		t.Errorf("Stop failed: %v", err)
	}
}
