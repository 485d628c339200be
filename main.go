package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tankoni/Crulish-sub003/internal/core/cache"
	"github.com/tankoni/Crulish-sub003/internal/core/errs"
	"github.com/tankoni/Crulish-sub003/internal/core/perf"
	"github.com/tankoni/Crulish-sub003/internal/core/service"
)

func main() {
	ctx := context.Background()

	// 1. Build the shared runtime
	c := cache.New(cache.WithCapacity(50), cache.WithDefaultTTL(30*time.Second))
	pipe := errs.NewPipeline(errs.DefaultConfig(), nil)
	tracker := perf.NewTracker()

	// 2. Register a recovery strategy for transient network failures
	attempt := 0
	pipe.RegisterStrategy(errs.KindNetwork, &errs.BackoffStrategy{
		Base:    50 * time.Millisecond,
		Retries: 2,
		Op: func(ctx context.Context, err error) error {
			attempt++
			if attempt < 2 {
				return err
			}
			fmt.Println("🔁 network recovery succeeded")
			return nil
		},
	})

	// 3. Compose a service on top of the runtime
	articles := service.NewBase("articles", c, pipe, tracker)

	// 4. Fetch through the cache; repeat calls are served without the provider
	for i := 0; i < 3; i++ {
		v, err := service.CachedOrFetch(ctx, articles, articles.Key("detail", "42"), 0,
			func(ctx context.Context) (string, error) {
				time.Sleep(20 * time.Millisecond)
				return "the riddle of the crul", nil
			})
		if err != nil {
			fmt.Printf("fetch %d failed: %v\n", i+1, err)
			continue
		}
		fmt.Printf("fetch %d: %s\n", i+1, v)
	}

	// 5. Run operations whose failures flow through the pipeline
	service.Do(ctx, articles, "publish", func(ctx context.Context) error {
		return errs.New(errs.KindValidation, "empty title")
	})
	service.Do(ctx, articles, "sync", func(ctx context.Context) error {
		return errors.New("connection refused")
	})

	// 6. Show what the runtime observed
	stats := c.Statistics()
	fmt.Printf("\ncache: %d items, hit rate %.0f%%\n", stats.Items, stats.HitRate()*100)

	snap := tracker.Snapshot()
	for name, op := range snap.Operations {
		fmt.Printf("operation %s: %d calls, avg %s\n", name, op.Calls, op.Average)
	}

	if rec, ok := pipe.CurrentError(); ok {
		fmt.Printf("showing error: [%s] %s\n", rec.Kind, rec.Message)
	}

	// 7. Print the error report
	fmt.Println()
	fmt.Println(pipe.ExportReport().String())
}
