// Package control wires the service internals together and manages their
// lifecycle.
package control

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/pressly/goose/v3"
	"golang.org/x/sync/errgroup"

	"github.com/tankoni/Crulish-sub003/internal/core/cache"
	"github.com/tankoni/Crulish-sub003/internal/core/config"
	"github.com/tankoni/Crulish-sub003/internal/core/errs"
	"github.com/tankoni/Crulish-sub003/internal/core/perf"
	"github.com/tankoni/Crulish-sub003/internal/infra/metrics"
	"github.com/tankoni/Crulish-sub003/internal/infra/ops"
	"github.com/tankoni/Crulish-sub003/internal/infra/pressure"
	"github.com/tankoni/Crulish-sub003/internal/infra/telemetry"
)

// gaugeInterval is how often the cache occupancy gauge is refreshed.
const gaugeInterval = 10 * time.Second

// Config holds the application configuration.
type Config struct {
	Port      int
	Cache     config.CacheConfig
	Errors    config.ErrorsConfig
	Telemetry telemetry.Config
	Pressure  pressure.Config
}

// App is the main application struct that owns the shared service internals.
type App struct {
	cfg       Config
	cache     *cache.Cache
	sweeper   *cache.Sweeper
	errors    *errs.Pipeline
	perf      *perf.Tracker
	opsServer *ops.Server
	pressure  *pressure.Monitor
	reporter  *telemetry.MultiReporter
	log       *slog.Logger

	workers *errgroup.Group
	cancel  context.CancelFunc
}

// NewApp creates a new App instance with all dependencies initialized.
func NewApp(cfg Config) (*App, error) {

	// 1. Initialize error report sinks
	sinks := []errs.Reporter{telemetry.NewLogReporter()}

	if cfg.Telemetry.Database.URL != "" {
		pg, err := telemetry.NewPostgresReporter(context.Background(), cfg.Telemetry.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to init postgres reporter: %w", err)
		}

		// Run migrations
		// Note: Goose needs direct *sql.DB which sqlx.DB wraps
		if err := goose.SetDialect("postgres"); err != nil {
			return nil, err
		}
		if err := goose.Up(pg.DB().DB, "migrations"); err != nil {
			return nil, fmt.Errorf("failed to migrate db: %w", err)
		}

		sinks = append(sinks, pg)
		slog.Info("Persisting error reports to PostgreSQL")
	}

	if cfg.Telemetry.Redis.URL != "" {
		rr, err := telemetry.NewRedisReporter(cfg.Telemetry.Redis)
		if err != nil {
			slog.Warn("Failed to connect to Redis, stream reporting disabled", "error", err)
		} else {
			sinks = append(sinks, rr)
			slog.Info("Publishing error reports to Redis stream", "stream", cfg.Telemetry.Redis.Stream)
		}
	}

	reporter := telemetry.NewMultiReporter(sinks...)

	// 2. Initialize core components
	c := cache.New(
		cache.WithCapacity(cfg.Cache.Capacity),
		cache.WithDefaultTTL(cfg.Cache.DefaultTTL),
		cache.OnHit(func(string) { metrics.CacheHits.Inc() }),
		cache.OnMiss(func(string) { metrics.CacheMisses.Inc() }),
		cache.OnEvict(func(string) { metrics.CacheEvictions.Inc() }),
	)
	sweeper := cache.NewSweeper(c, cfg.Cache.SweepInterval)

	pipe := errs.NewPipeline(errs.Config{
		HistoryCapacity:   cfg.Errors.HistoryCapacity,
		ThrottleInterval:  cfg.Errors.ThrottleInterval,
		ThrottleMaxEvents: cfg.Errors.ThrottleMaxEvents,
		ThrottleWindow:    cfg.Errors.ThrottleWindow,
	}, reporter)

	tracker := perf.NewTracker()

	// 3. Export component counters to Prometheus
	pipe.SetAcceptedCallback(func(rec errs.Record) {
		metrics.ErrorsTotal.WithLabelValues(string(rec.Kind), rec.Severity.String()).Inc()
		if rec.Context != "" {
			metrics.OperationFailures.WithLabelValues(rec.Context).Inc()
		}
	})
	pipe.SetThrottledCallback(func(kind errs.Kind) {
		metrics.ErrorsThrottled.WithLabelValues(string(kind)).Inc()
	})
	pipe.SetRecoveryCallback(func(kind errs.Kind, recovered bool) {
		outcome := "failure"
		if recovered {
			outcome = "success"
		}
		metrics.ErrorRecoveries.WithLabelValues(string(kind), outcome).Inc()
	})
	tracker.SetRecordCallback(func(op string, d time.Duration) {
		metrics.OperationDuration.WithLabelValues(op).Observe(d.Seconds())
	})

	// 4. Initialize operational surface
	opsMon := ops.NewMonitor(c, pipe, tracker)
	opsServer := ops.NewServer(opsMon, cfg.Port)
	pressureMon := pressure.NewMonitor(cfg.Pressure, c)

	return &App{
		cfg:       cfg,
		cache:     c,
		sweeper:   sweeper,
		errors:    pipe,
		perf:      tracker,
		opsServer: opsServer,
		pressure:  pressureMon,
		reporter:  reporter,
		log:       slog.Default(),
	}, nil
}

// Cache returns the shared cache.
func (a *App) Cache() *cache.Cache { return a.cache }

// Errors returns the shared error pipeline.
func (a *App) Errors() *errs.Pipeline { return a.errors }

// Perf returns the shared operation tracker.
func (a *App) Perf() *perf.Tracker { return a.perf }

// Start launches the background workers. It does not block; Stop waits for
// them to finish.
func (a *App) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel

	g, ctx := errgroup.WithContext(ctx)
	a.workers = g

	g.Go(func() error {
		if err := a.opsServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("ops server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		a.sweeper.Start(ctx)
		return nil
	})
	g.Go(func() error {
		a.pressure.Start(ctx)
		return nil
	})
	g.Go(func() error {
		a.runGaugeUpdater(ctx)
		return nil
	})

	a.log.Info("Service started", "port", a.cfg.Port)
	return nil
}

// Stop shuts the app down: workers are cancelled, the ops server drains, and
// report sinks are closed once nothing can emit to them.
func (a *App) Stop(ctx context.Context) error {
	a.log.Info("Stopping service...")

	if a.cancel != nil {
		a.cancel()
	}

	stopErr := a.opsServer.Stop(ctx)

	if a.workers != nil {
		if err := a.workers.Wait(); err != nil {
			a.log.Error("Background worker failed", "error", err)
		}
	}

	if err := a.reporter.Close(); err != nil {
		a.log.Warn("Failed to close report sinks", "error", err)
	}

	return stopErr
}

func (a *App) runGaugeUpdater(ctx context.Context) {
	ticker := time.NewTicker(gaugeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			metrics.CacheEntries.Set(float64(a.cache.Len()))
		}
	}
}
