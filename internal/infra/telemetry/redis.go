package telemetry

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tankoni/Crulish-sub003/internal/core/errs"
)

const (
	defaultStream       = "crulish:error_reports"
	defaultStreamMaxLen = 10000
)

// RedisReporter appends reports to a capped Redis stream, giving operators a
// tail of recent serious errors without unbounded growth.
type RedisReporter struct {
	rdb    *redis.Client
	stream string
	maxLen int64
	log    *slog.Logger
}

// NewRedisReporter connects to Redis and verifies the connection.
func NewRedisReporter(cfg RedisConfig) (*RedisReporter, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}

	rdb := redis.NewClient(opts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	stream := cfg.Stream
	if stream == "" {
		stream = defaultStream
	}
	maxLen := cfg.MaxLen
	if maxLen <= 0 {
		maxLen = defaultStreamMaxLen
	}

	return &RedisReporter{
		rdb:    rdb,
		stream: stream,
		maxLen: maxLen,
		log:    slog.Default().With("component", "telemetry.redis"),
	}, nil
}

// Report appends the record to the stream.
func (r *RedisReporter) Report(ctx context.Context, rec errs.Record, _ error) {
	err := r.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: r.stream,
		MaxLen: r.maxLen,
		Approx: true,
		Values: map[string]any{
			"id":       rec.ID,
			"kind":     string(rec.Kind),
			"severity": rec.Severity.String(),
			"context":  rec.Context,
			"message":  rec.Message,
			"time":     rec.Time.Format(time.RFC3339Nano),
		},
	}).Err()
	if err != nil {
		r.log.Warn("failed to append error report", "stream", r.stream, "err", err)
	}
}

// Close closes the Redis connection.
func (r *RedisReporter) Close() error {
	return r.rdb.Close()
}
