// Package telemetry provides errs.Reporter implementations: a structured
// log sink (the default), a bounded Redis stream, a Postgres archive, and a
// fan-out combining them. Sinks never propagate their own failures to the
// caller; a reporting problem must not fail the operation that errored.
package telemetry

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/tankoni/Crulish-sub003/internal/core/errs"
)

// Config selects and configures the reporting sinks. An empty URL disables
// the corresponding sink.
type Config struct {
	Redis    RedisConfig    `yaml:"redis"`
	Database DatabaseConfig `yaml:"database"`
}

// RedisConfig configures the Redis stream sink.
type RedisConfig struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
	Stream   string `yaml:"stream"`
	MaxLen   int64  `yaml:"max_len"`
}

// DatabaseConfig configures the Postgres archive sink.
type DatabaseConfig struct {
	URL      string `yaml:"url"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// LogReporter writes reports to the structured log.
type LogReporter struct {
	log *slog.Logger
}

// NewLogReporter creates the default sink.
func NewLogReporter() *LogReporter {
	return &LogReporter{log: slog.Default().With("component", "telemetry.log")}
}

func (r *LogReporter) Report(ctx context.Context, rec errs.Record, err error) {
	r.log.ErrorContext(ctx, "error reported",
		"id", rec.ID,
		"kind", string(rec.Kind),
		"severity", rec.Severity.String(),
		"context", rec.Context,
		"err", err,
	)
}

// MultiReporter fans each report out to several sinks.
type MultiReporter struct {
	sinks []errs.Reporter
}

// NewMultiReporter combines sinks. Reports go to every sink in order.
func NewMultiReporter(sinks ...errs.Reporter) *MultiReporter {
	return &MultiReporter{sinks: sinks}
}

func (r *MultiReporter) Report(ctx context.Context, rec errs.Record, err error) {
	for _, s := range r.sinks {
		s.Report(ctx, rec, err)
	}
}

// Close closes every sink that holds a connection.
func (r *MultiReporter) Close() error {
	var closeErrs []error
	for _, s := range r.sinks {
		if c, ok := s.(io.Closer); ok {
			if err := c.Close(); err != nil {
				closeErrs = append(closeErrs, err)
			}
		}
	}
	return errors.Join(closeErrs...)
}
