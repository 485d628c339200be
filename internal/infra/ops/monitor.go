package ops

import (
	"context"
	"sync"
	"time"

	"github.com/tankoni/Crulish-sub003/internal/core/cache"
	"github.com/tankoni/Crulish-sub003/internal/core/errs"
	"github.com/tankoni/Crulish-sub003/internal/core/perf"
)

const (
	// checkInterval rate-limits full health evaluations; checks inside the
	// window return the previous report.
	checkInterval = 10 * time.Second

	criticalHourlyErrors = 50
	degradedHourlyErrors = 10
)

// Monitor aggregates health status from the service internals.
type Monitor struct {
	cache  *cache.Cache
	errors *errs.Pipeline
	perf   *perf.Tracker

	mu                sync.Mutex
	lastCheck         time.Time
	lastReport        Report
	haveReport        bool
	degradedThreshold int
	criticalThreshold int
}

// NewMonitor creates a new health monitor.
func NewMonitor(c *cache.Cache, pipe *errs.Pipeline, tracker *perf.Tracker) *Monitor {
	return &Monitor{
		cache:             c,
		errors:            pipe,
		perf:              tracker,
		degradedThreshold: degradedHourlyErrors,
		criticalThreshold: criticalHourlyErrors,
	}
}

// SetThresholds overrides the hourly error counts that mark the service
// degraded and critical. Non-positive values keep the current threshold.
func (m *Monitor) SetThresholds(degraded, critical int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if degraded > 0 {
		m.degradedThreshold = degraded
	}
	if critical > 0 {
		m.criticalThreshold = critical
	}
}

// CheckHealth produces a health report. Checks are rate limited to once per
// checkInterval; calls inside the window return the cached report.
func (m *Monitor) CheckHealth(ctx context.Context) Report {
	m.mu.Lock()
	defer m.mu.Unlock()

	if time.Since(m.lastCheck) < checkInterval && m.haveReport {
		return m.lastReport
	}

	now := time.Now()
	report := Report{
		Status:     StatusHealthy,
		Cache:      m.cache.Statistics(),
		Errors:     m.errors.Statistics(),
		Operations: m.perf.Snapshot(),
		CheckedAt:  now,
	}

	switch {
	case m.recentCritical(now) || report.Errors.LastHour >= m.criticalThreshold:
		report.Status = StatusCritical
	case report.Errors.LastHour >= m.degradedThreshold || m.errors.IsShowingError():
		report.Status = StatusDegraded
	}

	m.lastCheck = now
	m.lastReport = report
	m.haveReport = true
	return report
}

// recentCritical reports whether a critical-severity error was recorded
// within the last hour. History is newest first, so the scan stops at the
// first record outside the window.
func (m *Monitor) recentCritical(now time.Time) bool {
	for _, rec := range m.errors.History(0) {
		if now.Sub(rec.Time) > time.Hour {
			break
		}
		if rec.Severity >= errs.SeverityCritical {
			return true
		}
	}
	return false
}
