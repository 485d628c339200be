// Package ops provides the operational surface of the service: an aggregated
// health report over the cache, error pipeline and operation tracker, and the
// HTTP endpoints operators consume.
package ops

import (
	"time"

	"github.com/tankoni/Crulish-sub003/internal/core/cache"
	"github.com/tankoni/Crulish-sub003/internal/core/errs"
	"github.com/tankoni/Crulish-sub003/internal/core/perf"
)

// SystemStatus represents the overall health state of the service.
type SystemStatus string

const (
	StatusHealthy  SystemStatus = "healthy"
	StatusDegraded SystemStatus = "degraded"
	StatusCritical SystemStatus = "critical"
)

// Report is a point-in-time view of the service internals.
type Report struct {
	Status     SystemStatus     `json:"status"`
	Cache      cache.Statistics `json:"cache"`
	Errors     errs.Statistics  `json:"errors"`
	Operations perf.Snapshot    `json:"operations"`
	CheckedAt  time.Time        `json:"checked_at"`
}
