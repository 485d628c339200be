// Package pressure turns process heap growth into the cache's memory
// release signal. A Monitor polls heap usage on an interval and fires the
// release sequence whenever usage is at or above a configured high-water
// mark; operators can also trigger the response manually.
package pressure

import (
	"context"
	"log/slog"
	"runtime"
	"time"
)

// DefaultInterval is how often heap usage is polled.
const DefaultInterval = 30 * time.Second

// Config controls the monitor. The monitor stays idle unless Enabled is set
// and HighWaterBytes is non-zero.
type Config struct {
	Enabled        bool          `yaml:"enabled"`
	Interval       time.Duration `yaml:"interval"`
	HighWaterBytes uint64        `yaml:"high_water_bytes"`
}

// Releaser is the pressure response target.
type Releaser interface {
	ReleaseMemory() int
}

// Monitor polls heap usage and fires the releaser on pressure.
type Monitor struct {
	cfg      Config
	releaser Releaser
	log      *slog.Logger
	readHeap func() uint64
}

// NewMonitor creates a Monitor. A non-positive interval falls back to
// DefaultInterval.
func NewMonitor(cfg Config, releaser Releaser) *Monitor {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	return &Monitor{
		cfg:      cfg,
		releaser: releaser,
		log:      slog.Default().With("component", "pressure.monitor"),
		readHeap: heapInUse,
	}
}

func heapInUse() uint64 {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return ms.HeapInuse
}

// Start runs the poll loop until ctx is cancelled. It blocks; returns
// immediately when the monitor is not configured to run.
func (m *Monitor) Start(ctx context.Context) {
	if !m.cfg.Enabled || m.cfg.HighWaterBytes == 0 {
		return
	}

	ticker := time.NewTicker(m.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.log.Debug("pressure monitor stopped")
			return
		case <-ticker.C:
			m.Check()
		}
	}
}

// Check compares current heap usage against the high-water mark and fires
// the release when it is reached. Reports whether a release fired.
func (m *Monitor) Check() bool {
	heap := m.readHeap()
	if heap < m.cfg.HighWaterBytes {
		return false
	}

	removed := m.releaser.ReleaseMemory()
	m.log.Warn("memory pressure, released cache entries",
		"heap_bytes", heap,
		"high_water_bytes", m.cfg.HighWaterBytes,
		"removed", removed,
	)
	return true
}

// Trigger forces the pressure response regardless of heap usage and reports
// how many entries were released.
func (m *Monitor) Trigger() int {
	return m.releaser.ReleaseMemory()
}
