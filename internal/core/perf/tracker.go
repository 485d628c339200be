// Package perf tracks per-operation call counts and durations.
package perf

import (
	"sync"
	"time"
)

// OperationStats aggregates the timings recorded for one named operation.
type OperationStats struct {
	Calls   int64         `json:"calls"`
	Total   time.Duration `json:"total"`
	Average time.Duration `json:"average"`
	Min     time.Duration `json:"min"`
	Max     time.Duration `json:"max"`
}

// Snapshot is an immutable view of all tracked operations plus aggregate
// totals across them.
type Snapshot struct {
	Operations     map[string]OperationStats `json:"operations"`
	TotalCalls     int64                     `json:"total_calls"`
	TotalDuration  time.Duration             `json:"total_duration"`
	OverallAverage time.Duration             `json:"overall_average"`
}

type operation struct {
	calls int64
	total time.Duration
	min   time.Duration
	max   time.Duration
}

// Tracker records operation durations. Safe for concurrent use; snapshots
// proceed under a read lock while records take the write lock.
type Tracker struct {
	mu       sync.RWMutex
	ops      map[string]*operation
	onRecord func(name string, d time.Duration)
}

// NewTracker creates an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{ops: make(map[string]*operation)}
}

// Record adds one timed call for name, creating the entry on first use.
func (t *Tracker) Record(name string, d time.Duration) {
	t.mu.Lock()
	op, ok := t.ops[name]
	if !ok {
		op = &operation{min: d, max: d}
		t.ops[name] = op
	}
	op.calls++
	op.total += d
	if d < op.min {
		op.min = d
	}
	if d > op.max {
		op.max = d
	}
	onRecord := t.onRecord
	t.mu.Unlock()

	if onRecord != nil {
		onRecord(name, d)
	}
}

// Snapshot returns a copy of all tracked operations with derived averages.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()

	snap := Snapshot{Operations: make(map[string]OperationStats, len(t.ops))}
	for name, op := range t.ops {
		stats := OperationStats{
			Calls: op.calls,
			Total: op.total,
			Min:   op.min,
			Max:   op.max,
		}
		if op.calls > 0 {
			stats.Average = op.total / time.Duration(op.calls)
		}
		snap.Operations[name] = stats
		snap.TotalCalls += op.calls
		snap.TotalDuration += op.total
	}
	if snap.TotalCalls > 0 {
		snap.OverallAverage = snap.TotalDuration / time.Duration(snap.TotalCalls)
	}
	return snap
}

// Reset clears all tracked operations.
func (t *Tracker) Reset() {
	t.mu.Lock()
	t.ops = make(map[string]*operation)
	t.mu.Unlock()
}

// SetRecordCallback registers fn to run after every Record, used to feed
// the duration histogram.
func (t *Tracker) SetRecordCallback(fn func(name string, d time.Duration)) {
	t.mu.Lock()
	t.onRecord = fn
	t.mu.Unlock()
}
