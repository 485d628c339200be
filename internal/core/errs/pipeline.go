package errs

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultHistoryCapacity bounds the retained error history.
	DefaultHistoryCapacity = 100

	// DefaultThrottleInterval is the minimum spacing between accepted
	// occurrences of the same kind.
	DefaultThrottleInterval = 5 * time.Second

	// DefaultThrottleWindow is the rolling window used when throttling by
	// occurrence count instead of spacing.
	DefaultThrottleWindow = time.Minute
)

// Record is one accepted error occurrence. Immutable once created.
type Record struct {
	ID       string    `json:"id"`
	Kind     Kind      `json:"kind"`
	Severity Severity  `json:"severity"`
	Context  string    `json:"context,omitempty"`
	Message  string    `json:"message"`
	Time     time.Time `json:"time"`
}

// Statistics aggregates accepted errors. Total and ByKind count every
// acceptance since the last ClearAll; LastHour and Today derive from the
// retained history, so they cannot see further back than the history cap.
type Statistics struct {
	Total        int64          `json:"total"`
	LastHour     int            `json:"last_hour"`
	Today        int            `json:"today"`
	ByKind       map[Kind]int64 `json:"by_kind"`
	MostFrequent Kind           `json:"most_frequent,omitempty"`
}

// Reporter receives records of severity error and above for external
// telemetry. Implementations must be safe for concurrent use.
type Reporter interface {
	Report(ctx context.Context, rec Record, err error)
}

// Config controls pipeline bounds and throttling. Setting ThrottleMaxEvents
// switches the gate from spaced-interval mode to N-per-rolling-window mode.
type Config struct {
	HistoryCapacity   int
	ThrottleInterval  time.Duration
	ThrottleMaxEvents int
	ThrottleWindow    time.Duration
	Clock             Clock
}

// DefaultConfig returns the standard pipeline configuration.
func DefaultConfig() Config {
	return Config{
		HistoryCapacity:  DefaultHistoryCapacity,
		ThrottleInterval: DefaultThrottleInterval,
	}
}

// Pipeline classifies, throttles, records, recovers and reports errors.
// Bookkeeping (history, statistics, throttle state) is guarded by its own
// lock; the user-visible display state has a separate one so readers of
// CurrentError never contend with history writes.
type Pipeline struct {
	cfg      Config
	log      *slog.Logger
	reporter Reporter

	mu         sync.Mutex
	history    []Record
	total      int64
	byKind     map[Kind]int64
	gate       *gate
	strategies map[Kind]RecoveryStrategy

	onAccepted  func(Record)
	onThrottled func(Kind)
	onRecovery  func(kind Kind, recovered bool)

	dispMu  sync.Mutex
	current Record
	showing bool
}

// NewPipeline creates a Pipeline. reporter may be nil, in which case
// error/critical records are only logged and retained.
func NewPipeline(cfg Config, reporter Reporter) *Pipeline {
	if cfg.HistoryCapacity <= 0 {
		cfg.HistoryCapacity = DefaultHistoryCapacity
	}
	if cfg.ThrottleInterval <= 0 {
		cfg.ThrottleInterval = DefaultThrottleInterval
	}
	if cfg.ThrottleMaxEvents > 0 && cfg.ThrottleWindow <= 0 {
		cfg.ThrottleWindow = DefaultThrottleWindow
	}
	if cfg.Clock == nil {
		cfg.Clock = realClock{}
	}

	return &Pipeline{
		cfg:        cfg,
		log:        slog.Default().With("component", "errs.pipeline"),
		reporter:   reporter,
		history:    make([]Record, 0, cfg.HistoryCapacity),
		byKind:     make(map[Kind]int64),
		gate:       newGate(cfg.ThrottleInterval, cfg.ThrottleMaxEvents, cfg.ThrottleWindow),
		strategies: make(map[Kind]RecoveryStrategy),
	}
}

// Handle runs an error through the pipeline: classify, throttle, record,
// attempt recovery, then decide visibility and reporting. opContext names
// the failed operation (for example "article.fetch"); when empty, a context
// attached to a classified error is used instead. Nil errors are ignored.
//
// Throttled occurrences are dropped silently: no history, no statistics, no
// visibility, no report. Recovery success suppresses visibility and
// reporting but the record stays in history. Recovery and reporting run
// outside the pipeline lock.
func (p *Pipeline) Handle(ctx context.Context, err error, opContext string) {
	if err == nil {
		return
	}

	kind := Classify(err)
	sev := kind.Severity()
	now := p.cfg.Clock.Now()

	if opContext == "" {
		var classified *Error
		if errors.As(err, &classified) {
			opContext = classified.Context()
		}
	}

	p.mu.Lock()
	if !p.gate.allow(kind, now) {
		onThrottled := p.onThrottled
		p.mu.Unlock()
		if onThrottled != nil {
			onThrottled(kind)
		}
		return
	}

	rec := Record{
		ID:       uuid.NewString(),
		Kind:     kind,
		Severity: sev,
		Context:  opContext,
		Message:  err.Error(),
		Time:     now,
	}
	if len(p.history) >= p.cfg.HistoryCapacity {
		// Shift left, drop oldest
		copy(p.history, p.history[1:])
		p.history[len(p.history)-1] = rec
	} else {
		p.history = append(p.history, rec)
	}
	p.total++
	p.byKind[kind]++
	strategy := p.strategies[kind]
	onAccepted := p.onAccepted
	onRecovery := p.onRecovery
	p.mu.Unlock()

	p.log.Log(ctx, sev.Level(), "error handled",
		"kind", string(kind),
		"severity", sev.String(),
		"context", opContext,
		"err", err,
	)
	if onAccepted != nil {
		onAccepted(rec)
	}

	if strategy != nil {
		rerr := strategy.Recover(ctx, err)
		if onRecovery != nil {
			onRecovery(kind, rerr == nil)
		}
		if rerr == nil {
			p.log.Debug("recovery succeeded, error suppressed", "kind", string(kind), "context", opContext)
			return
		}
		p.log.Debug("recovery failed", "kind", string(kind), "err", rerr)
	}

	if sev >= SeverityWarning {
		p.dispMu.Lock()
		p.current = rec
		p.showing = true
		p.dispMu.Unlock()
	}

	if sev >= SeverityError && p.reporter != nil {
		p.reporter.Report(ctx, rec, err)
	}
}

// CurrentError returns the displayed error record, if one is showing.
func (p *Pipeline) CurrentError() (Record, bool) {
	p.dispMu.Lock()
	defer p.dispMu.Unlock()
	return p.current, p.showing
}

// IsShowingError reports whether an error is currently displayed.
func (p *Pipeline) IsShowingError() bool {
	p.dispMu.Lock()
	defer p.dispMu.Unlock()
	return p.showing
}

// DismissError clears only the displayed error. History, statistics and
// throttle state are kept.
func (p *Pipeline) DismissError() {
	p.dispMu.Lock()
	p.current = Record{}
	p.showing = false
	p.dispMu.Unlock()
}

// ClearAll resets history, statistics, throttle state and the displayed
// error.
func (p *Pipeline) ClearAll() {
	p.mu.Lock()
	p.history = p.history[:0]
	p.total = 0
	p.byKind = make(map[Kind]int64)
	p.gate.reset()
	p.mu.Unlock()

	p.DismissError()
}

// History returns retained records newest-first. A non-positive limit
// returns everything retained.
func (p *Pipeline) History(limit int) []Record {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := len(p.history)
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]Record, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, p.history[i])
	}
	return out
}

// Statistics returns current aggregates.
func (p *Pipeline) Statistics() Statistics {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.cfg.Clock.Now()
	stats := Statistics{
		Total:  p.total,
		ByKind: make(map[Kind]int64, len(p.byKind)),
	}

	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	for _, rec := range p.history {
		if now.Sub(rec.Time) <= time.Hour {
			stats.LastHour++
		}
		if !rec.Time.Before(dayStart) {
			stats.Today++
		}
	}

	var bestCount int64
	for kind, n := range p.byKind {
		stats.ByKind[kind] = n
		// ties resolve to the lexicographically smaller kind
		if n > bestCount || (n == bestCount && kind < stats.MostFrequent) {
			bestCount = n
			stats.MostFrequent = kind
		}
	}
	return stats
}

// RegisterStrategy installs or replaces the recovery strategy for a kind.
// A nil strategy removes the registration.
func (p *Pipeline) RegisterStrategy(kind Kind, s RecoveryStrategy) {
	p.mu.Lock()
	if s == nil {
		delete(p.strategies, kind)
	} else {
		p.strategies[kind] = s
	}
	p.mu.Unlock()
}

// SetAcceptedCallback registers fn to run for every accepted record.
func (p *Pipeline) SetAcceptedCallback(fn func(Record)) {
	p.mu.Lock()
	p.onAccepted = fn
	p.mu.Unlock()
}

// SetThrottledCallback registers fn to run for every throttled occurrence.
func (p *Pipeline) SetThrottledCallback(fn func(Kind)) {
	p.mu.Lock()
	p.onThrottled = fn
	p.mu.Unlock()
}

// SetRecoveryCallback registers fn to run after every recovery attempt.
func (p *Pipeline) SetRecoveryCallback(fn func(kind Kind, recovered bool)) {
	p.mu.Lock()
	p.onRecovery = fn
	p.mu.Unlock()
}
