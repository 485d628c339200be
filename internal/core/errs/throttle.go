package errs

import "time"

// gate suppresses bursts of same-kind errors. It has two modes:
//
// Interval (default): an occurrence within the throttle interval of the last
// accepted occurrence of the same kind is dropped. Throttled occurrences
// neither reset nor advance the window, so the kind falls back to idle once
// the interval elapses from the last acceptance.
//
// Window: up to maxEvents occurrences per kind are accepted within a rolling
// window; further ones are dropped until old acceptances age out.
//
// Accepted timestamps are monotonically non-decreasing per kind and pruned
// lazily. Callers hold the pipeline lock.
type gate struct {
	interval time.Duration

	maxEvents int
	window    time.Duration

	last     map[Kind]time.Time
	accepted map[Kind][]time.Time
}

func newGate(interval time.Duration, maxEvents int, window time.Duration) *gate {
	g := &gate{
		interval:  interval,
		maxEvents: maxEvents,
		window:    window,
	}
	if g.windowed() {
		g.accepted = make(map[Kind][]time.Time)
	} else {
		g.last = make(map[Kind]time.Time)
	}
	return g
}

func (g *gate) windowed() bool {
	return g.maxEvents > 0 && g.window > 0
}

// allow reports whether an occurrence of kind at now passes the gate, and
// records the acceptance when it does.
func (g *gate) allow(kind Kind, now time.Time) bool {
	if g.windowed() {
		kept := g.accepted[kind][:0]
		for _, ts := range g.accepted[kind] {
			if now.Sub(ts) < g.window {
				kept = append(kept, ts)
			}
		}
		if len(kept) >= g.maxEvents {
			g.accepted[kind] = kept
			return false
		}
		g.accepted[kind] = append(kept, now)
		return true
	}

	if last, ok := g.last[kind]; ok && now.Sub(last) < g.interval {
		return false
	}
	g.last[kind] = now
	return true
}

func (g *gate) reset() {
	if g.windowed() {
		g.accepted = make(map[Kind][]time.Time)
		return
	}
	g.last = make(map[Kind]time.Time)
}
