package perf

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestRecordUpserts(t *testing.T) {
	tr := NewTracker()

	tr.Record("article.fetch", 100*time.Millisecond)
	tr.Record("article.fetch", 300*time.Millisecond)

	stats, ok := tr.Snapshot().Operations["article.fetch"]
	if !ok {
		t.Fatal("operation should be tracked")
	}
	if stats.Calls != 2 {
		t.Errorf("calls = %d, want 2", stats.Calls)
	}
	if stats.Total != 400*time.Millisecond {
		t.Errorf("total = %v, want 400ms", stats.Total)
	}
	if stats.Average != 200*time.Millisecond {
		t.Errorf("average = %v, want 200ms", stats.Average)
	}
	if stats.Min != 100*time.Millisecond {
		t.Errorf("min = %v, want 100ms", stats.Min)
	}
	if stats.Max != 300*time.Millisecond {
		t.Errorf("max = %v, want 300ms", stats.Max)
	}
}

func TestFirstRecordSetsMinMax(t *testing.T) {
	tr := NewTracker()

	tr.Record("dict.lookup", 50*time.Millisecond)

	stats := tr.Snapshot().Operations["dict.lookup"]
	if stats.Min != 50*time.Millisecond || stats.Max != 50*time.Millisecond {
		t.Errorf("min/max = %v/%v, want 50ms/50ms", stats.Min, stats.Max)
	}
}

func TestSnapshotAggregates(t *testing.T) {
	tr := NewTracker()

	tr.Record("a", 100*time.Millisecond)
	tr.Record("a", 200*time.Millisecond)
	tr.Record("b", 600*time.Millisecond)

	snap := tr.Snapshot()
	if snap.TotalCalls != 3 {
		t.Errorf("total calls = %d, want 3", snap.TotalCalls)
	}
	if snap.TotalDuration != 900*time.Millisecond {
		t.Errorf("total duration = %v, want 900ms", snap.TotalDuration)
	}
	if snap.OverallAverage != 300*time.Millisecond {
		t.Errorf("overall average = %v, want 300ms", snap.OverallAverage)
	}
}

func TestSnapshotIsCopy(t *testing.T) {
	tr := NewTracker()

	tr.Record("a", time.Second)
	snap := tr.Snapshot()
	snap.Operations["a"] = OperationStats{Calls: 99}
	delete(snap.Operations, "a")

	if got := tr.Snapshot().Operations["a"].Calls; got != 1 {
		t.Errorf("mutating a snapshot should not affect the tracker, calls = %d", got)
	}
}

func TestReset(t *testing.T) {
	tr := NewTracker()

	tr.Record("a", time.Second)
	tr.Reset()

	snap := tr.Snapshot()
	if len(snap.Operations) != 0 || snap.TotalCalls != 0 {
		t.Error("reset should clear all operations")
	}
}

func TestRecordCallback(t *testing.T) {
	tr := NewTracker()

	var gotName string
	var gotDur time.Duration
	tr.SetRecordCallback(func(name string, d time.Duration) {
		gotName, gotDur = name, d
	})

	tr.Record("doc.convert", 42*time.Millisecond)

	if gotName != "doc.convert" || gotDur != 42*time.Millisecond {
		t.Errorf("callback got (%q, %v)", gotName, gotDur)
	}
}

func TestConcurrentRecord(t *testing.T) {
	tr := NewTracker()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			tr.Record(fmt.Sprintf("op%d", n%5), time.Millisecond)
			tr.Snapshot()
		}(i)
	}
	wg.Wait()

	if got := tr.Snapshot().TotalCalls; got != 100 {
		t.Errorf("total calls = %d, want 100", got)
	}
}
