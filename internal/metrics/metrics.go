package metrics

import (
	"sync/atomic"
	"time"
)

// Metrics tracks monitor runtime counters. Increments come from the event
// loop; reads come from the renderer, so everything is atomic.
type Metrics struct {
	samplesIngested int64
	quotaPollErrors int64
	lastEventUnix   int64
}

type Snapshot struct {
	SamplesIngested int64
	QuotaPollErrors int64
	// EventsDropped is owned by the control client; the caller fills it in
	// when assembling a view for display.
	EventsDropped int64
	LastEventAt   time.Time
}

func NewMetrics() *Metrics {
	return &Metrics{}
}

func (m *Metrics) IncrSamplesIngested() {
	atomic.AddInt64(&m.samplesIngested, 1)
}

func (m *Metrics) IncrQuotaPollErrors() {
	atomic.AddInt64(&m.quotaPollErrors, 1)
}

func (m *Metrics) MarkEvent(at time.Time) {
	atomic.StoreInt64(&m.lastEventUnix, at.Unix())
}

func (m *Metrics) Snapshot() Snapshot {
	snap := Snapshot{
		SamplesIngested: atomic.LoadInt64(&m.samplesIngested),
		QuotaPollErrors: atomic.LoadInt64(&m.quotaPollErrors),
	}
	if unix := atomic.LoadInt64(&m.lastEventUnix); unix > 0 {
		snap.LastEventAt = time.Unix(unix, 0)
	}
	return snap
}
