package telemetry

import (
	"errors"
	"time"

	"github.com/genc-murat/relaymon/internal/core/models"
)

const (
	bytesPerKB = 1024.0

	// stateEntryInterval is the bucket width of the daemon's persisted
	// bandwidth history.
	stateEntryInterval = 15 * time.Minute
)

// ErrInvalidSnapshot is returned when a persisted bandwidth snapshot has no
// entries to reconcile.
var ErrInvalidSnapshot = errors.New("telemetry: state snapshot has no bandwidth entries")

// Seed carries the daemon-reported lifetime totals and process start time.
// With a seed the engine's averages cover the daemon's whole uptime rather
// than just the monitor's session.
type Seed struct {
	ReadTotal  uint64
	WriteTotal uint64
	StartTime  time.Time
}

// Engine owns the two sample stores (download and upload), the start time
// that anchors average-rate math, and the ingestion/backfill logic. It is
// pure in-memory computation; the caller delivers already-resolved data,
// one event at a time.
type Engine struct {
	primary   *SampleStore
	secondary *SampleStore
	cfg       GraphConfig
	startTime time.Time
	now       func() time.Time
}

func NewEngine(cfg GraphConfig, seed *Seed) *Engine {
	return newEngine(cfg, seed, time.Now)
}

func newEngine(cfg GraphConfig, seed *Seed, now func() time.Time) *Engine {
	e := &Engine{
		primary:   NewSampleStore(cfg),
		secondary: NewSampleStore(cfg),
		cfg:       cfg,
		now:       now,
	}

	// If the daemon reported both its totals and its start time the stores
	// are pre-seeded and the averages span the daemon's lifetime. Otherwise
	// totals start at zero and the clock starts now.
	if seed != nil && !seed.StartTime.IsZero() {
		e.startTime = seed.StartTime
		e.primary.total = float64(seed.ReadTotal) / bytesPerKB
		e.secondary.total = float64(seed.WriteTotal) / bytesPerKB
	} else {
		e.startTime = now()
	}
	return e
}

// Ingest records one sampling tick of raw byte counts, scaled to KB. Ticks
// must arrive in order; the protocol client guarantees that by delivering
// them over a single channel.
func (e *Engine) Ingest(readBytes, writtenBytes uint64) {
	e.primary.Record(float64(readBytes) / bytesPerKB)
	e.secondary.Record(float64(writtenBytes) / bytesPerKB)
}

// BackfillFromState reconciles a persisted bandwidth snapshot into the
// 15-minute buckets and returns the real-time span the snapshot covers.
// Entries recorded before the snapshot was taken are extended by repeating
// the last known value once per missing interval; steady unreported
// activity and silence are indistinguishable, so the last observed rate is
// kept rather than zero-filled.
func (e *Engine) BackfillFromState(state *models.BandwidthState) (time.Duration, error) {
	if state == nil || len(state.ReadEntries) == 0 || len(state.WriteEntries) == 0 {
		return 0, ErrInvalidSnapshot
	}

	now := e.now()
	readEntries := extendFlat(state.ReadEntries, missingEntries(now, state.LastReadTime))
	writeEntries := extendFlat(state.WriteEntries, missingEntries(now, state.LastWriteTime))

	// Crop from the front so both directions align to the same buckets.
	count := len(readEntries)
	if len(writeEntries) < count {
		count = len(writeEntries)
	}
	if e.cfg.MaxColumn < count {
		count = e.cfg.MaxColumn
	}
	if count <= 0 {
		return 0, nil
	}
	readEntries = readEntries[len(readEntries)-count:]
	writeEntries = writeEntries[len(writeEntries)-count:]

	tier := e.resolutionIndex(stateEntryInterval)
	if tier < 0 {
		return 0, nil
	}

	e.primary.Backfill(readEntries, tier)
	e.secondary.Backfill(writeEntries, tier)
	e.primary.lastValue = readEntries[count-1]
	e.secondary.lastValue = writeEntries[count-1]

	earliest := state.LastReadTime
	if state.LastWriteTime.Before(earliest) {
		earliest = state.LastWriteTime
	}
	return now.Sub(earliest), nil
}

// Primary is the download-direction store.
func (e *Engine) Primary() *SampleStore {
	return e.primary
}

// Secondary is the upload-direction store.
func (e *Engine) Secondary() *SampleStore {
	return e.secondary
}

// StartTime is the anchor for average-rate math. Fixed for the engine's
// lifetime.
func (e *Engine) StartTime() time.Time {
	return e.startTime
}

// Clone returns an independent copy with identical history and totals,
// preserving the start time.
func (e *Engine) Clone() *Engine {
	return &Engine{
		primary:   e.primary.Clone(),
		secondary: e.secondary.Clone(),
		cfg:       e.cfg,
		startTime: e.startTime,
		now:       e.now,
	}
}

func (e *Engine) resolutionIndex(width time.Duration) int {
	for i, res := range e.cfg.Resolutions {
		if res == int(width/time.Second) {
			return i
		}
	}
	return -1
}

func missingEntries(now, last time.Time) int {
	if !last.Before(now) {
		// Future-dated timestamp, likely clock skew. Clamp instead of
		// extrapolating backwards.
		return 0
	}
	return int(now.Sub(last) / stateEntryInterval)
}

func extendFlat(entries []float64, missing int) []float64 {
	extended := append([]float64(nil), entries...)
	last := entries[len(entries)-1]
	for i := 0; i < missing; i++ {
		extended = append(extended, last)
	}
	return extended
}
