package app

import (
	"context"
	"log"
	"sync/atomic"
	"time"

	"github.com/genc-murat/relaymon/internal/config"
	"github.com/genc-murat/relaymon/internal/core/models"
	"github.com/genc-murat/relaymon/internal/core/ports"
	"github.com/genc-murat/relaymon/internal/metrics"
	"github.com/genc-murat/relaymon/internal/statefile"
	"github.com/genc-murat/relaymon/internal/telemetry"
)

// Monitor wires the telemetry engine, accounting tracker and status binder
// together and drives them from a single ordered event channel, so there is
// exactly one mutator. After every mutation it publishes an immutable
// snapshot that any number of readers can hold without locks.
type Monitor struct {
	cfg        *config.Config
	controller ports.Controller
	events     <-chan models.Event

	engine  *telemetry.Engine
	tracker *telemetry.AccountingTracker
	binder  *telemetry.StatusBinder
	metrics *metrics.Metrics

	snapshot      atomic.Value // *models.TelemetrySnapshot
	layoutChanged atomic.Bool
	displayIndex  atomic.Int32
}

func NewMonitor(cfg *config.Config, controller ports.Controller, events <-chan models.Event) *Monitor {
	graphCfg := telemetry.GraphConfig{
		Resolutions: cfg.Graph.ResolutionSeconds(),
		MaxColumn:   cfg.Graph.MaxColumn,
	}

	engine := telemetry.NewEngine(graphCfg, seedFromController(controller))
	tracker := telemetry.NewAccountingTracker(controller)
	binder := telemetry.NewStatusBinder(controller, tracker, cfg.Accounting.Show)

	m := &Monitor{
		cfg:        cfg,
		controller: controller,
		events:     events,
		engine:     engine,
		tracker:    tracker,
		binder:     binder,
		metrics:    metrics.NewMetrics(),
	}

	// Same role as the daemon's initial reset signal: pick up the current
	// accounting state and title metadata before the first tick.
	m.binder.HandleReset()
	m.publish()
	return m
}

// seedFromController asks the daemon for its lifetime totals and start
// time. Averages over the daemon's whole uptime need both; with either
// missing the engine starts cold from the monitor's own clock.
func seedFromController(controller ports.Controller) *telemetry.Seed {
	read, written, err := controller.TrafficTotals()
	if err != nil {
		return nil
	}
	started, err := controller.ProcessStartTime()
	if err != nil || started.IsZero() {
		return nil
	}
	return &telemetry.Seed{ReadTotal: read, WriteTotal: written, StartTime: started}
}

// PrepopulateFromState backfills the 15-minute graph from the daemon's
// persisted bandwidth history and reports the span it covered.
func (m *Monitor) PrepopulateFromState(path string, lockTimeout time.Duration) (time.Duration, error) {
	state, err := statefile.Load(path, lockTimeout)
	if err != nil {
		return 0, err
	}
	covered, err := m.engine.BackfillFromState(state)
	if err != nil {
		return 0, err
	}
	m.publish()
	return covered, nil
}

// Run consumes events until the context is cancelled or the event channel
// closes (connection gone).
func (m *Monitor) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-m.events:
			if !ok {
				log.Printf("app: event stream closed, monitor stopping")
				return nil
			}
			m.handle(ev)
		}
	}
}

// Snapshot returns the latest published telemetry view. Never nil after
// construction.
func (m *Monitor) Snapshot() *models.TelemetrySnapshot {
	return m.snapshot.Load().(*models.TelemetrySnapshot)
}

// TakeLayoutChange reports, once, that accounting was toggled and the
// dashboard needs a relayout.
func (m *Monitor) TakeLayoutChange() bool {
	return m.layoutChanged.CompareAndSwap(true, false)
}

// Metrics exposes the monitor's runtime counters.
func (m *Monitor) Metrics() metrics.Snapshot {
	return m.metrics.Snapshot()
}

// SetDisplayIndex selects which resolution tier the UI renders. Snapshots
// carry every tier, so a change takes effect on the next render without a
// republish. Called from the UI goroutine.
func (m *Monitor) SetDisplayIndex(index int) {
	if index < 0 || index >= len(m.cfg.Graph.Intervals) {
		return
	}
	m.displayIndex.Store(int32(index))
}

// DisplayIndex is the currently selected resolution tier.
func (m *Monitor) DisplayIndex() int {
	return int(m.displayIndex.Load())
}

func (m *Monitor) handle(ev models.Event) {
	switch ev := ev.(type) {
	case models.BandwidthEvent:
		m.engine.Ingest(ev.Read, ev.Written)
		m.metrics.IncrSamplesIngested()
		m.metrics.MarkEvent(ev.Timestamp)
		if err := m.tracker.MaybeRefresh(m.cfg.Accounting.PollInterval); err != nil {
			m.metrics.IncrQuotaPollErrors()
			log.Printf("app: %v", err)
		}
	case models.ResetEvent:
		if m.binder.HandleReset() {
			m.layoutChanged.Store(true)
		}
	case models.DescriptorEvent:
		m.binder.HandleDescriptor()
	}
	m.publish()
}

func (m *Monitor) publish() {
	tiers := len(m.cfg.Graph.Intervals)
	snap := &models.TelemetrySnapshot{
		Taken:      time.Now(),
		StartTime:  m.engine.StartTime(),
		Download:   direction(m.engine.Primary(), tiers),
		Upload:     direction(m.engine.Secondary(), tiers),
		Accounting: m.tracker.Stats(),
		Metadata:   m.binder.Metadata(),
		DaemonUp:   m.controller.IsAlive(),
	}
	m.snapshot.Store(snap)
}

func direction(store *telemetry.SampleStore, tiers int) models.DirectionSnapshot {
	d := models.DirectionSnapshot{
		Last:  store.LastValue(),
		Total: store.Total(),
		Tiers: make([]models.TierSnapshot, tiers),
	}
	for i := range d.Tiers {
		d.Tiers[i] = models.TierSnapshot{Max: store.Max(i), History: store.History(i)}
	}
	return d
}
