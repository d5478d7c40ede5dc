package telemetry

import (
	"github.com/genc-murat/relaymon/internal/core/models"
	"github.com/genc-murat/relaymon/internal/core/ports"
)

// StatusBinder reacts to daemon lifecycle and descriptor signals. A reload
// re-evaluates whether accounting is enabled; a descriptor update refreshes
// the title metadata. When the daemon is unreachable every cached value is
// left untouched; stale-but-valid beats blank.
type StatusBinder struct {
	controller     ports.Controller
	tracker        *AccountingTracker
	showAccounting bool
	metadata       models.RelayMetadata
}

func NewStatusBinder(controller ports.Controller, tracker *AccountingTracker, showAccounting bool) *StatusBinder {
	return &StatusBinder{
		controller:     controller,
		tracker:        tracker,
		showAccounting: showAccounting,
	}
}

// HandleReset processes a daemon reload signal. It reports true when
// accounting tracking was toggled, which changes the dashboard's height and
// requires a relayout.
func (b *StatusBinder) HandleReset() bool {
	if !b.controller.IsAlive() {
		return false
	}
	b.refreshMetadata()

	if !b.showAccounting {
		return false
	}
	enabled, err := b.controller.AccountingEnabled()
	if err != nil {
		// A failed probe is not a toggle; keep tracking as-is.
		return false
	}
	if enabled == b.tracker.Enabled() {
		return false
	}
	b.tracker.SetEnabled(enabled)
	return true
}

// HandleDescriptor refreshes the title metadata. It never touches the
// numeric time series.
func (b *StatusBinder) HandleDescriptor() {
	if !b.controller.IsAlive() {
		return
	}
	b.refreshMetadata()
}

// Metadata returns the last successfully fetched relay metadata.
func (b *StatusBinder) Metadata() models.RelayMetadata {
	return b.metadata
}

func (b *StatusBinder) refreshMetadata() {
	meta, err := b.controller.Metadata()
	if err != nil {
		return
	}
	b.metadata = meta
}
