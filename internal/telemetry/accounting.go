package telemetry

import (
	"errors"
	"fmt"
	"time"

	"github.com/genc-murat/relaymon/internal/core/models"
	"github.com/genc-murat/relaymon/internal/core/ports"
)

// ErrQuotaPoll wraps transient failures fetching accounting status. The
// previous cached stats stay in place and the poll is retried on the next
// eligible tick.
var ErrQuotaPoll = errors.New("telemetry: accounting poll failed")

// AccountingTracker caches the daemon's accounting quota status on its own
// refresh cadence, independent of sample ingestion. The cache is replaced
// wholesale on every successful poll, so a reader holding a Stats copy never
// sees a half-updated status.
type AccountingTracker struct {
	controller ports.Controller
	enabled    bool
	stats      *models.AccountingStats
	now        func() time.Time
}

func NewAccountingTracker(controller ports.Controller) *AccountingTracker {
	return newAccountingTracker(controller, time.Now)
}

func newAccountingTracker(controller ports.Controller, now func() time.Time) *AccountingTracker {
	return &AccountingTracker{controller: controller, now: now}
}

// Enabled reports whether accounting is currently being tracked.
func (t *AccountingTracker) Enabled() bool {
	return t.enabled
}

// SetEnabled transitions the tracker between absent and present. Disabling
// discards the cache immediately so stale quota data is never displayed;
// enabling performs a best-effort initial fetch.
func (t *AccountingTracker) SetEnabled(enabled bool) {
	if enabled == t.enabled {
		return
	}
	t.enabled = enabled
	if !enabled {
		t.stats = nil
		return
	}
	t.refresh()
}

// MaybeRefresh polls the daemon at most once per pollInterval, measured
// against the wall clock rather than a timer, so it is safe to call on
// every tick. A poll failure keeps the last known stats.
func (t *AccountingTracker) MaybeRefresh(pollInterval time.Duration) error {
	if !t.enabled {
		return nil
	}
	if t.stats != nil && t.now().Sub(t.stats.RetrievedAt) < pollInterval {
		return nil
	}
	return t.refresh()
}

// Stats returns a copy of the cached accounting status, or nil when
// accounting is absent.
func (t *AccountingTracker) Stats() *models.AccountingStats {
	if t.stats == nil {
		return nil
	}
	dup := *t.stats
	return &dup
}

func (t *AccountingTracker) refresh() error {
	stats, err := t.controller.AccountingStats()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrQuotaPoll, err)
	}
	if stats == nil {
		return nil
	}
	dup := *stats
	if dup.RetrievedAt.IsZero() {
		dup.RetrievedAt = t.now()
	}
	t.stats = &dup
	return nil
}
