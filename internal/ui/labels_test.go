package ui

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/genc-murat/relaymon/internal/core/models"
	"github.com/genc-murat/relaymon/internal/metrics"
)

func TestTitleLabel(t *testing.T) {
	tests := []struct {
		name     string
		meta     models.RelayMetadata
		expected string
	}{
		{
			name:     "no metadata",
			meta:     models.RelayMetadata{},
			expected: "Bandwidth",
		},
		{
			name:     "rate and burst",
			meta:     models.RelayMetadata{EffectiveRate: 1 << 20, EffectiveBurst: 2 << 20},
			expected: "Bandwidth (limit: 1.0 MB/s, burst: 2.0 MB/s)",
		},
		{
			name:     "rate without burst is dropped",
			meta:     models.RelayMetadata{EffectiveRate: 1 << 20},
			expected: "Bandwidth",
		},
		{
			name:     "measured wins over observed",
			meta:     models.RelayMetadata{MeasuredBandwidth: 512 * 1024, ObservedBandwidth: 1024},
			expected: "Bandwidth (measured: 512.0 KB/s)",
		},
		{
			name:     "observed as fallback",
			meta:     models.RelayMetadata{ObservedBandwidth: 2048},
			expected: "Bandwidth (observed: 2.0 KB/s)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, titleLabel(tt.meta))
		})
	}
}

func TestDirectionTitle(t *testing.T) {
	dir := models.DirectionSnapshot{Last: 5.0, Total: 3600.0}

	t.Run("WithElapsed", func(t *testing.T) {
		got := directionTitle("Download", dir, time.Hour)
		assert.Equal(t, "Download 5.0 KB/s - avg: 1.0 KB/s, total: 3.5 MB", got)
	})

	t.Run("WithoutElapsed", func(t *testing.T) {
		got := directionTitle("Download", dir, 0)
		assert.Equal(t, "Download 5.0 KB/s", got)
	})
}

func TestAccountingLines(t *testing.T) {
	stats := &models.AccountingStats{
		Status:         models.AccountingStatusSoftLimit,
		ReadBytes:      512,
		ReadLimit:      1024,
		WrittenBytes:   256,
		WriteLimit:     1024,
		TimeUntilReset: 90 * time.Minute,
	}

	t.Run("DaemonUp", func(t *testing.T) {
		lines := accountingLines(stats, true)
		assert.Equal(t, []string{
			"Accounting (soft limit)   Time to reset: 1:30:00",
			"Down: 512 B / 1.0 KB   Up: 256 B / 1.0 KB",
		}, lines)
	})

	t.Run("DaemonDown", func(t *testing.T) {
		lines := accountingLines(stats, false)
		assert.Equal(t, []string{"Accounting: Connection Closed..."}, lines)
	})
}

func TestGraphSeries(t *testing.T) {
	t.Run("ReversesNewestFirst", func(t *testing.T) {
		assert.Equal(t, []float64{1, 2, 3}, graphSeries([]float64{3, 2, 1}, 10))
	})

	t.Run("CapsToWidth", func(t *testing.T) {
		assert.Equal(t, []float64{4, 5}, graphSeries([]float64{5, 4, 3, 2, 1}, 2))
	})

	t.Run("Empty", func(t *testing.T) {
		assert.Empty(t, graphSeries(nil, 10))
	})
}

func TestFooterText(t *testing.T) {
	t.Run("CountersOnly", func(t *testing.T) {
		got := footerText(metrics.Snapshot{SamplesIngested: 42})
		assert.Equal(t, "samples: 42  |  q: quit  1-9: interval", got)
	})

	t.Run("WithErrorsAndLastEvent", func(t *testing.T) {
		at := time.Date(2026, 8, 27, 10, 30, 0, 0, time.UTC)
		got := footerText(metrics.Snapshot{SamplesIngested: 7, QuotaPollErrors: 2, LastEventAt: at})
		assert.Equal(t, "samples: 7  poll errors: 2  last event: 10:30:00  |  q: quit  1-9: interval", got)
	})

	t.Run("WithDroppedEvents", func(t *testing.T) {
		got := footerText(metrics.Snapshot{SamplesIngested: 9, EventsDropped: 3})
		assert.Equal(t, "samples: 9  dropped: 3  |  q: quit  1-9: interval", got)
	})
}
