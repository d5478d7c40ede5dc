package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/genc-murat/relaymon/internal/core/models"
	"github.com/genc-murat/relaymon/pkg/utils"
)

// titleLabel builds the panel title from the relay metadata, e.g.
// "Bandwidth (limit: 1.0 MB/s, burst: 2.0 MB/s, measured: 512.0 KB/s)".
func titleLabel(meta models.RelayMetadata) string {
	var parts []string
	if meta.EffectiveRate > 0 && meta.EffectiveBurst > 0 {
		parts = append(parts,
			"limit: "+utils.RateLabel(float64(meta.EffectiveRate)),
			"burst: "+utils.RateLabel(float64(meta.EffectiveBurst)),
		)
	}
	if meta.MeasuredBandwidth > 0 {
		parts = append(parts, "measured: "+utils.RateLabel(float64(meta.MeasuredBandwidth)))
	} else if meta.ObservedBandwidth > 0 {
		parts = append(parts, "observed: "+utils.RateLabel(float64(meta.ObservedBandwidth)))
	}

	if len(parts) == 0 {
		return "Bandwidth"
	}
	return "Bandwidth (" + strings.Join(parts, ", ") + ")"
}

// directionTitle builds one direction's header. Direction values are KB, so
// they are scaled back to bytes for the labels.
func directionTitle(name string, dir models.DirectionSnapshot, elapsed time.Duration) string {
	label := fmt.Sprintf("%s %s", name, utils.RateLabel(dir.Last*1024))
	if elapsed > 0 {
		avg := dir.Total / elapsed.Seconds() * 1024
		label += fmt.Sprintf(" - avg: %s, total: %s", utils.RateLabel(avg), utils.SizeLabel(dir.Total*1024))
	}
	return label
}

// accountingLines renders the quota block. With the daemon down the last
// known numbers are no longer trustworthy enough to show.
func accountingLines(stats *models.AccountingStats, daemonUp bool) []string {
	if !daemonUp {
		return []string{"Accounting: Connection Closed..."}
	}
	return []string{
		fmt.Sprintf("Accounting (%s)   Time to reset: %s",
			statusLabel(stats.Status), utils.ShortTimeLabel(stats.TimeUntilReset)),
		fmt.Sprintf("Down: %s / %s   Up: %s / %s",
			utils.SizeLabel(float64(stats.ReadBytes)), utils.SizeLabel(float64(stats.ReadLimit)),
			utils.SizeLabel(float64(stats.WrittenBytes)), utils.SizeLabel(float64(stats.WriteLimit))),
	}
}

func statusLabel(status models.AccountingStatus) string {
	switch status {
	case models.AccountingStatusSoftLimit:
		return "soft limit"
	case models.AccountingStatusHardLimit:
		return "hard limit"
	default:
		return "normal"
	}
}

// graphSeries turns a newest-first history into the oldest-first series the
// sparkline draws left to right, capped to the visible width.
func graphSeries(history []float64, width int) []float64 {
	if width > 0 && len(history) > width {
		history = history[:width]
	}
	series := make([]float64, len(history))
	for i, v := range history {
		series[len(history)-1-i] = v
	}
	return series
}
