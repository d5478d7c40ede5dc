package models

import "time"

// AccountingStatus mirrors the daemon's hibernation state for the current
// accounting period.
type AccountingStatus string

const (
	AccountingStatusNormal    AccountingStatus = "normal"
	AccountingStatusSoftLimit AccountingStatus = "soft_limit"
	AccountingStatusHardLimit AccountingStatus = "hard_limit"
)

// AccountingStats is a point-in-time copy of the daemon's accounting quota
// state. RetrievedAt drives the poll rate limit.
type AccountingStats struct {
	Status         AccountingStatus
	ReadBytes      uint64
	ReadLimit      uint64
	WrittenBytes   uint64
	WriteLimit     uint64
	TimeUntilReset time.Duration
	RetrievedAt    time.Time
}

// RelayMetadata holds the title-level bandwidth descriptors reported by the
// daemon. All values are bytes per second; zero means the daemon did not
// report that field.
type RelayMetadata struct {
	EffectiveRate     uint64
	EffectiveBurst    uint64
	MeasuredBandwidth uint64
	ObservedBandwidth uint64
}

// BandwidthState is the persisted bandwidth history loaded from the daemon's
// state file. Entries are KB/s bucket averages over fixed 15-minute
// intervals, oldest first. The timestamps mark when the newest entry of each
// direction was recorded.
type BandwidthState struct {
	ReadEntries   []float64
	WriteEntries  []float64
	LastReadTime  time.Time
	LastWriteTime time.Time
}

// TierSnapshot is one resolution tier's view of a direction: the bounded
// newest-first bucket history and its running maximum.
type TierSnapshot struct {
	Max     float64
	History []float64
}

// DirectionSnapshot is the read-only view of one transfer direction across
// every configured graph resolution. Carrying all tiers lets the renderer
// switch resolutions between publications.
type DirectionSnapshot struct {
	Last  float64
	Total float64
	Tiers []TierSnapshot
}

// Tier returns the view at the given resolution index, or a zero view when
// the index is out of range.
func (d DirectionSnapshot) Tier(index int) TierSnapshot {
	if index < 0 || index >= len(d.Tiers) {
		return TierSnapshot{}
	}
	return d.Tiers[index]
}

// TelemetrySnapshot is the immutable per-tick view published for the
// renderer. Mutation happens on the monitor loop only; readers hold a
// snapshot that never changes under them.
type TelemetrySnapshot struct {
	Taken      time.Time
	StartTime  time.Time
	Download   DirectionSnapshot
	Upload     DirectionSnapshot
	Accounting *AccountingStats
	Metadata   RelayMetadata
	DaemonUp   bool
}
