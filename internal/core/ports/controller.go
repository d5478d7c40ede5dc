package ports

import (
	"time"

	"github.com/genc-murat/relaymon/internal/core/models"
)

// Controller is the control-protocol surface the telemetry layer consumes.
// Implementations perform the network I/O; the telemetry layer only ever
// sees resolved data.
type Controller interface {
	IsAlive() bool
	TrafficTotals() (read, written uint64, err error)
	ProcessStartTime() (time.Time, error)
	AccountingEnabled() (bool, error)
	AccountingStats() (*models.AccountingStats, error)
	Metadata() (models.RelayMetadata, error)
}
