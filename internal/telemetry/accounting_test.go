package telemetry

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genc-murat/relaymon/internal/core/models"
)

// fakeController scripts the control-protocol surface for tracker and
// binder tests.
type fakeController struct {
	alive             bool
	accountingEnabled bool
	accountingErr     error
	stats             *models.AccountingStats
	statsErr          error
	statsFetches      int
	metadata          models.RelayMetadata
	metadataErr       error
	metadataFetches   int
}

func (f *fakeController) IsAlive() bool { return f.alive }

func (f *fakeController) TrafficTotals() (uint64, uint64, error) { return 0, 0, nil }

func (f *fakeController) ProcessStartTime() (time.Time, error) { return time.Time{}, nil }

func (f *fakeController) AccountingEnabled() (bool, error) {
	return f.accountingEnabled, f.accountingErr
}

func (f *fakeController) AccountingStats() (*models.AccountingStats, error) {
	f.statsFetches++
	if f.statsErr != nil {
		return nil, f.statsErr
	}
	return f.stats, nil
}

func (f *fakeController) Metadata() (models.RelayMetadata, error) {
	f.metadataFetches++
	return f.metadata, f.metadataErr
}

func TestAccountingTrackerPollRateLimit(t *testing.T) {
	now := time.Date(2026, 8, 27, 10, 0, 0, 0, time.UTC)
	clock := now
	ctrl := &fakeController{
		alive: true,
		stats: &models.AccountingStats{Status: models.AccountingStatusNormal},
	}
	tracker := newAccountingTracker(ctrl, func() time.Time { return clock })
	tracker.SetEnabled(true)
	require.Equal(t, 1, ctrl.statsFetches, "enabling fetches once")

	t.Run("SecondCallWithinIntervalIsNoop", func(t *testing.T) {
		clock = now.Add(2 * time.Second)
		require.NoError(t, tracker.MaybeRefresh(5*time.Second))
		require.NoError(t, tracker.MaybeRefresh(5*time.Second))
		assert.Equal(t, 1, ctrl.statsFetches)
	})

	t.Run("RefreshesOnceIntervalElapses", func(t *testing.T) {
		clock = now.Add(6 * time.Second)
		require.NoError(t, tracker.MaybeRefresh(5*time.Second))
		assert.Equal(t, 2, ctrl.statsFetches)
	})
}

func TestAccountingTrackerPollFailureKeepsCache(t *testing.T) {
	now := time.Date(2026, 8, 27, 10, 0, 0, 0, time.UTC)
	clock := now
	ctrl := &fakeController{
		alive: true,
		stats: &models.AccountingStats{Status: models.AccountingStatusSoftLimit, ReadBytes: 42},
	}
	tracker := newAccountingTracker(ctrl, func() time.Time { return clock })
	tracker.SetEnabled(true)

	ctrl.statsErr = errors.New("connection reset")
	clock = now.Add(time.Minute)
	err := tracker.MaybeRefresh(5 * time.Second)
	assert.ErrorIs(t, err, ErrQuotaPoll)

	stats := tracker.Stats()
	require.NotNil(t, stats, "last known stats survive a failed poll")
	assert.Equal(t, uint64(42), stats.ReadBytes)
}

func TestAccountingTrackerDisableClearsState(t *testing.T) {
	ctrl := &fakeController{
		alive: true,
		stats: &models.AccountingStats{Status: models.AccountingStatusNormal},
	}
	tracker := NewAccountingTracker(ctrl)
	tracker.SetEnabled(true)
	require.NotNil(t, tracker.Stats())

	tracker.SetEnabled(false)
	assert.Nil(t, tracker.Stats())
	assert.False(t, tracker.Enabled())

	assert.NoError(t, tracker.MaybeRefresh(0), "disabled tracker never polls")
	assert.Equal(t, 1, ctrl.statsFetches)
}

func TestAccountingTrackerStatsReturnsCopy(t *testing.T) {
	ctrl := &fakeController{
		alive: true,
		stats: &models.AccountingStats{ReadBytes: 7},
	}
	tracker := NewAccountingTracker(ctrl)
	tracker.SetEnabled(true)

	first := tracker.Stats()
	first.ReadBytes = 9999
	assert.Equal(t, uint64(7), tracker.Stats().ReadBytes)
}
