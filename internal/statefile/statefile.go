package statefile

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/gofrs/flock"
	"github.com/tidwall/gjson"

	"github.com/genc-murat/relaymon/internal/core/models"
)

// The daemon appends one entry per 15-minute accounting interval.
const entryInterval = 15 * time.Minute

var (
	// ErrLocked means the daemon held the state file exclusively for the
	// whole lock timeout.
	ErrLocked = errors.New("statefile: could not acquire shared lock")

	// ErrMalformed means the file was readable but its bandwidth history is
	// unusable.
	ErrMalformed = errors.New("statefile: malformed bandwidth history")
)

const lockRetryDelay = 50 * time.Millisecond

// Load reads the daemon's persisted bandwidth history. The daemon rewrites
// the file periodically, so reads happen under a shared advisory lock.
// Entries are stored as raw bytes per interval and converted here to KB/s
// bucket averages, the unit the sample stores work in.
func Load(path string, lockTimeout time.Duration) (*models.BandwidthState, error) {
	lock := flock.New(path)
	ctx, cancel := context.WithTimeout(context.Background(), lockTimeout)
	defer cancel()

	locked, err := lock.TryRLockContext(ctx, lockRetryDelay)
	if err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return nil, fmt.Errorf("statefile: locking %s: %w", path, err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: %s", ErrLocked, path)
	}
	defer lock.Unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("statefile: reading %s: %w", path, err)
	}
	return parse(data)
}

func parse(data []byte) (*models.BandwidthState, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: not valid JSON", ErrMalformed)
	}
	doc := gjson.ParseBytes(data)

	read, err := direction(doc.Get("bandwidth_history.read"))
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	write, err := direction(doc.Get("bandwidth_history.write"))
	if err != nil {
		return nil, fmt.Errorf("write history: %w", err)
	}

	return &models.BandwidthState{
		ReadEntries:   read.entries,
		WriteEntries:  write.entries,
		LastReadTime:  read.last,
		LastWriteTime: write.last,
	}, nil
}

type directionHistory struct {
	entries []float64
	last    time.Time
}

func direction(node gjson.Result) (directionHistory, error) {
	if !node.Exists() {
		return directionHistory{}, fmt.Errorf("%w: direction missing", ErrMalformed)
	}

	values := node.Get("values").Array()
	if len(values) == 0 {
		return directionHistory{}, fmt.Errorf("%w: no entries", ErrMalformed)
	}

	lastUnix := node.Get("last").Int()
	if lastUnix <= 0 {
		return directionHistory{}, fmt.Errorf("%w: missing last timestamp", ErrMalformed)
	}

	entries := make([]float64, len(values))
	for i, v := range values {
		// bytes per interval -> average KB/s over the interval
		entries[i] = v.Float() / entryInterval.Seconds() / 1024.0
	}
	return directionHistory{entries: entries, last: time.Unix(lastUnix, 0)}, nil
}
