package telemetry

// GraphConfig is the shared, immutable graph geometry. Resolutions are
// bucket widths in seconds, finest first; MaxColumn bounds how many columns
// a renderer can ever ask for.
type GraphConfig struct {
	Resolutions []int
	MaxColumn   int
}

// SampleStore keeps the bandwidth history of one transfer direction at every
// configured resolution. Buckets hold average per-second rates in KB/s,
// newest first, bounded to MaxColumn+1 entries per resolution. The running
// maximum survives truncation so the graph ceiling never shrinks while the
// store is live.
type SampleStore struct {
	cfg        GraphConfig
	history    [][]float64
	runningMax []float64
	lastValue  float64
	total      float64
	tick       int
}

func NewSampleStore(cfg GraphConfig) *SampleStore {
	return &SampleStore{
		cfg:        cfg,
		history:    make([][]float64, len(cfg.Resolutions)),
		runningMax: make([]float64, len(cfg.Resolutions)),
	}
}

// Record ingests one per-second sample. The finest bucket takes the value
// directly; coarser buckets accumulate value/width into their open bucket so
// a closed bucket ends up holding the average rate over its window.
func (s *SampleStore) Record(value float64) {
	s.tick++
	s.lastValue = value
	s.total += value

	for i, width := range s.cfg.Resolutions {
		if width <= 0 {
			continue
		}
		if (s.tick-1)%width == 0 || len(s.history[i]) == 0 {
			s.history[i] = append([]float64{0}, s.history[i]...)
			if len(s.history[i]) > s.cfg.MaxColumn+1 {
				s.history[i] = s.history[i][:s.cfg.MaxColumn+1]
			}
		}
		s.history[i][0] += value / float64(width)
		if s.history[i][0] > s.runningMax[i] {
			s.runningMax[i] = s.history[i][0]
		}
	}
}

// Backfill inserts historical values, oldest first, at the front of the
// history for one resolution, then truncates to the bound and recomputes the
// running maximum from what remains. Used only during startup
// reconciliation.
func (s *SampleStore) Backfill(values []float64, index int) {
	if index < 0 || index >= len(s.history) || len(values) == 0 {
		return
	}
	for _, v := range values {
		s.history[index] = append([]float64{v}, s.history[index]...)
	}
	if len(s.history[index]) > s.cfg.MaxColumn+1 {
		s.history[index] = s.history[index][:s.cfg.MaxColumn+1]
	}

	max := 0.0
	for _, v := range s.history[index] {
		if v > max {
			max = v
		}
	}
	s.runningMax[index] = max
}

// Clone returns an independent copy, used when a paused view of the graph
// must diverge from the live one.
func (s *SampleStore) Clone() *SampleStore {
	dup := &SampleStore{
		cfg:        s.cfg,
		history:    make([][]float64, len(s.history)),
		runningMax: append([]float64(nil), s.runningMax...),
		lastValue:  s.lastValue,
		total:      s.total,
		tick:       s.tick,
	}
	for i, h := range s.history {
		dup.history[i] = append([]float64(nil), h...)
	}
	return dup
}

// LastValue returns the most recent raw sample in KB/s.
func (s *SampleStore) LastValue() float64 {
	return s.lastValue
}

// Total returns the lifetime byte total attributed to this store, in KB.
func (s *SampleStore) Total() float64 {
	return s.total
}

// Max returns the running maximum bucket value at the given resolution.
func (s *SampleStore) Max(index int) float64 {
	if index < 0 || index >= len(s.runningMax) {
		return 0
	}
	return s.runningMax[index]
}

// History returns a newest-first copy of the buckets at the given
// resolution.
func (s *SampleStore) History(index int) []float64 {
	if index < 0 || index >= len(s.history) {
		return nil
	}
	return append([]float64(nil), s.history[index]...)
}
