package gaps

import (
	"math"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/panelcalc/engine/internal/metrics"
	"github.com/panelcalc/engine/internal/models"
	"github.com/panelcalc/engine/pkg/logger"
)

// DefaultTolerance is the multiple of the locally expected interval beyond
// which a delta counts as a gap.
const DefaultTolerance = 1.5

// Series shorter than this use a single modal interval instead of a rolling
// estimate.
const shortSeriesLen = 10

// rolling median window over consecutive deltas
const medianWindow = 4

type Detector struct {
	location  *time.Location
	tolerance float64
}

// New builds a detector. The location is used to report gap boundaries and
// to recognize DST transitions; nil means UTC. A tolerance <= 0 falls back
// to DefaultTolerance.
func New(location *time.Location, tolerance float64) *Detector {
	if location == nil {
		location = time.UTC
	}
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	return &Detector{location: location, tolerance: tolerance}
}

// Detect finds missing-data ranges in a normalized series. Deltas are
// computed on the absolute time axis, so DST clock shifts never masquerade
// as gaps; a flagged delta that straddles a UTC-offset change is suppressed
// as a civil-time artifact. Fewer than two readings yield no gaps.
func (d *Detector) Detect(readings []models.Reading) []models.GapRecord {
	if len(readings) < 2 {
		return nil
	}

	times := make([]time.Time, len(readings))
	for i, r := range readings {
		times[i] = r.Timestamp.In(d.location)
	}

	deltas := make([]time.Duration, len(times)-1)
	for i := range deltas {
		deltas[i] = times[i+1].Sub(times[i])
	}

	expected := expectedIntervals(deltas, len(readings))

	var gaps []models.GapRecord
	for i, delta := range deltas {
		if expected[i] <= 0 {
			continue
		}
		if float64(delta) <= d.tolerance*float64(expected[i]) {
			continue
		}
		if offsetChanged(times[i], times[i+1]) {
			continue
		}

		start := times[i].Add(expected[i])
		end := times[i+1]
		duration := end.Sub(start)
		missing := int(math.Round(float64(duration) / float64(expected[i])))
		if missing < 0 {
			missing = 0
		}

		gaps = append(gaps, models.GapRecord{
			Start:            start,
			End:              end,
			Duration:         duration,
			MissingIntervals: missing,
		})
	}

	if len(gaps) > 0 {
		metrics.GapsDetected.Add(float64(len(gaps)))
		logger.Debug("detected data gaps",
			zap.Int("gaps", len(gaps)),
			zap.Int("readings", len(readings)),
		)
	}

	return gaps
}

// expectedIntervals estimates the sampling cadence at each delta position.
// Short series use the smallest modal positive delta, which favors the finer
// cadence when hourly and quarter-hour data are mixed. Longer series use a
// centered rolling median so the estimate tracks cadence changes partway
// through the data.
func expectedIntervals(deltas []time.Duration, seriesLen int) []time.Duration {
	expected := make([]time.Duration, len(deltas))

	if seriesLen < shortSeriesLen {
		mode := modalInterval(deltas)
		for i := range expected {
			expected[i] = mode
		}
		return expected
	}

	// centered window covering deltas[i-2 .. i+1]
	for i := range deltas {
		lo, hi := i-medianWindow/2, i+medianWindow/2
		if lo < 0 || hi > len(deltas) {
			expected[i] = 0
			continue
		}
		expected[i] = median(deltas[lo:hi])
	}

	// back-fill then forward-fill the edges
	for i := len(expected) - 2; i >= 0; i-- {
		if expected[i] == 0 {
			expected[i] = expected[i+1]
		}
	}
	for i := 1; i < len(expected); i++ {
		if expected[i] == 0 {
			expected[i] = expected[i-1]
		}
	}

	return expected
}

// modalInterval returns the most frequent positive delta, preferring the
// smallest on ties.
func modalInterval(deltas []time.Duration) time.Duration {
	counts := make(map[time.Duration]int)
	for _, d := range deltas {
		if d > 0 {
			counts[d]++
		}
	}
	if len(counts) == 0 {
		return 0
	}

	var mode time.Duration
	best := -1
	values := make([]time.Duration, 0, len(counts))
	for v := range counts {
		values = append(values, v)
	}
	sort.Slice(values, func(a, b int) bool { return values[a] < values[b] })
	for _, v := range values {
		if counts[v] > best {
			best = counts[v]
			mode = v
		}
	}
	return mode
}

func median(window []time.Duration) time.Duration {
	sorted := make([]time.Duration, len(window))
	copy(sorted, window)
	sort.Slice(sorted, func(a, b int) bool { return sorted[a] < sorted[b] })

	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// offsetChanged reports whether the local UTC offset differs between two
// instants, i.e. a DST transition lies between them.
func offsetChanged(a, b time.Time) bool {
	_, offA := a.Zone()
	_, offB := b.Zone()
	return offA != offB
}
