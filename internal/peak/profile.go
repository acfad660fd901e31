package peak

import (
	"sort"

	"github.com/panelcalc/engine/internal/models"
)

// HourStat is one long-format row of the hour-of-day load profile, ready for
// a caller-side chart.
type HourStat struct {
	Hour int
	Stat string
	KW   float64
}

const (
	StatPeak = "peak"
	StatMax  = "max"
	StatMean = "mean"
	StatMin  = "min"
)

// HourlyBreakdown aggregates readings by hour of day and emits, per hour
// present in the data, the flat peak line followed by max, mean and min.
func HourlyBreakdown(readings []models.Reading, peakKW float64) []HourStat {
	type agg struct {
		max   float64
		min   float64
		sum   float64
		count int
	}
	byHour := make(map[int]*agg)

	for _, r := range readings {
		h := r.Timestamp.Hour()
		a, ok := byHour[h]
		if !ok {
			byHour[h] = &agg{max: r.KWh, min: r.KWh, sum: r.KWh, count: 1}
			continue
		}
		if r.KWh > a.max {
			a.max = r.KWh
		}
		if r.KWh < a.min {
			a.min = r.KWh
		}
		a.sum += r.KWh
		a.count++
	}

	hours := make([]int, 0, len(byHour))
	for h := range byHour {
		hours = append(hours, h)
	}
	sort.Ints(hours)

	out := make([]HourStat, 0, len(hours)*4)
	for _, h := range hours {
		a := byHour[h]
		out = append(out,
			HourStat{Hour: h, Stat: StatPeak, KW: peakKW},
			HourStat{Hour: h, Stat: StatMax, KW: a.max},
			HourStat{Hour: h, Stat: StatMean, KW: a.sum / float64(a.count)},
			HourStat{Hour: h, Stat: StatMin, KW: a.min},
		)
	}
	return out
}
