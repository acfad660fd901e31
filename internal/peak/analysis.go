package peak

import (
	"fmt"
	"math"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/panelcalc/engine/internal/models"
)

// Cadence labels reported by Analyze. "Fake 15-minute" marks hours that carry
// four readings all repeating one value, which capture no more intra-hour
// detail than a single hourly reading.
const (
	CadenceHourly    = "Hourly"
	Cadence15Minute  = "15-minute"
	CadenceFake15Min = "Fake 15-minute"
)

// Coverage thresholds below which the estimate rests on too little history.
const (
	minDaysSubHourly = 30
	minDaysHourly    = 365
)

// Summary describes the shape of a normalized series: span, cadence, peak
// reading provenance and any coverage warnings.
type Summary struct {
	FirstReading    time.Time
	LastReading     time.Time
	DaysCovered     int
	TotalReadings   int
	HoursWithData   int
	ReadingsPerHour float64
	ReadingsPerDay  float64
	CadenceLabels   []string
	PeakKWh         float64
	PeakTimes       []time.Time
	Warnings        []string
	Text            string
}

// Analyze computes summary statistics over a normalized series.
func Analyze(readings []models.Reading) (Summary, error) {
	if len(readings) == 0 {
		return Summary{}, models.NewDataError("cannot analyze an empty series")
	}

	s := Summary{
		FirstReading:  readings[0].Timestamp,
		LastReading:   readings[len(readings)-1].Timestamp,
		TotalReadings: len(readings),
	}
	s.DaysCovered = int(math.Round(s.LastReading.Sub(s.FirstReading).Hours() / 24))

	s.PeakKWh = readings[0].KWh
	for _, r := range readings {
		if r.KWh > s.PeakKWh {
			s.PeakKWh = r.KWh
		}
	}
	for _, r := range readings {
		if r.KWh == s.PeakKWh {
			s.PeakTimes = append(s.PeakTimes, r.Timestamp)
		}
	}

	buckets := bucketByHour(readings)
	s.HoursWithData = len(buckets)
	s.ReadingsPerHour = float64(len(readings)) / float64(len(buckets))
	if s.DaysCovered > 0 {
		s.ReadingsPerDay = float64(len(readings)) / float64(s.DaysCovered)
	}

	var hasHourly, hasSubHourly, hasFakeSubHourly bool
	for _, b := range buckets {
		switch {
		case b.distinctTimes == 1:
			hasHourly = true
		case b.distinctTimes == 4 && b.distinctValues > 1:
			hasSubHourly = true
		case b.distinctTimes == 4 && b.distinctValues == 1:
			hasFakeSubHourly = true
		}
	}
	if hasHourly {
		s.CadenceLabels = append(s.CadenceLabels, CadenceHourly)
	}
	if hasSubHourly {
		s.CadenceLabels = append(s.CadenceLabels, Cadence15Minute)
	}
	if hasFakeSubHourly {
		s.CadenceLabels = append(s.CadenceLabels, CadenceFake15Min)
	}

	if hasSubHourly && !hasHourly && !hasFakeSubHourly {
		if s.DaysCovered < minDaysSubHourly {
			s.Warnings = append(s.Warnings,
				fmt.Sprintf("only %d days of 15-minute interval data; at least %d are required", s.DaysCovered, minDaysSubHourly))
		}
	} else if hasHourly || hasFakeSubHourly {
		if s.DaysCovered < minDaysHourly {
			s.Warnings = append(s.Warnings,
				fmt.Sprintf("hourly data detected spanning %d days; at least %d are required", s.DaysCovered, minDaysHourly))
		}
	}

	s.Text = fmt.Sprintf("%s readings spanning %d days (%s to %s)",
		humanize.Comma(int64(s.TotalReadings)),
		s.DaysCovered,
		s.FirstReading.Format("2006-01-02"),
		s.LastReading.Format("2006-01-02"),
	)

	return s, nil
}
