package normalize

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/panelcalc/engine/internal/metrics"
	"github.com/panelcalc/engine/internal/models"
	"github.com/panelcalc/engine/pkg/logger"
)

// RawTable is the loosely-typed table handed over by the boundary layer.
// All cells are strings; typing happens here.
type RawTable struct {
	Columns []string
	Rows    [][]string
}

// Column conventions recognized in the input. The canonical pair comes from
// utility CSV exports, the feed pair from interval-data feeds.
var columnConventions = []struct {
	timestamp []string
	energy    []string
}{
	{timestamp: []string{"datetime"}, energy: []string{"kwh", "kw"}},
	{timestamp: []string{"interval_start"}, energy: []string{"interval_kwh"}},
}

// Timestamp layouts tried in order. Layouts without a zone are interpreted
// in the normalizer's configured location.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"2006-01-02",
}

type Normalizer struct {
	location *time.Location
}

func New(location *time.Location) *Normalizer {
	if location == nil {
		location = time.UTC
	}
	return &Normalizer{location: location}
}

// Normalize projects the raw table down to a (timestamp, kWh) series:
// unparseable rows are dropped, the result is sorted ascending and
// deduplicated by timestamp. The returned slice shares nothing with the
// input, so repeated calls on the same table are idempotent.
func (n *Normalizer) Normalize(table RawTable) ([]models.Reading, error) {
	tsIdx, energyIdx, err := resolveColumns(table.Columns)
	if err != nil {
		return nil, err
	}

	readings := make([]models.Reading, 0, len(table.Rows))
	dropped := 0
	for i, row := range table.Rows {
		if tsIdx >= len(row) || energyIdx >= len(row) {
			dropped++
			continue
		}

		ts, ok := n.parseTimestamp(row[tsIdx])
		if !ok {
			dropped++
			continue
		}

		kwh, err := strconv.ParseFloat(strings.TrimSpace(row[energyIdx]), 64)
		if err != nil || kwh < 0 {
			dropped++
			continue
		}

		readings = append(readings, models.Reading{
			Timestamp: ts,
			KWh:       kwh,
			SourceRow: i,
		})
	}

	if dropped > 0 {
		metrics.RowsDropped.Add(float64(dropped))
		logger.Debug("dropped unparseable rows",
			zap.Int("dropped", dropped),
			zap.Int("total", len(table.Rows)),
		)
	}

	if len(readings) == 0 {
		return nil, models.NewDataError("no usable readings after normalization (%d rows dropped)", dropped)
	}

	sort.SliceStable(readings, func(a, b int) bool {
		return readings[a].Timestamp.Before(readings[b].Timestamp)
	})

	deduped := readings[:0]
	for _, r := range readings {
		if len(deduped) > 0 && r.Timestamp.Equal(deduped[len(deduped)-1].Timestamp) {
			continue
		}
		deduped = append(deduped, r)
	}

	out := make([]models.Reading, len(deduped))
	copy(out, deduped)
	return out, nil
}

func resolveColumns(columns []string) (tsIdx, energyIdx int, err error) {
	lookup := make(map[string]int, len(columns))
	for i, c := range columns {
		lookup[strings.ToLower(strings.TrimSpace(c))] = i
	}

	for _, conv := range columnConventions {
		ts, tsOK := firstPresent(lookup, conv.timestamp)
		en, enOK := firstPresent(lookup, conv.energy)
		if tsOK && enOK {
			return ts, en, nil
		}
	}

	return 0, 0, models.NewFormatError(
		"unrecognized table schema: columns %v match neither the DateTime/kWh nor the interval_start/interval_kwh convention",
		columns,
	)
}

func firstPresent(lookup map[string]int, names []string) (int, bool) {
	for _, name := range names {
		if idx, ok := lookup[name]; ok {
			return idx, true
		}
	}
	return 0, false
}

func (n *Normalizer) parseTimestamp(raw string) (time.Time, bool) {
	s := strings.TrimSpace(strings.Trim(strings.TrimSpace(raw), `"`))
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, n.location); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
