package normalize

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panelcalc/engine/internal/models"
)

func TestNormalizeCanonicalColumns(t *testing.T) {
	table := RawTable{
		Columns: []string{"DateTime", "kWh", "meter_id"},
		Rows: [][]string{
			{"2024-01-01 01:00:00", "1.5", "m1"},
			{"2024-01-01 00:00:00", "2.0", "m1"},
		},
	}

	readings, err := New(time.UTC).Normalize(table)
	require.NoError(t, err)
	require.Len(t, readings, 2)

	// sorted ascending, extra columns discarded
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), readings[0].Timestamp)
	assert.Equal(t, 2.0, readings[0].KWh)
	assert.Equal(t, 1, readings[0].SourceRow)
	assert.Equal(t, 1.5, readings[1].KWh)
}

func TestNormalizeFeedColumns(t *testing.T) {
	table := RawTable{
		Columns: []string{"Interval_Start", "Interval_kWh"},
		Rows: [][]string{
			{"2024-06-01T00:00:00", "0.25"},
		},
	}

	readings, err := New(time.UTC).Normalize(table)
	require.NoError(t, err)
	require.Len(t, readings, 1)
	assert.Equal(t, 0.25, readings[0].KWh)
}

func TestNormalizeUnrecognizedSchema(t *testing.T) {
	table := RawTable{
		Columns: []string{"ts", "watts"},
		Rows:    [][]string{{"2024-01-01 00:00:00", "1.0"}},
	}

	_, err := New(time.UTC).Normalize(table)
	require.Error(t, err)
	var fmtErr *models.FormatError
	assert.True(t, errors.As(err, &fmtErr))
}

func TestNormalizeDropsBadRows(t *testing.T) {
	table := RawTable{
		Columns: []string{"DateTime", "kWh"},
		Rows: [][]string{
			{"2024-01-01 00:00:00", "1.0"},
			{"not a date", "1.0"},
			{"2024-01-01 01:00:00", "oops"},
			{"2024-01-01 02:00:00", "-3.0"},
			{"2024-01-01 03:00:00"},
			{"2024-01-01 04:00:00", "2.0"},
		},
	}

	readings, err := New(time.UTC).Normalize(table)
	require.NoError(t, err)
	require.Len(t, readings, 2)
	assert.Equal(t, 1.0, readings[0].KWh)
	assert.Equal(t, 2.0, readings[1].KWh)
}

func TestNormalizeAllRowsDropped(t *testing.T) {
	table := RawTable{
		Columns: []string{"DateTime", "kWh"},
		Rows:    [][]string{{"garbage", "more garbage"}},
	}

	_, err := New(time.UTC).Normalize(table)
	require.Error(t, err)
	var dataErr *models.DataError
	assert.True(t, errors.As(err, &dataErr))
}

func TestNormalizeDeduplicatesTimestamps(t *testing.T) {
	table := RawTable{
		Columns: []string{"DateTime", "kWh"},
		Rows: [][]string{
			{"2024-01-01 00:00:00", "1.0"},
			{"2024-01-01 00:00:00", "9.0"},
			{"2024-01-01 01:00:00", "2.0"},
		},
	}

	readings, err := New(time.UTC).Normalize(table)
	require.NoError(t, err)
	require.Len(t, readings, 2)
	// first occurrence wins
	assert.Equal(t, 1.0, readings[0].KWh)
}

func TestNormalizeIsIdempotent(t *testing.T) {
	table := RawTable{
		Columns: []string{"DateTime", "kWh"},
		Rows: [][]string{
			{"2024-01-01 01:00:00", "1.5"},
			{"2024-01-01 00:00:00", "2.0"},
		},
	}

	n := New(time.UTC)
	first, err := n.Normalize(table)
	require.NoError(t, err)

	// mutating the output must not leak back into the source table
	first[0].KWh = 99.0

	second, err := n.Normalize(table)
	require.NoError(t, err)
	assert.Equal(t, 2.0, second[0].KWh)
}

func TestNormalizeNaiveTimestampsUseConfiguredZone(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	table := RawTable{
		Columns: []string{"DateTime", "kWh"},
		Rows:    [][]string{{"2024-01-15 12:00:00", "1.0"}},
	}

	readings, err := New(loc).Normalize(table)
	require.NoError(t, err)
	assert.Equal(t, loc, readings[0].Timestamp.Location())
	assert.Equal(t, 17, readings[0].Timestamp.UTC().Hour())
}
