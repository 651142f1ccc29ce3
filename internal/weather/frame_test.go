package weather

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrame_DropIncomplete(t *testing.T) {
	f := &Frame{
		Header: []string{"timestamp", "a", "b"},
		Rows: [][]string{
			{"T1", "1", "2"},
			{"T2", "", "2"},
			{"T3", "1"},
			{"T4", "3", "4"},
		},
	}
	assert.Equal(t, 2, f.DropIncomplete())
	assert.Equal(t, [][]string{{"T1", "1", "2"}, {"T4", "3", "4"}}, f.Rows)
}

func TestFrame_RoundNumericColumnsOnly(t *testing.T) {
	f := &Frame{
		Header: []string{"timestamp", "temp", "humidity"},
		Rows: [][]string{
			{"2025-01-01T00:00", "21.456", "60"},
			{"2025-01-01T01:00", "-3.14159", "61"},
		},
	}
	f.Round(2)
	assert.Equal(t, [][]string{
		{"2025-01-01T00:00", "21.46", "60"},
		{"2025-01-01T01:00", "-3.14", "61"},
	}, f.Rows)
}

func TestFrame_EnforceFloat(t *testing.T) {
	f := &Frame{
		Header: []string{"timestamp", ColumnRelativeHumidity, ColumnPM10},
		Rows:   [][]string{{"T1", "60", "40.5"}},
	}
	require.NoError(t, f.EnforceFloat(NumericColumns...))
	assert.Equal(t, [][]string{{"T1", "60.0", "40.5"}}, f.Rows)
}

func TestFrame_EnforceFloatRejectsText(t *testing.T) {
	f := &Frame{
		Header: []string{ColumnPM10},
		Rows:   [][]string{{"n/a"}},
	}
	assert.ErrorContains(t, f.EnforceFloat(ColumnPM10), "cannot convert")
}

func TestFrame_SetColumn(t *testing.T) {
	f := &Frame{Header: []string{"timestamp"}, Rows: [][]string{{"T1"}, {"T2"}}}
	f.SetColumn(ColumnDate, "2025-01-01")
	assert.Equal(t, []string{"timestamp", "date"}, f.Header)
	assert.Equal(t, [][]string{{"T1", "2025-01-01"}, {"T2", "2025-01-01"}}, f.Rows)

	f.SetColumn(ColumnDate, "2025-01-02")
	assert.Equal(t, []string{"timestamp", "date"}, f.Header)
	assert.Equal(t, "2025-01-02", f.Rows[1][1])
}

func TestFrame_Readings(t *testing.T) {
	f := &Frame{
		Header: []string{ColumnTimestamp, ColumnTemperature, ColumnApparentTemperature, ColumnRelativeHumidity, ColumnPM10, ColumnPM25, ColumnDate},
		Rows:   [][]string{{"T1", "21.5", "23.0", "60.0", "40.13", "12.5", "2025-01-01"}},
	}
	readings, err := f.Readings()
	require.NoError(t, err)
	assert.Equal(t, []Reading{{
		Timestamp:           "T1",
		Temperature:         21.5,
		ApparentTemperature: 23,
		RelativeHumidity:    60,
		PM10:                40.13,
		PM25:                12.5,
		Date:                "2025-01-01",
	}}, readings)

	_, err = (&Frame{Header: []string{ColumnTimestamp}}).Readings()
	assert.ErrorContains(t, err, "missing column")
}

func TestFormatFloat(t *testing.T) {
	assert.Equal(t, "21.0", FormatFloat(21))
	assert.Equal(t, "21.46", FormatFloat(21.46))
	assert.Equal(t, "-0.5", FormatFloat(-0.5))
}
