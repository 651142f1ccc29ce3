package weather

import (
	"fmt"
	"math"
	"strconv"
)

// Frame is a tabular daily dataset: a header and rows of cell text.
// An empty cell is a missing value.
type Frame struct {
	Header []string
	Rows   [][]string
}

// Len returns the number of rows.
func (f *Frame) Len() int {
	return len(f.Rows)
}

// Empty reports whether the frame has no rows.
func (f *Frame) Empty() bool {
	return len(f.Rows) == 0
}

// ColumnIndex returns the position of name in the header, or -1.
func (f *Frame) ColumnIndex(name string) int {
	for i, h := range f.Header {
		if h == name {
			return i
		}
	}
	return -1
}

// Column returns a copy of the named column's cells.
func (f *Frame) Column(name string) ([]string, bool) {
	idx := f.ColumnIndex(name)
	if idx < 0 {
		return nil, false
	}
	out := make([]string, len(f.Rows))
	for i, row := range f.Rows {
		out[i] = cell(row, idx)
	}
	return out, true
}

// DropIncomplete removes every row with a missing value in any column.
// It returns the number of rows removed.
func (f *Frame) DropIncomplete() int {
	kept := f.Rows[:0]
	for _, row := range f.Rows {
		if complete(row, len(f.Header)) {
			kept = append(kept, row)
		}
	}
	dropped := len(f.Rows) - len(kept)
	f.Rows = kept
	return dropped
}

// Round rounds every numeric column to the given number of decimal places.
// A column is numeric when all its non-missing cells parse as numbers.
func (f *Frame) Round(places int) {
	for idx := range f.Header {
		if !f.numeric(idx) {
			continue
		}
		for _, row := range f.Rows {
			if idx >= len(row) || row[idx] == "" {
				continue
			}
			v, _ := strconv.ParseFloat(row[idx], 64)
			row[idx] = formatNumber(roundTo(v, places), isFloatText(row[idx]))
		}
	}
}

// EnforceFloat casts the named columns to floating point text.
// Columns absent from the header are skipped silently.
func (f *Frame) EnforceFloat(columns ...string) error {
	for _, name := range columns {
		idx := f.ColumnIndex(name)
		if idx < 0 {
			continue
		}
		for i, row := range f.Rows {
			if idx >= len(row) || row[idx] == "" {
				continue
			}
			v, err := strconv.ParseFloat(row[idx], 64)
			if err != nil {
				return fmt.Errorf("column %s row %d: cannot convert %q to float: %w", name, i, row[idx], err)
			}
			row[idx] = FormatFloat(v)
		}
	}
	return nil
}

// SetColumn sets name to value on every row, appending the column if absent.
func (f *Frame) SetColumn(name, value string) {
	idx := f.ColumnIndex(name)
	if idx < 0 {
		f.Header = append(f.Header, name)
		idx = len(f.Header) - 1
	}
	for i, row := range f.Rows {
		for len(row) <= idx {
			row = append(row, "")
		}
		row[idx] = value
		f.Rows[i] = row
	}
}

// Readings converts a cleaned frame into typed readings. Every Reading column must be present.
func (f *Frame) Readings() ([]Reading, error) {
	cols := map[string]int{}
	for _, name := range append([]string{ColumnTimestamp, ColumnDate}, NumericColumns...) {
		idx := f.ColumnIndex(name)
		if idx < 0 {
			return nil, fmt.Errorf("frame is missing column %s", name)
		}
		cols[name] = idx
	}

	out := make([]Reading, 0, len(f.Rows))
	for i, row := range f.Rows {
		var nums [5]float64
		for j, name := range NumericColumns {
			v, err := strconv.ParseFloat(cell(row, cols[name]), 64)
			if err != nil {
				return nil, fmt.Errorf("row %d column %s: %w", i, name, err)
			}
			nums[j] = v
		}
		out = append(out, Reading{
			Timestamp:           cell(row, cols[ColumnTimestamp]),
			Temperature:         nums[0],
			ApparentTemperature: nums[1],
			RelativeHumidity:    nums[2],
			PM10:                nums[3],
			PM25:                nums[4],
			Date:                cell(row, cols[ColumnDate]),
		})
	}
	return out, nil
}

func (f *Frame) numeric(idx int) bool {
	seen := false
	for _, row := range f.Rows {
		v := cell(row, idx)
		if v == "" {
			continue
		}
		if _, err := strconv.ParseFloat(v, 64); err != nil {
			return false
		}
		seen = true
	}
	return seen
}

func complete(row []string, width int) bool {
	if len(row) < width {
		return false
	}
	for _, v := range row[:width] {
		if v == "" {
			return false
		}
	}
	return true
}

func cell(row []string, idx int) string {
	if idx < len(row) {
		return row[idx]
	}
	return ""
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// FormatFloat renders v the way a float column is written: always with a fractional part.
func FormatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if math.Trunc(v) == v && !math.IsInf(v, 0) && !math.IsNaN(v) {
		s += ".0"
	}
	return s
}

func formatNumber(v float64, float bool) string {
	if float {
		return FormatFloat(v)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func isFloatText(s string) bool {
	for _, r := range s {
		if r == '.' || r == 'e' || r == 'E' {
			return true
		}
	}
	return false
}
