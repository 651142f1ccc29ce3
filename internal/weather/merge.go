package weather

// Merge inner-joins two hourly series on their shared time key.
// Rows keep the left series order; timestamps present in only one series are dropped.
// The join key is renamed to ColumnTimestamp. A timestamp repeated in right
// joins only its first occurrence, so each left row yields at most one row.
func Merge(left, right Series) *Frame {
	header := make([]string, 0, 1+len(left.Columns)+len(right.Columns))
	header = append(header, ColumnTimestamp)
	header = append(header, left.Columns...)
	header = append(header, right.Columns...)

	rightIndex := make(map[string]int, right.Len())
	for i, ts := range right.Times {
		if _, dup := rightIndex[ts]; !dup {
			rightIndex[ts] = i
		}
	}

	frame := &Frame{Header: header}
	for i, ts := range left.Times {
		j, ok := rightIndex[ts]
		if !ok {
			continue
		}
		row := make([]string, 0, len(header))
		row = append(row, ts)
		for _, col := range left.Columns {
			row = append(row, valueAt(left.Values[col], i))
		}
		for _, col := range right.Columns {
			row = append(row, valueAt(right.Values[col], j))
		}
		frame.Rows = append(frame.Rows, row)
	}
	return frame
}

func valueAt(values []string, i int) string {
	if i < len(values) {
		return values[i]
	}
	return ""
}
