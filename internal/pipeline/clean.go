package pipeline

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/i474232898/skypulse/internal/config"
	"github.com/i474232898/skypulse/internal/weather"
)

// CleanFileName is the cleaned file's base name for date; it doubles as the
// object name suffix.
func CleanFileName(date, format string) string {
	return fmt.Sprintf("%s-clean.%s", date, format)
}

// CleanPath is the local cleaned file for date.
func CleanPath(dataDir, date, format string) string {
	return filepath.Join(dataDir, CleanFileName(date, format))
}

// clean loads the raw file, drops incomplete rows, rounds and types the
// numeric columns, stamps the run date and persists the result.
func (p *Pipeline) clean(_ context.Context, r *run, rawPath string) (string, error) {
	logger := r.logger.With("stage", string(StageClean))

	frame, err := weather.ReadCSVFile(rawPath)
	if err != nil {
		return "", stageErr(StageClean, fmt.Sprintf("read %s", rawPath), err)
	}
	if frame.Empty() {
		return "", stageErr(StageClean, "raw data file is empty", ErrEmptyDataset)
	}

	dropped := frame.DropIncomplete()
	frame.Round(2)
	if err := frame.EnforceFloat(weather.NumericColumns...); err != nil {
		return "", stageErr(StageClean, "enforce numeric columns", err)
	}
	frame.SetColumn(weather.ColumnDate, r.date)
	logger.Info("cleaned data", "dropped_rows", dropped, "rows", frame.Len())

	if frame.Empty() {
		return "", stageErr(StageClean, "no rows left after cleaning", ErrEmptyDataset)
	}

	path := CleanPath(p.cfg.DataDir, r.date, p.cfg.OutputFormat)
	if err := writeClean(path, p.cfg.OutputFormat, frame); err != nil {
		return "", stageErr(StageClean, fmt.Sprintf("write %s", path), err)
	}

	p.metrics.RecordRows(string(StageClean), frame.Len())
	logger.Info("clean data saved", "path", path, "format", p.cfg.OutputFormat)
	return path, nil
}

func writeClean(path, format string, frame *weather.Frame) error {
	switch format {
	case config.FormatCSV:
		return weather.WriteCSVFile(path, frame)
	case config.FormatParquet:
		readings, err := frame.Readings()
		if err != nil {
			return err
		}
		return weather.WriteParquetFile(path, readings)
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}
