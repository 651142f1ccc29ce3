package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/i474232898/skypulse/internal/weather"
)

// RawPath is the local raw file for date.
func RawPath(dataDir, date string) string {
	return filepath.Join(dataDir, date+".csv")
}

// fetch pulls both hourly series for the run day, one after the other, joins
// them and persists the raw frame.
func (p *Pipeline) fetch(ctx context.Context, r *run) (string, error) {
	logger := r.logger.With("stage", string(StageFetch))
	loc := p.cfg.Location

	logger.Info("fetching weather series", "provider", p.provider.Name(), "location", loc.Key())
	weatherSeries, err := p.provider.FetchWeather(ctx, loc, r.day)
	if err != nil {
		return "", stageErr(StageFetch, "weather series", err)
	}

	logger.Info("fetching air quality series", "provider", p.provider.Name(), "location", loc.Key())
	airSeries, err := p.provider.FetchAirQuality(ctx, loc, r.day)
	if err != nil {
		return "", stageErr(StageFetch, "air quality series", err)
	}

	frame := weather.Merge(weatherSeries, airSeries)
	logger.Info("merged series",
		"weather_rows", weatherSeries.Len(),
		"air_quality_rows", airSeries.Len(),
		"merged_rows", frame.Len())
	if frame.Empty() {
		return "", stageErr(StageFetch, "no overlapping timestamps", ErrEmptyDataset)
	}

	if err := os.MkdirAll(p.cfg.DataDir, 0o755); err != nil {
		return "", stageErr(StageFetch, "create data dir", err)
	}
	path := RawPath(p.cfg.DataDir, r.date)
	if err := weather.WriteCSVFile(path, frame); err != nil {
		return "", stageErr(StageFetch, fmt.Sprintf("write %s", path), err)
	}

	p.metrics.RecordRows(string(StageFetch), frame.Len())
	logger.Info("raw data saved", "path", path, "rows", frame.Len())
	return path, nil
}
