package weather

import (
	"context"
	"time"
)

// Provider abstracts the upstream source of the two hourly series.
// Each call covers the single UTC calendar day of day.
type Provider interface {
	Name() string
	FetchWeather(ctx context.Context, loc Location, day time.Time) (Series, error)
	FetchAirQuality(ctx context.Context, loc Location, day time.Time) (Series, error)
}

// DateKey formats t as the UTC calendar date used to name daily files.
func DateKey(t time.Time) string {
	return t.UTC().Format(time.DateOnly)
}
