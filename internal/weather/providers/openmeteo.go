package providers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/i474232898/skypulse/internal/metrics"
	"github.com/i474232898/skypulse/internal/weather"
)

const (
	labelWeather    = "Weather"
	labelAirQuality = "Air Quality"
)

// OpenMeteoOptions configures an OpenMeteoProvider.
type OpenMeteoOptions struct {
	WeatherURL    string
	AirQualityURL string
	Backoff       BackoffConfig

	Logger  *slog.Logger
	Metrics *metrics.Recorder
	// Sleep overrides the wait between attempts; nil uses a context-aware timer.
	Sleep Sleeper
}

// OpenMeteoProvider implements the weather.Provider interface for Open-Meteo's
// forecast and air-quality APIs.
type OpenMeteoProvider struct {
	name          string
	weatherURL    string
	airQualityURL string
	fetcher       *fetcher
}

var _ weather.Provider = (*OpenMeteoProvider)(nil)

func NewOpenMeteoProvider(client *http.Client, opts OpenMeteoOptions) *OpenMeteoProvider {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	sleep := opts.Sleep
	if sleep == nil {
		sleep = sleepContext
	}

	return &OpenMeteoProvider{
		name:          "openmeteo",
		weatherURL:    opts.WeatherURL,
		airQualityURL: opts.AirQualityURL,
		fetcher: &fetcher{
			httpCfg: HTTPClientConfig{Client: client, Backoff: opts.Backoff},
			sleep:   sleep,
			logger:  logger.With("provider", "openmeteo"),
			metrics: opts.Metrics,
		},
	}
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

// FetchWeather fetches temperature, apparent temperature and relative humidity for day.
func (p *OpenMeteoProvider) FetchWeather(ctx context.Context, loc weather.Location, day time.Time) (weather.Series, error) {
	u, err := BuildHourlyURL(p.weatherURL, loc, day, weather.WeatherVariables)
	if err != nil {
		return weather.Series{}, err
	}
	return p.fetcher.fetchWithRetry(ctx, seriesRequest{
		label:     labelWeather,
		circuit:   "openmeteo-weather",
		url:       u,
		variables: weather.WeatherVariables,
	})
}

// FetchAirQuality fetches PM10 and PM2.5 for day.
func (p *OpenMeteoProvider) FetchAirQuality(ctx context.Context, loc weather.Location, day time.Time) (weather.Series, error) {
	u, err := BuildHourlyURL(p.airQualityURL, loc, day, weather.AirQualityVariables)
	if err != nil {
		return weather.Series{}, err
	}
	return p.fetcher.fetchWithRetry(ctx, seriesRequest{
		label:     labelAirQuality,
		circuit:   "openmeteo-air-quality",
		url:       u,
		variables: weather.AirQualityVariables,
	})
}

// BuildHourlyURL scopes an hourly request to a single UTC calendar day.
func BuildHourlyURL(baseURL string, loc weather.Location, day time.Time, variables []string) (string, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base url %q: %w", baseURL, err)
	}
	date := weather.DateKey(day)

	values := base.Query()
	values.Set("latitude", strconv.FormatFloat(loc.Latitude, 'f', -1, 64))
	values.Set("longitude", strconv.FormatFloat(loc.Longitude, 'f', -1, 64))
	values.Set("hourly", strings.Join(variables, ","))
	if loc.Timezone != "" {
		values.Set("timezone", loc.Timezone)
	}
	values.Set("start_date", date)
	values.Set("end_date", date)
	base.RawQuery = values.Encode()

	return base.String(), nil
}
