package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.AppEnv)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, 25.2048, cfg.Location.Latitude)
	assert.Equal(t, 55.2708, cfg.Location.Longitude)
	assert.Equal(t, "Asia/Dubai", cfg.Location.Timezone)
	assert.Equal(t, "https://api.open-meteo.com/v1/forecast", cfg.WeatherAPIURL)
	assert.Equal(t, "https://air-quality-api.open-meteo.com/v1/air-quality", cfg.AirQualityAPIURL)
	assert.Equal(t, 3, cfg.FetchMaxAttempts)
	assert.Equal(t, 5*time.Second, cfg.FetchBackoff)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "/tmp/data", cfg.DataDir)
	assert.Equal(t, FormatCSV, cfg.OutputFormat)
	assert.Equal(t, "skypulse-uae", cfg.Project)
	assert.Equal(t, "uae_weather_data", cfg.Dataset)
	assert.Equal(t, "daily_readings", cfg.Table)
	assert.Equal(t, "uae-weather-data-avb-2025", cfg.Bucket)
	assert.Equal(t, "daily", cfg.ObjectPrefix)
	assert.Equal(t, "gcs", cfg.StorageBackend)
	assert.Equal(t, "bigquery", cfg.WarehouseBackend)
	assert.Empty(t, cfg.ScheduleCron)
	assert.Equal(t, "8080", cfg.Port)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_ENV", "prod")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("LATITUDE", "24.4539")
	t.Setenv("LONGITUDE", "54.3773")
	t.Setenv("FETCH_MAX_ATTEMPTS", "5")
	t.Setenv("FETCH_BACKOFF", "250ms")
	t.Setenv("OUTPUT_FORMAT", "Parquet")
	t.Setenv("GCS_PREFIX", "/raw/daily/")
	t.Setenv("STORAGE_BACKEND", "local")
	t.Setenv("SCHEDULE_CRON", "0 6 * * *")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "prod", cfg.AppEnv)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, 24.4539, cfg.Location.Latitude)
	assert.Equal(t, 54.3773, cfg.Location.Longitude)
	assert.Equal(t, 5, cfg.FetchMaxAttempts)
	assert.Equal(t, 250*time.Millisecond, cfg.FetchBackoff)
	assert.Equal(t, FormatParquet, cfg.OutputFormat)
	assert.Equal(t, "raw/daily", cfg.ObjectPrefix)
	assert.Equal(t, "local", cfg.StorageBackend)
	assert.Equal(t, "0 6 * * *", cfg.ScheduleCron)
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]map[string]string{
		"latitude out of range": {"LATITUDE": "91"},
		"latitude not a number": {"LATITUDE": "north"},
		"longitude range":       {"LONGITUDE": "-181"},
		"zero attempts":         {"FETCH_MAX_ATTEMPTS": "0"},
		"attempts not a number": {"FETCH_MAX_ATTEMPTS": "three"},
		"bad backoff":           {"FETCH_BACKOFF": "soon"},
		"negative backoff":      {"FETCH_BACKOFF": "-1s"},
		"unknown format":        {"OUTPUT_FORMAT": "xlsx"},
		"unknown storage":       {"STORAGE_BACKEND": "s3"},
		"unknown warehouse":     {"WAREHOUSE_BACKEND": "postgres"},
		"bad log level":         {"LOG_LEVEL": "verbose"},
		"bad env":               {"APP_ENV": "staging"},
		"bad weather url":       {"WEATHER_API_URL": "not a url"},
		"sqlite with parquet":   {"WAREHOUSE_BACKEND": "sqlite", "OUTPUT_FORMAT": "parquet"},
	}
	for name, env := range tests {
		t.Run(name, func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoad_SQLiteWithCSV(t *testing.T) {
	t.Setenv("WAREHOUSE_BACKEND", "sqlite")
	t.Setenv("STORAGE_BACKEND", "memory")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/data/warehouse.db", cfg.WarehouseSQLitePath)
}

func TestLoad_ReportsUnparsableInt(t *testing.T) {
	t.Setenv("FETCH_MAX_ATTEMPTS", "three")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid FETCH_MAX_ATTEMPTS")
}
