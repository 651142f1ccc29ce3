package config

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/i474232898/skypulse/internal/weather"
)

var validate = validator.New()

// Output formats for the cleaned daily file.
const (
	FormatCSV     = "csv"
	FormatParquet = "parquet"
)

type AppConfig struct {
	AppEnv   string `validate:"oneof=dev prod"`
	LogLevel slog.Level

	// Location is the single fixed point the job tracks.
	Location weather.Location

	WeatherAPIURL    string `validate:"required,url"`
	AirQualityAPIURL string `validate:"required,url"`

	// Fetch retry policy: FetchBackoff is the first wait and doubles after every failed attempt.
	FetchMaxAttempts int           `validate:"gte=1"`
	FetchBackoff     time.Duration `validate:"gt=0"`
	HTTPTimeout      time.Duration `validate:"gt=0"`

	// DataDir holds the raw and cleaned daily files.
	DataDir      string `validate:"required"`
	OutputFormat string `validate:"oneof=csv parquet"`

	Project      string `validate:"required"`
	Dataset      string `validate:"required"`
	Table        string `validate:"required"`
	Bucket       string `validate:"required"`
	ObjectPrefix string

	StorageBackend  string `validate:"oneof=gcs local memory"`
	StorageLocalDir string `validate:"required_if=StorageBackend local"`

	WarehouseBackend    string `validate:"oneof=bigquery sqlite"`
	WarehouseSQLitePath string `validate:"required_if=WarehouseBackend sqlite"`

	// ScheduleCron enables the in-process scheduler when non-empty.
	ScheduleCron string

	Port string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.AppEnv = getenvDefault("APP_ENV", "dev")
	level, err := parseLogLevel(getenvDefault("LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}
	cfg.LogLevel = level

	lat, err := getenvFloat("LATITUDE", 25.2048)
	if err != nil {
		return nil, err
	}
	lon, err := getenvFloat("LONGITUDE", 55.2708)
	if err != nil {
		return nil, err
	}
	cfg.Location = weather.Location{
		Latitude:  lat,
		Longitude: lon,
		Timezone:  getenvDefault("TIMEZONE", "Asia/Dubai"),
	}

	cfg.WeatherAPIURL = getenvDefault("WEATHER_API_URL", "https://api.open-meteo.com/v1/forecast")
	cfg.AirQualityAPIURL = getenvDefault("AIR_QUALITY_API_URL", "https://air-quality-api.open-meteo.com/v1/air-quality")

	if cfg.FetchMaxAttempts, err = getenvInt("FETCH_MAX_ATTEMPTS", 3); err != nil {
		return nil, err
	}
	if cfg.FetchBackoff, err = getenvDuration("FETCH_BACKOFF", "5s"); err != nil {
		return nil, err
	}
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "30s"); err != nil {
		return nil, err
	}

	cfg.DataDir = getenvDefault("DATA_DIR", "/tmp/data")
	cfg.OutputFormat = strings.ToLower(getenvDefault("OUTPUT_FORMAT", FormatCSV))

	cfg.Project = getenvDefault("GCP_PROJECT", "skypulse-uae")
	cfg.Dataset = getenvDefault("BQ_DATASET", "uae_weather_data")
	cfg.Table = getenvDefault("BQ_TABLE", "daily_readings")
	cfg.Bucket = getenvDefault("GCS_BUCKET", "uae-weather-data-avb-2025")
	cfg.ObjectPrefix = strings.Trim(getenvDefault("GCS_PREFIX", "daily"), "/")

	cfg.StorageBackend = getenvDefault("STORAGE_BACKEND", "gcs")
	cfg.StorageLocalDir = getenvDefault("STORAGE_LOCAL_DIR", "/tmp/data/objects")
	cfg.WarehouseBackend = getenvDefault("WAREHOUSE_BACKEND", "bigquery")
	cfg.WarehouseSQLitePath = getenvDefault("WAREHOUSE_SQLITE_PATH", "/tmp/data/warehouse.db")

	cfg.ScheduleCron = os.Getenv("SCHEDULE_CRON")
	cfg.Port = getenvDefault("PORT", "8080")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field constraints and cross-field combinations.
func (c *AppConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.WarehouseBackend == "sqlite" && c.OutputFormat != FormatCSV {
		return fmt.Errorf("invalid config: sqlite warehouse only loads %s output, got %q", FormatCSV, c.OutputFormat)
	}
	return nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}

func getenvDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getenvFloat(key string, def float64) (float64, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
