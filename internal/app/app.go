// Package app wires configuration into a ready-to-run pipeline.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/hashicorp/go-multierror"
	"google.golang.org/api/option"

	"github.com/i474232898/skypulse/internal/config"
	"github.com/i474232898/skypulse/internal/metrics"
	"github.com/i474232898/skypulse/internal/pipeline"
	"github.com/i474232898/skypulse/internal/store"
	"github.com/i474232898/skypulse/internal/warehouse"
	"github.com/i474232898/skypulse/internal/weather/providers"
)

// App holds the wired pipeline and everything that must be closed with it.
type App struct {
	Config   *config.AppConfig
	Logger   *slog.Logger
	Metrics  *metrics.Recorder
	Pipeline *pipeline.Pipeline

	objects store.ObjectStore
	loader  warehouse.Loader
}

// Options overrides collaborators, mainly for tests.
type Options struct {
	HTTPClient *http.Client
	// ClientOptions are passed to the Cloud Storage and BigQuery clients.
	ClientOptions []option.ClientOption
	Now           func() time.Time
}

// Build creates the storage and warehouse backends named by cfg and the pipeline over them.
func Build(ctx context.Context, cfg *config.AppConfig, logger *slog.Logger, opts Options) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	rec := metrics.NewRecorder()

	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.HTTPTimeout}
	}
	provider := providers.NewOpenMeteoProvider(client, providers.OpenMeteoOptions{
		WeatherURL:    cfg.WeatherAPIURL,
		AirQualityURL: cfg.AirQualityAPIURL,
		Backoff: providers.BackoffConfig{
			MaxAttempts:     cfg.FetchMaxAttempts,
			InitialInterval: cfg.FetchBackoff,
		},
		Logger:  logger,
		Metrics: rec,
	})

	objects, err := newObjectStore(ctx, cfg, logger, opts.ClientOptions)
	if err != nil {
		return nil, err
	}
	loader, err := newLoader(ctx, cfg, objects, logger, opts.ClientOptions)
	if err != nil {
		_ = objects.Close()
		return nil, err
	}

	p := pipeline.New(cfg, pipeline.Deps{
		Provider: provider,
		Objects:  objects,
		Loader:   loader,
		Logger:   logger,
		Metrics:  rec,
		Now:      opts.Now,
	})

	logger.Info("pipeline wired",
		"storage", cfg.StorageBackend,
		"warehouse", cfg.WarehouseBackend,
		"format", cfg.OutputFormat,
		"location", cfg.Location.Key())

	return &App{
		Config:   cfg,
		Logger:   logger,
		Metrics:  rec,
		Pipeline: p,
		objects:  objects,
		loader:   loader,
	}, nil
}

// Close releases the warehouse and storage clients.
func (a *App) Close() error {
	var result *multierror.Error
	if err := a.loader.Close(); err != nil {
		result = multierror.Append(result, fmt.Errorf("close warehouse: %w", err))
	}
	if err := a.objects.Close(); err != nil {
		result = multierror.Append(result, fmt.Errorf("close storage: %w", err))
	}
	return result.ErrorOrNil()
}

func newObjectStore(ctx context.Context, cfg *config.AppConfig, logger *slog.Logger, clientOpts []option.ClientOption) (store.ObjectStore, error) {
	switch cfg.StorageBackend {
	case "gcs":
		s, err := store.NewGCSStore(ctx, clientOpts...)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "local":
		s, err := store.NewLocalStore(cfg.StorageLocalDir, logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "memory":
		return store.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

func newLoader(ctx context.Context, cfg *config.AppConfig, objects store.ObjectStore, logger *slog.Logger, clientOpts []option.ClientOption) (warehouse.Loader, error) {
	switch cfg.WarehouseBackend {
	case "bigquery":
		l, err := warehouse.NewBigQueryLoader(ctx, cfg.Project, cfg.Dataset, cfg.Table, logger, clientOpts...)
		if err != nil {
			return nil, err
		}
		return l, nil
	case "sqlite":
		l, err := warehouse.NewSQLiteLoader(cfg.WarehouseSQLitePath, objects, cfg.Table, logger)
		if err != nil {
			return nil, err
		}
		return l, nil
	default:
		return nil, fmt.Errorf("unknown warehouse backend %q", cfg.WarehouseBackend)
	}
}
