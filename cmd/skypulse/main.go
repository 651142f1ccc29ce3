package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/i474232898/skypulse/internal/api/http"
	"github.com/i474232898/skypulse/internal/app"
	"github.com/i474232898/skypulse/internal/config"
	"github.com/i474232898/skypulse/internal/logging"
	"github.com/i474232898/skypulse/internal/scheduler"
)

func main() {
	once := flag.Bool("once", false, "run the pipeline once and exit")
	flag.Parse()

	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger := logging.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.Build(ctx, cfg, logger, app.Options{})
	if err != nil {
		logger.Error("failed to build pipeline", "err", err)
		os.Exit(1)
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Error("error during close", "err", err)
		}
	}()

	if *once {
		res := a.Pipeline.Run(ctx)
		if !res.OK() {
			logger.Error("pipeline run failed", "message", res.Message)
			a.Close()
			os.Exit(1)
		}
		logger.Info(res.Message, "run_id", res.RunID)
		return
	}

	// Scheduler that triggers the daily run in-process.
	if cfg.ScheduleCron != "" {
		sched := scheduler.New(cfg.ScheduleCron, a.Pipeline, time.Hour, logger)
		if err := sched.Start(); err != nil {
			logger.Error("failed to start scheduler", "err", err)
			os.Exit(1)
		}
		defer sched.Stop()
	}

	server := httpapi.NewApp(a.Pipeline, a.Metrics, logger)

	go func() {
		logger.Info("http server listening", "port", cfg.Port)
		if err := server.Listen(":" + cfg.Port); err != nil {
			logger.Error("fiber server stopped", "err", err)
		}
	}()

	// Wait for termination signal
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("error during shutdown", "err", err)
	}
}
