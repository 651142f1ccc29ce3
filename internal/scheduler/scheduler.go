package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/skypulse/internal/pipeline"
)

// Runner executes one pipeline run.
type Runner interface {
	Run(ctx context.Context) pipeline.Result
}

// Scheduler triggers the daily pipeline on a cron expression, evaluated in UTC.
type Scheduler struct {
	scheduler *gocron.Scheduler
	runner    Runner
	expr      string
	timeout   time.Duration
	logger    *slog.Logger
}

// New creates a Scheduler. A zero timeout leaves runs unbounded.
func New(expr string, runner Runner, timeout time.Duration, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	s := gocron.NewScheduler(time.UTC)
	// a run still in progress blocks the next trigger
	s.SingletonModeAll()
	return &Scheduler{
		scheduler: s,
		runner:    runner,
		expr:      expr,
		timeout:   timeout,
		logger:    logger.With("component", "scheduler"),
	}
}

// Start schedules the job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if s.expr == "" {
		return errors.New("scheduler: empty cron expression")
	}

	job, err := s.scheduler.Cron(s.expr).Tag("daily-pipeline").Do(s.runOnce)
	if err != nil {
		return fmt.Errorf("scheduler: invalid cron %q: %w", s.expr, err)
	}

	s.scheduler.StartAsync()
	s.logger.Info("scheduler started", "cron", s.expr, "next_run", job.NextRun())
	return nil
}

// RunNow triggers every scheduled job immediately.
func (s *Scheduler) RunNow() {
	s.scheduler.RunAll()
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

func (s *Scheduler) runOnce() {
	ctx := context.Background()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	s.logger.Info("running scheduled pipeline")
	res := s.runner.Run(ctx)
	if !res.OK() {
		s.logger.Error("scheduled pipeline failed", "run_id", res.RunID, "message", res.Message)
		return
	}
	s.logger.Info("scheduled pipeline completed", "run_id", res.RunID, "date", res.Date)
}
