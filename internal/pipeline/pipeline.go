// Package pipeline runs the daily fetch, clean, upload and load stages.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/i474232898/skypulse/internal/config"
	"github.com/i474232898/skypulse/internal/metrics"
	"github.com/i474232898/skypulse/internal/store"
	"github.com/i474232898/skypulse/internal/warehouse"
	"github.com/i474232898/skypulse/internal/weather"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"

	successMessage = "Pipeline executed successfully"
)

// Result is the outcome of one run as reported to the caller.
type Result struct {
	Status  string `json:"status"`
	Message string `json:"message"`

	RunID string `json:"-"`
	Date  string `json:"-"`
	State State  `json:"-"`
	Err   error  `json:"-"`
}

// OK reports whether the run finished every stage.
func (r Result) OK() bool {
	return r.Status == StatusSuccess
}

// Deps are the collaborators a Pipeline drives.
type Deps struct {
	Provider weather.Provider
	Objects  store.ObjectStore
	Loader   warehouse.Loader
	Logger   *slog.Logger
	Metrics  *metrics.Recorder
	// Now supplies the run date; nil means time.Now.
	Now func() time.Time
}

// Pipeline runs Fetch -> Clean -> Upload -> Load for the current UTC day.
type Pipeline struct {
	cfg      *config.AppConfig
	provider weather.Provider
	objects  store.ObjectStore
	loader   warehouse.Loader
	logger   *slog.Logger
	metrics  *metrics.Recorder
	now      func() time.Time

	// daily files are shared by path, so runs are serialized
	mu sync.Mutex
}

func New(cfg *config.AppConfig, deps Deps) *Pipeline {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &Pipeline{
		cfg:      cfg,
		provider: deps.Provider,
		objects:  deps.Objects,
		loader:   deps.Loader,
		logger:   logger,
		metrics:  deps.Metrics,
		now:      now,
	}
}

// run carries the per-invocation values every stage needs.
type run struct {
	id     string
	day    time.Time
	date   string
	state  State
	logger *slog.Logger
}

// Run executes one daily run. The first failing stage aborts the rest and is
// reported as an error result; Run itself never panics on stage failure.
func (p *Pipeline) Run(ctx context.Context) Result {
	p.mu.Lock()
	defer p.mu.Unlock()

	day := p.now().UTC()
	r := &run{
		id:    uuid.NewString(),
		day:   day,
		date:  weather.DateKey(day),
		state: StateIdle,
	}
	r.logger = p.logger.With("run_id", r.id, "date", r.date)
	r.logger.Info("pipeline started")
	started := time.Now()

	var rawPath, cleanPath, object string
	steps := []struct {
		stage Stage
		fn    func() error
	}{
		{StageFetch, func() (err error) { rawPath, err = p.fetch(ctx, r); return }},
		{StageClean, func() (err error) { cleanPath, err = p.clean(ctx, r, rawPath); return }},
		{StageUpload, func() (err error) { object, err = p.upload(ctx, r, cleanPath); return }},
		{StageLoad, func() error { return p.load(ctx, r, object) }},
	}

	for _, step := range steps {
		p.transition(r, r.state.next())
		stepStart := time.Now()
		err := step.fn()
		if err != nil {
			p.metrics.RecordStage(string(step.stage), StatusError, time.Since(stepStart))
			return p.fail(r, step.stage, err)
		}
		p.metrics.RecordStage(string(step.stage), StatusSuccess, time.Since(stepStart))
	}

	p.transition(r, StateDone)
	p.metrics.RecordRun(StatusSuccess)
	r.logger.Info("pipeline finished", "duration", time.Since(started))
	return Result{
		Status:  StatusSuccess,
		Message: successMessage,
		RunID:   r.id,
		Date:    r.date,
		State:   r.state,
	}
}

func (p *Pipeline) transition(r *run, to State) {
	if r.state.Terminal() || to == r.state {
		return
	}
	r.logger.Debug("state transition", "from", r.state.String(), "to", to.String())
	r.state = to
}

func (p *Pipeline) fail(r *run, stage Stage, err error) Result {
	var se *StageError
	if !errors.As(err, &se) {
		se = stageErr(stage, "stage failed", err)
		err = se
	}
	p.transition(r, StateFailed)
	p.metrics.RecordRun(StatusError)
	r.logger.Error("pipeline failed", "stage", string(stage), "err", err)
	return Result{
		Status:  StatusError,
		Message: err.Error(),
		RunID:   r.id,
		Date:    r.date,
		State:   r.state,
		Err:     err,
	}
}
