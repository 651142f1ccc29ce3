package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/i474232898/skypulse/internal/metrics"
	"github.com/i474232898/skypulse/internal/pipeline"
)

// Runner executes one pipeline run.
type Runner interface {
	Run(ctx context.Context) pipeline.Result
}

// NewApp builds the Fiber app serving the pipeline trigger, health and metrics.
func NewApp(runner Runner, rec *metrics.Recorder, logger *slog.Logger) *fiber.App {
	if logger == nil {
		logger = slog.Default()
	}
	app := fiber.New(fiber.Config{
		AppName:               "skypulse",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		// a run blocks on upstream retries and the load job
		WriteTimeout: 15 * time.Minute,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"status":  pipeline.StatusError,
				"message": err.Error(),
			})
		},
	})

	app.Use(recover.New())
	app.Use(func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		logger.Info("http request",
			"method", c.Method(),
			"path", c.Path(),
			"status", c.Response().StatusCode(),
			"duration", time.Since(start))
		return err
	})

	RegisterRoutes(app, runner, rec)
	return app
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, runner Runner, rec *metrics.Recorder) {
	app.All("/run", func(c *fiber.Ctx) error {
		res := runner.Run(c.UserContext())
		return c.Status(statusCode(res)).JSON(res)
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "skypulse",
		})
	})

	app.Get("/metrics", adaptor.HTTPHandler(rec.Handler()))
}

// RunHandler exposes the pipeline trigger as a plain net/http handler.
func RunHandler(runner Runner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res := runner.Run(r.Context())
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode(res))
		_ = json.NewEncoder(w).Encode(res)
	}
}

func statusCode(res pipeline.Result) int {
	if res.OK() {
		return http.StatusOK
	}
	return http.StatusInternalServerError
}
