package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/skypulse/internal/metrics"
	"github.com/i474232898/skypulse/internal/weather"
)

// BackoffConfig controls the per-series retry budget.
// The wait after failed attempt k is InitialInterval * 2^(k-1).
type BackoffConfig struct {
	MaxAttempts     int
	InitialInterval time.Duration
}

// HTTPClientConfig bundles HTTP client and resilience settings.
type HTTPClientConfig struct {
	Client  *http.Client
	Backoff BackoffConfig
}

// Sleeper blocks for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

var (
	// ErrRetriesExhausted is returned once every attempt for a series has failed.
	ErrRetriesExhausted = errors.New("retries exhausted")

	errUnexpected    = errors.New("unexpected status code")
	errMissingHourly = errors.New("response missing 'hourly' key")
	errMissingTime   = errors.New("hourly data missing 'time' column")
	errRaggedSeries  = errors.New("hourly columns have mismatched lengths")
	errEmptySeries   = errors.New("data is empty")
	errNoHTTPClient  = errors.New("http client not configured")
	errInvalidConfig = errors.New("invalid backoff configuration")
)

// seriesRequest describes one hourly series to fetch.
type seriesRequest struct {
	label     string
	circuit   string
	url       string
	variables []string
}

type fetcher struct {
	httpCfg HTTPClientConfig
	sleep   Sleeper
	logger  *slog.Logger
	metrics *metrics.Recorder
}

// fetchWithRetry requests one series until it succeeds or the attempt budget is spent.
// Every failure (transport error, bad status, malformed body, empty series) is logged
// and retried; only exhaustion is returned. Each call uses a fresh breaker.
func (f *fetcher) fetchWithRetry(ctx context.Context, req seriesRequest) (weather.Series, error) {
	if f.httpCfg.Client == nil {
		return weather.Series{}, errNoHTTPClient
	}
	if f.httpCfg.Backoff.MaxAttempts < 1 || f.httpCfg.Backoff.InitialInterval <= 0 {
		return weather.Series{}, errInvalidConfig
	}

	backoff := f.httpCfg.Backoff.InitialInterval
	maxAttempts := f.httpCfg.Backoff.MaxAttempts
	cb := f.newCircuit(req.circuit)
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		f.logger.Info("requesting hourly data", "series", req.label, "attempt", attempt)

		result, err := cb.Execute(func() (interface{}, error) {
			return f.fetchOnce(ctx, req)
		})
		if err == nil {
			series := result.(weather.Series)
			f.metrics.RecordFetchAttempt(req.label, "success")
			f.logger.Info("received hourly data", "series", req.label, "rows", series.Len())
			return series, nil
		}

		lastErr = err
		f.metrics.RecordFetchAttempt(req.label, "failure")
		f.logger.Error("hourly data attempt failed", "series", req.label, "attempt", attempt, "err", err)

		if attempt < maxAttempts {
			f.logger.Info("retrying", "series", req.label, "backoff", backoff)
			if err := f.sleep(ctx, backoff); err != nil {
				return weather.Series{}, err
			}
			backoff *= 2
		}
	}

	return weather.Series{}, fmt.Errorf("%w: %s API failed after %d attempts: %v", ErrRetriesExhausted, req.label, maxAttempts, lastErr)
}

// newCircuit opens only once the whole attempt budget has failed, and never
// stays open longer than the first backoff.
func (f *fetcher) newCircuit(name string) *gobreaker.CircuitBreaker {
	maxAttempts := uint32(f.httpCfg.Backoff.MaxAttempts)
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     f.httpCfg.Backoff.InitialInterval,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxAttempts
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			f.logger.Warn("circuit state changed", "circuit", name, "from", from.String(), "to", to.String())
		},
	})
}

// fetchOnce performs a single attempt: request, status check, decode and validation.
func (f *fetcher) fetchOnce(ctx context.Context, req seriesRequest) (weather.Series, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.url, nil)
	if err != nil {
		return weather.Series{}, err
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := f.httpCfg.Client.Do(httpReq)
	if err != nil {
		return weather.Series{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return weather.Series{}, fmt.Errorf("%w: %d %s", errUnexpected, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload struct {
		Hourly map[string][]interface{} `json:"hourly"`
	}
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(&payload); err != nil {
		return weather.Series{}, fmt.Errorf("decode %s response: %w", req.label, err)
	}
	if payload.Hourly == nil {
		return weather.Series{}, fmt.Errorf("%s API: %w", req.label, errMissingHourly)
	}

	series, err := buildSeries(req, payload.Hourly)
	if err != nil {
		return weather.Series{}, err
	}
	if series.Len() == 0 {
		return weather.Series{}, fmt.Errorf("%s %w", req.label, errEmptySeries)
	}
	return series, nil
}

// buildSeries turns the decoded hourly object into a Series. Requested variables
// keep their request order; any extra columns follow in name order.
func buildSeries(req seriesRequest, hourly map[string][]interface{}) (weather.Series, error) {
	rawTimes, ok := hourly[weather.ColumnTime]
	if !ok {
		if len(hourly) == 0 {
			return weather.Series{Label: req.label}, nil
		}
		return weather.Series{}, fmt.Errorf("%s API: %w", req.label, errMissingTime)
	}

	columns := make([]string, 0, len(hourly)-1)
	requested := make(map[string]bool, len(req.variables))
	for _, v := range req.variables {
		requested[v] = true
		if _, present := hourly[v]; present {
			columns = append(columns, v)
		}
	}
	var extra []string
	for name := range hourly {
		if name != weather.ColumnTime && !requested[name] {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	columns = append(columns, extra...)

	series := weather.Series{
		Label:   req.label,
		Columns: columns,
		Times:   cellsOf(rawTimes),
		Values:  make(map[string][]string, len(columns)),
	}
	for _, name := range columns {
		raw := hourly[name]
		if len(raw) != len(rawTimes) {
			return weather.Series{}, fmt.Errorf("%s API: %w: %s has %d values for %d timestamps", req.label, errRaggedSeries, name, len(raw), len(rawTimes))
		}
		series.Values[name] = cellsOf(raw)
	}
	return series, nil
}

func cellsOf(values []interface{}) []string {
	out := make([]string, len(values))
	for i, v := range values {
		switch t := v.(type) {
		case nil:
			out[i] = ""
		case json.Number:
			out[i] = t.String()
		case string:
			out[i] = t
		default:
			out[i] = fmt.Sprint(t)
		}
	}
	return out
}

// sleepContext waits for d unless ctx is cancelled first.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	select {
	case <-ctx.Done():
		timer.Stop()
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
