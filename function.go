// Package skypulse exposes the daily pipeline as a Cloud Functions HTTP entry point.
package skypulse

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"

	httpapi "github.com/i474232898/skypulse/internal/api/http"
	"github.com/i474232898/skypulse/internal/app"
	"github.com/i474232898/skypulse/internal/config"
	"github.com/i474232898/skypulse/internal/logging"
	"github.com/i474232898/skypulse/internal/pipeline"
)

var entry = &lazyHandler{build: buildHandler}

func init() {
	functions.HTTP("EntryPoint", EntryPoint)
}

// EntryPoint runs the pipeline once per request. Clients are built on the first
// successful call and reused by warm instances.
func EntryPoint(w http.ResponseWriter, r *http.Request) {
	entry.ServeHTTP(w, r)
}

func buildHandler() (http.HandlerFunc, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	a, err := app.Build(context.Background(), cfg, logging.New(cfg), app.Options{})
	if err != nil {
		return nil, err
	}
	return httpapi.RunHandler(a.Pipeline), nil
}

// lazyHandler builds its handler on first use. A failed build is retried on the
// next request.
type lazyHandler struct {
	mu      sync.Mutex
	build   func() (http.HandlerFunc, error)
	handler http.HandlerFunc
}

func (l *lazyHandler) get() (http.HandlerFunc, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.handler != nil {
		return l.handler, nil
	}
	h, err := l.build()
	if err != nil {
		return nil, err
	}
	l.handler = h
	return h, nil
}

func (l *lazyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h, err := l.get()
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(pipeline.Result{Status: pipeline.StatusError, Message: err.Error()})
		return
	}
	h(w, r)
}
