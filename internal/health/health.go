// Package health provides the HTTP health check and metrics endpoints.
//
// Docker and Kubernetes use /healthz and /readyz to monitor the daemon.
// /healthz reports liveness once the transports are started; /readyz also
// consults the registered checks, so an unreachable shopping-list API takes
// the instance out of rotation. /metrics serves the Prometheus registry.
package health

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Check reports whether a dependency is usable.
type Check struct {
	Name    string
	Healthy func() bool
}

// Server is a lightweight HTTP server that exposes /healthz, /readyz and /metrics.
type Server struct {
	port   int
	checks []Check
	ready  atomic.Bool
}

// New creates a new health check server.
func New(port int, checks ...Check) *Server {
	return &Server{port: port, checks: checks}
}

// SetReady marks the daemon as ready to accept traffic.
func (s *Server) SetReady(ready bool) {
	s.ready.Store(ready)
}

// Handler returns the routes of the health server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		if !s.ready.Load() {
			writeStatus(w, http.StatusServiceUnavailable, map[string]any{"status": "not_ready"})
			return
		}
		writeStatus(w, http.StatusOK, map[string]any{"status": "ok"})
	})

	mux.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		if !s.ready.Load() {
			writeStatus(w, http.StatusServiceUnavailable, map[string]any{"status": "not_ready"})
			return
		}
		code, status := http.StatusOK, "ok"
		results := make(map[string]string, len(s.checks))
		for _, c := range s.checks {
			if c.Healthy() {
				results[c.Name] = "ok"
				continue
			}
			results[c.Name] = "failing"
			code, status = http.StatusServiceUnavailable, "degraded"
		}
		writeStatus(w, code, map[string]any{"status": status, "checks": results})
	})

	mux.Handle("GET /metrics", promhttp.Handler())

	return mux
}

func writeStatus(w http.ResponseWriter, code int, body map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

// ListenAndServe starts the health check HTTP server.
// It blocks until the context is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	slog.Info("health server listening", "port", s.port)

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		case <-done:
		}
	}()

	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("health server: %w", err)
	}
	return nil
}
