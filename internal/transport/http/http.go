// Package http implements the HTTP transport for owlskill.
//
// This transport exposes the skill endpoint the voice platform posts request
// envelopes to, plus the Swagger UI describing it. It is the transport used
// for a hosted (web service) skill.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "github.com/nadzzz/owlskill/docs" // registers the OpenAPI spec served at /swagger/doc.json
	"github.com/nadzzz/owlskill/internal/config"
	"github.com/nadzzz/owlskill/internal/skill"
	"github.com/nadzzz/owlskill/internal/transport"
)

// maxBodyBytes caps the size of a request envelope.
const maxBodyBytes = 1 << 20

// Transport implements transport.Transport over HTTP.
type Transport struct {
	port     int
	path     string
	verifier skill.Verifier

	mu     sync.Mutex
	server *http.Server
	addr   net.Addr
}

// New creates a new HTTP transport. Every envelope is checked by verifier
// before it reaches the handler.
func New(cfg config.HTTPConfig, verifier skill.Verifier) *Transport {
	path := cfg.Path
	if path == "" {
		path = "/skill"
	}
	return &Transport{port: cfg.Port, path: path, verifier: verifier}
}

// Name returns the transport identifier.
func (t *Transport) Name() string { return "http" }

// Addr returns the address the server listens on, or nil before Listen.
func (t *Transport) Addr() net.Addr {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.addr
}

// Listen starts the HTTP server and routes incoming requests to the handler.
func (t *Transport) Listen(ctx context.Context, handler transport.Handler) error {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", t.port))
	if err != nil {
		return fmt.Errorf("http listen: %w", err)
	}

	srv := &http.Server{
		Handler:           t.Handler(handler),
		ReadHeaderTimeout: 10 * time.Second,
	}
	t.mu.Lock()
	t.server = srv
	t.addr = lis.Addr()
	t.mu.Unlock()

	slog.Info("http transport listening", "addr", lis.Addr().String(), "path", t.path)

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			slog.Info("http transport shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		case <-done:
		}
	}()

	if err := srv.Serve(lis); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http serve: %w", err)
	}
	return nil
}

// Handler returns the routes of the transport.
func (t *Transport) Handler(handler transport.Handler) http.Handler {
	mux := http.NewServeMux()

	// POST /skill: request envelopes from the voice platform.
	mux.HandleFunc("POST "+t.path, func(w http.ResponseWriter, r *http.Request) {
		t.handleSkill(w, r, handler)
	})

	// Swagger UI for the generated OpenAPI docs.
	mux.Handle("GET /swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	return mux
}

// handleSkill processes a POST /skill request.
//
// @Summary     Handle a voice request
// @Description Accepts a request envelope from the voice platform (launch, intent or session-ended request),
// @Description runs it through the skill's handler chain and returns the response envelope to speak.
// @Tags        skill
// @Accept      json
// @Produce     json
// @Param       envelope  body      skill.RequestEnvelope  true  "Request envelope"
// @Success     200  {object}  skill.ResponseEnvelope  "Response to speak"
// @Failure     400  {string}  string  "Malformed or rejected envelope"
// @Failure     415  {string}  string  "Body is not JSON"
// @Failure     500  {string}  string  "Internal processing error"
// @Router      /skill [post]
func (t *Transport) handleSkill(w http.ResponseWriter, r *http.Request, handler transport.Handler) {
	traceID := uuid.NewString()
	w.Header().Set("X-Request-Id", traceID)
	logger := slog.With("trace_id", traceID, "remote", r.RemoteAddr)

	if mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type")); err != nil || mt != "application/json" {
		http.Error(w, "content type must be application/json", http.StatusUnsupportedMediaType)
		return
	}

	var env skill.RequestEnvelope
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&env); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}

	if err := t.verifier.Verify(&env); err != nil {
		logger.Warn("request rejected", "request_id", env.Request.RequestID, "error", err)
		http.Error(w, "rejected: "+err.Error(), http.StatusBadRequest)
		return
	}

	result, err := handler(r.Context(), &env)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, skill.ErrInvalidRequest) {
			status = http.StatusBadRequest
		}
		logger.Error("skill request failed", "request_id", env.Request.RequestID, "error", err)
		http.Error(w, "skill error: "+err.Error(), status)
		return
	}

	w.Header().Set("Content-Type", "application/json;charset=UTF-8")
	if err := json.NewEncoder(w).Encode(result); err != nil {
		logger.Warn("writing response failed", "error", err)
	}
}

// Close gracefully shuts down the HTTP server.
func (t *Transport) Close() error {
	t.mu.Lock()
	srv := t.server
	t.mu.Unlock()
	if srv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}
	return nil
}
