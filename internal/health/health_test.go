package health

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func get(t *testing.T, h http.Handler, path string) (int, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func TestHealthz(t *testing.T) {
	s := New(0)
	h := s.Handler()

	code, body := get(t, h, "/healthz")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "not_ready", body["status"])

	s.SetReady(true)
	code, body = get(t, h, "/healthz")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])
}

func TestReadyzChecks(t *testing.T) {
	var upstream atomic.Bool
	upstream.Store(true)

	s := New(0, Check{Name: "kitchenowl", Healthy: upstream.Load})
	h := s.Handler()

	code, _ := get(t, h, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, code, "not ready before SetReady")

	s.SetReady(true)
	code, body := get(t, h, "/readyz")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, map[string]any{"kitchenowl": "ok"}, body["checks"])

	upstream.Store(false)
	code, body = get(t, h, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "degraded", body["status"])
	assert.Equal(t, map[string]any{"kitchenowl": "failing"}, body["checks"])

	// Liveness ignores dependency checks.
	code, _ = get(t, h, "/healthz")
	assert.Equal(t, http.StatusOK, code)
}

func TestMetricsEndpoint(t *testing.T) {
	rec := httptest.NewRecorder()
	New(0).Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
