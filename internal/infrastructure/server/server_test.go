package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ladyblueumd/url-opener-v2/internal/infrastructure/config"
)

// One server per test binary: the metrics collector registers against
// the default prometheus registry, and a second registration panics.
func TestServerWiring(t *testing.T) {
	dir := t.TempDir()
	rulesPath := filepath.Join(dir, "rules.yaml")
	require.NoError(t, os.WriteFile(rulesPath, []byte("extra_keywords:\n  - ssotest\n"), 0o644))

	cfg := config.Default()
	cfg.Storage.DataDir = dir
	cfg.Logging.Level = "error"
	cfg.RateLimit.Enabled = false

	srv, err := NewServer(cfg)
	require.NoError(t, err)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}()

	get := func(path string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		srv.router.ServeHTTP(w, httptest.NewRequest("GET", path, nil))
		return w
	}
	post := func(path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest("POST", path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		srv.router.ServeHTTP(w, req)
		return w
	}

	w := get("/")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "online")

	w = get("/health")
	require.Equal(t, http.StatusOK, w.Code)

	// The watcher applied the rules file at startup
	w = get("/rules")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ssotest")
	assert.Contains(t, w.Body.String(), rulesPath)

	// All seven providers registered
	w = get("/services")
	require.Equal(t, http.StatusOK, w.Code)
	var services struct {
		Services []map[string]interface{} `json:"services"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &services))
	assert.Len(t, services.Services, 7)

	// View lifecycle through the full middleware chain
	w = post("/views", `{"url": "https://example.com"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = post("/services/execute", `{"tool_id": "system.ping", "params": {}}`)
	require.Equal(t, http.StatusOK, w.Code)

	// Prometheus and aggregate endpoints respond
	w = get("/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "shell_")

	w = get("/metrics/json")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "operational")
}
