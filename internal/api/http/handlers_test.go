package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ladyblueumd/url-opener-v2/internal/domain/batch"
	"github.com/ladyblueumd/url-opener-v2/internal/domain/classify"
	"github.com/ladyblueumd/url-opener-v2/internal/domain/history"
	"github.com/ladyblueumd/url-opener-v2/internal/domain/policy"
	"github.com/ladyblueumd/url-opener-v2/internal/domain/service"
	"github.com/ladyblueumd/url-opener-v2/internal/domain/snapshot"
	"github.com/ladyblueumd/url-opener-v2/internal/domain/view"
	"github.com/ladyblueumd/url-opener-v2/internal/infrastructure/logging"
	"github.com/ladyblueumd/url-opener-v2/internal/infrastructure/monitoring"
	"github.com/ladyblueumd/url-opener-v2/internal/shared/paths"
	"github.com/ladyblueumd/url-opener-v2/internal/shared/types"
)

type fakeDispatcher struct {
	mu    sync.Mutex
	calls []string
}

func (f *fakeDispatcher) Dispatch(url string, target *string, batchID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, url)
	return fmt.Sprintf("view_%03d", len(f.calls)), nil
}

func (f *fakeDispatcher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type echoProvider struct {
	mu      sync.Mutex
	lastCtx *types.Context
}

func (p *echoProvider) Definition() types.Service {
	return types.Service{
		ID:           "echo",
		Name:         "Echo Service",
		Description:  "Echoes tool calls back",
		Category:     types.CategorySystem,
		Capabilities: []string{"echo"},
		Tools: []types.Tool{
			{ID: "echo.test", Name: "Test Tool", Description: "Echo a call", Returns: "object"},
		},
	}
}

func (p *echoProvider) Execute(ctx context.Context, toolID string, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	p.mu.Lock()
	p.lastCtx = appCtx
	p.mu.Unlock()

	if toolID != "echo.test" {
		msg := "unknown tool: " + toolID
		return &types.Result{Success: false, Error: &msg}, nil
	}
	return &types.Result{Success: true, Data: map[string]interface{}{"tool": toolID}}, nil
}

type fakeReloader struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (f *fakeReloader) Reload() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.err
}

func (f *fakeReloader) Path() string { return "/tmp/rules.yaml" }

type env struct {
	router     *gin.Engine
	handlers   *Handlers
	views      *view.Manager
	history    *history.Store
	batches    *batch.Manager
	snapshots  *snapshot.Manager
	registry   *service.Registry
	dispatcher *fakeDispatcher
	echo       *echoProvider
}

func newTestEnv(t *testing.T) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)

	classifier := classify.New()
	store := history.NewStore(100)
	views := view.NewManager(classifier, store, policy.Config{})
	dispatcher := &fakeDispatcher{}
	batches := batch.NewManager(dispatcher)
	snapshots := snapshot.NewManager(views, paths.NewTree(t.TempDir()))

	registry := service.NewRegistry()
	echo := &echoProvider{}
	require.NoError(t, registry.Register(echo))

	handlers := NewHandlers(views, registry, store, batches, snapshots, nil, classifier, nil, nil, logging.NewNop())

	router := gin.New()
	router.GET("/", handlers.Root)
	router.GET("/health", handlers.Health)
	router.GET("/views", handlers.ListViews)
	router.POST("/views", handlers.OpenView)
	router.GET("/views/:id", handlers.GetView)
	router.POST("/views/:id/focus", handlers.FocusView)
	router.POST("/views/:id/window", handlers.UpdateViewWindow)
	router.DELETE("/views/:id", handlers.CloseView)
	router.GET("/services", handlers.ListServices)
	router.POST("/services/discover", handlers.DiscoverServices)
	router.POST("/services/execute", handlers.ExecuteService)
	router.GET("/history", handlers.ListHistory)
	router.GET("/history/export", handlers.ExportHistory)
	router.POST("/batches", handlers.SubmitBatch)
	router.GET("/batches", handlers.ListBatches)
	router.GET("/batches/:id", handlers.GetBatch)
	router.POST("/batches/:id/open", handlers.OpenBatch)
	router.POST("/batches/:id/probe", handlers.ProbeBatch)
	router.DELETE("/batches/:id", handlers.DeleteBatch)
	router.POST("/snapshots/save", handlers.SaveSnapshot)
	router.GET("/snapshots", handlers.ListSnapshots)
	router.GET("/snapshots/:id", handlers.GetSnapshot)
	router.POST("/snapshots/:id/restore", handlers.RestoreSnapshot)
	router.DELETE("/snapshots/:id", handlers.DeleteSnapshot)
	router.GET("/rules", handlers.GetRules)
	router.POST("/rules/reload", handlers.ReloadRules)
	router.POST("/logs/stream", handlers.StreamLogs)

	return &env{
		router:     router,
		handlers:   handlers,
		views:      views,
		history:    store,
		batches:    batches,
		snapshots:  snapshots,
		registry:   registry,
		dispatcher: dispatcher,
		echo:       echo,
	}
}

func (e *env) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), "response should be JSON: %s", w.Body.String())
	return body
}

func TestRoot(t *testing.T) {
	e := newTestEnv(t)

	w := e.do("GET", "/", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Equal(t, "online", body["status"])
	assert.Equal(t, Version, body["version"])
}

func TestHealth(t *testing.T) {
	e := newTestEnv(t)
	e.views.Open("https://example.com", view.OpenOptions{})

	w := e.do("GET", "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Equal(t, "healthy", body["status"])
	assert.Contains(t, body, "views")
	assert.Contains(t, body, "services")
	assert.Contains(t, body, "history")
	assert.Contains(t, body, "batches")
}

func TestOpenAndGetView(t *testing.T) {
	e := newTestEnv(t)

	w := e.do("POST", "/views", gin.H{"url": "https://example.com"})
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	v := body["view"].(map[string]interface{})
	viewID := v["id"].(string)
	assert.True(t, strings.HasPrefix(viewID, "view_"))
	assert.Equal(t, "https://example.com", v["url"])
	assert.Equal(t, "active", v["state"])

	w = e.do("GET", "/views/"+viewID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body = decode(t, w)
	assert.Equal(t, viewID, body["view"].(map[string]interface{})["id"])
}

func TestOpenViewValidation(t *testing.T) {
	e := newTestEnv(t)

	w := e.do("POST", "/views", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do("POST", "/views", gin.H{"url": "javascript:alert(1)"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListViewsFilter(t *testing.T) {
	e := newTestEnv(t)
	e.views.Open("https://one.example.com", view.OpenOptions{})
	e.views.Open("https://two.example.com", view.OpenOptions{Background: true})

	w := e.do("GET", "/views?state=background", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Len(t, body["views"], 1)

	w = e.do("GET", "/views?state=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFocusAndCloseView(t *testing.T) {
	e := newTestEnv(t)
	first := e.views.Open("https://one.example.com", view.OpenOptions{})
	second := e.views.Open("https://two.example.com", view.OpenOptions{})

	w := e.do("POST", "/views/"+first.ID+"/focus", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["success"])

	w = e.do("DELETE", "/views/"+second.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["success"])

	stats := e.views.Stats()
	require.NotNil(t, stats.FocusedViewID)
	assert.Equal(t, first.ID, *stats.FocusedViewID)
}

func TestUpdateViewWindow(t *testing.T) {
	e := newTestEnv(t)
	v := e.views.Open("https://example.com", view.OpenOptions{})

	w := e.do("POST", "/views/"+v.ID+"/window", gin.H{
		"position": gin.H{"x": 10, "y": 20},
		"size":     gin.H{"width": 800, "height": 600},
	})
	require.Equal(t, http.StatusOK, w.Code)

	updated, ok := e.views.Get(v.ID)
	require.True(t, ok)
	require.NotNil(t, updated.WindowPos)
	assert.Equal(t, 10, updated.WindowPos.X)
	require.NotNil(t, updated.WindowSize)
	assert.Equal(t, 800, updated.WindowSize.Width)
}

func TestViewNotFound(t *testing.T) {
	e := newTestEnv(t)

	w := e.do("GET", "/views/view_missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListServices(t *testing.T) {
	e := newTestEnv(t)

	w := e.do("GET", "/services", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Len(t, body["services"], 1)

	w = e.do("GET", "/services?category=system", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["services"], 1)

	w = e.do("GET", "/services?category=views", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode(t, w)["services"])

	w = e.do("GET", "/services?category=nonsense", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDiscoverServices(t *testing.T) {
	e := newTestEnv(t)

	w := e.do("POST", "/services/discover", gin.H{"query": "echo something"})
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "echo something", body["query"])

	w = e.do("POST", "/services/discover", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExecuteService(t *testing.T) {
	e := newTestEnv(t)

	w := e.do("POST", "/services/execute", gin.H{
		"tool_id": "echo.test",
		"params":  gin.H{},
	})
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["success"])
}

func TestExecuteServiceWithViewContext(t *testing.T) {
	e := newTestEnv(t)
	v := e.views.Open("https://example.com", view.OpenOptions{})

	w := e.do("POST", "/services/execute", gin.H{
		"tool_id": "echo.test",
		"params":  gin.H{},
		"view_id": v.ID,
	})
	require.Equal(t, http.StatusOK, w.Code)

	e.echo.mu.Lock()
	defer e.echo.mu.Unlock()
	require.NotNil(t, e.echo.lastCtx)
	require.NotNil(t, e.echo.lastCtx.ViewID)
	assert.Equal(t, v.ID, *e.echo.lastCtx.ViewID)
}

func TestExecuteServiceUnknownService(t *testing.T) {
	e := newTestEnv(t)

	w := e.do("POST", "/services/execute", gin.H{
		"tool_id": "nosuch.test",
		"params":  gin.H{},
	})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestListHistory(t *testing.T) {
	e := newTestEnv(t)
	for i := 0; i < 5; i++ {
		e.history.Append(types.HistoryEntry{URL: fmt.Sprintf("https://example.com/%d", i)})
	}

	w := e.do("GET", "/history?limit=2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Len(t, body["entries"], 2)

	stats := body["stats"].(map[string]interface{})
	assert.Equal(t, float64(5), stats["size"])

	w = e.do("GET", "/history?limit=-1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do("GET", "/history?offset=abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExportHistoryJSON(t *testing.T) {
	e := newTestEnv(t)
	e.history.Append(types.HistoryEntry{URL: "https://example.com"})

	w := e.do("GET", "/history/export?format=json", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "application/json")
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	assert.Contains(t, w.Body.String(), "https://example.com")
}

func TestExportHistoryCSVGzip(t *testing.T) {
	e := newTestEnv(t)
	e.history.Append(types.HistoryEntry{URL: "https://example.com", Title: "Example"})

	w := e.do("GET", "/history/export?format=csv&compress=true", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/gzip", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".csv.gz")

	gz, err := gzip.NewReader(w.Body)
	require.NoError(t, err)
	data, err := io.ReadAll(gz)
	require.NoError(t, err)
	assert.Contains(t, string(data), "https://example.com")
}

func TestExportHistoryBadFormat(t *testing.T) {
	e := newTestEnv(t)

	w := e.do("GET", "/history/export?format=xml", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do("GET", "/history/export?compress=maybe", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubmitBatch(t *testing.T) {
	e := newTestEnv(t)

	w := e.do("POST", "/batches", gin.H{
		"urls": []string{"https://one.example.com", "https://two.example.com"},
		"note": "reading list",
	})
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	b := body["batch"].(map[string]interface{})
	assert.True(t, strings.HasPrefix(b["id"].(string), "batch_"))
	assert.Equal(t, "reading list", b["note"])

	progress := body["progress"].(map[string]interface{})
	assert.Equal(t, float64(2), progress["total"])
	assert.Equal(t, float64(2), progress["pending"])
}

func TestSubmitBatchDuplicate(t *testing.T) {
	e := newTestEnv(t)
	urls := []string{"https://one.example.com", "https://two.example.com"}

	w := e.do("POST", "/batches", gin.H{"urls": urls})
	require.Equal(t, http.StatusOK, w.Code)

	w = e.do("POST", "/batches", gin.H{"urls": urls})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = e.do("POST", "/batches", gin.H{"urls": urls, "force": true})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSubmitBatchValidation(t *testing.T) {
	e := newTestEnv(t)

	w := e.do("POST", "/batches", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do("POST", "/batches", gin.H{"urls": []string{"javascript:alert(1)"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOpenBatch(t *testing.T) {
	e := newTestEnv(t)

	w := e.do("POST", "/batches", gin.H{
		"urls": []string{"https://one.example.com", "https://two.example.com"},
	})
	require.Equal(t, http.StatusOK, w.Code)
	batchID := decode(t, w)["batch"].(map[string]interface{})["id"].(string)

	w = e.do("POST", "/batches/"+batchID+"/open", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	progress := body["progress"].(map[string]interface{})
	assert.Equal(t, float64(2), progress["opened"])
	assert.Equal(t, 2, e.dispatcher.count())
}

func TestOpenBatchNotFound(t *testing.T) {
	e := newTestEnv(t)

	w := e.do("POST", "/batches/batch_missing/open", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProbeBatchUnavailable(t *testing.T) {
	e := newTestEnv(t)

	w := e.do("POST", "/batches", gin.H{"urls": []string{"https://example.com"}})
	require.Equal(t, http.StatusOK, w.Code)
	batchID := decode(t, w)["batch"].(map[string]interface{})["id"].(string)

	w = e.do("POST", "/batches/"+batchID+"/probe", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestListAndDeleteBatch(t *testing.T) {
	e := newTestEnv(t)

	w := e.do("POST", "/batches", gin.H{"urls": []string{"https://example.com"}})
	require.Equal(t, http.StatusOK, w.Code)
	batchID := decode(t, w)["batch"].(map[string]interface{})["id"].(string)

	w = e.do("GET", "/batches", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["batches"], 1)

	w = e.do("DELETE", "/batches/"+batchID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = e.do("GET", "/batches/"+batchID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSnapshotLifecycle(t *testing.T) {
	e := newTestEnv(t)
	e.views.Open("https://one.example.com", view.OpenOptions{})
	e.views.Open("https://two.example.com", view.OpenOptions{})

	w := e.do("POST", "/snapshots/save", gin.H{"name": "workday"})
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	meta := body["snapshot"].(map[string]interface{})
	snapID := meta["id"].(string)
	assert.True(t, strings.HasPrefix(snapID, "snap_"))
	assert.Equal(t, float64(2), meta["view_count"])

	w = e.do("GET", "/snapshots", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["snapshots"], 1)

	w = e.do("GET", "/snapshots/"+snapID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "workday", decode(t, w)["name"])

	w = e.do("POST", "/snapshots/"+snapID+"/restore", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["views"], 2)

	w = e.do("DELETE", "/snapshots/"+snapID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = e.do("GET", "/snapshots/"+snapID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSaveSnapshotValidation(t *testing.T) {
	e := newTestEnv(t)

	w := e.do("POST", "/snapshots/save", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetRules(t *testing.T) {
	e := newTestEnv(t)

	w := e.do("GET", "/rules", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Contains(t, body, "rules")
	assert.NotContains(t, body, "path")
}

func TestReloadRules(t *testing.T) {
	e := newTestEnv(t)

	// No reloader configured
	w := e.do("POST", "/rules/reload", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	reloader := &fakeReloader{}
	e.handlers.reloader = reloader

	w = e.do("POST", "/rules/reload", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "/tmp/rules.yaml", body["path"])
	assert.Equal(t, 1, reloader.calls)
}

func TestStreamLogs(t *testing.T) {
	e := newTestEnv(t)

	w := e.do("POST", "/logs/stream", gin.H{
		"source": "renderer",
		"entries": []gin.H{
			{"id": "1", "level": "info", "message": "renderer ready"},
			{"id": "2", "level": "error", "message": "webview crashed", "context": gin.H{"view_id": "view_01"}},
		},
	})
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(2), body["entries_received"])
}

func TestStreamLogsValidation(t *testing.T) {
	e := newTestEnv(t)

	w := e.do("POST", "/logs/stream", gin.H{"source": "other", "entries": []gin.H{{"id": "1"}}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do("POST", "/logs/stream", gin.H{"source": "renderer", "entries": []gin.H{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAggregatedMetrics(t *testing.T) {
	e := newTestEnv(t)
	metrics := monitoring.NewMetrics()
	agg := NewMetricsAggregator(metrics, e.views, e.history, e.batches, e.snapshots)
	e.router.GET("/metrics/json", agg.GetAggregatedMetrics)

	e.views.Open("https://example.com", view.OpenOptions{})
	metrics.RecordAuthFlow("started")

	w := e.do("GET", "/metrics/json", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	shell := body["shell"].(map[string]interface{})
	assert.Equal(t, "operational", shell["status"])
	assert.Equal(t, float64(1), shell["auth_started"])

	domains := body["domains"].(map[string]interface{})
	views := domains["views"].(map[string]interface{})
	assert.Equal(t, float64(1), views["total_views"])

	assert.Contains(t, body, "summary")
}
