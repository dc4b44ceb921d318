package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ladyblueumd/url-opener-v2/internal/domain/batch"
	"github.com/ladyblueumd/url-opener-v2/internal/domain/classify"
	"github.com/ladyblueumd/url-opener-v2/internal/domain/history"
	"github.com/ladyblueumd/url-opener-v2/internal/domain/service"
	"github.com/ladyblueumd/url-opener-v2/internal/domain/snapshot"
	"github.com/ladyblueumd/url-opener-v2/internal/domain/view"
	"github.com/ladyblueumd/url-opener-v2/internal/infrastructure/logging"
	"github.com/ladyblueumd/url-opener-v2/internal/probe"
	"github.com/ladyblueumd/url-opener-v2/internal/shared/types"
	"github.com/ladyblueumd/url-opener-v2/internal/shared/utils"
)

// Version reported by the root and health endpoints
const Version = "2.0.0"

// Reloader re-reads the rules file on demand
type Reloader interface {
	Reload() error
	Path() string
}

// Handlers contains all HTTP handlers
type Handlers struct {
	views      *view.Manager
	registry   *service.Registry
	history    *history.Store
	batches    *batch.Manager
	snapshots  *snapshot.Manager
	prober     *probe.Prober
	classifier *classify.Classifier
	reloader   Reloader
	metrics    *HandlerMetrics
	logger     *logging.Logger
}

// NewHandlers creates a new handler set. The prober, reloader, and
// metrics wrapper may be nil when the matching feature is not
// configured.
func NewHandlers(
	views *view.Manager,
	registry *service.Registry,
	historyStore *history.Store,
	batches *batch.Manager,
	snapshots *snapshot.Manager,
	prober *probe.Prober,
	classifier *classify.Classifier,
	reloader Reloader,
	metrics *HandlerMetrics,
	logger *logging.Logger,
) *Handlers {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Handlers{
		views:      views,
		registry:   registry,
		history:    historyStore,
		batches:    batches,
		snapshots:  snapshots,
		prober:     prober,
		classifier: classifier,
		reloader:   reloader,
		metrics:    metrics,
		logger:     logger,
	}
}

// Root handles health check
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "URL Opener Shell (Go)",
		"version": Version,
	})
}

// Health handles detailed health check
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"version":  Version,
		"views":    h.views.Stats(),
		"services": h.registry.Stats(),
		"history":  h.history.Stats(),
		"batches":  h.batches.Stats(),
	})
}

// ListViews lists view sessions, optionally filtered by state
func (h *Handlers) ListViews(c *gin.Context) {
	stateStr := c.Query("state")

	var state *types.State
	if stateStr != "" {
		s := types.State(stateStr)
		switch s {
		case types.StateActive, types.StateBackground, types.StateClosed:
			state = &s
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown state: " + stateStr})
			return
		}
	}

	views := h.views.List(state)

	c.JSON(http.StatusOK, gin.H{
		"views": views,
		"stats": h.views.Stats(),
	})
}

// OpenView creates a new view session. The renderer creates the
// matching webview from the returned view record.
func (h *Handlers) OpenView(c *gin.Context) {
	var req types.OpenViewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := utils.ValidateURL(req.URL, "url", true); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	defer h.metrics.TrackViewOperation("open")()

	v := h.views.Open(req.URL, view.OpenOptions{
		Background: req.Background,
		UserAgent:  req.UserAgent,
	})

	c.JSON(http.StatusOK, gin.H{"view": v})
}

// GetView returns one view session
func (h *Handlers) GetView(c *gin.Context) {
	viewID := c.Param("id")

	if err := utils.ValidateID(viewID, "view_id", true); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	v, ok := h.views.Get(viewID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "view not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"view": v})
}

// FocusView brings a view to the foreground
func (h *Handlers) FocusView(c *gin.Context) {
	viewID := c.Param("id")

	if err := utils.ValidateID(viewID, "view_id", true); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	defer h.metrics.TrackViewOperation("focus")()

	success := h.views.Focus(viewID)

	c.JSON(http.StatusOK, gin.H{
		"success": success,
		"view_id": viewID,
	})
}

// UpdateViewWindow records window bounds reported by the renderer
func (h *Handlers) UpdateViewWindow(c *gin.Context) {
	viewID := c.Param("id")

	if err := utils.ValidateID(viewID, "view_id", true); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var req struct {
		Position *types.WindowPosition `json:"position"`
		Size     *types.WindowSize     `json:"size"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	success := h.views.UpdateWindow(viewID, req.Position, req.Size)

	c.JSON(http.StatusOK, gin.H{
		"success": success,
		"view_id": viewID,
	})
}

// CloseView closes and destroys a view session
func (h *Handlers) CloseView(c *gin.Context) {
	viewID := c.Param("id")

	if err := utils.ValidateID(viewID, "view_id", true); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	defer h.metrics.TrackViewOperation("close")()

	success := h.views.Close(viewID)

	c.JSON(http.StatusOK, gin.H{
		"success": success,
		"view_id": viewID,
	})
}

// ListServices lists all available services
func (h *Handlers) ListServices(c *gin.Context) {
	categoryStr := c.Query("category")

	var category *types.Category
	if categoryStr != "" {
		if !validCategory(categoryStr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown category: " + categoryStr})
			return
		}
		cat := types.Category(categoryStr)
		category = &cat
	}

	services := h.registry.List(category)
	stats := h.registry.Stats()

	c.JSON(http.StatusOK, gin.H{
		"services": services,
		"stats":    stats,
	})
}

// DiscoverServices finds services relevant to a query string
func (h *Handlers) DiscoverServices(c *gin.Context) {
	var req struct {
		Query string `json:"query" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := utils.ValidateString(req.Query, "query", 1, utils.MaxNameLength, true); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	services := h.registry.Discover(req.Query, 5)

	c.JSON(http.StatusOK, gin.H{
		"query":    req.Query,
		"services": services,
	})
}

// ExecuteService executes a service tool
func (h *Handlers) ExecuteService(c *gin.Context) {
	var req types.ExecuteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := utils.ValidateToolID(req.ToolID, "tool_id", true); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.ViewID != nil {
		if err := utils.ValidateID(*req.ViewID, "view_id", false); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	var appCtx *types.Context
	if req.ViewID != nil {
		if session, ok := h.views.Session(*req.ViewID); ok {
			viewID := session.ID()
			appCtx = &types.Context{ViewID: &viewID}
		}
	}

	start := time.Now()
	result, err := h.registry.Execute(c.Request.Context(), req.ToolID, req.Params, appCtx)
	if err != nil {
		h.metrics.RecordExecution(req.ToolID, false, time.Since(start))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	h.metrics.RecordExecution(req.ToolID, result.Success, time.Since(start))

	c.JSON(http.StatusOK, result)
}

func validCategory(s string) bool {
	switch types.Category(s) {
	case types.CategoryViews, types.CategoryHistory, types.CategoryBatches,
		types.CategoryPolicy, types.CategorySettings, types.CategorySystem,
		types.CategoryClipboard:
		return true
	}
	return false
}
