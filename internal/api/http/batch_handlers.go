package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ladyblueumd/url-opener-v2/internal/domain/batch"
	"github.com/ladyblueumd/url-opener-v2/internal/shared/types"
	"github.com/ladyblueumd/url-opener-v2/internal/shared/utils"
)

// SubmitBatch records a pasted URL list as a batch. With probe=true
// and a configured prober, the URLs are preflight-checked before the
// batch is returned.
func (h *Handlers) SubmitBatch(c *gin.Context) {
	var req types.OpenBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := utils.ValidateBatchURLs(req.URLs); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := utils.ValidateString(req.Note, "note", 0, utils.MaxNoteLength, false); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	defer h.metrics.TrackBatchOperation("submit")()

	b, err := h.batches.Submit(req.URLs, batch.SubmitOptions{
		Note:  req.Note,
		Force: req.Force,
	})
	if err != nil {
		if errors.Is(err, batch.ErrDuplicate) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	probed := 0
	if req.Probe && h.prober != nil {
		probed = h.probeBatch(c.Request.Context(), b.ID)
		if updated, ok := h.batches.Get(b.ID); ok {
			b = updated
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"batch":    b,
		"progress": b.Progress(),
		"probed":   probed,
	})
}

// OpenBatch dispatches a batch's pending URLs to views
func (h *Handlers) OpenBatch(c *gin.Context) {
	batchID := c.Param("id")

	if err := utils.ValidateID(batchID, "batch_id", true); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var req struct {
		ViewID *string `json:"view_id"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	if req.ViewID != nil {
		if err := utils.ValidateID(*req.ViewID, "view_id", false); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	defer h.metrics.TrackBatchOperation("open")()

	b, err := h.batches.Open(batchID, req.ViewID)
	if err != nil {
		if errors.Is(err, batch.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "batch not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"batch":    b,
		"progress": b.Progress(),
	})
}

// ProbeBatch preflight-checks a batch's pending URLs
func (h *Handlers) ProbeBatch(c *gin.Context) {
	batchID := c.Param("id")

	if err := utils.ValidateID(batchID, "batch_id", true); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if h.prober == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "probe not configured"})
		return
	}
	if _, ok := h.batches.Get(batchID); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "batch not found"})
		return
	}

	defer h.metrics.TrackBatchOperation("probe")()

	probed := h.probeBatch(c.Request.Context(), batchID)

	b, _ := h.batches.Get(batchID)
	c.JSON(http.StatusOK, gin.H{
		"batch":    b,
		"progress": b.Progress(),
		"probed":   probed,
	})
}

// GetBatch returns a batch with per-URL outcomes
func (h *Handlers) GetBatch(c *gin.Context) {
	batchID := c.Param("id")

	if err := utils.ValidateID(batchID, "batch_id", true); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	b, ok := h.batches.Get(batchID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "batch not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"batch":    b,
		"progress": b.Progress(),
	})
}

// ListBatches lists submitted batches with progress
func (h *Handlers) ListBatches(c *gin.Context) {
	batches := h.batches.List()

	c.JSON(http.StatusOK, gin.H{
		"batches": batches,
		"stats":   h.batches.Stats(),
	})
}

// DeleteBatch forgets a batch and frees its duplicate fingerprint
func (h *Handlers) DeleteBatch(c *gin.Context) {
	batchID := c.Param("id")

	if err := utils.ValidateID(batchID, "batch_id", true); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !h.batches.Delete(batchID) {
		c.JSON(http.StatusNotFound, gin.H{"error": "batch not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"batch_id": batchID,
	})
}

// probeBatch runs the prober over a batch's pending URLs and attaches
// the results. Returns the number of URLs probed.
func (h *Handlers) probeBatch(ctx context.Context, batchID string) int {
	b, ok := h.batches.Get(batchID)
	if !ok {
		return 0
	}

	urls := make([]string, 0, len(b.Items))
	for _, item := range b.Items {
		if item.Status == types.ItemPending {
			urls = append(urls, item.URL)
		}
	}
	if len(urls) == 0 {
		return 0
	}

	results := h.prober.Run(ctx, urls)
	if err := h.batches.AttachProbe(batchID, results); err != nil {
		return 0
	}
	return len(results)
}
