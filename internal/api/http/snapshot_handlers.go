package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ladyblueumd/url-opener-v2/internal/domain/snapshot"
	"github.com/ladyblueumd/url-opener-v2/internal/shared/types"
	"github.com/ladyblueumd/url-opener-v2/internal/shared/utils"
)

// SaveSnapshot captures the open views under a name
func (h *Handlers) SaveSnapshot(c *gin.Context) {
	var req types.SaveSnapshotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := utils.ValidateName(req.Name, "name"); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	defer h.metrics.TrackSnapshotOperation("save")()

	snap, err := h.snapshots.Save(req.Name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"snapshot": snap.ToMetadata(),
	})
}

// ListSnapshots lists all saved snapshots
func (h *Handlers) ListSnapshots(c *gin.Context) {
	snapshots := h.snapshots.List()

	c.JSON(http.StatusOK, gin.H{
		"snapshots": snapshots,
		"stats":     h.snapshots.Stats(),
	})
}

// GetSnapshot returns one snapshot with its captured views
func (h *Handlers) GetSnapshot(c *gin.Context) {
	snapshotID := c.Param("id")

	if err := utils.ValidateID(snapshotID, "snapshot_id", true); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	snap, err := h.snapshots.Load(snapshotID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "snapshot not found"})
		return
	}

	c.JSON(http.StatusOK, snap)
}

// RestoreSnapshot closes the current views and reopens the saved set.
// The renderer rebuilds its webviews from the returned view list.
func (h *Handlers) RestoreSnapshot(c *gin.Context) {
	snapshotID := c.Param("id")

	if err := utils.ValidateID(snapshotID, "snapshot_id", true); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	defer h.metrics.TrackSnapshotOperation("restore")()

	if err := h.snapshots.Restore(snapshotID); err != nil {
		if errors.Is(err, snapshot.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "snapshot not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"views":   h.views.List(nil),
		"stats":   h.views.Stats(),
	})
}

// DeleteSnapshot removes a saved snapshot
func (h *Handlers) DeleteSnapshot(c *gin.Context) {
	snapshotID := c.Param("id")

	if err := utils.ValidateID(snapshotID, "snapshot_id", true); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.snapshots.Delete(snapshotID); err != nil {
		if errors.Is(err, snapshot.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "snapshot not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"snapshot_id": snapshotID,
	})
}
