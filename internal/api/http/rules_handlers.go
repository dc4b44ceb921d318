package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// GetRules returns the active classification rules
func (h *Handlers) GetRules(c *gin.Context) {
	resp := gin.H{"rules": h.classifier.Rules()}
	if h.reloader != nil {
		resp["path"] = h.reloader.Path()
	}

	c.JSON(http.StatusOK, resp)
}

// ReloadRules re-reads the rules file immediately, outside the
// watcher's debounce window
func (h *Handlers) ReloadRules(c *gin.Context) {
	if h.reloader == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "rules file not configured"})
		return
	}

	if err := h.reloader.Reload(); err != nil {
		h.logger.Warn("rules reload failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"path":    h.reloader.Path(),
	})
}
