package http

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ladyblueumd/url-opener-v2/internal/domain/history"
)

// ListHistory returns retained entries in append order
func (h *Handlers) ListHistory(c *gin.Context) {
	limit, err := intQuery(c, "limit", 0)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	offset, err := intQuery(c, "offset", 0)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entries := h.history.List(limit, offset)

	c.JSON(http.StatusOK, gin.H{
		"entries": entries,
		"stats":   h.history.Stats(),
	})
}

// ExportHistory streams all retained entries as a download.
// Format and compression come from ?format= and ?compress= query
// parameters.
func (h *Handlers) ExportHistory(c *gin.Context) {
	format, err := history.ParseFormat(c.Query("format"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	compress := false
	if raw := c.Query("compress"); raw != "" {
		compress, err = strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "compress must be a boolean"})
			return
		}
	}

	defer h.metrics.TrackHistoryOperation("export")()

	contentType := format.ContentType()
	if compress {
		contentType = "application/gzip"
	}
	c.Header("Content-Type", contentType)
	c.Header("Content-Disposition", `attachment; filename="`+format.Filename(compress)+`"`)
	c.Status(http.StatusOK)

	// Headers are already written; failures here can only be logged
	if err := h.history.Export(c.Writer, format, compress); err != nil {
		h.logger.Error("history export failed",
			zap.String("format", string(format)),
			zap.Error(err),
		)
	}
}

func intQuery(c *gin.Context, name string, fallback int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer", name)
	}
	return value, nil
}
