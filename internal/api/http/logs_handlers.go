package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RendererLogEntry represents a log entry from the renderer process
type RendererLogEntry struct {
	ID        string                 `json:"id"`
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Context   map[string]interface{} `json:"context"`
	Timestamp string                 `json:"timestamp"`
}

// RendererLogStream represents a batch of logs from the renderer
type RendererLogStream struct {
	Source    string             `json:"source"`    // "renderer"
	Entries   []RendererLogEntry `json:"entries"`   // Log entries
	Timestamp int64              `json:"timestamp"` // Request timestamp
}

// StreamLogs folds renderer-process logs into the shell log so one
// stream covers both processes
func (h *Handlers) StreamLogs(c *gin.Context) {
	var req RendererLogStream
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid log request format"})
		return
	}

	if req.Source != "renderer" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown log source"})
		return
	}
	if len(req.Entries) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no log entries provided"})
		return
	}

	for _, entry := range req.Entries {
		h.writeRendererEntry(entry)
	}

	c.JSON(http.StatusOK, gin.H{
		"success":          true,
		"entries_received": len(req.Entries),
		"timestamp":        time.Now().Unix(),
	})
}

// writeRendererEntry forwards a single renderer log entry
func (h *Handlers) writeRendererEntry(entry RendererLogEntry) {
	fields := make([]zap.Field, 0, len(entry.Context)+3)

	fields = append(fields,
		zap.String("renderer_log_id", entry.ID),
		zap.String("source", "renderer"),
		zap.String("renderer_timestamp", entry.Timestamp),
	)

	for key, value := range entry.Context {
		switch v := value.(type) {
		case string:
			fields = append(fields, zap.String(key, v))
		case int:
			fields = append(fields, zap.Int(key, v))
		case int64:
			fields = append(fields, zap.Int64(key, v))
		case float64:
			fields = append(fields, zap.Float64(key, v))
		case bool:
			fields = append(fields, zap.Bool(key, v))
		default:
			fields = append(fields, zap.Any(key, v))
		}
	}

	switch entry.Level {
	case "error":
		h.logger.Error(entry.Message, fields...)
	case "warn":
		h.logger.Warn(entry.Message, fields...)
	case "debug", "verbose":
		h.logger.Debug(entry.Message, fields...)
	default:
		h.logger.Info(entry.Message, fields...)
	}
}
