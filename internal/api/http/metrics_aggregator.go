package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ladyblueumd/url-opener-v2/internal/domain/batch"
	"github.com/ladyblueumd/url-opener-v2/internal/domain/history"
	"github.com/ladyblueumd/url-opener-v2/internal/domain/snapshot"
	"github.com/ladyblueumd/url-opener-v2/internal/domain/view"
	"github.com/ladyblueumd/url-opener-v2/internal/infrastructure/monitoring"
)

// MetricsAggregator assembles the JSON metrics document served to the
// renderer's diagnostics panel. Prometheus scraping uses /metrics; this
// endpoint is the human-readable rollup.
type MetricsAggregator struct {
	metrics   *monitoring.Metrics
	views     *view.Manager
	history   *history.Store
	batches   *batch.Manager
	snapshots *snapshot.Manager
}

// NewMetricsAggregator creates a metrics aggregator
func NewMetricsAggregator(
	metrics *monitoring.Metrics,
	views *view.Manager,
	historyStore *history.Store,
	batches *batch.Manager,
	snapshots *snapshot.Manager,
) *MetricsAggregator {
	return &MetricsAggregator{
		metrics:   metrics,
		views:     views,
		history:   historyStore,
		batches:   batches,
		snapshots: snapshots,
	}
}

// AggregateSnapshot represents a point-in-time rollup of shell metrics
type AggregateSnapshot struct {
	Timestamp time.Time              `json:"timestamp"`
	Shell     map[string]interface{} `json:"shell"`
	Domains   map[string]interface{} `json:"domains"`
	Summary   MetricsSummary         `json:"summary"`
}

// MetricsSummary provides high-level metrics
type MetricsSummary struct {
	TotalRequests     int64   `json:"total_requests"`
	AverageLatencyMs  float64 `json:"average_latency_ms"`
	ErrorRate         float64 `json:"error_rate"`
	ActiveViews       int     `json:"active_views"`
	ActiveConnections int     `json:"active_connections"`
	UptimeSeconds     float64 `json:"uptime_seconds"`
}

// GetAggregatedMetrics returns the full metrics rollup
func (ma *MetricsAggregator) GetAggregatedMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, AggregateSnapshot{
		Timestamp: time.Now(),
		Shell:     ma.getShellMetrics(),
		Domains:   ma.getDomainMetrics(),
		Summary:   ma.calculateSummary(),
	})
}

// getShellMetrics collects counters from the monitoring layer
func (ma *MetricsAggregator) getShellMetrics() map[string]interface{} {
	snapshot := ma.metrics.GetSnapshot()

	return map[string]interface{}{
		"status":             "operational",
		"total_requests":     snapshot.TotalRequests,
		"total_errors":       snapshot.TotalErrors,
		"active_connections": snapshot.ActiveConnections,
		"auth_started":       snapshot.AuthStarted,
		"auth_completed":     snapshot.AuthCompleted,
		"auth_expired":       snapshot.AuthExpired,
		"windows_denied":     snapshot.WindowsDenied,
		"history_size":       snapshot.HistorySize,
		"history_dropped":    snapshot.HistoryDropped,
		"batches_submitted":  snapshot.BatchesSubmitted,
		"batch_urls_opened":  snapshot.BatchURLsOpened,
		"uptime_seconds":     ma.metrics.GetUptimeSeconds(),
	}
}

// getDomainMetrics collects per-manager statistics
func (ma *MetricsAggregator) getDomainMetrics() map[string]interface{} {
	return map[string]interface{}{
		"views":     ma.views.Stats(),
		"history":   ma.history.Stats(),
		"batches":   ma.batches.Stats(),
		"snapshots": ma.snapshots.Stats(),
	}
}

// calculateSummary computes high-level summary metrics
func (ma *MetricsAggregator) calculateSummary() MetricsSummary {
	snapshot := ma.metrics.GetSnapshot()

	var avgLatency float64
	if snapshot.RequestCount > 0 {
		avgLatency = (snapshot.TotalDuration / float64(snapshot.RequestCount)) * 1000
	}

	var errorRate float64
	if snapshot.TotalRequests > 0 {
		errorRate = float64(snapshot.TotalErrors) / float64(snapshot.TotalRequests)
	}

	return MetricsSummary{
		TotalRequests:     snapshot.TotalRequests,
		AverageLatencyMs:  avgLatency,
		ErrorRate:         errorRate,
		ActiveViews:       int(snapshot.ActiveViews),
		ActiveConnections: int(snapshot.ActiveConnections),
		UptimeSeconds:     ma.metrics.GetUptimeSeconds(),
	}
}
