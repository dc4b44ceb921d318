package http

import (
	"strings"
	"time"

	"github.com/ladyblueumd/url-opener-v2/internal/infrastructure/monitoring"
)

// HandlerMetrics wraps handlers with metrics tracking. A nil wrapper
// is valid and records nothing.
type HandlerMetrics struct {
	metrics *monitoring.Metrics
}

// NewHandlerMetrics creates a metrics wrapper
func NewHandlerMetrics(metrics *monitoring.Metrics) *HandlerMetrics {
	return &HandlerMetrics{metrics: metrics}
}

// TrackViewOperation tracks view manager operations
func (hm *HandlerMetrics) TrackViewOperation(operation string) func() {
	return hm.track("view_manager", operation)
}

// TrackBatchOperation tracks batch opener operations
func (hm *HandlerMetrics) TrackBatchOperation(operation string) func() {
	return hm.track("batch_opener", operation)
}

// TrackSnapshotOperation tracks snapshot manager operations
func (hm *HandlerMetrics) TrackSnapshotOperation(operation string) func() {
	return hm.track("snapshot_manager", operation)
}

// TrackHistoryOperation tracks history store operations
func (hm *HandlerMetrics) TrackHistoryOperation(operation string) func() {
	return hm.track("history_store", operation)
}

func (hm *HandlerMetrics) track(service, operation string) func() {
	if hm == nil {
		return func() {}
	}
	start := time.Now()
	return func() {
		hm.metrics.RecordServiceCall(service, operation, "success", time.Since(start))
	}
}

// RecordExecution tracks one registry tool execution under its
// service prefix
func (hm *HandlerMetrics) RecordExecution(toolID string, success bool, duration time.Duration) {
	if hm == nil {
		return
	}

	serviceID := toolID
	if i := strings.Index(serviceID, "."); i > 0 {
		serviceID = serviceID[:i]
	}

	status := "success"
	if !success {
		status = "failure"
		hm.metrics.RecordServiceError(serviceID, toolID, "execution")
	}
	hm.metrics.RecordServiceCall(serviceID, toolID, status, duration)
}
