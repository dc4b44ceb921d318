package monitoring

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RequestSize     *prometheus.HistogramVec
	ResponseSize    *prometheus.HistogramVec

	// View metrics
	ViewsActive prometheus.Gauge
	ViewsTotal  prometheus.Counter

	// Navigation metrics
	NavigationEvents *prometheus.CounterVec
	AuthFlows        *prometheus.CounterVec
	Notices          *prometheus.CounterVec

	// History metrics
	HistorySize     prometheus.Gauge
	HistoryRecorded prometheus.Counter
	HistoryDropped  prometheus.Gauge

	// Batch metrics
	BatchesSubmitted prometheus.Counter
	BatchURLs        prometheus.Counter
	BatchURLsOpened  prometheus.Counter

	// Service metrics
	ServiceCalls    *prometheus.CounterVec
	ServiceDuration *prometheus.HistogramVec
	ServiceErrors   *prometheus.CounterVec

	// Snapshot metrics
	SnapshotsSaved    prometheus.Counter
	SnapshotsRestored prometheus.Counter

	// Probe metrics
	ProbeRequests *prometheus.CounterVec
	ProbeDuration prometheus.Histogram

	// WebSocket metrics
	WSConnections prometheus.Gauge
	WSMessages    *prometheus.CounterVec

	// System metrics
	Uptime    prometheus.Gauge
	startTime time.Time

	// Snapshot for JSON API - track current values
	snapshot MetricsSnapshot

	mu sync.RWMutex
}

// MetricsSnapshot holds current metric values for JSON API
type MetricsSnapshot struct {
	TotalRequests     int64
	TotalErrors       int64
	ActiveViews       int64
	ActiveConnections int64
	TotalDuration     float64 // sum of all request durations
	RequestCount      int64   // count for averaging
	AuthStarted       int64
	AuthCompleted     int64
	AuthExpired       int64
	WindowsDenied     int64
	HistorySize       int64
	HistoryDropped    int64
	BatchesSubmitted  int64
	BatchURLsOpened   int64
}

// NewMetrics creates a new metrics collector
func NewMetrics() *Metrics {
	m := &Metrics{
		startTime: time.Now(),

		// HTTP metrics
		RequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shell_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "shell_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		RequestSize: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "shell_http_request_size_bytes",
				Help:    "HTTP request size in bytes",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000, 10000000},
			},
			[]string{"method", "path"},
		),
		ResponseSize: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "shell_http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000, 10000000},
			},
			[]string{"method", "path"},
		),

		// View metrics
		ViewsActive: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "shell_views_active",
				Help: "Number of open views",
			},
		),
		ViewsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "shell_views_total",
				Help: "Total number of views opened",
			},
		),

		// Navigation metrics
		NavigationEvents: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shell_navigation_events_total",
				Help: "Total number of navigation events by source and action",
			},
			[]string{"source", "action"},
		),
		AuthFlows: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shell_auth_flows_total",
				Help: "Total number of auth flow phases",
			},
			[]string{"phase"},
		),
		Notices: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shell_notices_total",
				Help: "Total number of user notices",
			},
			[]string{"level"},
		),

		// History metrics
		HistorySize: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "shell_history_size",
				Help: "Number of history entries currently retained",
			},
		),
		HistoryRecorded: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "shell_history_recorded_total",
				Help: "Total number of history entries recorded",
			},
		),
		HistoryDropped: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "shell_history_dropped",
				Help: "Number of history entries evicted by the ring",
			},
		),

		// Batch metrics
		BatchesSubmitted: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "shell_batches_submitted_total",
				Help: "Total number of batches submitted",
			},
		),
		BatchURLs: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "shell_batch_urls_total",
				Help: "Total number of URLs submitted in batches",
			},
		),
		BatchURLsOpened: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "shell_batch_urls_opened_total",
				Help: "Total number of batch URLs dispatched to views",
			},
		),

		// Service metrics
		ServiceCalls: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shell_service_calls_total",
				Help: "Total number of service calls",
			},
			[]string{"service", "method", "status"},
		),
		ServiceDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "shell_service_duration_seconds",
				Help:    "Service call duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"service", "method"},
		),
		ServiceErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shell_service_errors_total",
				Help: "Total number of service errors",
			},
			[]string{"service", "method", "error_type"},
		),

		// Snapshot metrics
		SnapshotsSaved: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "shell_snapshots_saved_total",
				Help: "Total number of session snapshots saved",
			},
		),
		SnapshotsRestored: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "shell_snapshots_restored_total",
				Help: "Total number of session snapshots restored",
			},
		),

		// Probe metrics
		ProbeRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shell_probe_requests_total",
				Help: "Total number of preflight probe requests",
			},
			[]string{"outcome"},
		),
		ProbeDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "shell_probe_duration_seconds",
				Help:    "Preflight probe duration in seconds",
				Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
		),

		// WebSocket metrics
		WSConnections: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "shell_ws_connections",
				Help: "Number of active WebSocket connections",
			},
		),
		WSMessages: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shell_ws_messages_total",
				Help: "Total number of WebSocket messages",
			},
			[]string{"direction", "type"},
		),

		// System metrics
		Uptime: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "shell_uptime_seconds",
				Help: "Shell service uptime in seconds",
			},
		),
	}

	// Start uptime updater
	go m.updateUptime()

	return m
}

// updateUptime continuously updates the uptime metric
func (m *Metrics) updateUptime() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for range ticker.C {
		m.Uptime.Set(time.Since(m.startTime).Seconds())
	}
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration, reqSize, respSize int64) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	m.RequestSize.WithLabelValues(method, path).Observe(float64(reqSize))
	m.ResponseSize.WithLabelValues(method, path).Observe(float64(respSize))

	// Update snapshot
	m.mu.Lock()
	m.snapshot.TotalRequests++
	m.snapshot.TotalDuration += duration.Seconds()
	m.snapshot.RequestCount++
	if len(status) > 0 && (status[0] == '4' || status[0] == '5') {
		m.snapshot.TotalErrors++
	}
	m.mu.Unlock()
}

// RecordServiceCall records a service call
func (m *Metrics) RecordServiceCall(service, method, status string, duration time.Duration) {
	m.ServiceCalls.WithLabelValues(service, method, status).Inc()
	m.ServiceDuration.WithLabelValues(service, method).Observe(duration.Seconds())
}

// RecordServiceError records a service error
func (m *Metrics) RecordServiceError(service, method, errorType string) {
	m.ServiceErrors.WithLabelValues(service, method, errorType).Inc()
}

// RecordNavigation records a navigation event and the action taken
func (m *Metrics) RecordNavigation(source, action string) {
	m.NavigationEvents.WithLabelValues(source, action).Inc()

	if action == "deny-window" {
		m.mu.Lock()
		m.snapshot.WindowsDenied++
		m.mu.Unlock()
	}
}

// RecordAuthFlow records an auth flow phase: started, completed, expired
func (m *Metrics) RecordAuthFlow(phase string) {
	m.AuthFlows.WithLabelValues(phase).Inc()

	m.mu.Lock()
	switch phase {
	case "started":
		m.snapshot.AuthStarted++
	case "completed":
		m.snapshot.AuthCompleted++
	case "expired":
		m.snapshot.AuthExpired++
	}
	m.mu.Unlock()
}

// RecordNotice records a user-facing notice by level
func (m *Metrics) RecordNotice(level string) {
	m.Notices.WithLabelValues(level).Inc()
}

// RecordHistoryAppend records a history append and the ring state
func (m *Metrics) RecordHistoryAppend(size int, dropped int64) {
	m.HistoryRecorded.Inc()
	m.HistorySize.Set(float64(size))
	m.HistoryDropped.Set(float64(dropped))

	m.mu.Lock()
	m.snapshot.HistorySize = int64(size)
	m.snapshot.HistoryDropped = dropped
	m.mu.Unlock()
}

// RecordBatchSubmitted records a submitted batch and its URL count
func (m *Metrics) RecordBatchSubmitted(urls int) {
	m.BatchesSubmitted.Inc()
	m.BatchURLs.Add(float64(urls))

	m.mu.Lock()
	m.snapshot.BatchesSubmitted++
	m.mu.Unlock()
}

// RecordBatchOpened records batch URLs dispatched to views
func (m *Metrics) RecordBatchOpened(urls int) {
	m.BatchURLsOpened.Add(float64(urls))

	m.mu.Lock()
	m.snapshot.BatchURLsOpened += int64(urls)
	m.mu.Unlock()
}

// RecordProbe records a probe request outcome
func (m *Metrics) RecordProbe(outcome string, duration time.Duration) {
	m.ProbeRequests.WithLabelValues(outcome).Inc()
	m.ProbeDuration.Observe(duration.Seconds())
}

// RecordWSMessage records a WebSocket message
func (m *Metrics) RecordWSMessage(direction, msgType string) {
	m.WSMessages.WithLabelValues(direction, msgType).Inc()
}

// SetActiveViews sets the number of open views
func (m *Metrics) SetActiveViews(count int) {
	m.ViewsActive.Set(float64(count))
	m.mu.Lock()
	m.snapshot.ActiveViews = int64(count)
	m.mu.Unlock()
}

// IncViewsTotal increments the total views counter
func (m *Metrics) IncViewsTotal() {
	m.ViewsTotal.Inc()
}

// IncSnapshotsSaved increments the snapshots saved counter
func (m *Metrics) IncSnapshotsSaved() {
	m.SnapshotsSaved.Inc()
}

// IncSnapshotsRestored increments the snapshots restored counter
func (m *Metrics) IncSnapshotsRestored() {
	m.SnapshotsRestored.Inc()
}

// IncWSConnections increments WebSocket connections
func (m *Metrics) IncWSConnections() {
	m.WSConnections.Inc()
	m.mu.Lock()
	m.snapshot.ActiveConnections++
	m.mu.Unlock()
}

// DecWSConnections decrements WebSocket connections
func (m *Metrics) DecWSConnections() {
	m.WSConnections.Dec()
	m.mu.Lock()
	if m.snapshot.ActiveConnections > 0 {
		m.snapshot.ActiveConnections--
	}
	m.mu.Unlock()
}

// GetSnapshot returns current metric values for the JSON API
func (m *Metrics) GetSnapshot() MetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot
}

// GetUptimeSeconds returns seconds since the collector started
func (m *Metrics) GetUptimeSeconds() float64 {
	return time.Since(m.startTime).Seconds()
}
