// Package monitoring exposes Prometheus metrics for the daemon. All
// recorder methods tolerate a nil *Metrics so tests can run the
// controller without a registry.
package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Session metrics
	SessionsActive  prometheus.Gauge
	SessionsCreated prometheus.Counter
	SessionsRemoved prometheus.Counter
	SpawnFailures   prometheus.Counter
	ReadyTimeouts   prometheus.Counter
	Bells           prometheus.Counter

	// Group metrics
	GroupsActive prometheus.Gauge

	// Output metrics
	OutputBytes   prometheus.Counter
	DroppedChunks prometheus.Counter

	// WebSocket metrics
	WSConnections prometheus.Gauge
	WSMessages    *prometheus.CounterVec

	// Lifecycle metrics
	Hydrations    prometheus.Counter
	PersistErrors prometheus.Counter
	Uptime        prometheus.Gauge

	startTime time.Time
}

// NewMetrics creates a new metrics collector
func NewMetrics() *Metrics {
	m := &Metrics{
		startTime: time.Now(),

		RequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "termhost_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "termhost_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),

		SessionsActive: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "termhost_sessions_active",
				Help: "Number of live terminal sessions",
			},
		),
		SessionsCreated: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "termhost_sessions_created_total",
				Help: "Total number of sessions created",
			},
		),
		SessionsRemoved: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "termhost_sessions_removed_total",
				Help: "Total number of sessions destroyed",
			},
		),
		SpawnFailures: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "termhost_spawn_failures_total",
				Help: "Total number of PTY spawn failures",
			},
		),
		ReadyTimeouts: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "termhost_ready_timeouts_total",
				Help: "Total number of sessions destroyed by readiness timeout",
			},
		),
		Bells: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "termhost_bells_total",
				Help: "Total number of terminal bells reported",
			},
		),

		GroupsActive: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "termhost_groups_active",
				Help: "Number of live split groups",
			},
		),

		OutputBytes: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "termhost_output_bytes_total",
				Help: "Total PTY output bytes processed",
			},
		),
		DroppedChunks: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "termhost_dropped_chunks_total",
				Help: "Output chunks dropped because a session buffer was full",
			},
		),

		WSConnections: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "termhost_ws_connections",
				Help: "Active WebSocket connections",
			},
		),
		WSMessages: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "termhost_ws_messages_total",
				Help: "WebSocket messages by direction and type",
			},
			[]string{"direction", "type"},
		),

		Hydrations: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "termhost_hydrations_total",
				Help: "Total number of display-client hydrations",
			},
		),
		PersistErrors: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "termhost_persist_errors_total",
				Help: "Snapshot writes that failed",
			},
		),
		Uptime: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "termhost_uptime_seconds",
				Help: "Daemon uptime in seconds",
			},
		),
	}

	go m.trackUptime()

	return m
}

// trackUptime updates the uptime gauge periodically
func (m *Metrics) trackUptime() {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		m.Uptime.Set(time.Since(m.startTime).Seconds())
	}
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// SetSessionsActive updates the live session gauge
func (m *Metrics) SetSessionsActive(n int) {
	if m == nil {
		return
	}
	m.SessionsActive.Set(float64(n))
}

// SetGroupsActive updates the live group gauge
func (m *Metrics) SetGroupsActive(n int) {
	if m == nil {
		return
	}
	m.GroupsActive.Set(float64(n))
}

// RecordSessionCreated counts a session creation
func (m *Metrics) RecordSessionCreated() {
	if m == nil {
		return
	}
	m.SessionsCreated.Inc()
}

// RecordSessionRemoved counts a session destruction
func (m *Metrics) RecordSessionRemoved() {
	if m == nil {
		return
	}
	m.SessionsRemoved.Inc()
}

// RecordSpawnFailure counts a PTY spawn failure
func (m *Metrics) RecordSpawnFailure() {
	if m == nil {
		return
	}
	m.SpawnFailures.Inc()
}

// RecordReadyTimeout counts a readiness timeout
func (m *Metrics) RecordReadyTimeout() {
	if m == nil {
		return
	}
	m.ReadyTimeouts.Inc()
}

// RecordBell counts a terminal bell
func (m *Metrics) RecordBell() {
	if m == nil {
		return
	}
	m.Bells.Inc()
}

// RecordOutput counts processed PTY output bytes
func (m *Metrics) RecordOutput(bytes int) {
	if m == nil {
		return
	}
	m.OutputBytes.Add(float64(bytes))
}

// RecordDroppedChunk counts a chunk dropped at the buffer cap
func (m *Metrics) RecordDroppedChunk() {
	if m == nil {
		return
	}
	m.DroppedChunks.Inc()
}

// WSConnected tracks a client attach
func (m *Metrics) WSConnected() {
	if m == nil {
		return
	}
	m.WSConnections.Inc()
}

// WSDisconnected tracks a client detach
func (m *Metrics) WSDisconnected() {
	if m == nil {
		return
	}
	m.WSConnections.Dec()
}

// RecordWSMessage counts a protocol message
func (m *Metrics) RecordWSMessage(direction, msgType string) {
	if m == nil {
		return
	}
	m.WSMessages.WithLabelValues(direction, msgType).Inc()
}

// RecordHydration counts a client hydration
func (m *Metrics) RecordHydration() {
	if m == nil {
		return
	}
	m.Hydrations.Inc()
}

// RecordPersistError counts a failed snapshot write
func (m *Metrics) RecordPersistError() {
	if m == nil {
		return
	}
	m.PersistErrors.Inc()
}
