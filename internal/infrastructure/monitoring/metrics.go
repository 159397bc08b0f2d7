package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gin-gonic/gin"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Terminal session metrics
	SessionsActive  prometheus.Gauge
	SessionsSpawned prometheus.Counter
	SpawnErrors     prometheus.Counter
	OutputBytes     prometheus.Counter
	InputBytes      prometheus.Counter

	// Event metrics
	EventsEmitted *prometheus.CounterVec

	// WebSocket metrics
	WSConnections prometheus.Gauge

	// System metrics
	Uptime    prometheus.Gauge
	startTime time.Time
}

// NewMetrics creates a new metrics collector
func NewMetrics() *Metrics {
	m := &Metrics{
		startTime: time.Now(),

		RequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "companion_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "companion_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),

		SessionsActive: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "companion_terminal_sessions_active",
				Help: "Number of registered terminal sessions",
			},
		),
		SessionsSpawned: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "companion_terminal_sessions_spawned_total",
				Help: "Total number of terminal sessions spawned",
			},
		),
		SpawnErrors: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "companion_terminal_spawn_errors_total",
				Help: "Total number of failed spawn attempts",
			},
		),
		OutputBytes: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "companion_terminal_output_bytes_total",
				Help: "Total bytes read from terminal sessions",
			},
		),
		InputBytes: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "companion_terminal_input_bytes_total",
				Help: "Total bytes written to terminal sessions",
			},
		),

		EventsEmitted: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "companion_events_emitted_total",
				Help: "Total number of events pushed to the event sink",
			},
			[]string{"event"},
		),

		WSConnections: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "companion_ws_connections",
				Help: "Number of active WebSocket connections",
			},
		),

		Uptime: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "companion_uptime_seconds",
				Help: "Server uptime in seconds",
			},
		),
	}

	go m.trackUptime()

	return m
}

// trackUptime updates the uptime gauge every 10 seconds
func (m *Metrics) trackUptime() {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		m.Uptime.Set(time.Since(m.startTime).Seconds())
	}
}

// RecordHTTPRequest records metrics for a completed HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// Handler returns the Prometheus exposition handler wrapped for gin
func (m *Metrics) Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
