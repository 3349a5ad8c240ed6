package monitoring

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Boot phases in display order, used to keep the phase gauge one-hot
var bootPhases = []string{"hidden", "booting", "welcome", "complete"}

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RequestSize     *prometheus.HistogramVec
	ResponseSize    *prometheus.HistogramVec

	// Window metrics
	WindowsOpen  prometheus.Gauge
	Launches     *prometheus.CounterVec
	RegistryApps prometheus.Gauge

	// Boot and onboarding metrics
	BootPhase    *prometheus.GaugeVec
	TourSteps    *prometheus.CounterVec
	TourOutcomes *prometheus.CounterVec

	// Notification metrics
	NotificationsDelivered *prometheus.CounterVec

	// Storage metrics
	StorageBreaker *prometheus.GaugeVec

	// WebSocket metrics
	WSConnections prometheus.Gauge
	WSMessages    *prometheus.CounterVec

	startTime time.Time

	// Snapshot for JSON API - track current values
	snapshot MetricsSnapshot

	mu sync.RWMutex
}

// MetricsSnapshot holds current metric values for JSON API
type MetricsSnapshot struct {
	TotalRequests     int64   `json:"totalRequests"`
	TotalErrors       int64   `json:"totalErrors"`
	OpenWindows       int64   `json:"openWindows"`
	Launches          int64   `json:"launches"`
	ActiveConnections int64   `json:"activeConnections"`
	AvgDurationMs     float64 `json:"avgDurationMs"`
	UptimeSeconds     float64 `json:"uptimeSeconds"`

	totalDuration float64
}

// NewMetrics registers every collector with reg. Pass prometheus.NewRegistry()
// in tests so collectors never collide on the global registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	m := &Metrics{
		startTime: time.Now(),

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "folio_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "folio_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),
		RequestSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "folio_http_request_size_bytes",
				Help:    "HTTP request size in bytes",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000},
			},
			[]string{"method", "path"},
		),
		ResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "folio_http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000},
			},
			[]string{"method", "path"},
		),

		WindowsOpen: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "folio_windows_open",
				Help: "Number of windows in the stack, minimized included",
			},
		),
		Launches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "folio_app_launches_total",
				Help: "Total number of app launches",
			},
			[]string{"app"},
		),
		RegistryApps: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "folio_registry_apps",
				Help: "Number of apps in registry",
			},
		),

		BootPhase: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "folio_boot_phase",
				Help: "Current boot phase (1 for the active phase)",
			},
			[]string{"phase"},
		),
		TourSteps: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "folio_tour_steps_total",
				Help: "Total number of onboarding steps entered",
			},
			[]string{"step"},
		),
		TourOutcomes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "folio_tour_outcomes_total",
				Help: "Total number of finished tours by outcome",
			},
			[]string{"outcome"},
		),

		NotificationsDelivered: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "folio_notifications_delivered_total",
				Help: "Total number of notifications shown",
			},
			[]string{"id"},
		),

		StorageBreaker: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "folio_storage_breaker_state",
				Help: "Storage circuit breaker state (0 closed, 1 half-open, 2 open)",
			},
			[]string{"breaker"},
		),

		WSConnections: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "folio_ws_connections",
				Help: "Number of active WebSocket connections",
			},
		),
		WSMessages: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "folio_ws_messages_total",
				Help: "Total number of WebSocket messages",
			},
			[]string{"direction", "type"},
		),
	}

	factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "folio_uptime_seconds",
			Help: "Backend uptime in seconds",
		},
		func() float64 { return time.Since(m.startTime).Seconds() },
	)

	return m
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration, reqSize, respSize int64) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	m.RequestSize.WithLabelValues(method, path).Observe(float64(reqSize))
	m.ResponseSize.WithLabelValues(method, path).Observe(float64(respSize))

	m.mu.Lock()
	m.snapshot.TotalRequests++
	m.snapshot.totalDuration += duration.Seconds()
	if status != "" && (status[0] == '4' || status[0] == '5') {
		m.snapshot.TotalErrors++
	}
	m.mu.Unlock()
}

// RecordLaunch counts a launch of app
func (m *Metrics) RecordLaunch(app string) {
	m.Launches.WithLabelValues(app).Inc()
	m.mu.Lock()
	m.snapshot.Launches++
	m.mu.Unlock()
}

// SetOpenWindows sets the window stack size
func (m *Metrics) SetOpenWindows(count int) {
	m.WindowsOpen.Set(float64(count))
	m.mu.Lock()
	m.snapshot.OpenWindows = int64(count)
	m.mu.Unlock()
}

// SetRegistryApps sets the number of apps in registry
func (m *Metrics) SetRegistryApps(count int) {
	m.RegistryApps.Set(float64(count))
}

// SetBootPhase marks phase as the single active boot phase
func (m *Metrics) SetBootPhase(phase string) {
	for _, p := range bootPhases {
		v := 0.0
		if p == phase {
			v = 1
		}
		m.BootPhase.WithLabelValues(p).Set(v)
	}
}

// RecordTourStep counts entry into an onboarding step
func (m *Metrics) RecordTourStep(step string) {
	m.TourSteps.WithLabelValues(step).Inc()
}

// RecordTourOutcome counts a finished tour ("finished" or "skipped")
func (m *Metrics) RecordTourOutcome(outcome string) {
	m.TourOutcomes.WithLabelValues(outcome).Inc()
}

// RecordNotification counts a delivered notification
func (m *Metrics) RecordNotification(id string) {
	m.NotificationsDelivered.WithLabelValues(id).Inc()
}

// SetBreakerState exposes a circuit breaker state
func (m *Metrics) SetBreakerState(name string, state int) {
	m.StorageBreaker.WithLabelValues(name).Set(float64(state))
}

// RecordWSMessage records a WebSocket message
func (m *Metrics) RecordWSMessage(direction, msgType string) {
	m.WSMessages.WithLabelValues(direction, msgType).Inc()
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
	m.snapshot.ActiveConnections--
	m.mu.Unlock()
}
