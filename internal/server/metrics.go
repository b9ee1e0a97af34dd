package server

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metric names as constants for consistency.
const (
	MetricHTTPRequestsTotal   = "http_requests_total"
	MetricHTTPRequestDuration = "http_request_duration_seconds"
	MetricRankedKeywords      = "ranked_keywords"
	MetricAnalyzeLLMStatus    = "analyze_llm_status_total"
	MetricRateLimitBlocked    = "rate_limit_blocked_total"
)

// Metrics contains Prometheus metrics for the HTTP surface.
// All operations are thread-safe.
type Metrics struct {
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	rankedKeywords      prometheus.Histogram
	analyzeLLMStatus    *prometheus.CounterVec
	rateLimitBlocked    *prometheus.CounterVec
}

// NewMetrics creates and returns a new Metrics instance with all collectors initialized.
// The metrics are not registered; call Register to register them with a registry.
func NewMetrics() *Metrics {
	return &Metrics{
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricHTTPRequestsTotal,
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    MetricHTTPRequestDuration,
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1.0, 5.0},
			},
			[]string{"method", "path", "status"},
		),
		rankedKeywords: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    MetricRankedKeywords,
				Help:    "Number of keywords returned per rank request",
				Buckets: []float64{0, 1, 5, 10, 20, 50, 100},
			},
		),
		analyzeLLMStatus: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricAnalyzeLLMStatus,
				Help: "Analyze requests by outcome of the ranker call",
			},
			[]string{"status"},
		),
		rateLimitBlocked: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricRateLimitBlocked,
				Help: "Total number of requests rejected by the rate limiter",
			},
			[]string{"path"},
		),
	}
}

// Register registers all metrics with the given registry.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range m.Collectors() {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// Collectors returns all Prometheus collectors.
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.rankedKeywords,
		m.analyzeLLMStatus,
		m.rateLimitBlocked,
	}
}

// ObserveHTTPRequest records one completed request.
func (m *Metrics) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	labels := prometheus.Labels{
		"method": method,
		"path":   path,
		"status": strconv.Itoa(status),
	}
	m.httpRequestsTotal.With(labels).Inc()
	m.httpRequestDuration.With(labels).Observe(duration.Seconds())
}

// ObserveRanked records how many keywords a rank request returned.
func (m *Metrics) ObserveRanked(n int) {
	m.rankedKeywords.Observe(float64(n))
}

// IncAnalyzeLLMStatus counts an analyze outcome.
func (m *Metrics) IncAnalyzeLLMStatus(status string) {
	m.analyzeLLMStatus.WithLabelValues(status).Inc()
}

// IncRateLimitBlocked counts a request rejected with 429.
func (m *Metrics) IncRateLimitBlocked(path string) {
	m.rateLimitBlocked.WithLabelValues(path).Inc()
}

// newRegistry returns a registry with runtime collectors and the service metrics.
func newRegistry(m *Metrics) (*prometheus.Registry, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	if err := m.Register(reg); err != nil {
		return nil, err
	}
	return reg, nil
}

// knownRoutes are reported as-is; anything else is folded into "other"
// so unmatched paths cannot blow up label cardinality.
var knownRoutes = map[string]bool{
	"/llm/rank": true,
	"/analyze":  true,
	"/health":   true,
	"/metrics":  true,
}

func normalizePath(path string) string {
	if knownRoutes[path] {
		return path
	}
	return "other"
}
