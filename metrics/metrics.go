// Package metrics provides the concrete client.MetricsObserver implementation
// backed by github.com/prometheus/client_golang, wired into rishi-jat-console's
// dependency (go.mod already required it) but otherwise following the
// standard promauto registration idiom rather than any one example file, since
// no repo in the pack wires Prometheus directly into a GitHub API client.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusObserver implements client.MetricsObserver without importing the
// client package, breaking the cyclic dependency the Python original has
// between its client and metrics modules.
type PrometheusObserver struct {
	requests       *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
	rateRemaining  prometheus.Gauge
	rateLimit      prometheus.Gauge
	breakerState   *prometheus.GaugeVec
}

// New registers every ghstats collector against reg and returns the observer.
// Tests and command/serve both pass their own prometheus.NewRegistry();
// any other prometheus.Registerer works too.
func New(reg prometheus.Registerer) *PrometheusObserver {
	factory := promauto.With(reg)
	return &PrometheusObserver{
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ghstats",
			Name:      "client_requests_total",
			Help:      "Total GitHub API requests issued by the client, labeled by endpoint and status.",
		}, []string{"endpoint", "status"}),
		requestLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "ghstats",
			Name:      "client_request_duration_seconds",
			Help:      "GitHub API request duration in seconds, labeled by endpoint.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
		rateRemaining: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "ghstats",
			Name:      "github_rate_limit_remaining",
			Help:      "Most recently observed X-RateLimit-Remaining value.",
		}),
		rateLimit: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "ghstats",
			Name:      "github_rate_limit_limit",
			Help:      "Most recently observed X-RateLimit-Limit value.",
		}),
		breakerState: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "ghstats",
			Name:      "circuit_breaker_state",
			Help:      "Circuit breaker state per upstream: 0=closed, 1=half-open, 2=open.",
		}, []string{"upstream"}),
	}
}

// ObserveRequest records one completed request's status and latency.
func (p *PrometheusObserver) ObserveRequest(endpoint string, status int, duration time.Duration) {
	statusLabel := "ok"
	if status >= 400 {
		statusLabel = "error"
	}
	p.requests.WithLabelValues(endpoint, statusLabel).Inc()
	p.requestLatency.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// ObserveRateLimit records the most recently seen GitHub rate-limit headers.
func (p *PrometheusObserver) ObserveRateLimit(remaining, limit int) {
	p.rateRemaining.Set(float64(remaining))
	p.rateLimit.Set(float64(limit))
}

// ObserveBreakerState records a circuit breaker's current state.
func (p *PrometheusObserver) ObserveBreakerState(upstream, state string) {
	var v float64
	switch state {
	case "half-open":
		v = 1
	case "open":
		v = 2
	}
	p.breakerState.WithLabelValues(upstream).Set(v)
}
