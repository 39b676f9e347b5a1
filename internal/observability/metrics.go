package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the service.
type Metrics struct {
	// Context resolution metrics.
	ContextResolutions *prometheus.CounterVec // labels: provenance={LIVE,FALLBACK}
	WeatherLookups     *prometheus.CounterVec // labels: outcome={success,timeout,transport,bad_response,unknown_subject}
	WeatherAPIDuration prometheus.Histogram
	WeatherEnabled     prometheus.Gauge

	// Agent endpoint metrics.
	AgentRequests *prometheus.CounterVec // labels: agent, outcome={live,fallback,ok}

	// Audit trail metrics.
	AuditPublished prometheus.Counter
	AuditErrors    prometheus.Counter
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.ContextResolutions,
		m.WeatherLookups,
		m.WeatherAPIDuration,
		m.WeatherEnabled,
		m.AgentRequests,
		m.AuditPublished,
		m.AuditErrors,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		ContextResolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "disruption_ctx",
			Name:      "context_resolutions_total",
			Help:      "Context resolutions by provenance.",
		}, []string{"provenance"}),
		WeatherLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "disruption_ctx",
			Name:      "weather_lookups_total",
			Help:      "Weather provider lookups by outcome.",
		}, []string{"outcome"}),
		WeatherAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "disruption_ctx",
			Name:      "weather_api_duration_seconds",
			Help:      "Weather provider request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		WeatherEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "disruption_ctx",
			Name:      "weather_enabled",
			Help:      "1 when live weather lookups are enabled, 0 otherwise.",
		}),
		AgentRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "disruption_ctx",
			Name:      "agent_requests_total",
			Help:      "Agent endpoint requests by agent and outcome.",
		}, []string{"agent", "outcome"}),
		AuditPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "disruption_ctx",
			Name:      "audit_records_published_total",
			Help:      "Audit records successfully published to Kafka.",
		}),
		AuditErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "disruption_ctx",
			Name:      "audit_publish_errors_total",
			Help:      "Audit record publish failures.",
		}),
	}
}
