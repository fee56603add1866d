package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncBackendRequests(endpoint string, status int)
	ObserveBackendDuration(endpoint string, duration time.Duration)
	IncCacheHits()
	IncCacheMisses()
	IncGeocodeFallbacks()
	IncStaleResults()
}

type MetricsProvider struct {
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	backendRequests  *prometheus.CounterVec
	backendDuration  *prometheus.HistogramVec
	cacheHits        prometheus.Counter
	cacheMisses      prometheus.Counter
	geocodeFallbacks prometheus.Counter
	staleResults     prometheus.Counter
}

func (m *MetricsProvider) IncRequestsTotal(endpoint string, status int) {
	m.requestsTotal.WithLabelValues(endpoint, httpStatusBucket(status)).Inc()
}

func (m *MetricsProvider) ObserveRequestDuration(endpoint string, duration time.Duration) {
	m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncBackendRequests(endpoint string, status int) {
	m.backendRequests.WithLabelValues(endpoint, httpStatusBucket(status)).Inc()
}

func (m *MetricsProvider) ObserveBackendDuration(endpoint string, duration time.Duration) {
	m.backendDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncCacheHits() {
	m.cacheHits.Inc()
}

func (m *MetricsProvider) IncCacheMisses() {
	m.cacheMisses.Inc()
}

func (m *MetricsProvider) IncGeocodeFallbacks() {
	m.geocodeFallbacks.Inc()
}

func (m *MetricsProvider) IncStaleResults() {
	m.staleResults.Inc()
}

// httpStatusBucket maps a status to its class; 0 means the request never got a response.
func httpStatusBucket(code int) string {
	switch {
	case code == 0:
		return "error"
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

// NewMetricsProvider registers collectors on reg, or returns a no-op provider when disabled.
func NewMetricsProvider(enabled bool, reg prometheus.Registerer) MetricsProviderInterface {
	if !enabled {
		return &noopMetrics{}
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &MetricsProvider{
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "localgeo_requests_total",
			Help: "Total number of local API requests",
		}, []string{"endpoint", "status"}),

		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "localgeo_request_duration_seconds",
			Help:    "Local API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		backendRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "localgeo_backend_requests_total",
			Help: "Total number of outbound backend and geocoder requests",
		}, []string{"endpoint", "status"}),

		backendDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "localgeo_backend_request_duration_seconds",
			Help:    "Outbound request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		cacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "localgeo_cache_hits_total",
			Help: "Total number of event cache hits",
		}),

		cacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Name: "localgeo_cache_misses_total",
			Help: "Total number of event cache misses",
		}),

		geocodeFallbacks: factory.NewCounter(prometheus.CounterOpts{
			Name: "localgeo_geocode_fallbacks_total",
			Help: "Resolutions that fell back to the default map center",
		}),

		staleResults: factory.NewCounter(prometheus.CounterOpts{
			Name: "localgeo_stale_results_total",
			Help: "Resolutions discarded because a newer query was committed",
		}),
	}
}

// NoopMetrics returns the provider used when metrics are disabled.
func NoopMetrics() MetricsProviderInterface {
	return &noopMetrics{}
}

type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) IncBackendRequests(_ string, _ int)               {}
func (n *noopMetrics) ObserveBackendDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) IncCacheHits()                                    {}
func (n *noopMetrics) IncCacheMisses()                                  {}
func (n *noopMetrics) IncGeocodeFallbacks()                             {}
func (n *noopMetrics) IncStaleResults()                                 {}
