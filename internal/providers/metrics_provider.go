package providers

import (
	"seedvault/internal/structures"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncCacheHits()
	IncCacheMisses()
	IncSeedFileRead(kind string, ok bool)
	IncSeedFileWriteEmptySeed(kind string, empty bool)
	IncSeedFileDeletions()
}

type MetricsProvider struct {
	requestsTotal      *prometheus.CounterVec
	requestDuration    *prometheus.HistogramVec
	cacheHits          prometheus.Counter
	cacheMisses        prometheus.Counter
	seedFileReads      *prometheus.CounterVec
	seedFileEmptySeeds *prometheus.CounterVec
	seedFileDeletions  prometheus.Counter
}

func (m *MetricsProvider) IncRequestsTotal(endpoint string, status int) {
	m.requestsTotal.WithLabelValues(endpoint, httpStatusBucket(status)).Inc()
}

func (m *MetricsProvider) ObserveRequestDuration(endpoint string, duration time.Duration) {
	m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncCacheHits() {
	m.cacheHits.Inc()
}

func (m *MetricsProvider) IncCacheMisses() {
	m.cacheMisses.Inc()
}

func (m *MetricsProvider) IncSeedFileRead(kind string, ok bool) {
	m.seedFileReads.WithLabelValues(kind, boolLabel(ok)).Inc()
}

func (m *MetricsProvider) IncSeedFileWriteEmptySeed(kind string, empty bool) {
	m.seedFileEmptySeeds.WithLabelValues(kind, boolLabel(empty)).Inc()
}

func (m *MetricsProvider) IncSeedFileDeletions() {
	m.seedFileDeletions.Inc()
}

func boolLabel(v bool) string {
	if v {
		return "true"
	}
	return "false"
}

func httpStatusBucket(code int) string {
	switch {
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

func NewMetricsProvider(conf *structures.Config) MetricsProviderInterface {
	if !conf.Metrics.Enabled {
		return &noopMetrics{}
	}
	return newMetricsProvider(prometheus.DefaultRegisterer)
}

func newMetricsProvider(reg prometheus.Registerer) *MetricsProvider {
	factory := promauto.With(reg)

	return &MetricsProvider{
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "seedvault_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "status"}),

		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "seedvault_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		cacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "seedvault_cache_hits_total",
			Help: "Total number of cache hits",
		}),

		cacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Name: "seedvault_cache_misses_total",
			Help: "Total number of cache misses",
		}),

		seedFileReads: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "seedvault_seed_file_reads_total",
			Help: "Seed file reads at startup, by seed kind and outcome",
		}, []string{"kind", "success"}),

		seedFileEmptySeeds: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "seedvault_seed_file_import_empty_total",
			Help: "Seed file writes scheduled from a preference-store import, by whether the imported seed was empty",
		}, []string{"kind", "empty"}),

		seedFileDeletions: factory.NewCounter(prometheus.CounterOpts{
			Name: "seedvault_seed_file_deletions_total",
			Help: "Best-effort deletions scheduled for obsolete seed files",
		}),
	}
}

// noopMetrics is a no-op implementation for when metrics are disabled.
type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) IncCacheHits()                                    {}
func (n *noopMetrics) IncCacheMisses()                                  {}
func (n *noopMetrics) IncSeedFileRead(_ string, _ bool)                 {}
func (n *noopMetrics) IncSeedFileWriteEmptySeed(_ string, _ bool)       {}
func (n *noopMetrics) IncSeedFileDeletions()                            {}
