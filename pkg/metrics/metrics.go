package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "payment_broker"

// BrokerMetrics holds all Prometheus metrics for the broker.
type BrokerMetrics struct {
	GatewayRequestsTotal *prometheus.CounterVec
	GatewayLatency       *prometheus.HistogramVec
	SecretCacheHits      prometheus.Counter
	SecretCacheMisses    prometheus.Counter
	EventsDispatched     *prometheus.CounterVec
	RateLimited          prometheus.Counter
}

// New registers the broker metrics on reg. A nil reg uses the default registerer.
func New(reg prometheus.Registerer) *BrokerMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &BrokerMetrics{
		GatewayRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "requests_total",
			Help:      "Total number of gateway calls by operation and outcome.",
		}, []string{"operation", "outcome"}), // outcome: approved, declined, error, transport_error
		GatewayLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "request_duration_seconds",
			Help:      "Latency of gateway calls.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		SecretCacheHits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "secrets",
			Name:      "cache_hits_total",
			Help:      "Total number of secret cache hits.",
		}),
		SecretCacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "secrets",
			Name:      "cache_misses_total",
			Help:      "Total number of secret cache misses.",
		}),
		EventsDispatched: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "dispatched_total",
			Help:      "Total number of domain events dispatched by name and outcome.",
		}, []string{"event", "outcome"}),
		RateLimited: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "rate_limited_total",
			Help:      "Total number of tenant requests rejected by the rate limiter.",
		}),
	}
}

// NewNop returns metrics registered on a throwaway registry
func NewNop() *BrokerMetrics {
	return New(prometheus.NewRegistry())
}
