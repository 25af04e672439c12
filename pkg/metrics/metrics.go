package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	BroadcastMessagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "broadcast_messages_total",
			Help: "Total number of clan chat lines processed (count)",
		},
		[]string{"status"},
	)

	BroadcastClassifiedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "broadcast_classified_total",
			Help: "Clan chat lines by classified broadcast kind (count)",
		},
		[]string{"kind"},
	)

	BroadcastSuppressedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "broadcast_suppressed_total",
			Help: "Notifications suppressed by guild policy, by gate (count)",
		},
		[]string{"kind", "gate"},
	)

	BroadcastExtractionFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "broadcast_extraction_failures_total",
			Help: "Lines classified to a kind whose extractor then failed (count)",
		},
		[]string{"kind"},
	)

	BroadcastProcessingDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "broadcast_processing_duration_ms",
			Help:    "Pipeline duration per clan chat line in milliseconds",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
		},
		[]string{"status"},
	)

	NotificationsPublishedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_published_total",
			Help: "Outbound notifications published, by kind (count)",
		},
		[]string{"kind"},
	)

	JobsEnqueuedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobs_enqueued_total",
			Help: "Side-effect jobs enqueued, by job type (count)",
		},
		[]string{"job_type"},
	)

	JobsProcessedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobs_processed_total",
			Help: "Jobs handled by the worker, by type and status (count)",
		},
		[]string{"job_type", "status"},
	)

	EnrichmentLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "enrichment_lookups_total",
			Help: "Enrichment lookups by source and outcome (count)",
		},
		[]string{"lookup", "outcome"},
	)

	EnrichmentCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "enrichment_cache_total",
			Help: "Enrichment cache reads by key class and hit/miss (count)",
		},
		[]string{"lookup", "result"},
	)

	EnrichmentLookupDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "enrichment_lookup_duration_ms",
			Help:    "Enrichment lookup duration in milliseconds",
			Buckets: []float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		},
		[]string{"lookup"},
	)

	BrokerMessagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "broker_messages_total",
			Help: "Broker messages by topic and status (count)",
		},
		[]string{"topic", "status"},
	)

	BrokerDLQTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "broker_dlq_total",
			Help: "Messages routed to the dead letter queue (count)",
		},
		[]string{"topic"},
	)

	CircuitBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Requests through a circuit breaker, by state (count)",
		},
		[]string{"name", "state"},
	)

	CircuitBreakerFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_failures_total",
			Help: "Failed requests through a circuit breaker (count)",
		},
		[]string{"name"},
	)

	APIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Management API requests by method, path, and status (count)",
		},
		[]string{"method", "path", "status"},
	)

	APIRateLimitedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "api_rate_limited_total",
			Help: "Management API requests rejected by the rate limiter (count)",
		},
	)
)

func RegisterBroadcastMetrics() {
	prometheus.MustRegister(
		BroadcastMessagesTotal,
		BroadcastClassifiedTotal,
		BroadcastSuppressedTotal,
		BroadcastExtractionFailures,
		BroadcastProcessingDuration,
		NotificationsPublishedTotal,
		JobsEnqueuedTotal,
	)
}

func RegisterJobWorkerMetrics() {
	prometheus.MustRegister(
		JobsProcessedTotal,
	)
}

func RegisterEnrichmentMetrics() {
	prometheus.MustRegister(
		EnrichmentLookupsTotal,
		EnrichmentCacheTotal,
		EnrichmentLookupDuration,
	)
}

func RegisterBrokerMetrics() {
	prometheus.MustRegister(
		BrokerMessagesTotal,
		BrokerDLQTotal,
	)
}

func RegisterCircuitBreakerMetrics() {
	prometheus.MustRegister(
		CircuitBreakerState,
		CircuitBreakerRequests,
		CircuitBreakerFailures,
	)
}

func RegisterAPIMetrics() {
	prometheus.MustRegister(
		APIRequestsTotal,
		APIRateLimitedTotal,
	)
}

func ObserveProcessingDuration(d time.Duration, status string) {
	BroadcastProcessingDuration.WithLabelValues(status).Observe(float64(d.Milliseconds()))
}

func ObserveLookupDuration(lookup string, d time.Duration) {
	EnrichmentLookupDuration.WithLabelValues(lookup).Observe(float64(d.Milliseconds()))
}
