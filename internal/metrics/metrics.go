// Package metrics provides the centralized Prometheus registry for the F1 form pipeline.
package metrics

import (
	"net/http"
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "f1_form"

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Upstream and ingestion metrics
var (
	UpstreamRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "upstream_requests_total",
		Help:      "Total number of upstream API requests by endpoint and status code",
	}, []string{"endpoint", "status"})
	UpstreamCacheHitsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "upstream_cache_hits_total",
		Help:      "Upstream responses served from cache by endpoint",
	}, []string{"endpoint"})
	CircuitBreakerTripsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "circuit_breaker_trips_total",
		Help:      "Total number of upstream circuit breaker trips",
	})
	RacesFetchedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "races_fetched_total",
		Help:      "Races whose results were retrieved",
	})
	RacesSkippedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "races_skipped_total",
		Help:      "Races skipped after an upstream failure",
	})
	UpstreamRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "upstream_request_duration_seconds",
		Help:      "Latency of upstream API requests in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"endpoint"})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(collectors.NewGoCollector())
		registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

		registry.MustRegister(UpstreamRequestsTotal)
		registry.MustRegister(UpstreamCacheHitsTotal)
		registry.MustRegister(CircuitBreakerTripsTotal)
		registry.MustRegister(RacesFetchedTotal)
		registry.MustRegister(RacesSkippedTotal)
		registry.MustRegister(UpstreamRequestDuration)

		registry.MustRegister(TrainingRunsTotal)
		registry.MustRegister(TrainingDuration)
		registry.MustRegister(TestAccuracy)
		registry.MustRegister(TrainingRows)
		registry.MustRegister(FeatureBuildDuration)

		registry.MustRegister(PredictionsTotal)
		registry.MustRegister(PredictionLatency)
		registry.MustRegister(ServingDrivers)
		registry.MustRegister(HTTPRequestsTotal)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	return InitRegistry()
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordUpstreamRequest records one upstream request. status is the HTTP status code, or 0 on transport failure.
func RecordUpstreamRequest(endpoint string, status int, durationSeconds float64) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	UpstreamRequestsTotal.WithLabelValues(endpoint, label).Inc()
	UpstreamRequestDuration.WithLabelValues(endpoint).Observe(durationSeconds)
}

// RecordCacheHit records an upstream response served from cache.
func RecordCacheHit(endpoint string) {
	UpstreamCacheHitsTotal.WithLabelValues(endpoint).Inc()
}

// RecordCircuitBreakerTrip records a circuit breaker trip event.
func RecordCircuitBreakerTrip() {
	CircuitBreakerTripsTotal.Inc()
}

// RecordRaceFetched records a race whose results were retrieved.
func RecordRaceFetched() {
	RacesFetchedTotal.Inc()
}

// RecordRaceSkipped records a race dropped from a fetch.
func RecordRaceSkipped() {
	RacesSkippedTotal.Inc()
}
