package metrics

import "github.com/prometheus/client_golang/prometheus"

// Serving metrics
var (
	PredictionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "predictions_total",
		Help:      "Race predictions by outcome",
	}, []string{"status"})
	PredictionLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "prediction_latency_seconds",
		Help:      "Latency of race predictions in seconds",
		Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	})
	ServingDrivers = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "serving_drivers",
		Help:      "Drivers with a historical aggregate in the serving context",
	})
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "API requests by route and status code",
	}, []string{"route", "status"})
)

// RecordPrediction records a prediction outcome.
// status should be one of: "success", "unknown_driver", "not_found", "upstream_error", "error"
func RecordPrediction(status string, durationSeconds float64) {
	PredictionsTotal.WithLabelValues(status).Inc()
	if status == "success" {
		PredictionLatency.Observe(durationSeconds)
	}
}

// UpdateServingDrivers sets the number of drivers known to the serving context.
func UpdateServingDrivers(count int) {
	ServingDrivers.Set(float64(count))
}

// RecordHTTPRequest records a served API request.
func RecordHTTPRequest(route, status string) {
	HTTPRequestsTotal.WithLabelValues(route, status).Inc()
}
