package metrics

import "github.com/prometheus/client_golang/prometheus"

// Training metrics
var (
	TrainingRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "training_runs_total",
		Help:      "Total number of training runs by status",
	}, []string{"status"})
	TrainingDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "training_duration_seconds",
		Help:      "Duration of model training in seconds",
		Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300},
	})
	TestAccuracy = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "test_accuracy",
		Help:      "Accuracy of the most recently trained model on held-out seasons",
	})
	TrainingRows = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "training_rows",
		Help:      "Rows in the most recent split by partition",
	}, []string{"partition"})
	FeatureBuildDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "feature_build_duration_seconds",
		Help:      "Duration of feature engineering runs in seconds",
		Buckets:   prometheus.DefBuckets,
	})
)

// RecordTrainingRun records a training run.
// status should be one of: "success", "degenerate", "failure"
func RecordTrainingRun(status string, durationSeconds float64) {
	TrainingRunsTotal.WithLabelValues(status).Inc()
	if status == "success" {
		TrainingDuration.Observe(durationSeconds)
	}
}

// UpdateTestAccuracy sets the held-out accuracy gauge.
func UpdateTestAccuracy(accuracy float64) {
	TestAccuracy.Set(accuracy)
}

// UpdateSplitSizes records the train and test partition sizes.
func UpdateSplitSizes(train, test int) {
	TrainingRows.WithLabelValues("train").Set(float64(train))
	TrainingRows.WithLabelValues("test").Set(float64(test))
}

// RecordFeatureBuild records a feature engineering run.
func RecordFeatureBuild(durationSeconds float64) {
	FeatureBuildDuration.Observe(durationSeconds)
}
