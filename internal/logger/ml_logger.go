package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// MLLogger provides dedicated logging for training and prediction.
type MLLogger struct {
	*logrus.Entry
}

// NewMLLogger creates a new ML logger.
func NewMLLogger(baseLogger *logrus.Logger) *MLLogger {
	return &MLLogger{
		Entry: baseLogger.WithField("component", "ml"),
	}
}

// LogSplit logs the season partition used for training.
func (ml *MLLogger) LogSplit(trainSeasons, testSeasons []int, trainRows, testRows int) {
	ml.WithFields(logrus.Fields{
		"train_seasons": trainSeasons,
		"test_seasons":  testSeasons,
		"train_rows":    trainRows,
		"test_rows":     testRows,
	}).Info("Dataset split by season")
}

// LogModelTraining logs model training events.
func (ml *MLLogger) LogModelTraining(modelID string, duration time.Duration, scalePosWeight float64, metrics map[string]float64) {
	ml.WithFields(logrus.Fields{
		"model_id":         modelID,
		"duration_ms":      duration.Milliseconds(),
		"scale_pos_weight": scalePosWeight,
		"metrics":          metrics,
	}).Info("Model training completed")
}

// LogArtifact logs an artifact save or load.
func (ml *MLLogger) LogArtifact(action, path, format string) {
	ml.WithFields(logrus.Fields{
		"action": action,
		"path":   path,
		"format": format,
	}).Info("Model artifact " + action)
}

// LogPrediction logs a ranked prediction for one race.
func (ml *MLLogger) LogPrediction(raceName string, drivers int, topDriver string, topProbability float64, latency time.Duration) {
	ml.WithFields(logrus.Fields{
		"race":            raceName,
		"drivers":         drivers,
		"top_driver":      topDriver,
		"top_probability": topProbability,
		"latency_ms":      float64(latency.Microseconds()) / 1000,
	}).Info("Race prediction completed")
}

// LogPredictionError logs prediction errors.
func (ml *MLLogger) LogPredictionError(raceName string, err error) {
	ml.WithFields(logrus.Fields{
		"race":  raceName,
		"error": err.Error(),
	}).Error("Race prediction failed")
}
