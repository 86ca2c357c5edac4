package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// IngestionLogger logs upstream fetch progress.
type IngestionLogger struct {
	*logrus.Entry
}

// NewIngestionLogger creates a new ingestion logger.
func NewIngestionLogger(baseLogger *logrus.Logger) *IngestionLogger {
	return &IngestionLogger{
		Entry: baseLogger.WithField("component", "ingestion"),
	}
}

// LogSeasonSchedule logs a fetched season calendar.
func (il *IngestionLogger) LogSeasonSchedule(season, races int) {
	il.WithFields(logrus.Fields{
		"season": season,
		"races":  races,
	}).Info("Season schedule fetched")
}

// LogRaceFetched logs a race whose results were retrieved.
func (il *IngestionLogger) LogRaceFetched(season, round int, raceName string, records int) {
	il.WithFields(logrus.Fields{
		"season":  season,
		"round":   round,
		"race":    raceName,
		"records": records,
	}).Debug("Race results fetched")
}

// LogRaceExcluded logs a scheduled race left out of the fetch
func (il *IngestionLogger) LogRaceExcluded(season, round int, raceName, reason string) {
	il.WithFields(logrus.Fields{
		"season": season,
		"round":  round,
		"race":   raceName,
		"reason": reason,
	}).Debug("Race excluded")
}

// LogRaceFailed logs a race skipped after an upstream failure.
func (il *IngestionLogger) LogRaceFailed(season, round int, raceName string, err error) {
	il.WithFields(logrus.Fields{
		"season": season,
		"round":  round,
		"race":   raceName,
		"error":  err.Error(),
	}).Warn("Race skipped after upstream failure")
}

// LogFetchCompleted logs the outcome of a multi-season fetch.
func (il *IngestionLogger) LogFetchCompleted(seasons []int, records, failures int, duration time.Duration) {
	entry := il.WithFields(logrus.Fields{
		"seasons":     seasons,
		"records":     records,
		"failures":    failures,
		"duration_ms": duration.Milliseconds(),
		"partial":     failures > 0,
	})
	if failures > 0 {
		entry.Warn("Fetch completed with missing races")
		return
	}
	entry.Info("Fetch completed")
}
