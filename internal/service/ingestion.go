// Package service orchestrates retrieval, feature building and training.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/f1-form/internal/datasource"
	"github.com/yourusername/f1-form/internal/logger"
	"github.com/yourusername/f1-form/internal/metrics"
	"github.com/yourusername/f1-form/internal/models"
)

// ProgressFunc is called after every scheduled race is handled; err is nil on success
type ProgressFunc func(event models.RaceEvent, err error)

// IngestionService pulls season results from an upstream source
type IngestionService struct {
	source    datasource.DataSource
	validator *DataValidator
	logger    *logger.IngestionLogger
	delay     time.Duration
	progress  ProgressFunc

	skipSprints bool
}

// NewIngestionService creates a new ingestion service. delay is the pause between races.
func NewIngestionService(source datasource.DataSource, validator *DataValidator, log *logrus.Logger, delay time.Duration) *IngestionService {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if validator == nil {
		validator = NewDataValidator()
	}
	return &IngestionService{
		source:    source,
		validator: validator,
		logger:    logger.NewIngestionLogger(log),
		delay:     delay,
	}
}

// OnProgress registers a per-race callback
func (s *IngestionService) OnProgress(fn ProgressFunc) {
	s.progress = fn
}

// SkipSprintWeekends excludes events that also run a sprint race
func (s *IngestionService) SkipSprintWeekends(skip bool) {
	s.skipSprints = skip
}

// FetchSeasons retrieves the main-race results of every season in [start, end].
// A failed schedule or race is recorded on the report and skipped; only a cancelled
// context or an empty overall result is returned as an error.
func (s *IngestionService) FetchSeasons(ctx context.Context, start, end int) (*FetchReport, error) {
	if start > end {
		return nil, fmt.Errorf("start season %d is after end season %d", start, end)
	}

	began := time.Now()
	report := &FetchReport{StartSeason: start, EndSeason: end}
	seen := make(map[string]struct{})
	first := true

	for season := start; season <= end; season++ {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		events, err := s.source.FetchSchedule(ctx, season)
		if err != nil {
			if ctx.Err() != nil {
				return report, ctx.Err()
			}
			report.addFailure(season, 0, "", err)
			s.logger.LogRaceFailed(season, 0, "schedule", err)
			continue
		}
		s.logger.LogSeasonSchedule(season, len(events))

		for _, event := range events {
			if s.skipSprints && event.SprintWeekend {
				report.RacesSprint++
				s.logger.LogRaceExcluded(event.Season, event.Round, event.RaceName, "sprint weekend")
				continue
			}
			if !first {
				if err := s.pause(ctx); err != nil {
					return report, err
				}
			}
			first = false

			err := s.fetchRace(ctx, event, report, seen)
			if ctx.Err() != nil {
				return report, ctx.Err()
			}
			if s.progress != nil {
				s.progress(event, err)
			}
		}
	}

	report.Duration = time.Since(began)
	s.logger.LogFetchCompleted(report.Seasons(), len(report.Records), len(report.Failures), report.Duration)

	if len(report.Records) == 0 {
		return report, fmt.Errorf("%w: no results retrieved for seasons %d-%d", models.ErrUpstreamData, start, end)
	}
	return report, nil
}

func (s *IngestionService) fetchRace(ctx context.Context, event models.RaceEvent, report *FetchReport, seen map[string]struct{}) error {
	records, err := s.source.FetchRaceResults(ctx, event.Season, event.Round)
	if err != nil {
		if ctx.Err() == nil {
			report.RacesSkipped++
			report.addFailure(event.Season, event.Round, event.RaceName, err)
			metrics.RecordRaceSkipped()
			s.logger.LogRaceFailed(event.Season, event.Round, event.RaceName, err)
		}
		return err
	}
	if len(records) == 0 {
		// Scheduled but not yet run.
		report.RacesPending++
		return nil
	}

	if problems := s.validator.ValidateRaceResults(records); len(problems) > 0 {
		err := fmt.Errorf("%w: %s", models.ErrInvalidRecord, strings.Join(problems, "; "))
		report.RacesSkipped++
		report.ValidationErrors += len(problems)
		report.addFailure(event.Season, event.Round, event.RaceName, err)
		metrics.RecordRaceSkipped()
		s.logger.LogRaceFailed(event.Season, event.Round, event.RaceName, err)
		return err
	}

	accepted := 0
	for i := range records {
		rec := records[i]
		if problems := s.validator.ValidateRecord(&rec); len(problems) > 0 {
			report.ValidationErrors++
			s.logger.WithFields(logrus.Fields{
				"race":     rec.Key().String(),
				"driver":   rec.DriverID,
				"problems": problems,
			}).Warn("Dropping invalid result row")
			continue
		}
		key := rec.UniqKey()
		if _, dup := seen[key]; dup {
			report.Duplicates++
			s.logger.WithField("key", key).Warn("Dropping duplicate result row")
			continue
		}
		seen[key] = struct{}{}
		report.Records = append(report.Records, rec)
		accepted++
	}

	report.RacesFetched++
	metrics.RecordRaceFetched()
	s.logger.LogRaceFetched(event.Season, event.Round, event.RaceName, accepted)
	return nil
}

func (s *IngestionService) pause(ctx context.Context) error {
	if s.delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(s.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
