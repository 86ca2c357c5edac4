// Package scheduler re-runs the fetch, feature and training pipeline on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/f1-form/internal/service"
)

// PipelineRunner is satisfied by *service.Pipeline
type PipelineRunner interface {
	Run(ctx context.Context) (*service.RunSummary, error)
}

// Scheduler manages scheduled pipeline runs
type Scheduler struct {
	cron       *cron.Cron
	pipeline   PipelineRunner
	logger     *logrus.Entry
	mu         sync.RWMutex
	isRunning  bool
	jobIDs     []cron.EntryID
	jobTimeout time.Duration
	runCtx     context.Context
	cancelRuns context.CancelFunc
	last       *service.RunSummary
	lastErr    error
}

// NewScheduler creates a new scheduler. Overlapping runs are skipped.
func NewScheduler(pipeline PipelineRunner, logger *logrus.Logger) *Scheduler {
	entry := logger.WithField("component", "scheduler")
	runCtx, cancelRuns := context.WithCancel(context.Background())
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithChain(cron.SkipIfStillRunning(cronLogger{entry})),
		),
		pipeline:   pipeline,
		logger:     entry,
		jobIDs:     make([]cron.EntryID, 0),
		jobTimeout: 4 * time.Hour,
		runCtx:     runCtx,
		cancelRuns: cancelRuns,
	}
}

// SchedulePipeline registers a full pipeline run under a standard five-field cron expression
func (s *Scheduler) SchedulePipeline(cronExpression string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}

	entryID, err := s.cron.AddFunc(cronExpression, s.runJob)
	if err != nil {
		return fmt.Errorf("failed to add job: %w", err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.WithField("cron", cronExpression).Info("Scheduled pipeline job")
	return nil
}

// runJob runs the pipeline under a context that Stop cancels
func (s *Scheduler) runJob() {
	s.mu.RLock()
	parent := s.runCtx
	s.mu.RUnlock()

	ctx, cancel := context.WithTimeout(parent, s.jobTimeout)
	defer cancel()

	s.logger.Info("Starting scheduled pipeline run")
	summary, err := s.pipeline.Run(ctx)

	s.mu.Lock()
	s.last, s.lastErr = summary, err
	s.mu.Unlock()

	if err != nil {
		s.logger.WithError(err).Error("Scheduled pipeline run failed")
		return
	}
	s.logger.WithFields(logrus.Fields{
		"run_id":   summary.RunID,
		"records":  summary.Records,
		"duration": summary.Duration,
	}).Info("Scheduled pipeline run completed")
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}
	if len(s.jobIDs) == 0 {
		return fmt.Errorf("no jobs scheduled")
	}

	if s.runCtx.Err() != nil {
		s.runCtx, s.cancelRuns = context.WithCancel(context.Background())
	}
	s.cron.Start()
	s.isRunning = true
	s.logger.WithField("jobs", len(s.jobIDs)).Info("Scheduler started")
	return nil
}

// Stop cancels a run in progress and waits for it to return
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = false
	s.cancelRuns()
	s.mu.Unlock()

	<-s.cron.Stop().Done()
	s.logger.Info("Scheduler stopped")
}

// IsRunning returns whether the scheduler is currently running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRun returns the time of the next scheduled run, or zero when stopped
func (s *Scheduler) NextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return time.Time{}
	}

	var next time.Time
	for _, id := range s.jobIDs {
		entry := s.cron.Entry(id)
		if entry.Valid() && (next.IsZero() || entry.Next.Before(next)) {
			next = entry.Next
		}
	}
	return next
}

// LastRun returns the outcome of the most recent completed run
func (s *Scheduler) LastRun() (*service.RunSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last, s.lastErr
}

// cronLogger adapts logrus to cron.Logger
type cronLogger struct {
	entry *logrus.Entry
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.entry.WithFields(pairs(keysAndValues)).Debug(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.entry.WithError(err).WithFields(pairs(keysAndValues)).Error(msg)
}

func pairs(keysAndValues []interface{}) logrus.Fields {
	fields := logrus.Fields{}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return fields
}
