package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/f1-form/internal/config"
	"github.com/yourusername/f1-form/internal/datasource"
	"github.com/yourusername/f1-form/internal/features"
	"github.com/yourusername/f1-form/internal/logger"
	"github.com/yourusername/f1-form/internal/ml"
	"github.com/yourusername/f1-form/internal/models"
	"github.com/yourusername/f1-form/internal/repository"
)

// ModelName is the name recorded in the model index
const ModelName = "f1_winner"

// Pipeline runs the batch stages fetch, features and train against the file store
type Pipeline struct {
	cfg       *config.Config
	repos     *repository.Repositories
	ingestion *IngestionService
	builder   *features.Builder
	trainer   *ml.Trainer
	mlLogger  *logger.MLLogger
	logger    *logrus.Logger
}

// NewPipeline wires the stages. source may be nil when only offline stages are used.
func NewPipeline(cfg *config.Config, repos *repository.Repositories, source datasource.DataSource, log *logrus.Logger) *Pipeline {
	if log == nil {
		log = logrus.StandardLogger()
	}
	p := &Pipeline{
		cfg:      cfg,
		repos:    repos,
		builder:  features.NewBuilder(cfg.Features.Window, log),
		trainer:  ml.NewTrainer(cfg.Training, log),
		mlLogger: logger.NewMLLogger(log),
		logger:   log,
	}
	if source != nil {
		p.ingestion = NewIngestionService(source, NewDataValidator(), log, cfg.Upstream.InterRequestDelay())
		p.ingestion.SkipSprintWeekends(cfg.Data.SkipSprintWeekends)
	}
	return p
}

// Ingestion exposes the fetch stage, for progress reporting
func (p *Pipeline) Ingestion() *IngestionService {
	return p.ingestion
}

// Trainer exposes the configured trainer
func (p *Pipeline) Trainer() *ml.Trainer {
	return p.trainer
}

// Fetch retrieves the configured seasons and replaces the results table
func (p *Pipeline) Fetch(ctx context.Context) (*FetchReport, error) {
	if p.ingestion == nil {
		return nil, errors.New("pipeline has no data source")
	}

	report, err := p.ingestion.FetchSeasons(ctx, p.cfg.Data.StartSeason, p.cfg.Data.EndSeason)
	if err != nil {
		return report, err
	}
	if err := p.repos.Results.Save(ctx, report.Records); err != nil {
		return report, fmt.Errorf("failed to save results: %w", err)
	}

	p.logger.WithFields(logrus.Fields{
		"path":    p.repos.Results.Path(),
		"records": len(report.Records),
		"partial": report.Partial,
	}).Info("Results table written")
	return report, nil
}

// BuildFeatures derives the engineered dataset from the results table and saves it
func (p *Pipeline) BuildFeatures(ctx context.Context) ([]models.EngineeredRecord, error) {
	results, err := p.repos.Results.Load(ctx)
	if err != nil {
		return nil, err
	}

	engineered, err := p.builder.Build(results)
	if err != nil {
		return nil, err
	}
	if err := p.repos.Dataset.Save(ctx, engineered); err != nil {
		return nil, fmt.Errorf("failed to save dataset: %w", err)
	}
	return engineered, nil
}

// Train fits a model on the engineered dataset, writes the artifact and records it in the model index
func (p *Pipeline) Train(ctx context.Context) (*ml.Artifact, *models.ModelInfo, error) {
	dataset, err := p.repos.Dataset.Load(ctx)
	if err != nil {
		return nil, nil, err
	}

	artifact, err := p.trainer.Train(dataset)
	if err != nil {
		return nil, nil, err
	}

	path := p.cfg.Training.ModelPath
	format := ml.FormatForPath(path, p.cfg.Training.ArtifactFormat)
	if err := ml.SaveArtifact(path, artifact, format); err != nil {
		return nil, nil, fmt.Errorf("failed to save model artifact: %w", err)
	}
	p.mlLogger.LogArtifact("saved", path, format)

	version := 1
	latest, err := p.repos.ModelIndex.Latest(ctx)
	switch {
	case err == nil:
		version = latest.Version + 1
	case !errors.Is(err, models.ErrNotFound):
		return artifact, nil, fmt.Errorf("failed to read model index: %w", err)
	}

	info := artifact.Info(ModelName, version, path)
	if err := p.repos.ModelIndex.Append(ctx, info); err != nil {
		return artifact, nil, fmt.Errorf("failed to update model index: %w", err)
	}
	return artifact, info, nil
}

// RunSummary describes one full pipeline run
type RunSummary struct {
	RunID      uuid.UUID
	Fetch      *FetchReport
	Records    int
	Model      *models.ModelInfo
	Evaluation *ml.Report
	Duration   time.Duration
}

// Run executes fetch, features and train in order, stopping at the first failing stage
func (p *Pipeline) Run(ctx context.Context) (*RunSummary, error) {
	start := time.Now()
	summary := &RunSummary{RunID: uuid.New()}
	log := p.logger.WithField("run_id", summary.RunID)
	log.Info("Starting pipeline run")

	report, err := p.Fetch(ctx)
	summary.Fetch = report
	if err != nil {
		return summary, fmt.Errorf("fetch stage: %w", err)
	}

	engineered, err := p.BuildFeatures(ctx)
	if err != nil {
		return summary, fmt.Errorf("features stage: %w", err)
	}
	summary.Records = len(engineered)

	artifact, info, err := p.Train(ctx)
	if err != nil {
		return summary, fmt.Errorf("train stage: %w", err)
	}
	summary.Model = info
	summary.Evaluation = artifact.Evaluation
	summary.Duration = time.Since(start)

	log.WithFields(logrus.Fields{
		"model_id":      info.ID,
		"model_version": info.Version,
		"records":       summary.Records,
		"partial_fetch": report.Partial,
		"duration_ms":   summary.Duration.Milliseconds(),
	}).Info("Pipeline run completed")
	return summary, nil
}
