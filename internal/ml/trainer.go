package ml

import (
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/f1-form/internal/config"
	"github.com/yourusername/f1-form/internal/dataset"
	"github.com/yourusername/f1-form/internal/gbt"
	"github.com/yourusername/f1-form/internal/logger"
	"github.com/yourusername/f1-form/internal/metrics"
	"github.com/yourusername/f1-form/internal/models"
)

// Trainer fits the winner classifier on a season split
type Trainer struct {
	cfg    config.TrainingConfig
	logger *logger.MLLogger
}

// NewTrainer creates a trainer using the configured hyperparameters
func NewTrainer(cfg config.TrainingConfig, log *logrus.Logger) *Trainer {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Trainer{cfg: cfg, logger: logger.NewMLLogger(log)}
}

// Params returns the booster parameters before class weighting
func (t *Trainer) Params() gbt.Params {
	p := gbt.DefaultParams()
	p.NEstimators = t.cfg.NEstimators
	p.MaxDepth = t.cfg.MaxDepth
	p.LearningRate = t.cfg.LearningRate
	p.MinChildWeight = t.cfg.MinChildWeight
	p.RegLambda = t.cfg.RegLambda
	p.Gamma = t.cfg.Gamma
	return p
}

func (t *Trainer) threshold() float64 {
	if t.cfg.ClassThreshold > 0 && t.cfg.ClassThreshold < 1 {
		return t.cfg.ClassThreshold
	}
	return 0.5
}

// ScalePosWeight is the negative to positive ratio of the training rows.
// A split without winners cannot be weighted and is reported as degenerate.
func ScalePosWeight(records []models.EngineeredRecord) (float64, error) {
	pos := dataset.Positives(records)
	if pos == 0 {
		return 0, &models.DegenerateSplitError{
			Reason:    "training split contains no winners",
			Seasons:   dataset.Seasons(records),
			Rows:      len(records),
			Positives: pos,
		}
	}
	return float64(len(records)-pos) / float64(pos), nil
}

// Train splits records by season and fits a model on the training seasons
func (t *Trainer) Train(records []models.EngineeredRecord) (*Artifact, error) {
	split, err := dataset.BySeason(records, t.cfg.TestSeasons)
	if err != nil {
		metrics.RecordTrainingRun("failure", 0)
		return nil, err
	}
	return t.TrainSplit(split)
}

// TrainSplit fits on split.Train and evaluates on split.Test
func (t *Trainer) TrainSplit(split *dataset.Split) (*Artifact, error) {
	start := time.Now()
	t.logger.LogSplit(split.TrainSeasons, split.TestSeasons, len(split.Train), len(split.Test))
	metrics.UpdateSplitSizes(len(split.Train), len(split.Test))

	booster, spw, err := t.fit(split.Train)
	if err != nil {
		metrics.RecordTrainingRun("failure", time.Since(start).Seconds())
		return nil, err
	}

	report, err := evaluateOn(booster, split.Test, t.threshold())
	if err != nil {
		metrics.RecordTrainingRun("failure", time.Since(start).Seconds())
		return nil, err
	}

	artifact := NewArtifact(booster, split.TrainSeasons, split.TestSeasons, report)
	duration := time.Since(start)

	metrics.RecordTrainingRun("success", duration.Seconds())
	metrics.UpdateTestAccuracy(report.Accuracy)
	t.logger.LogModelTraining(artifact.ID.String(), duration, spw, report.Metrics())

	return artifact, nil
}

func (t *Trainer) fit(train []models.EngineeredRecord) (*gbt.Booster, float64, error) {
	spw, err := ScalePosWeight(train)
	if err != nil {
		return nil, 0, err
	}

	params := t.Params()
	params.ScalePosWeight = spw

	X, y := Matrix(train)
	booster, err := gbt.Fit(X, y, params)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fit booster: %w", err)
	}
	return booster, spw, nil
}

// Matrix extracts feature rows and labels in record order
func Matrix(records []models.EngineeredRecord) ([][]float64, []int) {
	X := make([][]float64, len(records))
	y := make([]int, len(records))
	for i := range records {
		X[i] = records[i].Features().Slice()
		y[i] = records[i].IsWinner
	}
	return X, y
}

func evaluateOn(b *gbt.Booster, records []models.EngineeredRecord, threshold float64) (*Report, error) {
	X, y := Matrix(records)
	probs := b.PredictBatch(X)

	report, err := Evaluate(y, probs, threshold)
	if err != nil {
		return nil, err
	}
	report.TopPickAccuracy, report.Races = topPick(records, probs)
	return report, nil
}

// topPick scores each race by whether its highest-ranked driver won.
// Races without a recorded winner are not counted.
func topPick(records []models.EngineeredRecord, probs []float64) (float64, int) {
	type race struct {
		best   int
		hasWin bool
	}
	races := make(map[models.RaceKey]*race)
	for i := range records {
		key := records[i].Key()
		r, ok := races[key]
		if !ok {
			r = &race{best: i}
			races[key] = r
		}
		if records[i].IsWinner == 1 {
			r.hasWin = true
		}
		b := &records[r.best]
		if rankedBefore(probs[i], records[i].Grid, records[i].DriverID, probs[r.best], b.Grid, b.DriverID) {
			r.best = i
		}
	}

	counted, hits := 0, 0
	for _, r := range races {
		if !r.hasWin {
			continue
		}
		counted++
		if records[r.best].IsWinner == 1 {
			hits++
		}
	}
	return ratio(hits, counted), counted
}

// FoldResult is the outcome of one walk-forward season
type FoldResult struct {
	Season         int     `json:"season"`
	TrainSeasons   []int   `json:"train_seasons"`
	TrainRows      int     `json:"train_rows"`
	TestRows       int     `json:"test_rows"`
	ScalePosWeight float64 `json:"scale_pos_weight"`
	Report         *Report `json:"report"`
}

// WalkForwardReport aggregates per-season results
type WalkForwardReport struct {
	Folds        []FoldResult `json:"folds"`
	MeanAccuracy float64      `json:"mean_accuracy"`
	MeanWinnerF1 float64      `json:"mean_winner_f1"`
	MeanTopPick  float64      `json:"mean_top_pick_accuracy"`
}

// WalkForward trains one model per season, each on every earlier season, and scores it
// on that season alone
func (t *Trainer) WalkForward(records []models.EngineeredRecord, minTrainSeasons int) (*WalkForwardReport, error) {
	folds, err := dataset.WalkForward(records, minTrainSeasons)
	if err != nil {
		return nil, err
	}

	out := &WalkForwardReport{Folds: make([]FoldResult, 0, len(folds))}
	for _, fold := range folds {
		booster, spw, err := t.fit(fold.Split.Train)
		if err != nil {
			return nil, fmt.Errorf("fold %d: %w", fold.Season, err)
		}
		report, err := evaluateOn(booster, fold.Split.Test, t.threshold())
		if err != nil {
			return nil, fmt.Errorf("fold %d: %w", fold.Season, err)
		}

		out.Folds = append(out.Folds, FoldResult{
			Season:         fold.Season,
			TrainSeasons:   fold.Split.TrainSeasons,
			TrainRows:      len(fold.Split.Train),
			TestRows:       len(fold.Split.Test),
			ScalePosWeight: spw,
			Report:         report,
		})
		out.MeanAccuracy += report.Accuracy
		out.MeanWinnerF1 += report.Winner.F1
		out.MeanTopPick += report.TopPickAccuracy
	}

	n := float64(len(out.Folds))
	out.MeanAccuracy /= n
	out.MeanWinnerF1 /= n
	out.MeanTopPick /= n
	return out, nil
}

// String renders one line per fold plus the means
func (w *WalkForwardReport) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%8s %10s %10s %10s %10s\n", "season", "train", "accuracy", "winner f1", "top pick")
	for _, f := range w.Folds {
		fmt.Fprintf(&b, "%8d %10d %10.3f %10.3f %10.3f\n", f.Season, f.TrainRows, f.Report.Accuracy, f.Report.Winner.F1, f.Report.TopPickAccuracy)
	}
	fmt.Fprintf(&b, "%8s %10s %10.3f %10.3f %10.3f\n", "mean", "", w.MeanAccuracy, w.MeanWinnerF1, w.MeanTopPick)
	return b.String()
}
