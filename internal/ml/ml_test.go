package ml

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/f1-form/internal/config"
	"github.com/yourusername/f1-form/internal/logger"
	"github.com/yourusername/f1-form/internal/models"
)

var testDrivers = []struct {
	id   string
	team string
}{
	{"hamilton", "mercedes"},
	{"verstappen", "red_bull"},
	{"leclerc", "ferrari"},
	{"norris", "mclaren"},
}

// syntheticDataset rotates the grid every round; the pole sitter always wins
func syntheticDataset(seasons []int, races int) []models.EngineeredRecord {
	var out []models.EngineeredRecord
	for _, season := range seasons {
		for round := 1; round <= races; round++ {
			for i, d := range testDrivers {
				grid := (i+round)%len(testDrivers) + 1
				winner := 0
				if grid == 1 {
					winner = 1
				}
				out = append(out, models.EngineeredRecord{
					Season:        season,
					Round:         round,
					RaceName:      fmt.Sprintf("Grand Prix %d", round),
					CircuitID:     fmt.Sprintf("circuit_%d", round),
					DriverID:      d.id,
					ConstructorID: d.team,
					Grid:          grid,
					Form: models.Form{
						DriverFormPoints:      float64(10 + i),
						DriverFormPosition:    float64(4 - i),
						ConstructorFormPoints: float64(8 + i),
						AvgPositionsGained:    float64(i) / 2,
					},
					IsWinner: winner,
				})
			}
		}
	}
	return out
}

func testTrainingConfig() config.TrainingConfig {
	return config.TrainingConfig{
		TestSeasons:    1,
		NEstimators:    20,
		MaxDepth:       3,
		LearningRate:   0.3,
		MinChildWeight: 1,
		RegLambda:      1,
		ClassThreshold: 0.5,
		ModelPath:      "model.json",
		ArtifactFormat: config.ArtifactFormatJSON,
	}
}

func trainTestArtifact(t *testing.T) (*Artifact, []models.EngineeredRecord) {
	t.Helper()
	records := syntheticDataset([]int{2019, 2020, 2021, 2022}, 5)
	artifact, err := NewTrainer(testTrainingConfig(), logger.Discard()).Train(records)
	require.NoError(t, err)
	return artifact, records
}

func TestScalePosWeight(t *testing.T) {
	records := make([]models.EngineeredRecord, 100)
	for i := 0; i < 5; i++ {
		records[i].IsWinner = 1
	}

	spw, err := ScalePosWeight(records)
	require.NoError(t, err)
	assert.Equal(t, 19.0, spw)

	_, err = ScalePosWeight(records[5:])
	assert.ErrorIs(t, err, models.ErrDegenerateSplit)
}

func TestTrainProducesEvaluatedArtifact(t *testing.T) {
	artifact, _ := trainTestArtifact(t)

	assert.Equal(t, ArtifactKind, artifact.Kind)
	assert.Equal(t, []int{2019, 2020, 2021}, artifact.TrainSeasons)
	assert.Equal(t, []int{2022}, artifact.TestSeasons)
	assert.Equal(t, 3.0, artifact.ScalePosWeight)
	assert.Equal(t, 3.0, artifact.Booster.Params.ScalePosWeight)
	assert.Equal(t, models.FeatureNames, artifact.FeatureNames)
	assert.Len(t, artifact.Booster.Trees, 20)

	require.NotNil(t, artifact.Evaluation)
	assert.Equal(t, 1.0, artifact.Evaluation.Accuracy)
	assert.Equal(t, 1.0, artifact.Evaluation.Winner.F1)
	assert.Equal(t, 5, artifact.Evaluation.Winner.Support)
	assert.Equal(t, 20, artifact.Evaluation.Total)
	assert.Equal(t, 1.0, artifact.Evaluation.TopPickAccuracy)
	assert.Equal(t, 5, artifact.Evaluation.Races)
}

func TestTrainRejectsDegenerateData(t *testing.T) {
	trainer := NewTrainer(testTrainingConfig(), logger.Discard())

	_, err := trainer.Train(syntheticDataset([]int{2024}, 3))
	assert.ErrorIs(t, err, models.ErrDegenerateSplit)

	noWinners := syntheticDataset([]int{2023, 2024}, 3)
	for i := range noWinners {
		noWinners[i].IsWinner = 0
	}
	_, err = trainer.Train(noWinners)
	var degenerate *models.DegenerateSplitError
	require.ErrorAs(t, err, &degenerate)
	assert.Equal(t, []int{2023}, degenerate.Seasons)
	assert.Equal(t, 12, degenerate.Rows)
	assert.Equal(t, 0, degenerate.Positives)
}

func TestTrainIsReproducible(t *testing.T) {
	records := syntheticDataset([]int{2020, 2021, 2022}, 4)
	trainer := NewTrainer(testTrainingConfig(), logger.Discard())

	a, err := trainer.Train(records)
	require.NoError(t, err)
	b, err := trainer.Train(records)
	require.NoError(t, err)

	assert.Equal(t, a.Booster, b.Booster)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestWalkForward(t *testing.T) {
	records := syntheticDataset([]int{2019, 2020, 2021, 2022}, 4)
	report, err := NewTrainer(testTrainingConfig(), logger.Discard()).WalkForward(records, 1)
	require.NoError(t, err)

	require.Len(t, report.Folds, 3)
	assert.Equal(t, 2020, report.Folds[0].Season)
	assert.Equal(t, []int{2019}, report.Folds[0].TrainSeasons)
	assert.Equal(t, 2022, report.Folds[2].Season)
	assert.Equal(t, 48, report.Folds[2].TrainRows)
	assert.Equal(t, 1.0, report.MeanAccuracy)
	assert.Contains(t, report.String(), "mean")

	_, err = NewTrainer(testTrainingConfig(), logger.Discard()).WalkForward(records, 4)
	assert.ErrorIs(t, err, models.ErrDegenerateSplit)
}

func TestEvaluate(t *testing.T) {
	report, err := Evaluate([]int{1, 0, 0, 1, 0}, []float64{0.9, 0.2, 0.6, 0.4, 0.1}, 0.5)
	require.NoError(t, err)

	assert.InDelta(t, 0.6, report.Accuracy, 1e-12)
	assert.Equal(t, [2][2]int{{2, 1}, {1, 1}}, report.Confusion)

	assert.InDelta(t, 0.5, report.Winner.Precision, 1e-12)
	assert.InDelta(t, 0.5, report.Winner.Recall, 1e-12)
	assert.InDelta(t, 0.5, report.Winner.F1, 1e-12)
	assert.Equal(t, 2, report.Winner.Support)

	assert.InDelta(t, 2.0/3.0, report.NotWinner.F1, 1e-12)
	assert.Equal(t, 3, report.NotWinner.Support)

	assert.InDelta(t, (0.5+2.0/3.0)/2, report.MacroAvg.F1, 1e-12)
	assert.InDelta(t, 0.6, report.WeightedAvg.F1, 1e-12)
	assert.Equal(t, 5, report.WeightedAvg.Support)

	out := report.String()
	for _, want := range []string{"precision", ClassNotWinner, ClassWinner, "accuracy", "macro avg", "weighted avg"} {
		assert.Contains(t, out, want)
	}
}

func TestEvaluateZeroDivision(t *testing.T) {
	report, err := Evaluate([]int{0, 0, 0}, []float64{0.1, 0.2, 0.3}, 0.5)
	require.NoError(t, err)

	assert.Equal(t, 1.0, report.Accuracy)
	assert.Zero(t, report.Winner.Precision)
	assert.Zero(t, report.Winner.Recall)
	assert.Zero(t, report.Winner.F1)
	assert.Zero(t, report.Winner.Support)

	_, err = Evaluate([]int{0}, []float64{0.1, 0.2}, 0.5)
	assert.Error(t, err)
	_, err = Evaluate([]int{2}, []float64{0.1}, 0.5)
	assert.Error(t, err)
}

func TestArtifactInfo(t *testing.T) {
	artifact, _ := trainTestArtifact(t)
	info := artifact.Info("f1_winner", 4, "data/model.json")

	assert.Equal(t, artifact.ID, info.ID)
	assert.Equal(t, 4, info.Version)
	acc, ok := info.GetMetric("accuracy")
	assert.True(t, ok)
	assert.Equal(t, 1.0, acc)
	assert.Equal(t, 3.0, info.Hyperparameters["scale_pos_weight"])
}
