package ml

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/f1-form/internal/config"
	"github.com/yourusername/f1-form/internal/models"
)

func newTestServingContext(t *testing.T, policy string) *ServingContext {
	t.Helper()
	artifact, records := trainTestArtifact(t)
	sc, err := NewServingContext(artifact, records, policy)
	require.NoError(t, err)
	return sc
}

func fullGrid() []models.GridEntry {
	return []models.GridEntry{
		{DriverID: "leclerc", ConstructorID: "ferrari", Grid: 1},
		{DriverID: "hamilton", ConstructorID: "mercedes", Grid: 2},
		{DriverID: "norris", ConstructorID: "mclaren", Grid: 3},
		{DriverID: "verstappen", ConstructorID: "red_bull", Grid: 4},
	}
}

func TestPredictRaceRanksByProbability(t *testing.T) {
	sc := newTestServingContext(t, config.UnknownDriverReject)

	preds, err := sc.PredictRace(fullGrid())
	require.NoError(t, err)
	require.Len(t, preds, 4)

	assert.Equal(t, "leclerc", preds[0].DriverID)
	assert.Greater(t, preds[0].Probability, 0.5)
	for i := 1; i < len(preds); i++ {
		assert.GreaterOrEqual(t, preds[i-1].Probability, preds[i].Probability)
		assert.Less(t, preds[i].Probability, 0.5)
		assert.False(t, preds[i].ColdStart)
	}

	top := Top(preds, 3)
	assert.Len(t, top, 3)
	assert.Len(t, Top(preds, 10), 4)
}

func TestPredictMatchesBooster(t *testing.T) {
	sc := newTestServingContext(t, config.UnknownDriverReject)

	vectors := []models.FeatureVector{
		{Grid: 1, DriverFormPoints: 12},
		{Grid: 5, DriverFormPosition: 3},
	}
	probs := sc.Predict(vectors)
	require.Len(t, probs, 2)
	for i, v := range vectors {
		assert.Equal(t, sc.Artifact().Booster.PredictProba(v.Slice()), probs[i])
		assert.GreaterOrEqual(t, probs[i], 0.0)
		assert.LessOrEqual(t, probs[i], 1.0)
	}
}

func TestPredictRaceUsesLatestForm(t *testing.T) {
	sc := newTestServingContext(t, config.UnknownDriverReject)

	latest, ok := sc.Latest("hamilton")
	require.True(t, ok)
	assert.Equal(t, 2022, latest.Season)
	assert.Equal(t, 5, latest.Round)
	assert.Equal(t, 4, sc.Drivers())
}

func TestPredictRaceRejectsUnknownDrivers(t *testing.T) {
	sc := newTestServingContext(t, config.UnknownDriverReject)

	grid := append(fullGrid(),
		models.GridEntry{DriverID: "piastri", Grid: 5},
		models.GridEntry{DriverID: "bearman", Grid: 6},
	)
	_, err := sc.PredictRace(grid)
	require.ErrorIs(t, err, models.ErrUnknownDriver)

	var unknown *models.UnknownDriverError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, []string{"piastri", "bearman"}, unknown.DriverIDs)
}

func TestPredictRaceColdStart(t *testing.T) {
	sc := newTestServingContext(t, config.UnknownDriverColdStart)

	grid := append(fullGrid(), models.GridEntry{DriverID: "piastri", Grid: 5})
	preds, err := sc.PredictRace(grid)
	require.NoError(t, err)
	require.Len(t, preds, 5)

	var rookie *Prediction
	for i := range preds {
		if preds[i].DriverID == "piastri" {
			rookie = &preds[i]
		}
	}
	require.NotNil(t, rookie)
	assert.True(t, rookie.ColdStart)

	want := sc.Predict([]models.FeatureVector{{Grid: 5}})[0]
	assert.Equal(t, want, rookie.Probability)
}

func TestPredictRaceInvalidGrid(t *testing.T) {
	sc := newTestServingContext(t, config.UnknownDriverReject)

	_, err := sc.PredictRace(nil)
	assert.ErrorIs(t, err, ErrEmptyGrid)

	grid := append(fullGrid(), models.GridEntry{DriverID: "hamilton", Grid: 9})
	_, err = sc.PredictRace(grid)
	assert.ErrorIs(t, err, ErrDuplicateDriver)
}

func TestNewServingContextValidation(t *testing.T) {
	artifact, records := trainTestArtifact(t)

	_, err := NewServingContext(nil, records, "")
	assert.ErrorIs(t, err, ErrInvalidArtifact)

	_, err = NewServingContext(artifact, nil, "")
	assert.ErrorIs(t, err, models.ErrMissingInput)

	_, err = NewServingContext(artifact, records, "guess")
	assert.Error(t, err)

	sc, err := NewServingContext(artifact, records, "")
	require.NoError(t, err)
	assert.Equal(t, config.UnknownDriverReject, sc.Policy())
}

func TestRankTieBreaks(t *testing.T) {
	preds := []Prediction{
		{DriverID: "sainz", Grid: 0, Probability: 0.1},
		{DriverID: "russell", Grid: 3, Probability: 0.1},
		{DriverID: "alonso", Grid: 3, Probability: 0.1},
		{DriverID: "perez", Grid: 7, Probability: 0.4},
	}
	Rank(preds)

	var order []string
	for _, p := range preds {
		order = append(order, p.DriverID)
	}
	assert.Equal(t, []string{"perez", "alonso", "russell", "sainz"}, order)
}

func TestRound4(t *testing.T) {
	assert.Equal(t, 0.1235, Round4(0.123456))
	assert.Equal(t, 1.0, Round4(0.99999))
}
