package models

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLabel(t *testing.T) {
	tests := []struct {
		position int
		expected int
	}{
		{1, 1},
		{0, 0},
		{2, 0},
		{20, 0},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("P%d", tt.position), func(t *testing.T) {
			assert.Equal(t, tt.expected, Label(tt.position))
		})
	}
}

func TestRaceKeyOrdering(t *testing.T) {
	a := RaceKey{Season: 2020, Round: 17}
	b := RaceKey{Season: 2021, Round: 1}
	c := RaceKey{Season: 2021, Round: 2}

	assert.True(t, a.Before(b))
	assert.True(t, b.Before(c))
	assert.False(t, c.Before(a))
	assert.False(t, b.Before(b))
	assert.Equal(t, -1, a.Compare(c))
	assert.Equal(t, 1, c.Compare(b))
	assert.Equal(t, 0, b.Compare(b))
}

func TestPositionsGained(t *testing.T) {
	rec := ResultRecord{Grid: 10, Position: 4}
	assert.Equal(t, 6.0, rec.PositionsGained())

	rec = ResultRecord{Grid: 1, Position: 3}
	assert.Equal(t, -2.0, rec.PositionsGained())
}

func TestFeatureVectorOrder(t *testing.T) {
	v := NewFeatureVector(3, Form{
		DriverFormPoints:      12.5,
		DriverFormPosition:    4,
		ConstructorFormPoints: 9,
		AvgPositionsGained:    -1,
	})
	assert.Equal(t, []float64{3, 12.5, 4, 9, -1}, v.Slice())
	assert.Len(t, FeatureNames, NumFeatures)
}

func TestErrorTaxonomy(t *testing.T) {
	cause := errors.New("503 service unavailable")
	upstream := fmt.Errorf("fetch failed: %w", &UpstreamDataError{Season: 2021, Round: 3, RaceName: "Portuguese Grand Prix", Err: cause})
	assert.ErrorIs(t, upstream, ErrUpstreamData)
	assert.ErrorIs(t, upstream, cause)
	assert.Contains(t, upstream.Error(), "2021/3")

	var ude *UpstreamDataError
	require.ErrorAs(t, upstream, &ude)
	assert.Equal(t, 3, ude.Round)

	assert.ErrorIs(t, &DegenerateSplitError{Reason: "no positives"}, ErrDegenerateSplit)
	assert.Equal(t, "degenerate dataset split: no positives (seasons [2023 2024], 40 rows, 0 winners)",
		(&DegenerateSplitError{Reason: "no positives", Seasons: []int{2023, 2024}, Rows: 40}).Error())
	assert.ErrorIs(t, &MissingInputError{Path: "results.csv"}, ErrMissingInput)

	unknown := &UnknownDriverError{DriverIDs: []string{"bearman", "colapinto"}}
	assert.ErrorIs(t, unknown, ErrUnknownDriver)
	assert.Contains(t, unknown.Error(), "bearman, colapinto")
}
