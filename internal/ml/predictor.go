package ml

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/yourusername/f1-form/internal/config"
	"github.com/yourusername/f1-form/internal/features"
	"github.com/yourusername/f1-form/internal/models"
)

// Prediction is one ranked driver
type Prediction struct {
	DriverID      string  `json:"driver"`
	ConstructorID string  `json:"constructor,omitempty"`
	Grid          int     `json:"grid"`
	Probability   float64 `json:"win_probability"`
	ColdStart     bool    `json:"cold_start,omitempty"`
}

// ServingContext holds a loaded model and the latest form of every known driver.
// It is immutable once built and safe for concurrent use.
type ServingContext struct {
	artifact *Artifact
	latest   map[string]models.EngineeredRecord
	policy   string
	loadedAt time.Time
}

// NewServingContext validates the artifact and indexes each driver's most recent record
func NewServingContext(artifact *Artifact, records []models.EngineeredRecord, policy string) (*ServingContext, error) {
	if artifact == nil {
		return nil, fmt.Errorf("%w: nil artifact", ErrInvalidArtifact)
	}
	if err := artifact.Validate(); err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, &models.MissingInputError{Path: "engineered dataset"}
	}

	switch policy {
	case "":
		policy = config.UnknownDriverReject
	case config.UnknownDriverReject, config.UnknownDriverColdStart:
	default:
		return nil, fmt.Errorf("unknown driver policy %q", policy)
	}

	return &ServingContext{
		artifact: artifact,
		latest:   features.LatestByDriver(records),
		policy:   policy,
		loadedAt: time.Now(),
	}, nil
}

// Artifact returns the loaded model
func (s *ServingContext) Artifact() *Artifact { return s.artifact }

// Drivers returns how many drivers have history
func (s *ServingContext) Drivers() int { return len(s.latest) }

// Policy returns the unknown-driver policy in effect
func (s *ServingContext) Policy() string { return s.policy }

// LoadedAt returns when the context was built
func (s *ServingContext) LoadedAt() time.Time { return s.loadedAt }

// Latest returns a driver's most recent engineered record
func (s *ServingContext) Latest(driverID string) (models.EngineeredRecord, bool) {
	rec, ok := s.latest[driverID]
	return rec, ok
}

// Predict returns one winner probability per vector, in input order
func (s *ServingContext) Predict(vectors []models.FeatureVector) []float64 {
	out := make([]float64, len(vectors))
	for i, v := range vectors {
		out[i] = s.artifact.Booster.PredictProba(v.Slice())
	}
	return out
}

// PredictRace scores every driver on the grid against their latest form and ranks them.
// Drivers without history are rejected or scored with zero form depending on the policy.
func (s *ServingContext) PredictRace(grid []models.GridEntry) ([]Prediction, error) {
	if len(grid) == 0 {
		return nil, ErrEmptyGrid
	}

	seen := make(map[string]struct{}, len(grid))
	var unknown []string
	for _, entry := range grid {
		if _, dup := seen[entry.DriverID]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateDriver, entry.DriverID)
		}
		seen[entry.DriverID] = struct{}{}
		if _, ok := s.latest[entry.DriverID]; !ok {
			unknown = append(unknown, entry.DriverID)
		}
	}
	if len(unknown) > 0 && s.policy == config.UnknownDriverReject {
		return nil, &models.UnknownDriverError{DriverIDs: unknown}
	}

	preds := make([]Prediction, len(grid))
	vectors := make([]models.FeatureVector, len(grid))
	for i, entry := range grid {
		rec, ok := s.latest[entry.DriverID]
		var form models.Form
		if ok {
			form = rec.Form
		}
		vectors[i] = models.NewFeatureVector(entry.Grid, form)
		preds[i] = Prediction{
			DriverID:      entry.DriverID,
			ConstructorID: entry.ConstructorID,
			Grid:          entry.Grid,
			ColdStart:     !ok,
		}
	}

	for i, p := range s.Predict(vectors) {
		preds[i].Probability = p
	}
	Rank(preds)
	return preds, nil
}

// Rank orders predictions by probability descending, then grid ascending
// with pit-lane starts last, then driver ID
func Rank(preds []Prediction) {
	sort.SliceStable(preds, func(i, j int) bool {
		a, b := &preds[i], &preds[j]
		return rankedBefore(a.Probability, a.Grid, a.DriverID, b.Probability, b.Grid, b.DriverID)
	})
}

func rankedBefore(pa float64, ga int, da string, pb float64, gb int, db string) bool {
	if pa != pb {
		return pa > pb
	}
	if oa, ob := gridOrder(ga), gridOrder(gb); oa != ob {
		return oa < ob
	}
	return da < db
}

func gridOrder(grid int) int {
	if grid <= 0 {
		return math.MaxInt
	}
	return grid
}

// Top returns at most n leading predictions
func Top(preds []Prediction, n int) []Prediction {
	if n <= 0 || n >= len(preds) {
		return preds
	}
	return preds[:n]
}

// Round4 rounds a probability to four decimal places for display
func Round4(p float64) float64 {
	return math.Round(p*1e4) / 1e4
}
