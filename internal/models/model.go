package models

import (
	"time"

	"github.com/google/uuid"
)

// ModelInfo describes a persisted winner-probability model
type ModelInfo struct {
	ID              uuid.UUID          `json:"id" msgpack:"id"`
	Name            string             `json:"name" msgpack:"name"`
	Version         int                `json:"version" msgpack:"version"`
	Path            string             `json:"path,omitempty" msgpack:"-"`
	TrainedAt       time.Time          `json:"trained_at" msgpack:"trained_at"`
	TrainSeasons    []int              `json:"train_seasons" msgpack:"train_seasons"`
	TestSeasons     []int              `json:"test_seasons" msgpack:"test_seasons"`
	Metrics         map[string]float64 `json:"metrics,omitempty" msgpack:"metrics"`
	Hyperparameters map[string]float64 `json:"hyperparameters,omitempty" msgpack:"hyperparameters"`
}

// GetMetric returns a recorded evaluation metric
func (m *ModelInfo) GetMetric(name string) (float64, bool) {
	if m.Metrics == nil {
		return 0, false
	}
	v, ok := m.Metrics[name]
	return v, ok
}
