// Package repository persists pipeline tables as flat CSV files.
package repository

import (
	"path/filepath"

	"github.com/yourusername/f1-form/internal/config"
)

// ModelIndexFile is the name of the model history table kept next to the model artifact
const ModelIndexFile = "model_index.csv"

// Repositories holds all repository implementations
type Repositories struct {
	Results    ResultRepository
	Dataset    DatasetRepository
	ModelIndex ModelIndexRepository
}

// NewRepositories creates the file-backed repositories named by the configuration
func NewRepositories(cfg *config.Config) *Repositories {
	return &Repositories{
		Results:    NewCSVResultRepository(cfg.Data.ResultsPath),
		Dataset:    NewCSVDatasetRepository(cfg.Data.DatasetPath),
		ModelIndex: NewCSVModelIndexRepository(filepath.Join(filepath.Dir(cfg.Training.ModelPath), ModelIndexFile)),
	}
}
