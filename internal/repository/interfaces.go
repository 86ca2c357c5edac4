package repository

import (
	"context"

	"github.com/yourusername/f1-form/internal/models"
)

// ResultRepository defines the interface for raw race result access
type ResultRepository interface {
	Save(ctx context.Context, records []models.ResultRecord) error
	Load(ctx context.Context) ([]models.ResultRecord, error)
	Path() string
}

// DatasetRepository defines the interface for engineered dataset access
type DatasetRepository interface {
	Save(ctx context.Context, records []models.EngineeredRecord) error
	Load(ctx context.Context) ([]models.EngineeredRecord, error)
	Path() string
}

// ModelIndexRepository defines the interface for the trained model history
type ModelIndexRepository interface {
	Append(ctx context.Context, info *models.ModelInfo) error
	List(ctx context.Context) ([]*models.ModelInfo, error)
	Latest(ctx context.Context) (*models.ModelInfo, error)
}
