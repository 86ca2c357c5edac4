package repository

import (
	"context"
	"fmt"
	"strconv"

	"github.com/yourusername/f1-form/internal/models"
)

// DatasetColumns is the column layout of the engineered dataset
var DatasetColumns = []string{
	"season", "round", "raceName", "circuitId", "driverId", "constructorId",
	models.FeatureGrid,
	models.FeatureDriverFormPoints,
	models.FeatureDriverFormPosition,
	models.FeatureConstructorFormPoints,
	models.FeatureAvgPositionsGained,
	"is_winner",
}

// CSVDatasetRepository implements DatasetRepository on a CSV file
type CSVDatasetRepository struct {
	path string
}

// NewCSVDatasetRepository creates a new dataset repository
func NewCSVDatasetRepository(path string) *CSVDatasetRepository {
	return &CSVDatasetRepository{path: path}
}

// Path returns the backing file
func (r *CSVDatasetRepository) Path() string {
	return r.path
}

// Save replaces the dataset atomically
func (r *CSVDatasetRepository) Save(ctx context.Context, records []models.EngineeredRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	rows := make([][]string, 0, len(records))
	for i := range records {
		rec := &records[i]
		rows = append(rows, []string{
			strconv.Itoa(rec.Season),
			strconv.Itoa(rec.Round),
			rec.RaceName,
			rec.CircuitID,
			rec.DriverID,
			rec.ConstructorID,
			strconv.Itoa(rec.Grid),
			formatFloat(rec.DriverFormPoints),
			formatFloat(rec.DriverFormPosition),
			formatFloat(rec.ConstructorFormPoints),
			formatFloat(rec.AvgPositionsGained),
			strconv.Itoa(rec.IsWinner),
		})
	}
	return writeCSV(r.path, DatasetColumns, rows)
}

// Load reads the dataset. Feature cells must be numeric and labels must be 0 or 1.
func (r *CSVDatasetRepository) Load(ctx context.Context) ([]models.EngineeredRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	t, err := readCSV(r.path, DatasetColumns)
	if err != nil {
		return nil, err
	}

	records := make([]models.EngineeredRecord, 0, len(t.rows))
	for line, row := range t.rows {
		rec := models.EngineeredRecord{
			RaceName:      t.get(row, "raceName"),
			CircuitID:     t.get(row, "circuitId"),
			DriverID:      t.get(row, "driverId"),
			ConstructorID: t.get(row, "constructorId"),
		}

		ints := []struct {
			column string
			dst    *int
		}{
			{"season", &rec.Season},
			{"round", &rec.Round},
			{models.FeatureGrid, &rec.Grid},
			{"is_winner", &rec.IsWinner},
		}
		for _, c := range ints {
			v, err := strconv.Atoi(t.get(row, c.column))
			if err != nil {
				return nil, t.rowError(line, c.column, err)
			}
			*c.dst = v
		}
		if rec.IsWinner != 0 && rec.IsWinner != 1 {
			return nil, t.rowError(line, "is_winner", fmt.Errorf("label %d is not binary", rec.IsWinner))
		}

		floats := []struct {
			column string
			dst    *float64
		}{
			{models.FeatureDriverFormPoints, &rec.DriverFormPoints},
			{models.FeatureDriverFormPosition, &rec.DriverFormPosition},
			{models.FeatureConstructorFormPoints, &rec.ConstructorFormPoints},
			{models.FeatureAvgPositionsGained, &rec.AvgPositionsGained},
		}
		for _, c := range floats {
			v, err := strconv.ParseFloat(t.get(row, c.column), 64)
			if err != nil {
				return nil, t.rowError(line, c.column, err)
			}
			*c.dst = v
		}

		records = append(records, rec)
	}
	return records, nil
}
