package repository

import (
	"fmt"
	"strconv"

	"github.com/yourusername/f1-form/internal/models"
)

// GridColumns is the column layout of a starting grid file. constructorId is optional.
var GridColumns = []string{"driverId", "grid"}

// LoadGrid reads a starting grid from a CSV file. Grid 0 is a pit-lane start.
func LoadGrid(path string) ([]models.GridEntry, error) {
	t, err := readCSV(path, GridColumns)
	if err != nil {
		return nil, err
	}

	_, hasTeam := t.columns["constructorId"]
	grid := make([]models.GridEntry, 0, len(t.rows))
	for line, row := range t.rows {
		driver := t.get(row, "driverId")
		if driver == "" {
			return nil, t.rowError(line, "driverId", fmt.Errorf("empty driver"))
		}
		slot, err := strconv.Atoi(t.get(row, "grid"))
		if err != nil || slot < 0 {
			return nil, t.rowError(line, "grid", fmt.Errorf("invalid grid %q", t.get(row, "grid")))
		}

		entry := models.GridEntry{DriverID: driver, Grid: slot}
		if hasTeam {
			entry.ConstructorID = t.get(row, "constructorId")
		}
		grid = append(grid, entry)
	}
	if len(grid) == 0 {
		return nil, &models.MissingInputError{Path: path, Err: fmt.Errorf("grid has no rows")}
	}
	return grid, nil
}
