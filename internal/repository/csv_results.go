package repository

import (
	"context"
	"strconv"
	"time"

	"github.com/yourusername/f1-form/internal/models"
)

// ResultColumns is the column layout of the raw results table
var ResultColumns = []string{
	"season", "round", "circuitId", "raceName", "date", "driverId",
	"constructorId", "grid", "position", "points", "status",
}

// CSVResultRepository implements ResultRepository on a CSV file
type CSVResultRepository struct {
	path string
}

// NewCSVResultRepository creates a new result repository
func NewCSVResultRepository(path string) *CSVResultRepository {
	return &CSVResultRepository{path: path}
}

// Path returns the backing file
func (r *CSVResultRepository) Path() string {
	return r.path
}

// Save replaces the results table atomically
func (r *CSVResultRepository) Save(ctx context.Context, records []models.ResultRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	rows := make([][]string, 0, len(records))
	for i := range records {
		rec := &records[i]
		date := ""
		if !rec.Date.IsZero() {
			date = rec.Date.Format(models.DateLayout)
		}
		rows = append(rows, []string{
			strconv.Itoa(rec.Season),
			strconv.Itoa(rec.Round),
			rec.CircuitID,
			rec.RaceName,
			date,
			rec.DriverID,
			rec.ConstructorID,
			strconv.Itoa(rec.Grid),
			strconv.Itoa(rec.Position),
			formatFloat(rec.Points),
			rec.Status,
		})
	}
	return writeCSV(r.path, ResultColumns, rows)
}

// Load reads the results table. Non-numeric grid, position and points cells read as 0;
// negative values and missing identifiers are rejected.
func (r *CSVResultRepository) Load(ctx context.Context) ([]models.ResultRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	t, err := readCSV(r.path, ResultColumns)
	if err != nil {
		return nil, err
	}

	records := make([]models.ResultRecord, 0, len(t.rows))
	for line, row := range t.rows {
		season, err := strconv.Atoi(t.get(row, "season"))
		if err != nil {
			return nil, t.rowError(line, "season", err)
		}
		round, err := strconv.Atoi(t.get(row, "round"))
		if err != nil {
			return nil, t.rowError(line, "round", err)
		}

		var date time.Time
		if s := t.get(row, "date"); s != "" {
			date, err = time.Parse(models.DateLayout, s)
			if err != nil {
				return nil, t.rowError(line, "date", err)
			}
		}

		rec := models.ResultRecord{
			Season:        season,
			Round:         round,
			CircuitID:     t.get(row, "circuitId"),
			RaceName:      t.get(row, "raceName"),
			Date:          date,
			DriverID:      t.get(row, "driverId"),
			ConstructorID: t.get(row, "constructorId"),
			Grid:          coerceInt(t.get(row, "grid")),
			Position:      coerceInt(t.get(row, "position")),
			Points:        coerceFloat(t.get(row, "points")),
			Status:        t.get(row, "status"),
		}
		if err := t.checkRow(line, &rec); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}
