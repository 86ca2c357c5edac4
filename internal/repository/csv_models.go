package repository

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/f1-form/internal/models"
)

// modelIndexColumns must be present; metrics and hyperparameters are optional when reading
var modelIndexColumns = []string{
	"id", "name", "version", "path", "trained_at", "train_seasons", "test_seasons", "accuracy", "winner_f1",
}

var modelIndexHeader = append(slices.Clone(modelIndexColumns), "metrics", "hyperparameters")

// CSVModelIndexRepository keeps one row per trained model artifact
type CSVModelIndexRepository struct {
	path string
}

// NewCSVModelIndexRepository creates a new model index repository
func NewCSVModelIndexRepository(path string) *CSVModelIndexRepository {
	return &CSVModelIndexRepository{path: path}
}

// Append records a trained model, rewriting the index atomically
func (r *CSVModelIndexRepository) Append(ctx context.Context, info *models.ModelInfo) error {
	existing, err := r.List(ctx)
	if err != nil && !errors.Is(err, models.ErrMissingInput) {
		return err
	}
	existing = append(existing, info)

	rows := make([][]string, 0, len(existing))
	for _, m := range existing {
		accuracy, _ := m.GetMetric("accuracy")
		winnerF1, _ := m.GetMetric("winner_f1")
		rows = append(rows, []string{
			m.ID.String(),
			m.Name,
			strconv.Itoa(m.Version),
			m.Path,
			m.TrainedAt.UTC().Format(time.RFC3339),
			joinSeasons(m.TrainSeasons),
			joinSeasons(m.TestSeasons),
			formatFloat(accuracy),
			formatFloat(winnerF1),
			joinValues(m.Metrics),
			joinValues(m.Hyperparameters),
		})
	}
	return writeCSV(r.path, modelIndexHeader, rows)
}

// List returns every recorded model in version order
func (r *CSVModelIndexRepository) List(ctx context.Context) ([]*models.ModelInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	t, err := readCSV(r.path, modelIndexColumns)
	if err != nil {
		return nil, err
	}

	out := make([]*models.ModelInfo, 0, len(t.rows))
	for line, row := range t.rows {
		id, err := uuid.Parse(t.get(row, "id"))
		if err != nil {
			return nil, t.rowError(line, "id", err)
		}
		version, err := strconv.Atoi(t.get(row, "version"))
		if err != nil {
			return nil, t.rowError(line, "version", err)
		}
		trainedAt, err := time.Parse(time.RFC3339, t.get(row, "trained_at"))
		if err != nil {
			return nil, t.rowError(line, "trained_at", err)
		}
		trainSeasons, err := splitSeasons(t.get(row, "train_seasons"))
		if err != nil {
			return nil, t.rowError(line, "train_seasons", err)
		}
		testSeasons, err := splitSeasons(t.get(row, "test_seasons"))
		if err != nil {
			return nil, t.rowError(line, "test_seasons", err)
		}

		metrics, err := splitValues(t.get(row, "metrics"))
		if err != nil {
			return nil, t.rowError(line, "metrics", err)
		}
		hyper, err := splitValues(t.get(row, "hyperparameters"))
		if err != nil {
			return nil, t.rowError(line, "hyperparameters", err)
		}
		if metrics == nil {
			metrics = make(map[string]float64, 2)
		}
		for _, name := range []string{"accuracy", "winner_f1"} {
			if _, ok := metrics[name]; !ok {
				metrics[name] = coerceFloat(t.get(row, name))
			}
		}

		out = append(out, &models.ModelInfo{
			ID:              id,
			Name:            t.get(row, "name"),
			Version:         version,
			Path:            t.get(row, "path"),
			TrainedAt:       trainedAt,
			TrainSeasons:    trainSeasons,
			TestSeasons:     testSeasons,
			Metrics:         metrics,
			Hyperparameters: hyper,
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

// Latest returns the highest version recorded, or ErrNotFound when the index is empty or absent
func (r *CSVModelIndexRepository) Latest(ctx context.Context) (*models.ModelInfo, error) {
	all, err := r.List(ctx)
	if errors.Is(err, models.ErrMissingInput) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, models.ErrNotFound
	}
	return all[len(all)-1], nil
}

func joinSeasons(seasons []int) string {
	parts := make([]string, len(seasons))
	for i, s := range seasons {
		parts[i] = strconv.Itoa(s)
	}
	return strings.Join(parts, ";")
}

func splitSeasons(s string) ([]int, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ";")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid season %q: %w", p, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// joinValues encodes a named value map as "key=value" pairs separated by ';', keys sorted
func joinValues(values map[string]float64) string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + formatFloat(values[k])
	}
	return strings.Join(parts, ";")
}

func splitValues(s string) (map[string]float64, error) {
	if s == "" {
		return nil, nil
	}
	out := make(map[string]float64)
	for _, pair := range strings.Split(s, ";") {
		key, raw, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("malformed pair %q", pair)
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid value for %s: %w", key, err)
		}
		out[key] = v
	}
	return out, nil
}
