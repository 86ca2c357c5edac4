// Package features turns raw race results into leakage-free rolling form features.
package features

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"

	"github.com/yourusername/f1-form/internal/metrics"
	"github.com/yourusername/f1-form/internal/models"
)

// DefaultWindow is the number of prior races averaged into each form feature
const DefaultWindow = 5

// Builder computes per-driver and per-constructor form from strictly earlier races
type Builder struct {
	window int
	logger *logrus.Entry
}

// NewBuilder creates a new feature builder. A non-positive window falls back to DefaultWindow.
func NewBuilder(window int, logger *logrus.Logger) *Builder {
	if window <= 0 {
		window = DefaultWindow
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Builder{
		window: window,
		logger: logger.WithField("component", "features"),
	}
}

// Window returns the trailing window length
func (b *Builder) Window() int {
	return b.window
}

// Build derives an EngineeredRecord for every input record. Output is ordered by
// (season, round) with input order kept inside a race.
func (b *Builder) Build(records []models.ResultRecord) ([]models.EngineeredRecord, error) {
	start := time.Now()

	if err := checkUnique(records); err != nil {
		return nil, err
	}

	order := chronological(records)
	out := make([]models.EngineeredRecord, len(records))
	for _, i := range order {
		r := &records[i]
		out[i] = models.EngineeredRecord{
			Season:        r.Season,
			Round:         r.Round,
			RaceName:      r.RaceName,
			CircuitID:     r.CircuitID,
			DriverID:      r.DriverID,
			ConstructorID: r.ConstructorID,
			Grid:          r.Grid,
			IsWinner:      models.Label(r.Position),
		}
	}

	drivers := groupBy(records, order, func(r *models.ResultRecord) string { return r.DriverID })
	for _, idx := range drivers {
		b.applyDriverForm(records, idx, out)
	}

	constructors := groupBy(records, order, func(r *models.ResultRecord) string { return r.ConstructorID })
	for _, idx := range constructors {
		b.applyConstructorForm(records, idx, out)
	}

	sorted := make([]models.EngineeredRecord, 0, len(out))
	for _, i := range order {
		sorted = append(sorted, out[i])
	}

	elapsed := time.Since(start)
	metrics.RecordFeatureBuild(elapsed.Seconds())
	b.logger.WithFields(logrus.Fields{
		"records":      len(sorted),
		"drivers":      len(drivers),
		"constructors": len(constructors),
		"window":       b.window,
		"duration_ms":  elapsed.Milliseconds(),
	}).Info("Features built")

	return sorted, nil
}

// applyDriverForm fills driver features; idx is the driver's races in chronological order
func (b *Builder) applyDriverForm(records []models.ResultRecord, idx []int, out []models.EngineeredRecord) {
	points := make([]float64, len(idx))
	positions := make([]float64, len(idx))
	gained := make([]float64, len(idx))
	for k, i := range idx {
		points[k] = records[i].Points
		positions[k] = float64(records[i].Position)
		gained[k] = records[i].PositionsGained()
	}

	formPoints := TrailingMeans(points, b.window)
	formPosition := TrailingMeans(positions, b.window)
	formGained := TrailingMeans(gained, b.window)
	for k, i := range idx {
		out[i].DriverFormPoints = formPoints[k]
		out[i].DriverFormPosition = formPosition[k]
		out[i].AvgPositionsGained = formGained[k]
	}
}

// applyConstructorForm fills constructor form. The history unit is a race, so teammates in the
// same race never see each other's result.
func (b *Builder) applyConstructorForm(records []models.ResultRecord, idx []int, out []models.EngineeredRecord) {
	var races [][]int
	var last models.RaceKey
	for n, i := range idx {
		key := records[i].Key()
		if n == 0 || key != last {
			races = append(races, nil)
			last = key
		}
		races[len(races)-1] = append(races[len(races)-1], i)
	}

	var pooled []float64
	for j, entries := range races {
		value := 0.0
		if j > 0 {
			pooled = pooled[:0]
			for _, prior := range races[max(0, j-b.window):j] {
				for _, i := range prior {
					pooled = append(pooled, records[i].Points)
				}
			}
			value = stat.Mean(pooled, nil)
		}
		for _, i := range entries {
			out[i].ConstructorFormPoints = value
		}
	}
}

func checkUnique(records []models.ResultRecord) error {
	seen := make(map[string]struct{}, len(records))
	for i := range records {
		key := records[i].UniqKey()
		if _, dup := seen[key]; dup {
			return fmt.Errorf("%w: (season, round, driver) %s appears more than once", models.ErrDuplicateRecord, key)
		}
		seen[key] = struct{}{}
	}
	return nil
}
