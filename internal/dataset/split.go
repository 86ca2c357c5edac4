// Package dataset partitions engineered records chronologically by season.
package dataset

import (
	"fmt"
	"sort"

	"github.com/yourusername/f1-form/internal/models"
)

// DefaultTestSeasons is the number of most recent seasons held out for evaluation
const DefaultTestSeasons = 2

// Split is a chronological train/test partition
type Split struct {
	Train        []models.EngineeredRecord
	Test         []models.EngineeredRecord
	TrainSeasons []int
	TestSeasons  []int
	// Boundary is the first test season
	Boundary int
}

// Seasons returns the distinct seasons present, ascending
func Seasons(records []models.EngineeredRecord) []int {
	seen := make(map[int]struct{})
	for i := range records {
		seen[records[i].Season] = struct{}{}
	}
	out := make([]int, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	sort.Ints(out)
	return out
}

// Positives counts winner labels
func Positives(records []models.EngineeredRecord) int {
	n := 0
	for i := range records {
		n += records[i].IsWinner
	}
	return n
}

// BySeason holds out every record with season >= max(season) - (testSeasons - 1).
// Both partitions keep (season, round) order and are never shuffled.
func BySeason(records []models.EngineeredRecord, testSeasons int) (*Split, error) {
	if testSeasons <= 0 {
		testSeasons = DefaultTestSeasons
	}
	if len(records) == 0 {
		return nil, &models.DegenerateSplitError{Reason: "dataset is empty"}
	}

	seasons := Seasons(records)
	boundary := seasons[len(seasons)-1] - (testSeasons - 1)
	return splitAt(records, seasons, boundary)
}

// AtSeason holds out every record with season >= boundary
func AtSeason(records []models.EngineeredRecord, boundary int) (*Split, error) {
	if len(records) == 0 {
		return nil, &models.DegenerateSplitError{Reason: "dataset is empty"}
	}
	return splitAt(records, Seasons(records), boundary)
}

func splitAt(records []models.EngineeredRecord, seasons []int, boundary int) (*Split, error) {
	ordered := make([]models.EngineeredRecord, len(records))
	copy(ordered, records)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Key().Before(ordered[j].Key())
	})

	split := &Split{Boundary: boundary}
	for _, s := range seasons {
		if s < boundary {
			split.TrainSeasons = append(split.TrainSeasons, s)
		} else {
			split.TestSeasons = append(split.TestSeasons, s)
		}
	}
	for _, rec := range ordered {
		if rec.Season < boundary {
			split.Train = append(split.Train, rec)
		} else {
			split.Test = append(split.Test, rec)
		}
	}

	if len(split.Train) == 0 {
		return nil, &models.DegenerateSplitError{
			Reason:    fmt.Sprintf("no training seasons before %d; at least one season older than the test window is required", boundary),
			Seasons:   seasons,
			Rows:      len(records),
			Positives: Positives(records),
		}
	}
	if len(split.Test) == 0 {
		return nil, &models.DegenerateSplitError{
			Reason:    fmt.Sprintf("no test seasons from %d onwards", boundary),
			Seasons:   seasons,
			Rows:      len(records),
			Positives: Positives(records),
		}
	}
	return split, nil
}
