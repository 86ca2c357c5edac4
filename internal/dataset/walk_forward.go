package dataset

import (
	"github.com/yourusername/f1-form/internal/models"
)

// Fold is one walk-forward step: train on every season before Season, test on Season alone
type Fold struct {
	Season int
	Split  *Split
}

// WalkForward builds one fold per season that has at least minTrainSeasons seasons before it.
// Folds whose training partition has no winners are skipped.
func WalkForward(records []models.EngineeredRecord, minTrainSeasons int) ([]Fold, error) {
	if minTrainSeasons <= 0 {
		minTrainSeasons = 1
	}
	seasons := Seasons(records)
	if len(seasons) <= minTrainSeasons {
		return nil, &models.DegenerateSplitError{
			Reason:    "not enough seasons for a walk-forward evaluation",
			Seasons:   seasons,
			Rows:      len(records),
			Positives: Positives(records),
		}
	}

	var folds []Fold
	for i := minTrainSeasons; i < len(seasons); i++ {
		season := seasons[i]
		var window []models.EngineeredRecord
		for _, rec := range records {
			if rec.Season <= season {
				window = append(window, rec)
			}
		}

		split, err := AtSeason(window, season)
		if err != nil {
			return nil, err
		}
		if Positives(split.Train) == 0 {
			continue
		}
		folds = append(folds, Fold{Season: season, Split: split})
	}

	if len(folds) == 0 {
		return nil, &models.DegenerateSplitError{
			Reason:    "no walk-forward fold has a winner in its training seasons",
			Seasons:   seasons,
			Rows:      len(records),
			Positives: Positives(records),
		}
	}
	return folds, nil
}
