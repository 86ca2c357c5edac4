package service

import (
	"fmt"
	"time"

	"github.com/yourusername/f1-form/internal/models"
)

// FetchReport summarises a multi-season retrieval. A report with failures is partial
// but still usable.
type FetchReport struct {
	StartSeason      int
	EndSeason        int
	Records          []models.ResultRecord
	Failures         []*models.UpstreamDataError
	RacesFetched     int
	RacesSkipped     int
	RacesPending     int
	RacesSprint      int
	Duplicates       int
	ValidationErrors int
	Duration         time.Duration
	Partial          bool
}

// Seasons lists the requested seasons
func (r *FetchReport) Seasons() []int {
	out := make([]int, 0, r.EndSeason-r.StartSeason+1)
	for s := r.StartSeason; s <= r.EndSeason; s++ {
		out = append(out, s)
	}
	return out
}

func (r *FetchReport) addFailure(season, round int, raceName string, err error) {
	r.Failures = append(r.Failures, &models.UpstreamDataError{
		Season:   season,
		Round:    round,
		RaceName: raceName,
		Err:      err,
	})
	r.Partial = true
}

// String returns a formatted string representation of the report
func (r *FetchReport) String() string {
	total := r.RacesFetched + r.RacesSkipped
	successRate := float64(0)
	if total > 0 {
		successRate = float64(r.RacesFetched) / float64(total) * 100
	}

	return fmt.Sprintf(
		"FetchReport{Seasons=%d-%d, Races=%d (%.1f%%), Skipped=%d, Pending=%d, Sprint=%d, Records=%d, Duplicates=%d, ValidationErrors=%d, Partial=%t, Duration=%v}",
		r.StartSeason,
		r.EndSeason,
		r.RacesFetched,
		successRate,
		r.RacesSkipped,
		r.RacesPending,
		r.RacesSprint,
		len(r.Records),
		r.Duplicates,
		r.ValidationErrors,
		r.Partial,
		r.Duration,
	)
}
