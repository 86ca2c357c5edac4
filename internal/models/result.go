package models

import (
	"fmt"
	"time"
)

// DateLayout is the calendar date format used in result tables
const DateLayout = "2006-01-02"

// ResultRecord is one driver's classified outcome in one race.
// Records are unique per (Season, Round, DriverID) and never modified after retrieval.
type ResultRecord struct {
	Season        int       `json:"season" validate:"required,gte=1950"`
	Round         int       `json:"round" validate:"required,gte=1"`
	CircuitID     string    `json:"circuitId"`
	RaceName      string    `json:"raceName" validate:"required"`
	Date          time.Time `json:"date"`
	DriverID      string    `json:"driverId" validate:"required"`
	ConstructorID string    `json:"constructorId" validate:"required"`
	Grid          int       `json:"grid" validate:"gte=0"`
	Position      int       `json:"position" validate:"gte=0"` // 0 = not classified
	Points        float64   `json:"points" validate:"gte=0"`
	Status        string    `json:"status"`
}

// RaceKey identifies a race chronologically
type RaceKey struct {
	Season int `json:"season"`
	Round  int `json:"round"`
}

// Before reports whether k happened strictly before other
func (k RaceKey) Before(other RaceKey) bool {
	if k.Season != other.Season {
		return k.Season < other.Season
	}
	return k.Round < other.Round
}

// Compare orders race keys chronologically, suitable for slices.SortFunc
func (k RaceKey) Compare(other RaceKey) int {
	switch {
	case k.Before(other):
		return -1
	case other.Before(k):
		return 1
	default:
		return 0
	}
}

func (k RaceKey) String() string {
	return fmt.Sprintf("%d/%d", k.Season, k.Round)
}

// Key returns the race the record belongs to
func (r *ResultRecord) Key() RaceKey {
	return RaceKey{Season: r.Season, Round: r.Round}
}

// UniqKey returns the (season, round, driver) identity of the record
func (r *ResultRecord) UniqKey() string {
	return fmt.Sprintf("%d/%d/%s", r.Season, r.Round, r.DriverID)
}

// PositionsGained is grid minus finishing position; positive means the driver moved up
func (r *ResultRecord) PositionsGained() float64 {
	return float64(r.Grid - r.Position)
}

// IsClassified reports whether the driver received a finishing position
func (r *ResultRecord) IsClassified() bool {
	return r.Position > 0
}

// RaceEvent is one entry of a season schedule
type RaceEvent struct {
	Season    int       `json:"season"`
	Round     int       `json:"round"`
	RaceName  string    `json:"raceName"`
	CircuitID string    `json:"circuitId"`
	Location  string    `json:"location"`
	Date      time.Time `json:"date"`
	// SprintWeekend marks events that also run a sprint race.
	SprintWeekend bool `json:"sprintWeekend,omitempty"`
}

// Key returns the race the event describes
func (e *RaceEvent) Key() RaceKey {
	return RaceKey{Season: e.Season, Round: e.Round}
}

// GridEntry is a driver's starting position for an upcoming race
type GridEntry struct {
	DriverID      string `json:"driverId"`
	ConstructorID string `json:"constructorId,omitempty"`
	Grid          int    `json:"grid"`
}
