package models

// Feature column names, in model input order
const (
	FeatureGrid                  = "grid"
	FeatureDriverFormPoints      = "driver_form_points"
	FeatureDriverFormPosition    = "driver_form_position"
	FeatureConstructorFormPoints = "constructor_form_points"
	FeatureAvgPositionsGained    = "avg_positions_gained"
)

// FeatureNames lists the model inputs in the order used by FeatureVector.Slice
var FeatureNames = []string{
	FeatureGrid,
	FeatureDriverFormPoints,
	FeatureDriverFormPosition,
	FeatureConstructorFormPoints,
	FeatureAvgPositionsGained,
}

// NumFeatures is the length of a model input vector
const NumFeatures = 5

// Form holds the leakage-free rolling aggregates of a record
type Form struct {
	DriverFormPoints      float64 `json:"driver_form_points"`
	DriverFormPosition    float64 `json:"driver_form_position"`
	ConstructorFormPoints float64 `json:"constructor_form_points"`
	AvgPositionsGained    float64 `json:"avg_positions_gained"`
}

// EngineeredRecord is a result record's identity plus its derived features and label
type EngineeredRecord struct {
	Season        int    `json:"season"`
	Round         int    `json:"round"`
	RaceName      string `json:"raceName"`
	CircuitID     string `json:"circuitId"`
	DriverID      string `json:"driverId"`
	ConstructorID string `json:"constructorId"`
	Grid          int    `json:"grid"`
	Form
	IsWinner int `json:"is_winner"`
}

// Key returns the race the record belongs to
func (e *EngineeredRecord) Key() RaceKey {
	return RaceKey{Season: e.Season, Round: e.Round}
}

// Features assembles the model input for this record
func (e *EngineeredRecord) Features() FeatureVector {
	return NewFeatureVector(e.Grid, e.Form)
}

// FeatureVector is one model input
type FeatureVector struct {
	Grid                  float64 `json:"grid"`
	DriverFormPoints      float64 `json:"driver_form_points"`
	DriverFormPosition    float64 `json:"driver_form_position"`
	ConstructorFormPoints float64 `json:"constructor_form_points"`
	AvgPositionsGained    float64 `json:"avg_positions_gained"`
}

// NewFeatureVector combines a starting grid slot with historical form
func NewFeatureVector(grid int, form Form) FeatureVector {
	return FeatureVector{
		Grid:                  float64(grid),
		DriverFormPoints:      form.DriverFormPoints,
		DriverFormPosition:    form.DriverFormPosition,
		ConstructorFormPoints: form.ConstructorFormPoints,
		AvgPositionsGained:    form.AvgPositionsGained,
	}
}

// Slice returns the vector in FeatureNames order
func (v FeatureVector) Slice() []float64 {
	return []float64{
		v.Grid,
		v.DriverFormPoints,
		v.DriverFormPosition,
		v.ConstructorFormPoints,
		v.AvgPositionsGained,
	}
}

// Label derives the binary winner target from a finishing position.
// Unclassified finishers (position 0) are never winners.
func Label(position int) int {
	if position == 1 {
		return 1
	}
	return 0
}
