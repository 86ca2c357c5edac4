package service

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/yourusername/f1-form/internal/models"
)

// DataValidator checks retrieved results before they enter the results table
type DataValidator struct {
	validate *validator.Validate
}

// NewDataValidator creates a new data validator
func NewDataValidator() *DataValidator {
	return &DataValidator{validate: validator.New()}
}

// ValidateRecord checks the field constraints of one result row
func (v *DataValidator) ValidateRecord(rec *models.ResultRecord) []string {
	err := v.validate.Struct(rec)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return []string{err.Error()}
	}

	out := make([]string, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		switch fe.Tag() {
		case "required":
			out = append(out, fmt.Sprintf("%s is required", fe.Field()))
		default:
			out = append(out, fmt.Sprintf("%s failed %s=%s, got %v", fe.Field(), fe.Tag(), fe.Param(), fe.Value()))
		}
	}
	return out
}

// ValidateRaceResults checks consistency across one race's classification
func (v *DataValidator) ValidateRaceResults(records []models.ResultRecord) []string {
	var out []string
	positions := make(map[int]string)
	for i := range records {
		rec := &records[i]
		if i > 0 && rec.Key() != records[0].Key() {
			out = append(out, fmt.Sprintf("%s belongs to race %s, expected %s", rec.DriverID, rec.Key(), records[0].Key()))
		}
		if !rec.IsClassified() {
			continue
		}
		if other, dup := positions[rec.Position]; dup {
			out = append(out, fmt.Sprintf("position %d shared by %s and %s", rec.Position, other, rec.DriverID))
			continue
		}
		positions[rec.Position] = rec.DriverID
	}
	return out
}
