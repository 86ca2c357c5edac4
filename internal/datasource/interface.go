// Package datasource retrieves race calendars, results and qualifying orders from an
// Ergast-compatible timing-data API.
package datasource

import (
	"context"
	"errors"

	"github.com/yourusername/f1-form/internal/models"
)

// DataSource defines the interface for fetching timing data from an external provider
type DataSource interface {
	// FetchSchedule retrieves the race calendar of a season, ordered by round
	FetchSchedule(ctx context.Context, season int) ([]models.RaceEvent, error)

	// FetchRaceResults retrieves the main-race classification. An empty slice means the race has not run yet.
	FetchRaceResults(ctx context.Context, season, round int) ([]models.ResultRecord, error)

	// FetchQualifying retrieves the qualifying order of a race
	FetchQualifying(ctx context.Context, season, round int) ([]models.GridEntry, error)

	// Name returns the name of the data source
	Name() string
}

// DataSourceError represents errors from data source operations
type DataSourceError struct {
	Source  string // Data source name
	Code    string // Error code (e.g., "rate_limit_exceeded")
	Message string // Error message
	Err     error  // Underlying error
}

func (e DataSourceError) Error() string {
	if e.Err != nil {
		return e.Source + ": " + e.Code + ": " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Source + ": " + e.Code + ": " + e.Message
}

func (e DataSourceError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel corresponding to the error code
func (e DataSourceError) Is(target error) bool {
	switch e.Code {
	case ErrCodeRateLimitExceeded:
		return target == ErrRateLimitExceeded
	case ErrCodeNotFound:
		return target == ErrNotFound
	case ErrCodeInvalidData:
		return target == ErrInvalidData
	case ErrCodeNetworkError:
		return target == ErrNetworkError
	case ErrCodeServerError:
		return target == ErrServerError
	case ErrCodeCircuitOpen:
		return target == ErrCircuitOpen
	}
	return false
}

// Common error codes
const (
	ErrCodeRateLimitExceeded = "rate_limit_exceeded"
	ErrCodeNotFound          = "not_found"
	ErrCodeInvalidData       = "invalid_data"
	ErrCodeNetworkError      = "network_error"
	ErrCodeServerError       = "server_error"
	ErrCodeCircuitOpen       = "circuit_open"
)

// Error sentinels
var (
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
	ErrNotFound          = errors.New("data not found")
	ErrInvalidData       = errors.New("invalid data format")
	ErrNetworkError      = errors.New("network error")
	ErrServerError       = errors.New("server error")
	ErrCircuitOpen       = errors.New("circuit breaker open")
)

// NewDataSourceError creates a new data source error
func NewDataSourceError(source, code, message string, err error) DataSourceError {
	return DataSourceError{
		Source:  source,
		Code:    code,
		Message: message,
		Err:     err,
	}
}
