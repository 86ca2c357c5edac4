package models

import (
	"errors"
	"fmt"
	"strings"
)

// Error classes surfaced by the pipeline
var (
	ErrMissingInput    = errors.New("missing input")
	ErrDegenerateSplit = errors.New("degenerate dataset split")
	ErrUnknownDriver   = errors.New("unknown driver")
	ErrUpstreamData    = errors.New("upstream data error")
	ErrInvalidRecord   = errors.New("invalid record")
	ErrDuplicateRecord = errors.New("duplicate record")
	ErrNotFound        = errors.New("record not found")
)

// MissingInputError reports an absent source file or table
type MissingInputError struct {
	Path string
	Err  error
}

func (e *MissingInputError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("missing input %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("missing input %s", e.Path)
}

func (e *MissingInputError) Is(target error) bool { return target == ErrMissingInput }

func (e *MissingInputError) Unwrap() error { return e.Err }

// DegenerateSplitError reports a dataset that cannot produce an evaluable model.
// Rows and Positives count the records that were examined and the winners among them.
type DegenerateSplitError struct {
	Reason    string
	Seasons   []int
	Rows      int
	Positives int
}

func (e *DegenerateSplitError) Error() string {
	msg := "degenerate dataset split: " + e.Reason
	if len(e.Seasons) > 0 {
		msg += fmt.Sprintf(" (seasons %v, %d rows, %d winners)", e.Seasons, e.Rows, e.Positives)
	}
	return msg
}

func (e *DegenerateSplitError) Is(target error) bool { return target == ErrDegenerateSplit }

// UnknownDriverError lists drivers without any historical aggregate
type UnknownDriverError struct {
	DriverIDs []string
}

func (e *UnknownDriverError) Error() string {
	return "no history for driver(s): " + strings.Join(e.DriverIDs, ", ")
}

func (e *UnknownDriverError) Is(target error) bool { return target == ErrUnknownDriver }

// UpstreamDataError reports a retrieval failure for a single race.
// Round 0 means the whole season schedule could not be retrieved.
type UpstreamDataError struct {
	Season   int
	Round    int
	RaceName string
	Err      error
}

func (e *UpstreamDataError) Error() string {
	if e.Round == 0 {
		return fmt.Sprintf("upstream data error for season %d: %v", e.Season, e.Err)
	}
	return fmt.Sprintf("upstream data error for %d/%d (%s): %v", e.Season, e.Round, e.RaceName, e.Err)
}

func (e *UpstreamDataError) Is(target error) bool { return target == ErrUpstreamData }

func (e *UpstreamDataError) Unwrap() error { return e.Err }
