// Package ml trains, evaluates, persists and serves the race-winner classifier.
package ml

import "errors"

var (
	// ErrInvalidArtifact indicates a model artifact that cannot be decoded
	ErrInvalidArtifact = errors.New("invalid model artifact")

	// ErrIncompatibleArtifact indicates an artifact built for a different feature layout or version
	ErrIncompatibleArtifact = errors.New("incompatible model artifact")

	// ErrEmptyGrid indicates a prediction request without any drivers
	ErrEmptyGrid = errors.New("grid has no drivers")

	// ErrDuplicateDriver indicates a driver listed twice on the same grid
	ErrDuplicateDriver = errors.New("driver listed twice on grid")
)
