package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"
)

// Unknown driver policies accepted by the predictor
const (
	UnknownDriverReject    = "reject"
	UnknownDriverColdStart = "cold_start"
)

// Artifact formats accepted by the model store
const (
	ArtifactFormatJSON    = "json"
	ArtifactFormatMsgpack = "msgpack"
)

// CustomValidator wraps the validator with custom validation rules
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates a new validator with custom validation functions
func NewValidator() *CustomValidator {
	v := validator.New()

	v.RegisterValidation("environment", validateEnvironment)
	v.RegisterValidation("loglevel", validateLogLevel)
	v.RegisterValidation("artifactformat", validateArtifactFormat)
	v.RegisterValidation("unknownpolicy", validateUnknownPolicy)

	return &CustomValidator{validator: v}
}

// Validate validates the entire configuration
func Validate(cfg *Config) error {
	cv := NewValidator()
	return cv.Validate(cfg)
}

// Validate validates the configuration using registered validation rules
func (cv *CustomValidator) Validate(cfg *Config) error {
	err := cv.validator.Struct(cfg)
	if err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			return formatValidationErrors(validationErrors)
		}
		return fmt.Errorf("validation failed: %w", err)
	}

	if err := validateCrossField(cfg); err != nil {
		return err
	}

	return nil
}

func validateEnvironment(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "development", "staging", "production":
		return true
	default:
		return false
	}
}

func validateLogLevel(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

func validateArtifactFormat(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case ArtifactFormatJSON, ArtifactFormatMsgpack:
		return true
	default:
		return false
	}
}

func validateUnknownPolicy(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case UnknownDriverReject, UnknownDriverColdStart:
		return true
	default:
		return false
	}
}

// validateCrossField performs cross-field validations
func validateCrossField(cfg *Config) error {
	if cfg.Data.StartSeason > cfg.Data.EndSeason {
		return fmt.Errorf("data start_season (%d) cannot be after end_season (%d)", cfg.Data.StartSeason, cfg.Data.EndSeason)
	}

	// The train partition must keep at least one season.
	span := cfg.Data.EndSeason - cfg.Data.StartSeason + 1
	if cfg.Training.TestSeasons >= span {
		return fmt.Errorf("training test_seasons (%d) must be smaller than the number of configured seasons (%d)", cfg.Training.TestSeasons, span)
	}

	if cfg.Upstream.RetryWaitMinMillis > cfg.Upstream.RetryWaitMaxMillis {
		return fmt.Errorf("upstream retry_wait_min_ms cannot exceed retry_wait_max_ms")
	}

	if cfg.Schedule.Pipeline != "" {
		if _, err := cron.ParseStandard(cfg.Schedule.Pipeline); err != nil {
			return fmt.Errorf("invalid schedule.pipeline expression %q: %w", cfg.Schedule.Pipeline, err)
		}
	}

	if cfg.Metrics.Enabled && !strings.HasPrefix(cfg.Metrics.Path, "/") {
		return fmt.Errorf("metrics path must start with '/'")
	}

	return nil
}

// formatValidationErrors formats validation errors into a readable string
func formatValidationErrors(validationErrors validator.ValidationErrors) error {
	var errMsg strings.Builder
	for _, fieldError := range validationErrors {
		field := fieldError.StructField()
		tag := fieldError.Tag()
		value := fieldError.Value()

		switch tag {
		case "required", "required_if":
			fmt.Fprintf(&errMsg, "- Field '%s' is required\n", field)
		case "url":
			fmt.Fprintf(&errMsg, "- Field '%s' must be a valid URL, got '%v'\n", field, value)
		case "min", "max":
			fmt.Fprintf(&errMsg, "- Field '%s' validation failed: %s constraint violated\n", field, tag)
		case "gt", "gte", "lt", "lte":
			fmt.Fprintf(&errMsg, "- Field '%s' validation failed: numeric constraint %s violated\n", field, tag)
		case "environment":
			fmt.Fprintf(&errMsg, "- Field '%s' must be one of: development, staging, production\n", field)
		case "loglevel":
			fmt.Fprintf(&errMsg, "- Field '%s' must be one of: debug, info, warn, error\n", field)
		case "artifactformat":
			fmt.Fprintf(&errMsg, "- Field '%s' must be one of: json, msgpack\n", field)
		case "unknownpolicy":
			fmt.Fprintf(&errMsg, "- Field '%s' must be one of: reject, cold_start\n", field)
		default:
			fmt.Fprintf(&errMsg, "- Field '%s' failed validation: %s\n", field, tag)
		}
	}
	return fmt.Errorf("configuration validation failed:\n%s", errMsg.String())
}
