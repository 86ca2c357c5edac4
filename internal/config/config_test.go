package config

import (
	"context"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

const (
	validConfigPath        = "testdata/valid_config.yaml"
	expansionConfigPath    = "testdata/expansion_config.yaml"
	invalidConfigPath      = "testdata/invalid_config.yaml"
	nonexistentConfigPath  = "testdata/nonexistent_config.yaml"
	expectedNoErrorMsg     = "expected no error, got %v"
	expectedValidationFail = "expected validation error"
)

// TestLoadConfigSuccess tests loading a valid configuration file
func TestLoadConfigSuccess(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}

	if cfg.App.Name != "f1-form" {
		t.Errorf("expected app name 'f1-form', got '%s'", cfg.App.Name)
	}
	if cfg.Data.StartSeason != 2019 || cfg.Data.EndSeason != 2024 {
		t.Errorf("expected seasons 2019-2024, got %d-%d", cfg.Data.StartSeason, cfg.Data.EndSeason)
	}
	if cfg.Training.ArtifactFormat != ArtifactFormatMsgpack {
		t.Errorf("expected msgpack artifact format, got '%s'", cfg.Training.ArtifactFormat)
	}
	if cfg.Prediction.UnknownDriverPolicy != UnknownDriverColdStart {
		t.Errorf("expected cold_start policy, got '%s'", cfg.Prediction.UnknownDriverPolicy)
	}

	// Keys absent from the file fall back to defaults.
	if cfg.Training.MinChildWeight != 1.0 {
		t.Errorf("expected default min_child_weight 1.0, got %v", cfg.Training.MinChildWeight)
	}
	if cfg.Upstream.RetryWaitMax().Milliseconds() != 4000 {
		t.Errorf("expected retry wait max 4s, got %v", cfg.Upstream.RetryWaitMax())
	}

	if err := Validate(cfg); err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}
}

// TestLoadConfigFileNotFound tests handling of missing configuration file
func TestLoadConfigFileNotFound(t *testing.T) {
	if _, err := Load(nonexistentConfigPath); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestLoadWithDefaultsMissingFile(t *testing.T) {
	cfg, err := LoadWithDefaults(nonexistentConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}

	if cfg.Features.Window != 5 {
		t.Errorf("expected window 5, got %d", cfg.Features.Window)
	}
	if cfg.Training.NEstimators != 100 || cfg.Training.MaxDepth != 3 || cfg.Training.LearningRate != 0.1 {
		t.Errorf("unexpected booster defaults: %+v", cfg.Training)
	}
	if !cfg.Data.SkipSprintWeekends {
		t.Error("expected sprint weekends to be skipped by default")
	}
	if cfg.Prediction.UnknownDriverPolicy != UnknownDriverReject {
		t.Errorf("expected reject policy by default, got '%s'", cfg.Prediction.UnknownDriverPolicy)
	}
	if err := Validate(cfg); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestLoadConfigSprintWeekendsOverride(t *testing.T) {
	t.Setenv("F1FORM_DATA_SKIP_SPRINT_WEEKENDS", "false")

	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}
	if cfg.Data.SkipSprintWeekends {
		t.Error("expected sprint weekends to be kept when overridden from environment")
	}
}

// TestLoadConfigEnvironmentVariables tests environment variable override
func TestLoadConfigEnvironmentVariables(t *testing.T) {
	t.Setenv("F1FORM_APP_NAME", "override")
	t.Setenv("F1FORM_TRAINING_TEST_SEASONS", "3")

	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}

	if cfg.App.Name != "override" {
		t.Errorf("expected app name 'override' from environment, got '%s'", cfg.App.Name)
	}
	if cfg.Training.TestSeasons != 3 {
		t.Errorf("expected test_seasons 3 from environment, got %d", cfg.Training.TestSeasons)
	}
}

func TestLoadConfigExpandsPlaceholders(t *testing.T) {
	t.Setenv("F1FORM_TEST_API_KEY", "expanded_secret_value")

	cfg, err := LoadWithDefaults(expansionConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}

	if cfg.Upstream.APIKey != "expanded_secret_value" {
		t.Errorf("expected expanded api key, got '%s'", cfg.Upstream.APIKey)
	}
	if !cfg.IsStaging() {
		t.Errorf("expected staging environment, got '%s'", cfg.App.Environment)
	}
}

func TestValidateRejectsUnknownEnums(t *testing.T) {
	cfg, err := LoadWithDefaults(invalidConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}

	err = Validate(cfg)
	if err == nil {
		t.Fatal(expectedValidationFail)
	}

	for _, field := range []string{"Environment", "LogLevel", "ArtifactFormat", "UnknownDriverPolicy"} {
		if !strings.Contains(err.Error(), field) {
			t.Errorf("expected error to mention %s, got: %v", field, err)
		}
	}
}

func TestValidateCrossField(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "seasons reversed",
			mutate:  func(c *Config) { c.Data.StartSeason, c.Data.EndSeason = 2024, 2020 },
			wantErr: "start_season",
		},
		{
			name:    "no train seasons left",
			mutate:  func(c *Config) { c.Data.StartSeason, c.Data.EndSeason = 2023, 2024 },
			wantErr: "test_seasons",
		},
		{
			name:    "retry waits inverted",
			mutate:  func(c *Config) { c.Upstream.RetryWaitMinMillis = 9000 },
			wantErr: "retry_wait_min_ms",
		},
		{
			name:    "bad cron expression",
			mutate:  func(c *Config) { c.Schedule.Pipeline = "every monday" },
			wantErr: "schedule.pipeline",
		},
		{
			name:    "metrics path without slash",
			mutate:  func(c *Config) { c.Metrics.Path = "metrics" },
			wantErr: "metrics path",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadWithDefaults(nonexistentConfigPath)
			if err != nil {
				t.Fatalf(expectedNoErrorMsg, err)
			}
			tt.mutate(cfg)

			err = Validate(cfg)
			if err == nil {
				t.Fatal(expectedValidationFail)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestParseSecretData(t *testing.T) {
	secrets, err := parseSecretData(&secretsmanager.GetSecretValueOutput{
		SecretString: aws.String(`{"upstream_api_key":"from-aws"}`),
	})
	if err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}

	cfg := &Config{}
	overlaySecretsOnConfig(cfg, secrets)
	if cfg.Upstream.APIKey != "from-aws" {
		t.Errorf("expected overlaid api key, got '%s'", cfg.Upstream.APIKey)
	}

	if _, err := parseSecretData(&secretsmanager.GetSecretValueOutput{}); err == nil {
		t.Error("expected error for empty secret")
	}
}

func TestLoadSecretsDisabledIsNoop(t *testing.T) {
	cfg := &Config{Upstream: UpstreamConfig{APIKey: "keep"}}
	if err := LoadSecrets(context.Background(), cfg); err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}
	if cfg.Upstream.APIKey != "keep" {
		t.Errorf("expected api key untouched, got '%s'", cfg.Upstream.APIKey)
	}
}
