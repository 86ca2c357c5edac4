package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/yourusername/f1-form/internal/models"
)

const (
	envPrefix         = "F1FORM"
	defaultConfigPath = "config/config.yaml"
)

// Load reads and parses the configuration from file and environment variables.
// It expands environment variable placeholders in the YAML file (${VAR_NAME}).
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = defaultConfigPath
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &models.MissingInputError{Path: configPath, Err: err}
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	v := newViper()
	setDefaults(v)

	expanded := os.ExpandEnv(string(data))
	if err := v.ReadConfig(bytes.NewBufferString(expanded)); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

// LoadWithDefaults loads configuration with default values for every key.
// A missing file is not an error; defaults and environment variables apply.
func LoadWithDefaults(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = defaultConfigPath
	}

	v := newViper()
	setDefaults(v)

	if data, err := os.ReadFile(configPath); err == nil {
		expanded := os.ExpandEnv(string(data))
		if err := v.ReadConfig(bytes.NewBufferString(expanded)); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return v
}

// setDefaults registers every key so AutomaticEnv can override keys absent from the file
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "f1-form")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	v.SetDefault("upstream.base_url", "https://api.jolpi.ca/ergast/f1")
	v.SetDefault("upstream.api_key", "")
	v.SetDefault("upstream.timeout_seconds", 30)
	v.SetDefault("upstream.retry_max", 3)
	v.SetDefault("upstream.retry_wait_min_ms", 500)
	v.SetDefault("upstream.retry_wait_max_ms", 8000)
	v.SetDefault("upstream.requests_per_second", 4.0)
	v.SetDefault("upstream.inter_request_delay_ms", 250)
	v.SetDefault("upstream.circuit_breaker_max", 5)
	v.SetDefault("upstream.cache_ttl_seconds", 3600)
	v.SetDefault("upstream.page_size", 100)

	v.SetDefault("data.start_season", 2018)
	v.SetDefault("data.end_season", 2025)
	v.SetDefault("data.results_path", "data/f1_results.csv")
	v.SetDefault("data.dataset_path", "data/f1_ml_ready_data.csv")
	v.SetDefault("data.skip_sprint_weekends", true)

	v.SetDefault("features.window", 5)

	v.SetDefault("training.test_seasons", 2)
	v.SetDefault("training.n_estimators", 100)
	v.SetDefault("training.max_depth", 3)
	v.SetDefault("training.learning_rate", 0.1)
	v.SetDefault("training.min_child_weight", 1.0)
	v.SetDefault("training.reg_lambda", 1.0)
	v.SetDefault("training.gamma", 0.0)
	v.SetDefault("training.class_threshold", 0.5)
	v.SetDefault("training.model_path", "data/f1_winner_model.json")
	v.SetDefault("training.artifact_format", "json")

	v.SetDefault("prediction.unknown_driver_policy", "reject")
	v.SetDefault("prediction.top_n", 3)
	v.SetDefault("prediction.cache_ttl_seconds", 300)
	v.SetDefault("prediction.cache_max_size", 1000)

	v.SetDefault("server.listen_address", "0.0.0.0")
	v.SetDefault("server.listen_port", 8000)
	v.SetDefault("server.read_timeout_seconds", 15)
	v.SetDefault("server.write_timeout_seconds", 60)
	v.SetDefault("server.cors_allowed_origins", []string{"*"})

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("schedule.pipeline", "")

	v.SetDefault("secrets.enabled", false)
	v.SetDefault("secrets.region", "")
	v.SetDefault("secrets.secret_name", "")
}
