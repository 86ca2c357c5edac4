// Package config provides configuration management for the F1 form pipeline.
package config

import (
	"fmt"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	App        AppConfig        `mapstructure:"app" validate:"required"`
	Upstream   UpstreamConfig   `mapstructure:"upstream" validate:"required"`
	Data       DataConfig       `mapstructure:"data" validate:"required"`
	Features   FeaturesConfig   `mapstructure:"features" validate:"required"`
	Training   TrainingConfig   `mapstructure:"training" validate:"required"`
	Prediction PredictionConfig `mapstructure:"prediction" validate:"required"`
	Server     ServerConfig     `mapstructure:"server" validate:"required"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	Schedule   ScheduleConfig   `mapstructure:"schedule"`
	Secrets    SecretsConfig    `mapstructure:"secrets"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// UpstreamConfig configures the timing-data API client
type UpstreamConfig struct {
	BaseURL             string  `mapstructure:"base_url" validate:"required,url"`
	APIKey              string  `mapstructure:"api_key"`
	TimeoutSeconds      int     `mapstructure:"timeout_seconds" validate:"required,gt=0"`
	RetryMax            int     `mapstructure:"retry_max" validate:"gte=0"`
	RetryWaitMinMillis  int     `mapstructure:"retry_wait_min_ms" validate:"gte=0"`
	RetryWaitMaxMillis  int     `mapstructure:"retry_wait_max_ms" validate:"gte=0"`
	RequestsPerSecond   float64 `mapstructure:"requests_per_second" validate:"required,gt=0"`
	InterRequestDelayMs int     `mapstructure:"inter_request_delay_ms" validate:"gte=0"`
	CircuitBreakerMax   int     `mapstructure:"circuit_breaker_max" validate:"gte=0"`
	CacheTTLSeconds     int     `mapstructure:"cache_ttl_seconds" validate:"gte=0"`
	PageSize            int     `mapstructure:"page_size" validate:"required,gt=0,lte=100"`
}

// DataConfig locates the tabular files of the pipeline
type DataConfig struct {
	StartSeason int    `mapstructure:"start_season" validate:"required,gte=1950"`
	EndSeason   int    `mapstructure:"end_season" validate:"required,gte=1950"`
	ResultsPath string `mapstructure:"results_path" validate:"required"`
	DatasetPath string `mapstructure:"dataset_path" validate:"required"`

	// SkipSprintWeekends leaves sprint-format events out of the fetched history.
	SkipSprintWeekends bool `mapstructure:"skip_sprint_weekends"`
}

// FeaturesConfig configures rolling form features
type FeaturesConfig struct {
	Window int `mapstructure:"window" validate:"required,gt=0"`
}

// TrainingConfig represents the split policy, booster hyperparameters and artifact location
type TrainingConfig struct {
	TestSeasons    int     `mapstructure:"test_seasons" validate:"required,gt=0"`
	NEstimators    int     `mapstructure:"n_estimators" validate:"required,gt=0"`
	MaxDepth       int     `mapstructure:"max_depth" validate:"required,gt=0,lte=16"`
	LearningRate   float64 `mapstructure:"learning_rate" validate:"required,gt=0,lte=1"`
	MinChildWeight float64 `mapstructure:"min_child_weight" validate:"gte=0"`
	RegLambda      float64 `mapstructure:"reg_lambda" validate:"gte=0"`
	Gamma          float64 `mapstructure:"gamma" validate:"gte=0"`
	ClassThreshold float64 `mapstructure:"class_threshold" validate:"required,gt=0,lt=1"`
	ModelPath      string  `mapstructure:"model_path" validate:"required"`
	ArtifactFormat string  `mapstructure:"artifact_format" validate:"required,artifactformat"`
}

// PredictionConfig configures the predictor contract
type PredictionConfig struct {
	UnknownDriverPolicy string `mapstructure:"unknown_driver_policy" validate:"required,unknownpolicy"`
	TopN                int    `mapstructure:"top_n" validate:"required,gt=0"`
	CacheTTLSeconds     int    `mapstructure:"cache_ttl_seconds" validate:"gte=0"`
	CacheMaxSize        int    `mapstructure:"cache_max_size" validate:"gte=0"`
}

// CacheTTL returns how long a ranked race prediction is reused; zero disables the cache
func (p PredictionConfig) CacheTTL() time.Duration {
	return time.Duration(p.CacheTTLSeconds) * time.Second
}

// ServerConfig represents HTTP API server configuration
type ServerConfig struct {
	ListenAddress       string   `mapstructure:"listen_address"`
	ListenPort          int      `mapstructure:"listen_port" validate:"required,min=1,max=65535"`
	ReadTimeoutSeconds  int      `mapstructure:"read_timeout_seconds" validate:"required,gt=0"`
	WriteTimeoutSeconds int      `mapstructure:"write_timeout_seconds" validate:"required,gt=0"`
	CorsAllowedOrigins  []string `mapstructure:"cors_allowed_origins"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path" validate:"required_if=Enabled true"`
}

// ScheduleConfig represents periodic pipeline runs
type ScheduleConfig struct {
	Pipeline string `mapstructure:"pipeline"`
}

// SecretsConfig points at an optional AWS Secrets Manager overlay
type SecretsConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Region     string `mapstructure:"region" validate:"required_if=Enabled true"`
	SecretName string `mapstructure:"secret_name" validate:"required_if=Enabled true"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsStaging checks if the application is running in staging mode
func (c *Config) IsStaging() bool {
	return c.App.Environment == "staging"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// ListenAddr returns host:port for the API server
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.ListenAddress, c.Server.ListenPort)
}

// Timeout returns the per-request upstream timeout
func (u UpstreamConfig) Timeout() time.Duration {
	return time.Duration(u.TimeoutSeconds) * time.Second
}

// RetryWaitMin returns the minimum backoff between upstream retries
func (u UpstreamConfig) RetryWaitMin() time.Duration {
	return time.Duration(u.RetryWaitMinMillis) * time.Millisecond
}

// RetryWaitMax returns the maximum backoff between upstream retries
func (u UpstreamConfig) RetryWaitMax() time.Duration {
	return time.Duration(u.RetryWaitMaxMillis) * time.Millisecond
}

// InterRequestDelay returns the pause inserted between consecutive race fetches
func (u UpstreamConfig) InterRequestDelay() time.Duration {
	return time.Duration(u.InterRequestDelayMs) * time.Millisecond
}

// CacheTTL returns how long upstream responses stay cached
func (u UpstreamConfig) CacheTTL() time.Duration {
	return time.Duration(u.CacheTTLSeconds) * time.Second
}
