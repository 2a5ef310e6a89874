package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
	Breaker   BreakerConfig
	Recovery  RecoveryConfig
	Seed      SeedConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8000"`
	Host string `envconfig:"HOST" default:"0.0.0.0"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// BreakerConfig holds the defaults applied to circuit breakers created
// without an explicit definition.
type BreakerConfig struct {
	FailureThreshold  int `envconfig:"BREAKER_FAILURE_THRESHOLD" default:"5"`
	SuccessThreshold  int `envconfig:"BREAKER_SUCCESS_THRESHOLD" default:"3"`
	OpenTimeoutSecs   int `envconfig:"BREAKER_TIMEOUT_SECONDS" default:"60"`
	WindowSecs        int `envconfig:"BREAKER_WINDOW_SECONDS" default:"300"`
	HalfOpenMaxProbes int `envconfig:"BREAKER_HALF_OPEN_PROBES" default:"3"`
}

// RecoveryConfig holds recovery manager defaults.
type RecoveryConfig struct {
	MaxRetries        int     `envconfig:"RECOVERY_MAX_RETRIES" default:"3"`
	RetryDelayMs      int     `envconfig:"RECOVERY_RETRY_DELAY_MS" default:"1000"`
	BackoffMultiplier float64 `envconfig:"RECOVERY_BACKOFF_MULTIPLIER" default:"2.0"`
	MaxDelayMs        int     `envconfig:"RECOVERY_MAX_DELAY_MS" default:"30000"`
	TimeoutMs         int     `envconfig:"RECOVERY_TIMEOUT_MS" default:"60000"`
	ProbeURL          string  `envconfig:"RECOVERY_PROBE_URL" default:""`
	ProbeTimeoutMs    int     `envconfig:"RECOVERY_PROBE_TIMEOUT_MS" default:"5000"`
}

// SeedConfig holds breaker definition seeding configuration.
type SeedConfig struct {
	Dir     string `envconfig:"BREAKER_SEED_DIR" default:"./breakers"`
	Enabled bool   `envconfig:"BREAKER_SEED_ENABLED" default:"true"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8000",
			Host: "0.0.0.0",
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
		Breaker: BreakerConfig{
			FailureThreshold:  5,
			SuccessThreshold:  3,
			OpenTimeoutSecs:   60,
			WindowSecs:        300,
			HalfOpenMaxProbes: 3,
		},
		Recovery: RecoveryConfig{
			MaxRetries:        3,
			RetryDelayMs:      1000,
			BackoffMultiplier: 2.0,
			MaxDelayMs:        30000,
			TimeoutMs:         60000,
			ProbeTimeoutMs:    5000,
		},
		Seed: SeedConfig{
			Dir:     "./breakers",
			Enabled: true,
		},
	}
}
