package config

import (
	"os"
	"strconv"
	"time"

	"modelgate/domain/verdict"
	"modelgate/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Validation ValidationConfig
	Logging    LoggingConfig
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port            string
	ShutdownTimeout time.Duration
}

// DatabaseConfig holds database connection settings. URL may be empty, in
// which case the service runs against the in-memory ledger.
type DatabaseConfig struct {
	URL     string
	SSLMode string
}

// ValidationConfig materializes the recognized engine parameters. These are
// read from the environment once here, at the edge; engine packages only
// ever see the resulting value objects.
type ValidationConfig struct {
	MinF1Score          float64
	MaxFPR              float64
	ConfidenceLevel     float64
	BootstrapIterations int
	RandomSeed          int64
	MaxConcurrent       int64
}

// LoggingConfig holds logger settings
type LoggingConfig struct {
	Level  string
	Format string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server:     loadServerConfig(),
		Database:   loadDatabaseConfig(),
		Validation: loadValidationConfig(),
		Logging:    loadLoggingConfig(),
	}

	if err := config.Validation.Thresholds().Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid validation thresholds")
	}
	if config.Validation.BootstrapIterations < 1 {
		return nil, errors.ConfigInvalid("BOOTSTRAP_ITERATIONS must be positive")
	}
	if config.Validation.MaxConcurrent < 1 {
		return nil, errors.ConfigInvalid("MAX_CONCURRENT_EVALUATIONS must be positive")
	}

	return config, nil
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Port:            getEnvOrDefault("PORT", "8080"),
		ShutdownTimeout: getEnvDurationOrDefault("SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}

func loadDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		URL:     getEnvOrDefault("DATABASE_URL", ""),
		SSLMode: getEnvOrDefault("SSL_MODE", "disable"),
	}
}

func loadValidationConfig() ValidationConfig {
	defaults := verdict.DefaultThresholdConfig()
	return ValidationConfig{
		MinF1Score:          getEnvFloatOrDefault("MIN_F1_SCORE", defaults.MinF1Score),
		MaxFPR:              getEnvFloatOrDefault("MAX_FPR", defaults.MaxFPR),
		ConfidenceLevel:     getEnvFloatOrDefault("CONFIDENCE_LEVEL", defaults.ConfidenceLevel),
		BootstrapIterations: getEnvIntOrDefault("BOOTSTRAP_ITERATIONS", 1000),
		RandomSeed:          int64(getEnvIntOrDefault("RANDOM_SEED", 42)),
		MaxConcurrent:       int64(getEnvIntOrDefault("MAX_CONCURRENT_EVALUATIONS", 4)),
	}
}

func loadLoggingConfig() LoggingConfig {
	return LoggingConfig{
		Level:  getEnvOrDefault("LOG_LEVEL", "info"),
		Format: getEnvOrDefault("LOG_FORMAT", "json"),
	}
}

// Thresholds converts the loaded parameters into the explicit value object
// the policy layer consumes
func (c ValidationConfig) Thresholds() verdict.ThresholdConfig {
	return verdict.ThresholdConfig{
		MinF1Score:      c.MinF1Score,
		MaxFPR:          c.MaxFPR,
		ConfidenceLevel: c.ConfidenceLevel,
	}
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
