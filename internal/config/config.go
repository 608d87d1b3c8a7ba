package config

import (
	"os"
	"strconv"

	"adlift/domain/recommend"
	"adlift/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Engine   recommend.Config
	Paths    PathConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// PathConfig holds file system locations for uploaded evidence files
type PathConfig struct {
	DataDir string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		return nil, errors.ConfigInvalid("DATABASE_URL is required")
	}

	config := &Config{
		Database: DatabaseConfig{URL: url},
		Server: ServerConfig{
			Port:    getEnvOrDefault("PORT", "8080"),
			GinMode: getEnvOrDefault("GIN_MODE", "debug"),
		},
		Engine: LoadEngineConfig(),
		Paths: PathConfig{
			DataDir: getEnvOrDefault("DATA_DIR", "./data"),
		},
	}

	if err := validateEngine(config.Engine); err != nil {
		return nil, err
	}
	return config, nil
}

// LoadEngineConfig reads engine thresholds from the environment, falling
// back to the defaults for anything unset. Callers without a database
// (the CLI) use this directly.
func LoadEngineConfig() recommend.Config {
	def := recommend.DefaultConfig()
	return recommend.Config{
		MinAbsDelta:                 getEnvFloatOrDefault("ENGINE_MIN_ABS_DELTA", def.MinAbsDelta),
		DirectionalConfidenceWeight: getEnvFloatOrDefault("ENGINE_DIRECTIONAL_WEIGHT", def.DirectionalConfidenceWeight),
		HighImpactThreshold:         getEnvFloatOrDefault("ENGINE_HIGH_IMPACT", def.HighImpactThreshold),
		MediumImpactThreshold:       getEnvFloatOrDefault("ENGINE_MEDIUM_IMPACT", def.MediumImpactThreshold),
		RemoveSentimentPrevalence:   getEnvFloatOrDefault("ENGINE_REMOVE_PREVALENCE", def.RemoveSentimentPrevalence),
		TopThemesForMatching:        getEnvIntOrDefault("ENGINE_TOP_THEMES", def.TopThemesForMatching),
		MaxQualitativeQuotes:        getEnvIntOrDefault("ENGINE_MAX_QUOTES", def.MaxQualitativeQuotes),
	}
}

func validateEngine(cfg recommend.Config) error {
	if cfg.MinAbsDelta < 0 {
		return errors.ConfigInvalid("ENGINE_MIN_ABS_DELTA must be non-negative")
	}
	if cfg.DirectionalConfidenceWeight < 0 || cfg.DirectionalConfidenceWeight > 1 {
		return errors.ConfigInvalid("ENGINE_DIRECTIONAL_WEIGHT must be in [0, 1]")
	}
	if cfg.MediumImpactThreshold > cfg.HighImpactThreshold {
		return errors.ConfigInvalid("ENGINE_MEDIUM_IMPACT must not exceed ENGINE_HIGH_IMPACT")
	}
	if cfg.RemoveSentimentPrevalence < 0 || cfg.RemoveSentimentPrevalence > 1 {
		return errors.ConfigInvalid("ENGINE_REMOVE_PREVALENCE must be in [0, 1]")
	}
	return nil
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
