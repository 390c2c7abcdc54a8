package config

import (
	"os"
	"strconv"
	"time"

	"dispatchboard/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Engine   EngineConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL     string
	Host    string
	Port    int
	SSLMode string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port string
}

// EngineConfig holds load-coordination tunables
type EngineConfig struct {
	FetchTimeout    time.Duration // per-source fetch deadline
	TimeoutCooldown time.Duration // minimum gap between timeout notifications per domain
	DebounceDelay   time.Duration // quiet window for free-text search input
	MaxParallel     int64         // concurrent section fetch ceiling
	TransactionPage int           // ledger rows per account load
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	dbConfig, err := loadDatabaseConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load database configuration")
	}

	config := &Config{
		Database: *dbConfig,
		Server:   loadServerConfig(),
		Engine:   loadEngineConfig(),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadDatabaseConfig() (*DatabaseConfig, error) {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		return nil, errors.ConfigInvalid("DATABASE_URL is required")
	}

	return &DatabaseConfig{
		URL:     url,
		Host:    getEnvOrDefault("DB_HOST", ""),
		Port:    getEnvIntOrDefault("DB_PORT", 5432),
		SSLMode: getEnvOrDefault("SSL_MODE", "disable"),
	}, nil
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Port: getEnvOrDefault("PORT", "8080"),
	}
}

func loadEngineConfig() EngineConfig {
	return EngineConfig{
		FetchTimeout:    getEnvDurationOrDefault("FETCH_TIMEOUT_MS", 8000*time.Millisecond),
		TimeoutCooldown: getEnvDurationOrDefault("TIMEOUT_COOLDOWN_MS", 15000*time.Millisecond),
		DebounceDelay:   getEnvDurationOrDefault("SEARCH_DEBOUNCE_MS", 240*time.Millisecond),
		MaxParallel:     int64(getEnvIntOrDefault("MAX_PARALLEL_FETCHES", 6)),
		TransactionPage: getEnvIntOrDefault("TRANSACTION_PAGE", 50),
	}
}

func validateConfig(config *Config) error {
	if config.Database.URL == "" {
		return errors.ConfigInvalid("database URL is required")
	}
	if config.Engine.FetchTimeout <= 0 {
		return errors.ConfigInvalid("fetch timeout must be positive")
	}
	if config.Engine.MaxParallel <= 0 {
		return errors.ConfigInvalid("parallel fetch ceiling must be positive")
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

// getEnvDurationOrDefault reads a millisecond count from the environment
func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if ms, err := strconv.Atoi(value); err == nil && ms > 0 {
			return time.Duration(ms) * time.Millisecond
		}
	}
	return defaultValue
}
