// internal/config/config.go
// Configuration management using environment variables and optional config
// files, following the teacher's env-var + godotenv shape.

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the scheduling core.
type Config struct {
	Environment string
	LogLevel    string
	Store       StoreConfig
	Cache       CacheConfig
	Scheduling  SchedulingConfig
}

// StoreConfig selects and configures the entity-store backing.
type StoreConfig struct {
	Backend         string // "memory" or "postgres"
	PostgresDSN     string
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

// CacheConfig configures the optional read-path result cache.
type CacheConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// SchedulingConfig carries the tunable policy constants from the scheduling
// spec so they are overridable without recompiling (§9 Design Notes:
// "preserve the parameter" for several of these).
type SchedulingConfig struct {
	// Rest minutes, §3 I7.
	RestWFToScoringMinutes       int
	RestScoringToScoringMinutes  int
	RestUniversalFloorMinutes    int
	WeatherRelaxUniversalFloor   bool

	// §4.3.2 Day 2+ consolation fill cap; preserved verbatim per Open
	// Questions even though its provenance (policy vs. sample-data artifact)
	// is unclear.
	ConsolationFillMaxRoundIndex int

	// §4.4 capacity-tight threshold: spare-court reservation per
	// non-first bucket.
	SpareCourtReservationPerBucket int

	// PolicyVersion is folded into the canonical input hash (§6).
	PolicyVersion string
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	cfg := &Config{
		Environment: getEnvOrDefault("ENVIRONMENT", "development"),
		LogLevel:    getEnvOrDefault("LOG_LEVEL", "info"),
		Store: StoreConfig{
			Backend:         getEnvOrDefault("STORE_BACKEND", "memory"),
			PostgresDSN:     getEnvOrDefault("POSTGRES_DSN", ""),
			MaxOpenConns:    getIntOrDefault("POSTGRES_MAX_OPEN_CONNS", 10),
			ConnMaxLifetime: getDurationOrDefault("POSTGRES_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Cache: CacheConfig{
			Enabled:  getBoolOrDefault("CACHE_ENABLED", false),
			Addr:     getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
			Password: getEnvOrDefault("REDIS_PASSWORD", ""),
			DB:       getIntOrDefault("REDIS_DB", 0),
			TTL:      getDurationOrDefault("CACHE_TTL", 30*time.Second),
		},
		Scheduling: SchedulingConfig{
			RestWFToScoringMinutes:         getIntOrDefault("REST_WF_TO_SCORING_MINUTES", 60),
			RestScoringToScoringMinutes:    getIntOrDefault("REST_SCORING_TO_SCORING_MINUTES", 90),
			RestUniversalFloorMinutes:      getIntOrDefault("REST_UNIVERSAL_FLOOR_MINUTES", 30),
			WeatherRelaxUniversalFloor:     getBoolOrDefault("WEATHER_RELAX_UNIVERSAL_FLOOR", false),
			ConsolationFillMaxRoundIndex:   getIntOrDefault("CONSOLATION_FILL_MAX_ROUND_INDEX", 1),
			SpareCourtReservationPerBucket: getIntOrDefault("SPARE_COURT_RESERVATION_PER_BUCKET", 1),
			PolicyVersion:                  getEnvOrDefault("POLICY_VERSION", "v1"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration is present.
func (c *Config) Validate() error {
	if c.Store.Backend == "postgres" && c.Store.PostgresDSN == "" {
		return fmt.Errorf("POSTGRES_DSN is required when STORE_BACKEND=postgres")
	}
	if c.Store.Backend != "memory" && c.Store.Backend != "postgres" {
		return fmt.Errorf("STORE_BACKEND must be 'memory' or 'postgres', got %q", c.Store.Backend)
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
