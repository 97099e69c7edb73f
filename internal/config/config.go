// internal/config/config.go
//
// Process configuration, read from the environment after loading an
// optional .env file.

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// HTTP
	Port         string
	ClientOrigin string
	Production   bool

	// Logging
	LogLevel  string
	LogFormat string // "json" or "console"

	// Catalog
	CatalogSource string // "nps" or "seed"
	NPSAPIKey     string
	NPSBaseURL    string
	CatalogLimit  int
	CatalogTTL    time.Duration
	SeedFile      string
	SnapshotDSN   string // empty disables the snapshot store

	// Game
	MaxGuesses int
	DailySalt  string

	// Session
	SessionSecret string
	SessionTTL    time.Duration
	CookieName    string
}

func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	cfg := &Config{
		Port:          getEnvDefault("PORT", "5175"),
		ClientOrigin:  getEnvDefault("CLIENT_ORIGIN", "http://localhost:5173"),
		Production:    os.Getenv("APP_ENV") == "production",
		LogLevel:      getEnvDefault("LOG_LEVEL", "info"),
		LogFormat:     strings.ToLower(getEnvDefault("LOG_FORMAT", "json")),
		CatalogSource: strings.ToLower(getEnvDefault("CATALOG_SOURCE", "nps")),
		NPSAPIKey:     getEnvDefault("NPS_API_KEY", "DEMO_KEY"),
		NPSBaseURL:    getEnvDefault("NPS_BASE_URL", "https://developer.nps.gov/api/v1"),
		SeedFile:      os.Getenv("SEED_FILE"),
		SnapshotDSN:   os.Getenv("SNAPSHOT_DSN"),
		DailySalt:     getEnvDefault("DAILY_SALT", "npsguess-daily"),
		SessionSecret: getEnvDefault("SESSION_SECRET", "dev-only-change-me"),
		CookieName:    getEnvDefault("COOKIE_NAME", "nps_session"),
	}

	var err error
	if cfg.CatalogLimit, err = getEnvInt("CATALOG_LIMIT", 500); err != nil {
		return nil, err
	}
	if cfg.MaxGuesses, err = getEnvInt("MAX_GUESSES", 6); err != nil {
		return nil, err
	}
	if cfg.CatalogTTL, err = getEnvDuration("CATALOG_TTL", time.Hour); err != nil {
		return nil, err
	}
	if cfg.SessionTTL, err = getEnvDuration("SESSION_TTL", 24*time.Hour); err != nil {
		return nil, err
	}

	switch cfg.CatalogSource {
	case "nps", "seed":
	default:
		return nil, fmt.Errorf("CATALOG_SOURCE must be nps or seed, got %q", cfg.CatalogSource)
	}
	if cfg.CatalogLimit <= 0 {
		return nil, fmt.Errorf("CATALOG_LIMIT must be positive")
	}
	if cfg.MaxGuesses <= 0 {
		return nil, fmt.Errorf("MAX_GUESSES must be positive")
	}
	if cfg.CatalogTTL <= 0 || cfg.SessionTTL <= 0 {
		return nil, fmt.Errorf("CATALOG_TTL and SESSION_TTL must be positive")
	}
	if cfg.Production && cfg.SessionSecret == "dev-only-change-me" {
		return nil, fmt.Errorf("SESSION_SECRET is required when APP_ENV=production")
	}

	return cfg, nil
}

func getEnvDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
