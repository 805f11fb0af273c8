// Package config loads server and CLI settings from environment variables
// and an optional .env file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config represents the application configuration.
type Config struct {
	DBPath   string
	Port     int
	LogLevel string

	Rates          RatesConfig
	MetricsEnabled bool
}

// RatesConfig selects the exchange rate sources.
type RatesConfig struct {
	// File is an optional TOML rate table.
	File string

	// APIURL enables online rates when set (e.g., rates.DefaultAPIURL).
	APIURL string

	// APIRPS caps requests per second sent to APIURL.
	APIRPS float64

	// CacheTTL is how long fetched rates are reused.
	CacheTTL time.Duration

	// MaxAge discards stored rates older than this. Zero keeps all.
	MaxAge time.Duration

	// Offline enables the built-in approximate rate table as last resort.
	Offline bool
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present; an explicit envPath must exist.
func Load(envPath ...string) (*Config, error) {
	if len(envPath) > 0 && envPath[0] != "" {
		if err := godotenv.Load(envPath[0]); err != nil {
			return nil, fmt.Errorf("failed to load .env file: %w", err)
		}
	} else {
		_ = godotenv.Load()
	}

	port, err := parseIntEnv("PORT", 8080)
	if err != nil {
		return nil, err
	}
	rps, err := parseFloatEnv("RATES_API_RPS", 1)
	if err != nil {
		return nil, err
	}
	ttl, err := parseDurationEnv("RATES_CACHE_TTL", time.Hour)
	if err != nil {
		return nil, err
	}
	maxAge, err := parseDurationEnv("RATES_MAX_AGE", 7*24*time.Hour)
	if err != nil {
		return nil, err
	}

	return &Config{
		DBPath:   getEnvOrDefault("DB_PATH", "./data/ledger.db"),
		Port:     port,
		LogLevel: strings.ToLower(getEnvOrDefault("LOG_LEVEL", "info")),
		Rates: RatesConfig{
			File:     os.Getenv("RATES_FILE"),
			APIURL:   os.Getenv("RATES_API_URL"),
			APIRPS:   rps,
			CacheTTL: ttl,
			MaxAge:   maxAge,
			Offline:  os.Getenv("RATES_OFFLINE") == "true",
		},
		MetricsEnabled: getEnvOrDefault("METRICS_ENABLED", "true") == "true",
	}, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var problems []string

	if c.DBPath == "" {
		problems = append(problems, "DB_PATH is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		problems = append(problems, fmt.Sprintf("PORT %d is out of range", c.Port))
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		problems = append(problems, fmt.Sprintf("LOG_LEVEL %q is not one of debug, info, warn, error", c.LogLevel))
	}
	if c.Rates.APIURL != "" && !strings.HasPrefix(c.Rates.APIURL, "http://") && !strings.HasPrefix(c.Rates.APIURL, "https://") {
		problems = append(problems, fmt.Sprintf("RATES_API_URL %q must be an http(s) URL", c.Rates.APIURL))
	}
	if c.Rates.APIRPS < 0 {
		problems = append(problems, "RATES_API_RPS must not be negative")
	}
	if c.Rates.CacheTTL < 0 || c.Rates.MaxAge < 0 {
		problems = append(problems, "RATES_CACHE_TTL and RATES_MAX_AGE must not be negative")
	}
	if c.Rates.File != "" {
		if _, err := os.Stat(c.Rates.File); err != nil {
			problems = append(problems, fmt.Sprintf("RATES_FILE: %v", err))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s\nPlease check your .env file or environment variables", strings.Join(problems, "; "))
	}
	return nil
}

// Addr returns the listen address for the server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseIntEnv(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid integer value for %s: %s", key, value)
	}
	return parsed, nil
}

func parseFloatEnv(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number for %s: %s", key, value)
	}
	return parsed, nil
}

func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid duration for %s: %s", key, value)
	}
	return parsed, nil
}
