/*
Package configs loads the server configuration from environment variables.
*/
package configs

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultPort is used when PORT is unset or unusable.
	DefaultPort = 8080

	// DefaultMaxWait is how long a user may wait in the queue before timing out.
	DefaultMaxWait = 2 * time.Minute

	// DefaultSweepInterval is the period of the queue expiry sweep.
	DefaultSweepInterval = 10 * time.Second
)

// AppConfig contains every setting the server needs.
type AppConfig struct {
	// General Server Settings
	Environment string
	Port        int

	// Matchmaking Settings
	MaxWait       time.Duration
	SweepInterval time.Duration

	// Security Settings
	AllowedOrigins []string
	PowDifficulty  int

	// Match History Settings; empty disables the history sink.
	DatabaseDSN string

	// Warnings collects non-fatal problems (e.g. a PORT fallback) for the caller to log
	// once the logger exists.
	Warnings []string
}

// IsDevelopment reports whether the server runs in the development environment.
func (c *AppConfig) IsDevelopment() bool {
	return c.Environment == "development"
}

// LoadConfig reads the configuration from the process environment.
func LoadConfig() (*AppConfig, error) {
	cfg := &AppConfig{}

	// --- General Server Settings ---
	cfg.Environment = os.Getenv("ENVIRONMENT")
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	cfg.Port = DefaultPort
	if portStr := os.Getenv("PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		switch {
		case err != nil:
			cfg.Warnings = append(cfg.Warnings, fmt.Sprintf("invalid PORT %q, falling back to %d", portStr, DefaultPort))
		case port < 1 || port > 65535:
			cfg.Warnings = append(cfg.Warnings, fmt.Sprintf("PORT %d out of range, falling back to %d", port, DefaultPort))
		default:
			cfg.Port = port
		}
	}

	// --- Matchmaking Settings ---
	var err error
	if cfg.MaxWait, err = durationEnv("MATCH_MAX_WAIT", DefaultMaxWait); err != nil {
		return nil, err
	}
	if cfg.SweepInterval, err = durationEnv("MATCH_SWEEP_INTERVAL", DefaultSweepInterval); err != nil {
		return nil, err
	}

	// --- Security Settings ---
	cfg.AllowedOrigins = []string{}
	if originsStr := os.Getenv("ALLOWED_ORIGINS"); originsStr != "" {
		for _, origin := range strings.Split(originsStr, ",") {
			if trimmed := strings.TrimSpace(origin); trimmed != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, trimmed)
			}
		}
	}

	if difficultyStr := os.Getenv("POW_DIFFICULTY"); difficultyStr != "" {
		difficulty, err := strconv.Atoi(difficultyStr)
		if err != nil {
			return nil, fmt.Errorf("invalid POW_DIFFICULTY environment variable: %w", err)
		}
		if difficulty < 0 || difficulty > 8 {
			return nil, fmt.Errorf("POW_DIFFICULTY %d is outside the supported range (0-8)", difficulty)
		}
		cfg.PowDifficulty = difficulty
	}

	// --- Match History Settings ---
	cfg.DatabaseDSN = os.Getenv("DATABASE_URL")

	return cfg, nil
}

// durationEnv parses a positive time.Duration from key, or returns def when unset.
func durationEnv(key string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", key, d)
	}
	return d, nil
}
