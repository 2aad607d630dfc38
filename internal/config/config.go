package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every option the process reads from the environment.
// Load validates all of it eagerly so a misconfigured process fails at
// startup instead of on the first request.
type Config struct {
	Addr         string
	DatabaseDSN  string
	AuthBaseURL  string
	CORSOrigins  []string
	LogLevel     slog.Level
	JWKSCacheTTL time.Duration
}

func Load() (*Config, error) {
	// Best effort: a missing .env file is normal in production.
	_ = godotenv.Load()

	cfg := &Config{
		Addr:        getString("ADDR", ":8080"),
		DatabaseDSN: os.Getenv("DATABASE_DSN"),
		AuthBaseURL: strings.TrimRight(os.Getenv("AUTH_BASE_URL"), "/"),
	}

	if cfg.DatabaseDSN == "" {
		return nil, fmt.Errorf("DATABASE_DSN environment variable is required")
	}
	if cfg.AuthBaseURL == "" {
		return nil, fmt.Errorf("AUTH_BASE_URL environment variable is required")
	}

	for _, origin := range strings.Split(getString("CORS_ORIGINS", "http://localhost:3000"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, origin)
		}
	}

	level, err := parseLevel(getString("LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}
	cfg.LogLevel = level

	ttl, err := time.ParseDuration(getString("JWKS_CACHE_TTL", "1h"))
	if err != nil {
		return nil, fmt.Errorf("JWKS_CACHE_TTL is not a valid duration: %w", err)
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("JWKS_CACHE_TTL must be a positive duration, got %s", ttl)
	}
	cfg.JWKSCacheTTL = ttl

	return cfg, nil
}

func getString(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("LOG_LEVEL %q is not a valid log level", s)
	}
	return level, nil
}
