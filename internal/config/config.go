package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Config keeps runtime settings for the server.
type Config struct {
	Port           string
	DatabaseURL    string
	AuthBaseURL    string
	AuthSecretKey  string
	TokenCacheTTL  time.Duration
	DigestInterval time.Duration
	DigestDailyAt  string
	DigestTo       string
}

// Load reads configuration from environment variables with sane defaults.
func Load() (Config, error) {
	cfg := Config{
		Port:           strings.TrimSpace(os.Getenv("PORT")),
		DatabaseURL:    strings.TrimSpace(os.Getenv("DATABASE_URL")),
		AuthBaseURL:    strings.TrimSpace(os.Getenv("AUTH_BASE_URL")),
		AuthSecretKey:  strings.TrimSpace(os.Getenv("AUTH_SECRET_KEY")),
		TokenCacheTTL:  parseMinutes(strings.TrimSpace(os.Getenv("TOKEN_CACHE_TTL_MINUTES"))),
		DigestInterval: parseHours(strings.TrimSpace(os.Getenv("DIGEST_INTERVAL_HOURS"))),
		DigestDailyAt:  strings.TrimSpace(os.Getenv("DIGEST_DAILY_AT")),
		DigestTo:       strings.TrimSpace(os.Getenv("DIGEST_TO")),
	}

	if cfg.Port == "" {
		cfg.Port = "8080"
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = "taskhub.db"
	}

	if cfg.TokenCacheTTL == 0 {
		cfg.TokenCacheTTL = time.Hour
	}

	if cfg.AuthBaseURL == "" {
		return cfg, fmt.Errorf("AUTH_BASE_URL is required")
	}
	if cfg.AuthSecretKey == "" {
		return cfg, fmt.Errorf("AUTH_SECRET_KEY is required")
	}

	if (cfg.DigestInterval > 0 || cfg.DigestDailyAt != "") && cfg.DigestTo == "" {
		return cfg, fmt.Errorf("DIGEST_TO is required when the digest is enabled")
	}

	return cfg, nil
}

// DigestEnabled reports whether a digest schedule was configured.
func (c Config) DigestEnabled() bool {
	return c.DigestInterval > 0 || c.DigestDailyAt != ""
}

func parseHours(raw string) time.Duration {
	if raw == "" {
		return 0
	}
	d, err := time.ParseDuration(raw + "h")
	if err != nil || d <= 0 {
		return 0
	}
	return d
}

func parseMinutes(raw string) time.Duration {
	if raw == "" {
		return 0
	}
	d, err := time.ParseDuration(raw + "m")
	if err != nil || d <= 0 {
		return 0
	}
	return d
}
