// Package config loads service configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

const (
	// DefaultAddr is the default listen address.
	DefaultAddr = "127.0.0.1:8080"

	// DefaultUpstreamTimeout bounds each call to an upstream service.
	DefaultUpstreamTimeout = 10 * time.Second
)

// Config holds all runtime configuration for the enrichment service.
type Config struct {
	Addr string

	SpotifyClientID     string
	SpotifyClientSecret string

	SearchAPIKey   string
	SearchEngineID string

	UpstreamTimeout time.Duration
	LogLevel        string
}

// Load reads configuration from environment variables.
// Returns an error naming every missing required variable at once,
// so operators can fix them in a single pass.
func Load() (*Config, error) {
	cfg := &Config{
		Addr:                getenv("ADDR", DefaultAddr),
		SpotifyClientID:     os.Getenv("SPOTIFY_ID"),
		SpotifyClientSecret: os.Getenv("SPOTIFY_SECRET"),
		SearchAPIKey:        os.Getenv("GOOGLE_SEARCH_KEY"),
		SearchEngineID:      os.Getenv("GOOGLE_SEARCH_CX"),
		UpstreamTimeout:     DefaultUpstreamTimeout,
		LogLevel:            getenv("LOG_LEVEL", "info"),
	}

	if raw := os.Getenv("UPSTREAM_TIMEOUT"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("parsing UPSTREAM_TIMEOUT: %w", err)
		}
		cfg.UpstreamTimeout = d
	}

	var missing []string
	if cfg.SpotifyClientID == "" {
		missing = append(missing, "SPOTIFY_ID")
	}
	if cfg.SpotifyClientSecret == "" {
		missing = append(missing, "SPOTIFY_SECRET")
	}
	if cfg.SearchAPIKey == "" {
		missing = append(missing, "GOOGLE_SEARCH_KEY")
	}
	if cfg.SearchEngineID == "" {
		missing = append(missing, "GOOGLE_SEARCH_CX")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables not set: %s",
			strings.Join(missing, ", "))
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
