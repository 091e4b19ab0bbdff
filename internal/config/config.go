// Package config loads server configuration from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config carries everything the server reads from its environment. Only
// SAMAPIKey is required; the rest have workable defaults. ADMIN_SECRET and
// JWT_SECRET are resolved lazily by the api and auth packages, with
// ephemeral fallbacks, and are deliberately not part of this struct.
type Config struct {
	Port        string   `env:"PORT" envDefault:"8081"`
	SAMAPIKey   string   `env:"SAM_API_KEY"`
	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:","`

	// ProfilePath overrides the embedded capability profile.
	ProfilePath string `env:"PROFILE_PATH"`

	// ScanTimeoutMinutes bounds one background scan job.
	ScanTimeoutMinutes int `env:"SCAN_TIMEOUT_MINUTES" envDefault:"10"`
}

// Load parses the process environment into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing environment: %w", err)
	}
	return cfg, nil
}
