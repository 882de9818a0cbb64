// Package config loads runtime settings from the environment and analysis
// profiles from YAML.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/caarlos0/env/v6"
)

// Config holds settings read from the environment. Command-line flags take
// precedence over these values.
type Config struct {
	DBPath      string `env:"EUNOIA_DB"`
	// Preset overrides the preset named by the profile when set.
	Preset      string `env:"EUNOIA_PRESET"`
	ProfilePath string `env:"EUNOIA_PROFILE"`

	// Sentiment provider: keyword or openai
	Sentiment     string `env:"EUNOIA_SENTIMENT" envDefault:"keyword"`
	OpenAIAPIKey  string `env:"OPENAI_API_KEY"`
	OpenAIBaseURL string `env:"OPENAI_BASE_URL"`
	OpenAIModel   string `env:"EUNOIA_OPENAI_MODEL" envDefault:"gpt-4o-mini"`

	Workers  int    `env:"EUNOIA_WORKERS" envDefault:"4"`
	LogLevel string `env:"EUNOIA_LOG_LEVEL" envDefault:"info"`
	Schedule string `env:"EUNOIA_SCHEDULE" envDefault:"@every 1h"`
	Timezone string `env:"EUNOIA_TZ" envDefault:"UTC"`
}

// Load parses the environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.Workers <= 0 {
		return nil, fmt.Errorf("EUNOIA_WORKERS must be positive, got %d", cfg.Workers)
	}
	return cfg, nil
}

// Database returns the database path, defaulting to
// ~/.eunoia-signals/signals.db.
func (c *Config) Database() string {
	if c.DBPath != "" {
		return c.DBPath
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".eunoia-signals", "signals.db")
}

// Level returns the slog level named by LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(c.LogLevel))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", c.LogLevel)
	}
	return l, nil
}

// Location returns the time zone used to bucket hours and days.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone: %w", err)
	}
	return loc, nil
}
