// Package config loads server settings from the environment and an optional
// .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Prefix is prepended to every environment variable name.
const Prefix = "AQUARIUM_"

// Config holds every runtime setting.
type Config struct {
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8080"`

	FishAPIBaseURL string        `env:"FISH_API_BASE_URL" envDefault:"https://run.mocky.io/v3"`
	FishAPIPath    string        `env:"FISH_API_PATH" envDefault:"/e80be173-df55-404b-833b-670e53a4743d"`
	FetchTimeout   time.Duration `env:"FETCH_TIMEOUT" envDefault:"10s"`
	AutoLoad       bool          `env:"AUTO_LOAD" envDefault:"true"`

	Speed            float64       `env:"SPEED" envDefault:"1"`
	StartHour        int           `env:"START_HOUR" envDefault:"12"`
	Timezone         string        `env:"TIMEZONE" envDefault:"Local"`
	FeedingTolerance time.Duration `env:"FEEDING_TOLERANCE" envDefault:"10m"`
	AutoStart        bool          `env:"AUTO_START" envDefault:"false"`

	Locale string `env:"LOCALE" envDefault:"tr"`

	JournalDSN string `env:"JOURNAL_DSN" envDefault:"file:aquarium-journal?mode=memory&cache=shared"`
	SessionID  string `env:"SESSION_ID"`

	// Tuning profile: default, stress or low.
	Profile string `env:"PROFILE" envDefault:"default"`

	Debug bool `env:"DEBUG" envDefault:"false"`
}

// Load reads the given .env files (".env" when none are named), then parses
// the environment. Missing .env files are not an error.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: Prefix}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the simulation cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Speed <= 0 {
		errs = append(errs, fmt.Errorf("speed must be positive, got %v", c.Speed))
	}
	if c.StartHour < 0 || c.StartHour > 23 {
		errs = append(errs, fmt.Errorf("start hour must be 0-23, got %d", c.StartHour))
	}
	if c.FeedingTolerance <= 0 {
		errs = append(errs, fmt.Errorf("feeding tolerance must be positive, got %s", c.FeedingTolerance))
	}
	if c.FetchTimeout <= 0 {
		errs = append(errs, fmt.Errorf("fetch timeout must be positive, got %s", c.FetchTimeout))
	}
	if c.Locale != "tr" && c.Locale != "en" {
		errs = append(errs, fmt.Errorf("locale must be tr or en, got %q", c.Locale))
	}
	switch c.Profile {
	case "default", "stress", "low":
	default:
		errs = append(errs, fmt.Errorf("unknown profile %q", c.Profile))
	}
	if _, err := c.Location(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// Location resolves Timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}
