package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.HTTPAddr != ":8080" {
		t.Errorf("expected :8080, got %s", cfg.HTTPAddr)
	}
	if cfg.Speed != 1 || cfg.StartHour != 12 {
		t.Errorf("unexpected clock defaults speed=%v hour=%d", cfg.Speed, cfg.StartHour)
	}
	if cfg.FeedingTolerance != 10*time.Minute {
		t.Errorf("expected 10m tolerance, got %s", cfg.FeedingTolerance)
	}
	if cfg.FetchTimeout != 10*time.Second {
		t.Errorf("expected 10s fetch timeout, got %s", cfg.FetchTimeout)
	}
	if cfg.Locale != "tr" || !cfg.AutoLoad || cfg.AutoStart {
		t.Errorf("unexpected defaults %+v", cfg)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("AQUARIUM_SPEED", "3600")
	t.Setenv("AQUARIUM_TIMEZONE", "UTC")
	t.Setenv("AQUARIUM_FEEDING_TOLERANCE", "5m")
	t.Setenv("AQUARIUM_LOCALE", "en")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Speed != 3600 || cfg.FeedingTolerance != 5*time.Minute || cfg.Locale != "en" {
		t.Errorf("environment not applied: %+v", cfg)
	}
	loc, _ := cfg.Location()
	if loc != time.UTC {
		t.Errorf("expected UTC, got %v", loc)
	}
}

func TestLoadDotEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("AQUARIUM_START_HOUR=8\nAQUARIUM_HTTP_ADDR=:9090\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		os.Unsetenv("AQUARIUM_START_HOUR")
		os.Unsetenv("AQUARIUM_HTTP_ADDR")
	})

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.StartHour != 8 || cfg.HTTPAddr != ":9090" {
		t.Errorf(".env not applied: %+v", cfg)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Speed: 1, StartHour: 12, Timezone: "UTC", FeedingTolerance: time.Minute,
			FetchTimeout: time.Second, Locale: "tr", Profile: "default",
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"zero speed", func(c *Config) { c.Speed = 0 }, "speed"},
		{"hour out of range", func(c *Config) { c.StartHour = 24 }, "start hour"},
		{"zero tolerance", func(c *Config) { c.FeedingTolerance = 0 }, "tolerance"},
		{"zero timeout", func(c *Config) { c.FetchTimeout = 0 }, "fetch timeout"},
		{"unknown locale", func(c *Config) { c.Locale = "de" }, "locale"},
		{"unknown profile", func(c *Config) { c.Profile = "turbo" }, "profile"},
		{"bad timezone", func(c *Config) { c.Timezone = "Mars/Olympus" }, "timezone"},
	}

	if err := valid().Validate(); err != nil {
		t.Fatalf("baseline config invalid: %v", err)
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := valid()
			tc.mutate(c)
			err := c.Validate()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Errorf("expected error mentioning %q, got %v", tc.want, err)
			}
		})
	}
}

func TestLoadRejectsInvalidEnv(t *testing.T) {
	t.Setenv("AQUARIUM_SPEED", "-5")
	if _, err := Load(filepath.Join(t.TempDir(), "missing.env")); err == nil {
		t.Error("expected validation error for negative speed")
	}
}
