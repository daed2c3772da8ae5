package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestLoad_Defaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Port != 3000 {
		t.Fatalf("expected default port 3000, got %d", cfg.Port)
	}
	if cfg.DatabasePath != "./data/attendance.db" {
		t.Fatalf("unexpected default database path %q", cfg.DatabasePath)
	}
	if cfg.HolidayAPIURL == "" {
		t.Fatal("expected a default holiday API URL")
	}
	if cfg.HolidayAPITimeout != 10*time.Second {
		t.Fatalf("expected default holiday timeout 10s, got %s", cfg.HolidayAPITimeout)
	}
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	t.Setenv("PORT", "8081")
	t.Setenv("DATABASE_PATH", ":memory:")
	t.Setenv("HOLIDAY_API_URL", "http://localhost:9999/api")
	t.Setenv("HOLIDAY_API_TIMEOUT", "2s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Port != 8081 {
		t.Fatalf("expected port 8081, got %d", cfg.Port)
	}
	if cfg.DatabasePath != ":memory:" {
		t.Fatalf("expected :memory:, got %q", cfg.DatabasePath)
	}
	if cfg.HolidayAPIURL != "http://localhost:9999/api" {
		t.Fatalf("unexpected holiday API URL %q", cfg.HolidayAPIURL)
	}
	if cfg.HolidayAPITimeout != 2*time.Second {
		t.Fatalf("expected 2s timeout, got %s", cfg.HolidayAPITimeout)
	}
}
