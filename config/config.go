/*
Package config loads server configuration from environment variables.

PURPOSE:
  One flat Config struct for the whole server, populated by viper with
  sensible local-development defaults, so `go run ./cmd/server` works
  with no environment at all.

VARIABLES:
  PORT                 HTTP listen port               (default 3000)
  DATABASE_PATH        SQLite file path               (default ./data/attendance.db)
  HOLIDAY_API_URL      Public holiday calendar base   (default https://dayoffapi.vercel.app/api)
  HOLIDAY_API_TIMEOUT  Holiday fetch timeout          (default 10s)
*/
package config

import (
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the attendance server.
type Config struct {
	Port              int           `mapstructure:"PORT"`
	DatabasePath      string        `mapstructure:"DATABASE_PATH"`
	HolidayAPIURL     string        `mapstructure:"HOLIDAY_API_URL"`
	HolidayAPITimeout time.Duration `mapstructure:"HOLIDAY_API_TIMEOUT"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	viper.SetDefault("PORT", 3000)
	viper.SetDefault("DATABASE_PATH", "./data/attendance.db")
	viper.SetDefault("HOLIDAY_API_URL", "https://dayoffapi.vercel.app/api")
	viper.SetDefault("HOLIDAY_API_TIMEOUT", "10s")
	viper.AutomaticEnv()

	// Bind explicitly so the variables appear in Unmarshal
	_ = viper.BindEnv("PORT")
	_ = viper.BindEnv("DATABASE_PATH")
	_ = viper.BindEnv("HOLIDAY_API_URL")
	_ = viper.BindEnv("HOLIDAY_API_TIMEOUT")

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}
	return &config, nil
}
