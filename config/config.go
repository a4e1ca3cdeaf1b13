/*
Package config loads the server configuration from a YAML file.

PURPOSE:
  One file describes the deployment: HTTP server settings, database path,
  the overlap policy and the coverage reminder scheduler. Every field has a
  working default so the server runs with no config file at all (dev mode).

USAGE:
  cfg, err := config.Load("config.yaml")

SEE ALSO:
  - cmd/server/main.go: Flags override the file for port and database path
*/
package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Schedule ScheduleConfig `yaml:"schedule"`
	Reminder ReminderConfig `yaml:"reminder"`
}

// ServerConfig holds the HTTP server configuration.
type ServerConfig struct {
	Port            int      `yaml:"port"`
	AllowedOrigins  []string `yaml:"allowed_origins"`
	RateLimitPerSec float64  `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int      `yaml:"rate_limit_burst"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// ScheduleConfig holds engine policy knobs.
type ScheduleConfig struct {
	// RejectOverlapping refuses bookings whose shift windows collide with
	// another shift the employee already holds that day.
	RejectOverlapping bool `yaml:"reject_overlapping"`

	CoverageCacheTTLSeconds int           `yaml:"coverage_cache_ttl_seconds"`
	CoverageCacheTTL        time.Duration `yaml:"-"`
}

// ReminderConfig drives the background coverage reminder scan.
type ReminderConfig struct {
	Enabled         bool          `yaml:"enabled"`
	IntervalMinutes int           `yaml:"interval_minutes"`
	Interval        time.Duration `yaml:"-"`
	LookaheadDays   int           `yaml:"lookahead_days"`

	// Recipients are the employee IDs (typically supervisors) notified
	// about understaffed upcoming shifts.
	Recipients []string `yaml:"recipients"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads the configuration from the given path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if len(cfg.Server.AllowedOrigins) == 0 {
		cfg.Server.AllowedOrigins = []string{"http://localhost:5173", "http://localhost:8080"}
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 20
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 40
	}

	if cfg.Database.Path == "" {
		cfg.Database.Path = "./data/shifts.db"
	}

	if cfg.Schedule.CoverageCacheTTLSeconds <= 0 {
		cfg.Schedule.CoverageCacheTTLSeconds = 30
	}
	cfg.Schedule.CoverageCacheTTL = time.Duration(cfg.Schedule.CoverageCacheTTLSeconds) * time.Second

	if cfg.Reminder.IntervalMinutes <= 0 {
		cfg.Reminder.IntervalMinutes = 60
	}
	cfg.Reminder.Interval = time.Duration(cfg.Reminder.IntervalMinutes) * time.Minute
	if cfg.Reminder.LookaheadDays <= 0 {
		cfg.Reminder.LookaheadDays = 7
	}
}
