// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

type DatabaseConfig struct {
	Filename string `yaml:"filename"`
}

type GridConfig struct {
	// MaxRangeDays caps one grid request; a full season plus slack fits in 370.
	MaxRangeDays int `yaml:"max_range_days"`
}

type RetentionConfig struct {
	// Days of booking history to keep; older rows are pruned by the maintenance job.
	Days int `yaml:"days"`
	// Cron is a standard 5-field cron expression for the prune job.
	Cron string `yaml:"cron"`
}

type RateLimitConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute"`
}

type Config struct {
	App struct {
		Name        string `yaml:"name"`
		Environment string `yaml:"environment"`
		Port        int    `yaml:"port"`
	} `yaml:"app"`

	Database  DatabaseConfig  `yaml:"database"`
	Grid      GridConfig      `yaml:"grid"`
	Retention RetentionConfig `yaml:"retention"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// Default returns the configuration used when no config file is supplied.
func Default() *Config {
	cfg := &Config{}
	cfg.App.Name = "arenagrid"
	cfg.App.Environment = "development"
	cfg.App.Port = 8080
	cfg.Database.Filename = "data/arenagrid.db"
	cfg.Grid.MaxRangeDays = 370
	cfg.Retention.Days = 365
	cfg.Retention.Cron = "30 3 * * *"
	cfg.RateLimit.RequestsPerMinute = 120
	return cfg
}

// Load loads both .env and yaml configuration.
func Load(configPath string) (*Config, error) {
	// Load .env file if it exists
	envPath := filepath.Join(filepath.Dir(configPath), ".env")
	if err := godotenv.Load(envPath); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app name is required")
	}
	if c.App.Port == 0 {
		return fmt.Errorf("app port is required")
	}
	if c.Database.Filename == "" {
		return fmt.Errorf("database filename is required")
	}
	if c.Grid.MaxRangeDays <= 0 {
		return fmt.Errorf("grid max_range_days must be positive")
	}
	if c.Retention.Days <= 0 {
		return fmt.Errorf("retention days must be positive")
	}
	if _, err := cron.ParseStandard(c.Retention.Cron); err != nil {
		return fmt.Errorf("invalid retention cron %q: %w", c.Retention.Cron, err)
	}
	if c.RateLimit.RequestsPerMinute < 0 {
		return fmt.Errorf("rate limit requests_per_minute must not be negative")
	}
	return nil
}
