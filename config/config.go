package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Black-And-White-Club/runrank-bot/internal/observability"
)

// DefaultTimezone is the civil timezone runs and sweeps are dated in.
const DefaultTimezone = "America/Los_Angeles"

// Config struct to hold the configuration settings
type Config struct {
	Postgres      PostgresConfig      `yaml:"postgres"`
	NATS          NATSConfig          `yaml:"nats"`
	HTTP          HTTPConfig          `yaml:"http"`
	Observability ObservabilityConfig `yaml:"observability"`
	Rating        RatingConfig        `yaml:"rating"`
}

// PostgresConfig holds Postgres configuration.
type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// NATSConfig holds NATS configuration.
type NATSConfig struct {
	URL string `yaml:"url"`
}

// HTTPConfig holds the read API listener configuration.
type HTTPConfig struct {
	Address   string  `yaml:"address"`
	RateLimit float64 `yaml:"rate_limit"` // requests per second per IP
	RateBurst int     `yaml:"rate_burst"`
}

// ObservabilityConfig holds configuration for observability components
type ObservabilityConfig struct {
	MetricsAddress string `yaml:"metrics_address"`
	LogFile        string `yaml:"log_file"`
	LogLevel       string `yaml:"log_level"`
	Environment    string `yaml:"environment"`
}

// RatingConfig holds engine and scheduler settings.
type RatingConfig struct {
	Timezone           string `yaml:"timezone"`
	DailySweepEnabled  bool   `yaml:"daily_sweep_enabled"`
	SeasonResetEnabled bool   `yaml:"season_reset_enabled"`
	MaxRetries         int    `yaml:"max_retries"`
}

func defaults() Config {
	return Config{
		HTTP: HTTPConfig{
			Address:   ":8080",
			RateLimit: 5,
			RateBurst: 10,
		},
		Observability: ObservabilityConfig{
			LogLevel: "info",
		},
		Rating: RatingConfig{
			Timezone:           DefaultTimezone,
			DailySweepEnabled:  true,
			SeasonResetEnabled: true,
			MaxRetries:         3,
		},
	}
}

// LoadConfig loads the configuration from a YAML file, then applies
// environment overrides. A missing file falls back to the environment alone.
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return loadConfigFromEnv()
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadConfigFromEnv loads the configuration from environment variables.
func loadConfigFromEnv() (*Config, error) {
	cfg := defaults()
	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}

	if cfg.Postgres.DSN == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable not set")
	}
	if cfg.NATS.URL == "" {
		return nil, fmt.Errorf("NATS_URL environment variable not set")
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Postgres.DSN = v
	}
	if v := os.Getenv("NATS_URL"); v != "" {
		cfg.NATS.URL = v
	}
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("METRICS_ADDRESS"); v != "" {
		cfg.Observability.MetricsAddress = v
	}
	if v := os.Getenv("LOG_FILE"); v != "" {
		cfg.Observability.LogFile = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}
	if v := os.Getenv("ENV"); v != "" {
		cfg.Observability.Environment = v
	}
	if v := os.Getenv("RATING_TIMEZONE"); v != "" {
		cfg.Rating.Timezone = v
	}
	if v := os.Getenv("DAILY_SWEEP_ENABLED"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid DAILY_SWEEP_ENABLED value: %v", err)
		}
		cfg.Rating.DailySweepEnabled = b
	}
	if v := os.Getenv("SEASON_RESET_ENABLED"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid SEASON_RESET_ENABLED value: %v", err)
		}
		cfg.Rating.SeasonResetEnabled = b
	}
	return nil
}

func (c *Config) validate() error {
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.HTTP.RateLimit < 0 || c.HTTP.RateBurst < 0 {
		return fmt.Errorf("http rate limit and burst must not be negative")
	}
	if c.Rating.MaxRetries < 0 {
		return fmt.Errorf("rating.max_retries must not be negative")
	}
	return nil
}

// Location resolves rating.timezone. Every civil date in the system is taken in it.
func (c *Config) Location() (*time.Location, error) {
	tz := c.Rating.Timezone
	if tz == "" {
		tz = DefaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid rating timezone %q: %w", tz, err)
	}
	return loc, nil
}

// ToObsConfig maps the application config onto the observability setup.
func ToObsConfig(appCfg *Config) observability.Config {
	return observability.Config{
		Log: observability.LogConfig{
			Level:       appCfg.Observability.LogLevel,
			File:        appCfg.Observability.LogFile,
			Environment: appCfg.Observability.Environment,
		},
		MetricsAddress: appCfg.Observability.MetricsAddress,
	}
}
