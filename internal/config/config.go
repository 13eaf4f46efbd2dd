// Package config loads the server configuration from defaults, an optional
// YAML file and environment variables, in that order of precedence.
package config

import (
	"fmt"
	"os"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is consulted when PICASSO_CONFIG is not set.
const DefaultPath = "config.yaml"

// Config is the root configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Functions  FunctionsConfig  `yaml:"functions"`
	Logging    LoggingConfig    `yaml:"logging"`
	RateLimit  RateLimitConfig  `yaml:"rate_limit"`
	Reconciler ReconcilerConfig `yaml:"reconciler"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host            string `yaml:"host" env:"PICASSO_SERVER_HOST"`
	Port            int    `yaml:"port" env:"PICASSO_SERVER_PORT"`
	ReadTimeoutSec  int    `yaml:"read_timeout_sec" env:"PICASSO_SERVER_READ_TIMEOUT_SEC"`
	WriteTimeoutSec int    `yaml:"write_timeout_sec" env:"PICASSO_SERVER_WRITE_TIMEOUT_SEC"`
	IdleTimeoutSec  int    `yaml:"idle_timeout_sec" env:"PICASSO_SERVER_IDLE_TIMEOUT_SEC"`
}

// DatabaseConfig configures the registry database. An empty driver selects
// the in-memory registry.
type DatabaseConfig struct {
	Driver             string `yaml:"driver" env:"PICASSO_DB_DRIVER"`
	DSN                string `yaml:"dsn" env:"PICASSO_DB_DSN"`
	MaxOpenConns       int    `yaml:"max_open_conns" env:"PICASSO_DB_MAX_OPEN_CONNS"`
	MaxIdleConns       int    `yaml:"max_idle_conns" env:"PICASSO_DB_MAX_IDLE_CONNS"`
	ConnMaxLifetimeSec int    `yaml:"conn_max_lifetime_sec" env:"PICASSO_DB_CONN_MAX_LIFETIME_SEC"`
}

// FunctionsConfig configures the remote functions platform client.
type FunctionsConfig struct {
	BaseURL    string `yaml:"base_url" env:"PICASSO_FUNCTIONS_URL"`
	TimeoutSec int    `yaml:"timeout_sec" env:"PICASSO_FUNCTIONS_TIMEOUT_SEC"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	Level      string `yaml:"level" env:"PICASSO_LOG_LEVEL"`
	Format     string `yaml:"format" env:"PICASSO_LOG_FORMAT"`
	Output     string `yaml:"output" env:"PICASSO_LOG_OUTPUT"`
	FilePrefix string `yaml:"file_prefix" env:"PICASSO_LOG_FILE_PREFIX"`
}

// RateLimitConfig configures per-client request throttling.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled" env:"PICASSO_RATELIMIT_ENABLED"`
	RequestsPerSecond int  `yaml:"requests_per_second" env:"PICASSO_RATELIMIT_RPS"`
	Burst             int  `yaml:"burst" env:"PICASSO_RATELIMIT_BURST"`
}

// ReconcilerConfig configures the orphan sweep.
type ReconcilerConfig struct {
	Enabled  bool   `yaml:"enabled" env:"PICASSO_RECONCILER_ENABLED"`
	Schedule string `yaml:"schedule" env:"PICASSO_RECONCILER_SCHEDULE"`
	Prune    bool   `yaml:"prune" env:"PICASSO_RECONCILER_PRUNE"`
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeoutSec:  30,
			WriteTimeoutSec: 30,
			IdleTimeoutSec:  120,
		},
		Functions: FunctionsConfig{
			BaseURL:    "http://localhost:8085",
			TimeoutSec: 30,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		RateLimit: RateLimitConfig{
			Enabled:           true,
			RequestsPerSecond: 50,
			Burst:             100,
		},
		Reconciler: ReconcilerConfig{
			Schedule: "*/5 * * * *",
		},
	}
}

// Load builds the configuration. A .env file is consulted for environment
// variables when present; the YAML file named by PICASSO_CONFIG (or
// config.yaml) overlays the defaults, and environment variables win over
// both.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := defaults()

	path := os.Getenv("PICASSO_CONFIG")
	explicit := path != ""
	if path == "" {
		path = DefaultPath
	}
	if err := loadFile(cfg, path, explicit); err != nil {
		return nil, err
	}

	if err := envdecode.Decode(cfg); err != nil && err != envdecode.ErrNoTargetFieldsAreSet {
		return nil, fmt.Errorf("decode environment: %w", err)
	}
	return cfg, nil
}

func loadFile(cfg *Config, path string, required bool) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !required {
			return nil
		}
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}
