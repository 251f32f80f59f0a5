// Package config loads tandem's YAML configuration.
// Environment variables written as ${VAR_NAME} are expanded before parsing
// and duration strings such as "2s" are parsed into time.Duration values.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Lanes    LanesConfig    `yaml:"lanes"`
	Redis    RedisConfig    `yaml:"redis"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig holds the HTTP listener settings
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"-"`
	WriteTimeout    time.Duration `yaml:"-"`
	ShutdownTimeout time.Duration `yaml:"-"`

	// Raw string values for YAML unmarshaling
	ReadTimeoutRaw     string `yaml:"read_timeout"`
	WriteTimeoutRaw    string `yaml:"write_timeout"`
	ShutdownTimeoutRaw string `yaml:"shutdown_timeout"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// AuthConfig holds bearer token configuration
type AuthConfig struct {
	JWTSecret   string        `yaml:"jwt_secret"`
	TokenTTL    time.Duration `yaml:"-"`
	TokenTTLRaw string        `yaml:"token_ttl"`
}

// LanesConfig tunes the per-project lock taken by every lane mutation
type LanesConfig struct {
	LockTimeout    time.Duration `yaml:"-"`
	LockRetries    int           `yaml:"lock_retries"`
	RetryBaseDelay time.Duration `yaml:"-"`

	LockTimeoutRaw    string `yaml:"lock_timeout"`
	RetryBaseDelayRaw string `yaml:"retry_base_delay"`
}

// RedisConfig holds the idempotency cache connection. An empty Addr
// disables idempotent task creation.
type RedisConfig struct {
	Addr              string        `yaml:"addr"`
	Password          string        `yaml:"password"`
	DB                int           `yaml:"db"`
	IdempotencyTTL    time.Duration `yaml:"-"`
	IdempotencyTTLRaw string        `yaml:"idempotency_ttl"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	// File is the log destination; empty means stderr
	File string `yaml:"file"`
}

// Default returns the configuration used when no file exists
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            "127.0.0.1:8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Database: DatabaseConfig{Path: defaultDBPath()},
		Auth:     AuthConfig{TokenTTL: 24 * time.Hour},
		Lanes: LanesConfig{
			LockTimeout:    2 * time.Second,
			LockRetries:    3,
			RetryBaseDelay: 50 * time.Millisecond,
		},
		Redis:   RedisConfig{IdempotencyTTL: 24 * time.Hour},
		Logging: LoggingConfig{Level: "info", Format: "text"},
	}
}

// Load reads the config at path, or at DefaultPath when path is empty.
// A missing file yields Default. Environment overrides are applied last.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return finish(Default())
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return finish(Default())
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Start from defaults so absent keys keep their default values
	cfg := Default()
	if err := yaml.Unmarshal([]byte(expandEnvVars(string(data))), cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	if err := parseDurations(cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}
	return finish(cfg)
}

func finish(cfg *Config) (*Config, error) {
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// applyEnv lets deployments inject secrets without editing the file
func (c *Config) applyEnv() {
	if v := os.Getenv("TANDEM_JWT_SECRET"); v != "" {
		c.Auth.JWTSecret = v
	}
	if v := os.Getenv("TANDEM_DB_PATH"); v != "" {
		c.Database.Path = v
	}
}

var envPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	return envPattern.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(envPattern.FindStringSubmatch(match)[1])
	})
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	fields := []struct {
		name string
		raw  string
		dst  *time.Duration
	}{
		{"server.read_timeout", cfg.Server.ReadTimeoutRaw, &cfg.Server.ReadTimeout},
		{"server.write_timeout", cfg.Server.WriteTimeoutRaw, &cfg.Server.WriteTimeout},
		{"server.shutdown_timeout", cfg.Server.ShutdownTimeoutRaw, &cfg.Server.ShutdownTimeout},
		{"auth.token_ttl", cfg.Auth.TokenTTLRaw, &cfg.Auth.TokenTTL},
		{"lanes.lock_timeout", cfg.Lanes.LockTimeoutRaw, &cfg.Lanes.LockTimeout},
		{"lanes.retry_base_delay", cfg.Lanes.RetryBaseDelayRaw, &cfg.Lanes.RetryBaseDelay},
		{"redis.idempotency_ttl", cfg.Redis.IdempotencyTTLRaw, &cfg.Redis.IdempotencyTTL},
	}

	for _, f := range fields {
		if f.raw == "" {
			continue
		}
		d, err := time.ParseDuration(f.raw)
		if err != nil {
			return fmt.Errorf("parsing %s %q: %w", f.name, f.raw, err)
		}
		*f.dst = d
	}
	return nil
}

// Validate checks that all configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("auth.token_ttl must be positive")
	}
	if c.Lanes.LockTimeout <= 0 {
		return fmt.Errorf("lanes.lock_timeout must be positive")
	}
	if c.Lanes.LockRetries < 0 {
		return fmt.Errorf("lanes.lock_retries cannot be negative")
	}
	if c.Lanes.RetryBaseDelay < 0 {
		return fmt.Errorf("lanes.retry_base_delay cannot be negative")
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q must be one of debug, info, warn, error", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format %q must be text or json", c.Logging.Format)
	}
	return nil
}

// DefaultPath returns the path to the config file
func DefaultPath() (string, error) {
	// Try XDG_CONFIG_HOME first
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, "tandem", "config.yaml"), nil
	}

	// Fall back to ~/.config
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(homeDir, ".config", "tandem", "config.yaml"), nil
}

func defaultDBPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "tandem.db"
	}
	return filepath.Join(homeDir, ".tandem", "tandem.db")
}
