package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for VeilDB.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Encoding EncodingConfig `yaml:"encoding"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// DatabaseConfig contains SQLite database settings.
type DatabaseConfig struct {
	// Path is the filesystem path to the SQLite database file.
	Path string `yaml:"path"`

	// WALMode enables Write-Ahead Logging for better concurrent access.
	WALMode bool `yaml:"wal_mode"`

	// BusyTimeout is the maximum time to wait for a database lock (seconds).
	BusyTimeout int `yaml:"busy_timeout"`
}

// EncodingConfig selects how values are transformed before they reach storage.
//
// The mode is fixed for the lifetime of the store handle; it cannot be
// changed per operation. Mixing modes against the same database file will
// produce decode failures or garbage reads.
type EncodingConfig struct {
	// Mode is the value encoding strategy: "plain", "base64", "secure" or "sealed".
	Mode string `yaml:"mode"`

	// Secret is the passphrase for the keyed modes (secure, sealed).
	// It is hashed into key material once at startup and never stored.
	// Prefer setting it via the VEILDB_ENCODING_SECRET environment variable.
	Secret string `yaml:"secret"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: VEILDB_SECTION_KEY
// For example: VEILDB_DATABASE_PATH, VEILDB_ENCODING_SECRET
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	// Start with defaults
	cfg := defaultConfig()

	// Read and parse YAML file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Apply environment variable overrides
	applyEnvOverrides(cfg)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path:        "./data/veildb.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		Encoding: EncodingConfig{
			Mode: "plain",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: VEILDB_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// Database
	if v := os.Getenv("VEILDB_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	// Encoding - secret should always come from the environment in production
	if v := os.Getenv("VEILDB_ENCODING_MODE"); v != "" {
		cfg.Encoding.Mode = v
	}
	if v := os.Getenv("VEILDB_ENCODING_SECRET"); v != "" {
		cfg.Encoding.Secret = v
	}

	// Logging
	if v := os.Getenv("VEILDB_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// validModes are the accepted encoding.mode values.
var validModes = map[string]bool{
	"plain":  true,
	"base64": true,
	"secure": true,
	"sealed": true,
}

// keyedModes are the modes that require a secret.
var keyedModes = map[string]bool{
	"secure": true,
	"sealed": true,
}

// Validate checks the configuration for errors and security issues.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	// Database validation
	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}
	if c.Database.BusyTimeout < 0 {
		errs = append(errs, "database.busy_timeout must not be negative")
	}

	// Encoding validation
	mode := strings.ToLower(c.Encoding.Mode)
	if !validModes[mode] {
		errs = append(errs, "encoding.mode must be one of: plain, base64, secure, sealed")
	}
	if keyedModes[mode] && c.Encoding.Secret == "" {
		errs = append(errs, "encoding.secret is required for secure and sealed modes (set VEILDB_ENCODING_SECRET environment variable)")
	}
	if !keyedModes[mode] && c.Encoding.Secret != "" {
		errs = append(errs, "encoding.secret is only meaningful for secure and sealed modes")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}
