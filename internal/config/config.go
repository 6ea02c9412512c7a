// Package config loads the server configuration from a YAML file with
// environment variable overrides. A .env file, when present, is loaded
// first so local development does not need real environment variables.
package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Placeholder PlaceholderConfig `yaml:"placeholder"`
	Upload      UploadConfig      `yaml:"upload"`
	RunLog      RunLogConfig      `yaml:"runlog"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port            int    `yaml:"port"`
	Host            string `yaml:"host"`
	ShutdownSeconds int    `yaml:"shutdown_seconds"`
}

// GetHost returns the server host, honoring a container environment.
func (c ServerConfig) GetHost() string {
	if os.Getenv("ECS_CONTAINER_METADATA_URI") != "" || os.Getenv("AWS_EXECUTION_ENV") != "" {
		return "0.0.0.0"
	}
	if host := os.Getenv("SERVER_HOST"); host != "" {
		return host
	}
	return c.Host
}

// ShutdownTimeout returns the graceful shutdown window.
func (c ServerConfig) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownSeconds) * time.Second
}

// PlaceholderConfig holds defaults for placeholder generation. Sessions
// may override the base phone and addresses.
type PlaceholderConfig struct {
	BasePhone      string `yaml:"base_phone"`
	PickupAddress  string `yaml:"pickup_address"`
	DropoffAddress string `yaml:"dropoff_address"`
}

// UploadConfig bounds accepted uploads.
type UploadConfig struct {
	MaxFileMB int `yaml:"max_file_mb"`
	MaxFiles  int `yaml:"max_files"`
}

// MaxFileBytes returns the per-file size cap in bytes.
func (c UploadConfig) MaxFileBytes() int64 {
	return int64(c.MaxFileMB) << 20
}

// RunLogConfig holds the import-run audit trail settings.
type RunLogConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level     string `yaml:"level"`
	RedactPII *bool  `yaml:"redact_pii"`
}

// Load reads and parses the configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	// Set defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.ShutdownSeconds == 0 {
		cfg.Server.ShutdownSeconds = 10
	}
	if cfg.Placeholder.BasePhone == "" {
		cfg.Placeholder.BasePhone = "+1 202-555-0100"
	}
	if cfg.Upload.MaxFileMB == 0 {
		cfg.Upload.MaxFileMB = 32
	}
	if cfg.Upload.MaxFiles == 0 {
		cfg.Upload.MaxFiles = 10
	}
	if cfg.RunLog.Path == "" {
		cfg.RunLog.Path = "dataprep-runs.db"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}

	return &cfg, nil
}

// LoadFromEnv loads configuration with environment variable overrides.
// A .env file (if present) is loaded before reading env vars, so secrets
// and local overrides can live in .env during development.
func LoadFromEnv(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("DATAPREP_BASE_PHONE"); v != "" {
		cfg.Placeholder.BasePhone = v
	}
	if v := os.Getenv("DATAPREP_RUNLOG_PATH"); v != "" {
		cfg.RunLog.Path = v
	}
	if v := os.Getenv("DATAPREP_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}

	return cfg, nil
}
