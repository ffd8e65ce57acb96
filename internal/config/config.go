// Package config provides configuration management for the article registry.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every environment override.
const EnvPrefix = "ARTICLES_"

// Storage backends.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Config represents the main application configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server" envPrefix:"SERVER_"`
	Storage StorageConfig `yaml:"storage" envPrefix:"STORAGE_"`
	Log     LogConfig     `yaml:"log" envPrefix:"LOG_"`
	Backup  BackupConfig  `yaml:"backup" envPrefix:"BACKUP_"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr                     string `yaml:"addr" env:"ADDR"`
	BasePath                 string `yaml:"base_path" env:"BASE_PATH"` // Resource path for the four operations
	ReadHeaderTimeoutSeconds int    `yaml:"read_header_timeout_seconds" env:"READ_HEADER_TIMEOUT_SECONDS"`
	ShutdownTimeoutSeconds   int    `yaml:"shutdown_timeout_seconds" env:"SHUTDOWN_TIMEOUT_SECONDS"`
}

// StorageConfig selects where the article document lives.
type StorageConfig struct {
	Backend         string `yaml:"backend" env:"BACKEND"` // "json", "sqlite" or "memory"
	Path            string `yaml:"path" env:"PATH"`
	SerializeWrites bool   `yaml:"serialize_writes" env:"SERIALIZE_WRITES"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level  string `yaml:"level" env:"LEVEL"`   // debug, info, warn, error
	Format string `yaml:"format" env:"FORMAT"` // text or json
}

// BackupConfig configures scheduled document snapshots.
type BackupConfig struct {
	Enabled  bool   `yaml:"enabled" env:"ENABLED"`
	Schedule string `yaml:"schedule" env:"SCHEDULE"` // cron expression or descriptor such as @daily
	Dir      string `yaml:"dir" env:"DIR"`
	Keep     *int   `yaml:"keep" env:"KEEP"` // 0 keeps every snapshot, pointer to distinguish unset from 0
}

// Load reads the configuration file at path, overlays environment variables
// and applies defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	var config Config

	if path != "" {
		// #nosec G304 -- path is provided by user as configuration file path
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &config); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, err
		}
	}

	if err := env.ParseWithOptions(&config, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = "localhost:8080"
	}
	if c.Server.BasePath == "" {
		c.Server.BasePath = "/api/articles"
	}
	c.Server.BasePath = strings.TrimRight(c.Server.BasePath, "/")
	if c.Server.ReadHeaderTimeoutSeconds == 0 {
		c.Server.ReadHeaderTimeoutSeconds = 10
	}
	if c.Server.ShutdownTimeoutSeconds == 0 {
		c.Server.ShutdownTimeoutSeconds = 5
	}

	if c.Storage.Backend == "" {
		c.Storage.Backend = BackendJSON
	}
	c.Storage.Backend = strings.ToLower(c.Storage.Backend)
	if c.Storage.Path == "" {
		switch c.Storage.Backend {
		case BackendJSON:
			c.Storage.Path = "data/articles.json"
		case BackendSQLite:
			c.Storage.Path = "data/articles.db"
		}
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	c.Log.Level = strings.ToLower(c.Log.Level)
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	c.Log.Format = strings.ToLower(c.Log.Format)

	if c.Backup.Schedule == "" {
		c.Backup.Schedule = "@daily"
	}
	if c.Backup.Dir == "" {
		c.Backup.Dir = "backups"
	}
	if c.Backup.Keep == nil {
		defaultKeep := 7
		c.Backup.Keep = &defaultKeep
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr cannot be empty")
	}
	if !strings.HasPrefix(c.Server.BasePath, "/") || c.Server.BasePath == "/" {
		return fmt.Errorf("server.base_path must start with / and name a resource, got %q", c.Server.BasePath)
	}
	if c.Server.ReadHeaderTimeoutSeconds < 1 || c.Server.ReadHeaderTimeoutSeconds > 600 {
		return fmt.Errorf("server.read_header_timeout_seconds must be between 1 and 600, got %d", c.Server.ReadHeaderTimeoutSeconds)
	}
	if c.Server.ShutdownTimeoutSeconds < 1 || c.Server.ShutdownTimeoutSeconds > 600 {
		return fmt.Errorf("server.shutdown_timeout_seconds must be between 1 and 600, got %d", c.Server.ShutdownTimeoutSeconds)
	}

	switch c.Storage.Backend {
	case BackendJSON, BackendSQLite:
		if c.Storage.Path == "" {
			return fmt.Errorf("storage.path cannot be empty for backend %q", c.Storage.Backend)
		}
	case BackendMemory:
	default:
		return fmt.Errorf("storage.backend must be one of json, sqlite, memory, got %q", c.Storage.Backend)
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error, got %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}

	if c.Backup.Keep != nil && *c.Backup.Keep < 0 {
		return fmt.Errorf("backup.keep cannot be negative, got %d", *c.Backup.Keep)
	}
	if c.Backup.Enabled {
		if c.Backup.Dir == "" {
			return fmt.Errorf("backup.dir cannot be empty when backups are enabled")
		}
		if _, err := cron.ParseStandard(c.Backup.Schedule); err != nil {
			return fmt.Errorf("backup.schedule %q is invalid: %w", c.Backup.Schedule, err)
		}
	}

	return nil
}

// ReadHeaderTimeout returns the server read-header timeout.
func (c *Config) ReadHeaderTimeout() time.Duration {
	return time.Duration(c.Server.ReadHeaderTimeoutSeconds) * time.Second
}

// BackupKeep returns how many snapshots to retain.
func (c *Config) BackupKeep() int {
	if c.Backup.Keep == nil {
		return 0
	}
	return *c.Backup.Keep
}

// ShutdownTimeout returns the graceful shutdown timeout.
func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.Server.ShutdownTimeoutSeconds) * time.Second
}
