package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Storage backends
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig
	Logging LogConfig
	Storage StorageConfig
	Desktop DesktopConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8000"`
	Host string `envconfig:"HOST" default:"0.0.0.0"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// StorageConfig selects where preferences, tour completion and the
// notification seen-set are kept.
type StorageConfig struct {
	Backend string `envconfig:"STORAGE_BACKEND" default:"memory"`
	// Path is a directory for the file backend and a database file for sqlite
	Path string `envconfig:"STORAGE_PATH" default:"data"`
}

// DesktopConfig holds session defaults.
type DesktopConfig struct {
	ViewportWidth   int           `envconfig:"VIEWPORT_WIDTH" default:"1440"`
	ViewportHeight  int           `envconfig:"VIEWPORT_HEIGHT" default:"900"`
	Device          string        `envconfig:"DEVICE" default:"desktop"`
	ReducedMotion   bool          `envconfig:"REDUCED_MOTION" default:"false"`
	NotificationFor time.Duration `envconfig:"NOTIFICATION_DISPLAY" default:"6s"`
	// TimingProfile is an optional TOML file overriding boot and tour pacing
	TimingProfile string `envconfig:"TIMING_PROFILE"`
	// AppManifest is an optional YAML file of extra app registry entries
	AppManifest string `envconfig:"APP_MANIFEST"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8000",
			Host: "0.0.0.0",
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		Storage: StorageConfig{
			Backend: BackendMemory,
			Path:    "data",
		},
		Desktop: DesktopConfig{
			ViewportWidth:   1440,
			ViewportHeight:  900,
			Device:          "desktop",
			NotificationFor: 6 * time.Second,
		},
	}
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendMemory, BackendFile, BackendSQLite:
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if c.Desktop.ViewportWidth <= 0 || c.Desktop.ViewportHeight <= 0 {
		return fmt.Errorf("viewport must be positive, got %dx%d", c.Desktop.ViewportWidth, c.Desktop.ViewportHeight)
	}
	if c.Desktop.NotificationFor < 0 {
		return fmt.Errorf("notification display time must not be negative")
	}
	return nil
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return c.Server.Host + ":" + c.Server.Port
}
