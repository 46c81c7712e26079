package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

// Config holds all configuration for the fragment service
type Config struct {
	// Server configuration
	Port             string `env:"PORT,default=8981"`
	RemoteUserHeader string `env:"REMOTE_USER_HEADER,default=X-Remote-User"`
	AccessLog        bool   `env:"ACCESS_LOG,default=false"`

	// Database configuration
	DatabaseDriver string `env:"DATABASE_DRIVER,default=sqlite"`
	DatabaseURL    string `env:"DATABASE_URL,default=snex.db"`
	AutoMigrate    bool   `env:"DATABASE_AUTO_MIGRATE,default=true"`

	// When true only target-level permissions apply and every reduced
	// datum of a visible target is shown.
	TargetPermissionsOnly bool `env:"TARGET_PERMISSIONS_ONLY,default=true"`

	// Optional YAML file with classifications, data product types and sites
	SettingsFile string `env:"SETTINGS_FILE"`

	// Chart assets
	EChartsURL string `env:"ECHARTS_URL,default=https://cdn.jsdelivr.net/npm/echarts@5.4.3/dist/echarts.min.js"`

	// Service configuration
	Environment string `env:"ENVIRONMENT,default=development"`
	LogLevel    string `env:"LOG_LEVEL,default=info"`
	LogFormat   string `env:"LOG_FORMAT,default=json"`
	LogFile     string `env:"LOG_FILE"`
}

// Load loads configuration from environment variables
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values envconfig cannot check on its own
func (c *Config) Validate() error {
	switch c.DatabaseDriver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported database driver: %s", c.DatabaseDriver)
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL must not be empty")
	}
	return nil
}
