package app

import (
	"io"

	"dojo/internal/config"
)

// Config holds the application configuration
type Config struct {
	// Debug forces debug logging regardless of log.level.
	Debug bool

	// Silent discards all log output.
	Silent bool

	// ConfigPath is the directory holding config.yaml. Empty means
	// the default location (~/.config/dojo).
	ConfigPath string

	// WatchConfig reloads the scenario catalog when config.yaml changes.
	WatchConfig bool

	// Flag overrides. Zero values leave the loaded configuration untouched.
	Port          int
	AllowedOrigin string
	StartupPolicy string
	LogFormat     string

	// LogOutput defaults to os.Stdout.
	LogOutput io.Writer

	// DojoConfig is filled by NewApplication. Tests may pre-populate it to
	// skip loading from disk.
	DojoConfig *config.DojoConfig
}

// NewConfig creates a new application configuration
func NewConfig(debug bool, configPath string) *Config {
	return &Config{
		Debug:       debug,
		ConfigPath:  configPath,
		WatchConfig: true,
	}
}

// applyOverrides copies flag values over the loaded configuration. Flags
// take precedence over the environment and the config file.
func (c *Config) applyOverrides(dc *config.DojoConfig) {
	if c.Port != 0 {
		dc.Server.Port = c.Port
	}
	if c.AllowedOrigin != "" {
		dc.Server.AllowedOrigin = c.AllowedOrigin
	}
	if c.StartupPolicy != "" {
		dc.Engine.StartupPolicy = config.StartupPolicy(c.StartupPolicy)
	}
	if c.LogFormat != "" {
		dc.Log.Format = c.LogFormat
	}
	if c.Debug {
		dc.Log.Level = "debug"
	}
}
