package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"dojo/pkg/logging"

	"gopkg.in/yaml.v3"
)

const (
	userConfigDir  = ".config/dojo"
	configFileName = "config.yaml"
)

// lookupEnv is swapped in tests.
var lookupEnv = os.LookupEnv

// GetDefaultConfigPath returns ~/.config/dojo, or an empty string when the
// home directory cannot be determined.
func GetDefaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, userConfigDir)
}

// ConfigFilePath returns the config.yaml location inside configPath.
func ConfigFilePath(configPath string) string {
	return filepath.Join(configPath, configFileName)
}

// LoadConfig loads configuration from configPath/config.yaml on top of the
// defaults, then applies environment overrides and validates the result.
// A missing file is not an error.
func LoadConfig(configPath string) (DojoConfig, error) {
	config := GetDefaultConfig()

	if configPath != "" {
		if err := loadFile(ConfigFilePath(configPath), &config); err != nil {
			return DojoConfig{}, err
		}
	}

	if err := ApplyEnv(&config); err != nil {
		return DojoConfig{}, err
	}

	if errs := config.Validate(); errs.HasErrors() {
		return DojoConfig{}, errs
	}
	return config, nil
}

func loadFile(configFilePath string, config *DojoConfig) error {
	data, err := os.ReadFile(configFilePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logging.Info("ConfigLoader", "No config.yaml found at %s, using defaults", configFilePath)
			return nil
		}
		return NewConfigurationError(configFilePath, filepath.Base(configFilePath), "io", err.Error())
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return NewConfigurationErrorWithDetails(configFilePath, filepath.Base(configFilePath), "parse",
			"malformed YAML", err.Error(),
			[]string{"Check indentation and that durations are quoted strings such as \"2s\""})
	}
	logging.Info("ConfigLoader", "Loaded configuration from %s", configFilePath)
	return nil
}

// ApplyEnv overlays environment variables onto config. FRONTEND_URL and PORT
// keep the names the browser frontend deployment already sets.
func ApplyEnv(config *DojoConfig) error {
	if v, ok := lookupEnv("FRONTEND_URL"); ok && v != "" {
		config.Server.AllowedOrigin = v
	}
	if v, ok := lookupEnv("DOJO_HOST"); ok && v != "" {
		config.Server.Host = v
	}
	if v, ok := lookupEnv("PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return NewConfigurationError("env", "PORT", "env", fmt.Sprintf("invalid port %q", v))
		}
		config.Server.Port = port
	}
	if v, ok := lookupEnv("DOJO_STARTUP_POLICY"); ok && v != "" {
		config.Engine.StartupPolicy = StartupPolicy(v)
	}
	if v, ok := lookupEnv("DOJO_ENGINE_BINARY"); ok && v != "" {
		config.Engine.Binary = v
	}
	if v, ok := lookupEnv("DOJO_NETWORK"); ok && v != "" {
		config.Engine.Network = v
	}
	if v, ok := lookupEnv("DOJO_READINESS_DELAY"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return NewConfigurationError("env", "DOJO_READINESS_DELAY", "env", fmt.Sprintf("invalid duration %q", v))
		}
		config.Session.ReadinessDelay = d
	}
	if v, ok := lookupEnv("DOJO_LOG_LEVEL"); ok && v != "" {
		config.Log.Level = v
	}
	if v, ok := lookupEnv("DOJO_LOG_FORMAT"); ok && v != "" {
		config.Log.Format = v
	}
	return nil
}
