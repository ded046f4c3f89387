package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"dojo/internal/config"
	"dojo/pkg/logging"
)

// Application represents the main application structure that bootstraps and runs dojo.
//
// The Application follows a two-phase initialization pattern:
//  1. Bootstrap phase: initialize logging, load configuration, wire services
//  2. Execution phase: check the engine, serve until the context ends
//
// Example usage:
//
//	cfg := app.NewConfig(false, "")
//	application, err := app.NewApplication(cfg)
//	if err != nil {
//	    return fmt.Errorf("failed to create application: %w", err)
//	}
//	return application.Run(ctx)
type Application struct {
	config   *Config
	services *Services
}

// NewApplication creates and initializes a new application instance with the provided configuration.
// This function performs the complete bootstrap sequence:
//
//  1. Configures bootstrap logging based on the debug flag
//  2. Loads config.yaml, environment overrides and flag overrides
//  3. Re-initializes logging with the configured level and format
//  4. Wires the engine, catalog, registry, lifecycle manager and HTTP server
//
// No engine command runs here. The startup engine check happens in Run.
func NewApplication(cfg *Config) (*Application, error) {
	var logOutput io.Writer = os.Stdout
	if cfg.LogOutput != nil {
		logOutput = cfg.LogOutput
	}
	if cfg.Silent {
		logOutput = io.Discard
	}

	bootLevel := logging.LevelInfo
	if cfg.Debug {
		bootLevel = logging.LevelDebug
	}
	logging.InitForCLI(bootLevel, logOutput)

	if cfg.DojoConfig == nil {
		configPath := cfg.ConfigPath
		if configPath == "" {
			configPath = config.GetDefaultConfigPath()
		}

		dojoCfg, err := config.LoadConfig(configPath)
		if err != nil {
			logging.Error("Bootstrap", err, "Failed to load dojo configuration from %s", configPath)
			return nil, fmt.Errorf("failed to load dojo configuration: %w", err)
		}
		cfg.ConfigPath = configPath
		cfg.DojoConfig = &dojoCfg
	}

	cfg.applyOverrides(cfg.DojoConfig)
	if errs := cfg.DojoConfig.Validate(); errs.HasErrors() {
		logging.Error("Bootstrap", errs, "Invalid configuration after applying flags")
		return nil, fmt.Errorf("invalid configuration: %w", errs)
	}

	level, ok := logging.ParseLevel(cfg.DojoConfig.Log.Level)
	if !ok {
		logging.Warn("Bootstrap", "Unknown log level %q, using info", cfg.DojoConfig.Log.Level)
	}
	logging.Init(level, logging.Format(cfg.DojoConfig.Log.Format), logOutput)

	services, err := InitializeServices(cfg)
	if err != nil {
		logging.Error("Bootstrap", err, "Failed to initialize services")
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	return &Application{
		config:   cfg,
		services: services,
	}, nil
}

// Run checks the container engine and serves until ctx is cancelled or a
// termination signal arrives.
//
// Under the strict startup policy an unreachable engine is returned as an
// error before anything listens.
func (a *Application) Run(ctx context.Context) error {
	return runServeMode(ctx, a.config, a.services)
}
