package cmd

import (
	"context"
	"fmt"

	"dojo/internal/app"

	"github.com/spf13/cobra"
)

var (
	// serveDebug enables verbose logging across the application.
	serveDebug bool

	servePort          int
	serveAllowedOrigin string
	serveStartupPolicy string
	serveLogFormat     string
	serveNoWatch       bool
)

// serveCmd defines the serve command structure.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dojo session server",
	Long: `Starts the HTTP and WebSocket server that runs scenario sessions.

Clients connect to /ws?scenarioId=<id>. Each connection gets its own
container started from the scenario's image on the shared network. The
container is killed when the client disconnects or the container exits.

Startup checks the container engine first. With the strict startup policy
(default) dojo exits with code 3 when the engine is unreachable. With the
lenient policy it starts anyway and sessions receive scenario-ready without
a container.

Configuration:
  dojo reads config.yaml from --config-path (default $HOME/.config/dojo).
  Environment variables override the file: FRONTEND_URL, PORT, DOJO_HOST,
  DOJO_STARTUP_POLICY, DOJO_ENGINE_BINARY, DOJO_NETWORK,
  DOJO_READINESS_DELAY, DOJO_LOG_LEVEL, DOJO_LOG_FORMAT.
  Flags override both.

  Changes to the scenarios section of config.yaml are picked up without a
  restart.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

// runServe is the main entry point for the serve command
func runServe(cmd *cobra.Command, args []string) error {
	cfg := app.NewConfig(serveDebug, configPath)
	cfg.Port = servePort
	cfg.AllowedOrigin = serveAllowedOrigin
	cfg.StartupPolicy = serveStartupPolicy
	cfg.LogFormat = serveLogFormat
	cfg.WatchConfig = !serveNoWatch

	application, err := app.NewApplication(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return application.Run(ctx)
}

// init registers the serve command and its flags with the root command.
func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().BoolVar(&serveDebug, "debug", false, "Enable debug logging")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Listen port (overrides PORT and config.yaml)")
	serveCmd.Flags().StringVar(&serveAllowedOrigin, "allowed-origin", "", `Frontend origin allowed to connect, "*" for any (overrides FRONTEND_URL)`)
	serveCmd.Flags().StringVar(&serveStartupPolicy, "startup-policy", "", "Engine unavailability handling: strict or lenient")
	serveCmd.Flags().StringVar(&serveLogFormat, "log-format", "", "Log format: text or json")
	serveCmd.Flags().BoolVar(&serveNoWatch, "no-watch", false, "Do not reload the scenario catalog when config.yaml changes")
}
