package cmd

import (
	"errors"
	"os"

	"dojo/internal/config"
	"dojo/internal/orchestrator"

	"github.com/spf13/cobra"
)

// Exit codes for CLI commands.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error (command failed, invalid arguments).
	ExitCodeError = 1
	// ExitCodeConfigError indicates the configuration could not be loaded or is invalid.
	ExitCodeConfigError = 2
	// ExitCodeEngineUnavailable indicates the container engine is unreachable
	// under the strict startup policy.
	ExitCodeEngineUnavailable = 3
)

// configPath is the directory holding config.yaml, shared by every command.
var configPath string

// rootCmd represents the base command for the dojo application.
// It is the entry point when the application is called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "dojo",
	Short: "Serve hands-on DevOps scenarios in disposable containers",
	Long: `dojo gives every browser terminal its own short-lived container.

Each WebSocket connection names a scenario. dojo starts the scenario's image
on an isolated network, streams the terminal both ways, and kills the
container as soon as either side goes away.`,
	// SilenceUsage prevents Cobra from printing the usage message on errors that are handled by the application.
	SilenceUsage: true,
}

// SetVersion sets the version for the root command.
// This function is typically called from the main package to inject the application version at build time.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute is the main entry point for the CLI application.
// This function is called by main.main().
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "dojo version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(getExitCode(err))
	}
}

// getExitCode determines the appropriate exit code based on the error type.
// This provides semantic exit codes for scripting and service managers.
func getExitCode(err error) int {
	if orchestrator.IsEngineUnavailable(err) {
		return ExitCodeEngineUnavailable
	}

	if config.IsConfigurationError(err) {
		return ExitCodeConfigError
	}

	var unsupported *unsupportedFormatError
	if errors.As(err, &unsupported) {
		return ExitCodeConfigError
	}

	// Default to general error
	return ExitCodeError
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config-path", "",
		"Directory containing config.yaml (default $HOME/.config/dojo)")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newSelfUpdateCmd())
}
