// Package logging provides the structured, subsystem-tagged logger used
// throughout dojo.
//
// It wraps Go's log/slog with a small package-level API so that every call
// site names the subsystem it belongs to:
//
//	logging.Info("Lifecycle", "Launching %s for scenario %s", name, scenarioID)
//	logging.Error("Engine", err, "Failed to kill container %s", name)
//
// # Initialization
//
// Call Init once during bootstrap, before any goroutine logs:
//
//	logging.Init(logging.LevelInfo, logging.FormatJSON, os.Stdout)
//
// Text output is the default. JSON output is intended for log shippers.
//
// # Subsystems
//
// The server uses these subsystem names: Bootstrap, Config, Engine,
// Lifecycle, Readiness, Gateway and Server. Every entry carries a
// "subsystem" attribute and, for Error, an "error" attribute.
package logging
