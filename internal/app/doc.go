// Package app bootstraps and runs the dojo server.
//
// # Bootstrap
//
// NewApplication performs, in order:
//
//  1. Bootstrap logging at info (or debug with --debug)
//  2. config.LoadConfig for the config directory: defaults, then config.yaml,
//     then environment variables
//  3. Flag overrides from Config, then validation
//  4. Logging re-initialized with log.level and log.format
//  5. InitializeServices: engine runtime, probe, scenario catalog, session
//     registry, readiness signal, container namer, metrics, lifecycle
//     manager, WebSocket gateway and HTTP server
//
// Nothing in this phase talks to the container engine.
//
// # Run
//
// Application.Run performs the startup engine check. Under the strict
// policy an unreachable engine is returned as an error and nothing listens.
// Under the lenient policy the server starts and sessions degrade. The
// server, the config.yaml watcher and the shutdown waiter then run in one
// errgroup until the context ends or SIGINT/SIGTERM arrives.
//
// On shutdown every WebSocket connection is closed and every registered
// session's container is killed.
//
// # Example
//
//	cfg := app.NewConfig(debug, configPath)
//	cfg.Port = 3001
//	application, err := app.NewApplication(cfg)
//	if err != nil {
//	    return err
//	}
//	return application.Run(ctx)
package app
