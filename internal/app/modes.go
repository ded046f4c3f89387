package app

import (
	"context"
	"os/signal"
	"syscall"

	"dojo/internal/config"
	"dojo/pkg/logging"

	"golang.org/x/sync/errgroup"
)

// runServeMode runs the server until ctx is cancelled or SIGINT/SIGTERM
// arrives.
//
// Sequence:
//   - Startup engine check and network ensure (strict policy may fail here)
//   - Bind the listener
//   - Serve HTTP, watch config.yaml, and wait for shutdown, all in one group
//   - On shutdown, close client connections and tear down every session
//
// The first component to fail cancels the others.
func runServeMode(ctx context.Context, cfg *Config, services *Services) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dc := cfg.DojoConfig

	if err := services.Manager.Preflight(ctx); err != nil {
		logging.Error("Bootstrap", err, "Container engine check failed under %s startup policy", dc.Engine.StartupPolicy)
		return err
	}
	if err := services.Server.Listen(); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return services.Server.Run(gctx)
	})

	if cfg.WatchConfig && cfg.ConfigPath != "" {
		watcher := config.NewWatcher(config.WatcherConfig{
			ConfigPath: cfg.ConfigPath,
			OnReload:   services.reloadScenarios,
		})
		g.Go(func() error {
			return watcher.Run(gctx)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), dc.Server.ShutdownTimeout)
		defer cancel()
		return services.Manager.Shutdown(shutdownCtx)
	})

	logging.Info("Bootstrap", "dojo is ready on %s (engine %s, %s policy)",
		services.Server.Addr(), services.Engine.Binary(), dc.Engine.StartupPolicy)

	err := g.Wait()
	logging.Info("Bootstrap", "dojo stopped")
	return err
}
