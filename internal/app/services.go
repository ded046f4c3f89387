package app

import (
	"fmt"

	"dojo/internal/config"
	"dojo/internal/containerizer"
	"dojo/internal/gateway"
	"dojo/internal/orchestrator"
	"dojo/internal/scenario"
	"dojo/internal/server"
	"dojo/internal/session"
	"dojo/pkg/logging"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Services holds every wired component of a running dojo server.
//
// Initialization order follows the dependencies:
//  1. Engine CLI runtime and its availability probe
//  2. Scenario catalog, session registry, readiness signal and container namer
//  3. Metrics registry and the lifecycle manager
//  4. WebSocket gateway and HTTP server
type Services struct {
	Engine   *containerizer.DockerEngine
	Probe    *containerizer.Probe
	Catalog  *scenario.Store
	Registry *session.Registry
	Manager  *orchestrator.Manager
	Gateway  *gateway.Gateway
	Server   *server.Server

	// Metrics is the Prometheus registry served on /metrics.
	Metrics *prometheus.Registry
}

// InitializeServices creates the components described by cfg.DojoConfig.
// It runs no engine commands.
func InitializeServices(cfg *Config) (*Services, error) {
	dc := cfg.DojoConfig

	engine, err := containerizer.NewEngine(dc.Engine.Binary)
	if err != nil {
		return nil, fmt.Errorf("failed to create container engine: %w", err)
	}
	probe := containerizer.NewProbe(engine, dc.Engine.CommandTimeout)

	catalog := scenario.NewStore(scenario.FromConfig(dc.Scenarios))
	registry := session.NewRegistry()

	namer, err := session.NewNamer(dc.Session.ContainerName)
	if err != nil {
		return nil, fmt.Errorf("failed to parse container name template: %w", err)
	}

	metricsRegistry := prometheus.NewRegistry()
	metricsRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	manager := orchestrator.New(orchestrator.Config{
		Probe:     probe,
		Launcher:  engine,
		Resolver:  catalog,
		Registry:  registry,
		Readiness: newReadiness(dc, registry, engine),
		Namer:     namer,
		Metrics:   orchestrator.NewMetrics(metricsRegistry),
		Engine:    dc.Engine,
		Session:   dc.Session,
	})

	gw := gateway.New(manager, gateway.Config{
		AllowedOrigin: dc.Server.AllowedOrigin,
		WriteWait:     dc.Server.WriteWait,
		PongWait:      dc.Server.PongWait,
		PingInterval:  dc.Server.PingInterval,
	})

	srv := server.New(server.Config{
		Address:         dc.Server.Address(),
		AllowedOrigin:   dc.Server.AllowedOrigin,
		MetricsEnabled:  dc.Server.MetricsEnabled,
		SystemdNotify:   dc.Server.SystemdNotify,
		ShutdownTimeout: dc.Server.ShutdownTimeout,
	}, gw, registry, metricsRegistry)

	logging.Debug("Bootstrap", "Services initialized: engine=%s network=%s policy=%s readiness=%s",
		engine.Binary(), dc.Engine.Network, dc.Engine.StartupPolicy, dc.Session.Readiness)

	return &Services{
		Engine:   engine,
		Probe:    probe,
		Catalog:  catalog,
		Registry: registry,
		Manager:  manager,
		Gateway:  gw,
		Server:   srv,
		Metrics:  metricsRegistry,
	}, nil
}

func newReadiness(dc *config.DojoConfig, registry *session.Registry, engine *containerizer.DockerEngine) session.Readiness {
	if dc.Session.Readiness == config.ReadinessInspect {
		return session.NewInspectReadiness(registry, engine, dc.Session.InspectInterval, dc.Engine.CommandTimeout)
	}
	return session.NewTimerReadiness(registry)
}

// reloadScenarios swaps the catalog for the one in a reloaded configuration.
// Sessions already past image resolution keep the image they resolved.
func (s *Services) reloadScenarios(dc config.DojoConfig) {
	next := scenario.FromConfig(dc.Scenarios)
	s.Catalog.Swap(next)
	logging.Info("Bootstrap", "Scenario catalog reloaded: %d scenarios, default image %s",
		len(next.Entries()), next.DefaultImage())
}
