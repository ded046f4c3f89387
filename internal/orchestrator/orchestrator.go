package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"dojo/internal/config"
	"dojo/internal/containerizer"
	"dojo/internal/scenario"
	"dojo/internal/session"
	"dojo/pkg/logging"
)

// EngineProbe answers engine availability questions for the manager.
type EngineProbe interface {
	Available(ctx context.Context) error
	EnsureNetwork(ctx context.Context, name string) error
	ImageExists(ctx context.Context, image string) (bool, error)
}

// Launcher starts and terminates session containers.
type Launcher interface {
	Run(spec containerizer.RunSpec) (containerizer.Process, error)
	Kill(ctx context.Context, name string) error
}

// Config holds the configuration for the lifecycle manager.
type Config struct {
	Probe     EngineProbe
	Launcher  Launcher
	Resolver  scenario.Resolver
	Registry  *session.Registry
	Readiness session.Readiness
	Namer     *session.Namer
	Metrics   *Metrics // Optional

	Engine  config.EngineConfig
	Session config.SessionConfig
}

// Manager runs the container lifecycle for every session. It is the only
// component that mutates sessions or the registry.
type Manager struct {
	probe     EngineProbe
	launcher  Launcher
	resolver  scenario.Resolver
	registry  *session.Registry
	readiness session.Readiness
	namer     *session.Namer
	metrics   *Metrics

	engine  config.EngineConfig
	session config.SessionConfig

	// engineUp is the startup probe result, used when per-session checks are off.
	engineUp atomic.Bool

	// pending holds the cancel functions of in-flight Start calls.
	mu      sync.Mutex
	pending map[string]context.CancelFunc

	// supervisors tracks output pumps and reapers so Shutdown can wait for them.
	supervisors sync.WaitGroup
}

// New creates a new lifecycle manager.
func New(cfg Config) *Manager {
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = NewMetrics(nil)
	}

	m := &Manager{
		probe:     cfg.Probe,
		launcher:  cfg.Launcher,
		resolver:  cfg.Resolver,
		registry:  cfg.Registry,
		readiness: cfg.Readiness,
		namer:     cfg.Namer,
		metrics:   metrics,
		engine:    cfg.Engine,
		session:   cfg.Session,
		pending:   make(map[string]context.CancelFunc),
	}
	m.engineUp.Store(true)
	return m
}

// Preflight runs the startup engine check and ensures the shared network.
// Under the strict policy an unreachable engine returns an
// *EngineUnavailableError and the server must not start. Under the lenient
// policy the manager is marked degraded and nil is returned. Network
// failures are only logged.
func (m *Manager) Preflight(ctx context.Context) error {
	if err := m.probe.Available(ctx); err != nil {
		m.metrics.ProbeFailures.Inc()
		if m.engine.StartupPolicy == config.StartupPolicyStrict {
			return &EngineUnavailableError{Err: err}
		}
		logging.Warn("Lifecycle", "Container engine not available, sessions will run in degraded mode: %v", err)
		m.engineUp.Store(false)
		return nil
	}
	m.engineUp.Store(true)

	if err := m.probe.EnsureNetwork(ctx, m.engine.Network); err != nil {
		logging.Error("Lifecycle", &NetworkEnsureError{Network: m.engine.Network, Err: err}, "Continuing without a verified network")
	}
	return nil
}

// Start runs a session from CHECKING_ENGINE through LAUNCHING for a new
// connection. It returns once the session is RUNNING (or DEGRADED); output
// then flows to client in the background. A returned error means the session
// was rejected and the caller should report Diagnostic(err) and close.
//
// Cancelling ctx, or calling Disconnect for connectionID, aborts the start.
// A container that was already launched is then torn down exactly once.
func (m *Manager) Start(ctx context.Context, client Client, connectionID, scenarioID string) error {
	if strings.TrimSpace(scenarioID) == "" {
		return ErrScenarioIDMissing
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	if err := m.track(connectionID, cancel); err != nil {
		return err
	}
	defer m.untrack(connectionID)

	startedAt := time.Now()
	short := logging.TruncateSessionID(connectionID)

	name, err := m.namer.Render(connectionID, scenarioID)
	if err != nil {
		return err
	}
	s := session.New(connectionID, name, scenarioID)

	// CHECKING_ENGINE
	s.SetState(session.StateCheckingEngine)
	if err := m.checkEngine(ctx); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return m.engineDown(s, client, m.resolver.Resolve(scenarioID), err)
	}

	// CHECKING_IMAGE
	s.SetState(session.StateCheckingImage)
	s.Image, s.Privileged = m.resolver.Lookup(scenarioID)
	exists, err := m.probe.ImageExists(ctx, s.Image)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		// The image query failing is the engine going away after the check.
		return m.engineDown(s, client, s.Image, err)
	}
	if !exists {
		s.SetState(session.StateFailed)
		m.metrics.Launches.WithLabelValues(s.Image, ResultImageNotFound).Inc()
		logging.Warn("Lifecycle", "Session %s: image %s not found", short, s.Image)
		return &ImageNotFoundError{Image: s.Image}
	}
	if ctx.Err() != nil {
		s.SetState(session.StateFailed)
		m.metrics.Launches.WithLabelValues(s.Image, ResultAborted).Inc()
		return ctx.Err()
	}

	// LAUNCHING
	s.SetState(session.StateLaunching)
	spec := m.runSpec(s)
	logging.Info("Lifecycle", "Launching %s (%s) for session %s", s.ContainerName, s.Image, short)

	proc, err := m.launcher.Run(spec)
	if err != nil {
		s.SetState(session.StateFailed)
		m.registry.RemoveIfPresent(connectionID)
		m.metrics.Launches.WithLabelValues(s.Image, ResultSpawnFailed).Inc()
		return &SpawnError{Container: s.ContainerName, Err: err}
	}
	s.AttachInput(proc.Input())

	// Registration happens before any output is read.
	if err := m.registry.Put(s); err != nil {
		s.SetState(session.StateFailed)
		m.killQuietly(s.ContainerName)
		m.reap(s, proc)
		return err
	}
	s.SetState(session.StateRunning)
	m.metrics.ActiveSessions.Inc()
	m.metrics.Launches.WithLabelValues(s.Image, ResultStarted).Inc()
	m.metrics.LaunchDuration.Observe(time.Since(startedAt).Seconds())

	cancelReady := m.readiness.ArmAfter(m.session.ReadinessDelay, connectionID, func() {
		if err := client.SendReady(); err != nil {
			logging.Debug("Lifecycle", "Session %s ready not delivered: %v", short, err)
			return
		}
		logging.Info("Lifecycle", "Session %s ready", short)
	})

	m.supervisors.Add(1)
	go func() {
		defer m.supervisors.Done()
		m.supervise(s, proc, client, cancelReady)
	}()

	// The client may have left while the container was starting.
	if ctx.Err() != nil {
		m.teardown(s, ReasonDisconnect)
	}
	return nil
}

// Input forwards client bytes to the session's process verbatim.
func (m *Manager) Input(connectionID string, data []byte) error {
	s, ok := m.registry.Get(connectionID)
	if !ok {
		return ErrSessionNotFound
	}
	return s.WriteInput(data)
}

// Resize is accepted and ignored. Terminal size is not forwarded to the
// container process.
func (m *Manager) Resize(connectionID string, cols, rows int) {
	logging.Debug("Lifecycle", "Session %s resize to %dx%d ignored", logging.TruncateSessionID(connectionID), cols, rows)
}

// Disconnect tears down the session for a closed connection. It aborts an
// in-flight Start and is safe to call for connections that never got a
// session.
func (m *Manager) Disconnect(connectionID string) {
	m.mu.Lock()
	if cancel, ok := m.pending[connectionID]; ok {
		cancel()
	}
	m.mu.Unlock()

	if s, ok := m.registry.Get(connectionID); ok {
		m.teardown(s, ReasonDisconnect)
	}
}

// Shutdown tears down every registered session and waits for their
// supervisors to finish or ctx to end.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	for _, cancel := range m.pending {
		cancel()
	}
	m.mu.Unlock()

	sessions := m.registry.Snapshot()
	if len(sessions) > 0 {
		logging.Info("Lifecycle", "Tearing down %d sessions", len(sessions))
	}
	for _, s := range sessions {
		m.teardown(s, ReasonShutdown)
	}

	done := make(chan struct{})
	go func() {
		m.supervisors.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for session supervisors: %w", ctx.Err())
	}
}

// EngineAvailable reports the last startup probe result.
func (m *Manager) EngineAvailable() bool {
	return m.engineUp.Load()
}

func (m *Manager) track(connectionID string, cancel context.CancelFunc) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.pending[connectionID]; exists {
		return fmt.Errorf("connection %s is already starting", connectionID)
	}
	m.pending[connectionID] = cancel
	return nil
}

func (m *Manager) untrack(connectionID string) {
	m.mu.Lock()
	delete(m.pending, connectionID)
	m.mu.Unlock()
}

func (m *Manager) checkEngine(ctx context.Context) error {
	if !m.engine.CheckPerSession {
		if !m.engineUp.Load() {
			return errors.New("container engine was unavailable at startup")
		}
		return nil
	}
	return m.probe.Available(ctx)
}

// engineDown applies the startup policy to an engine failure seen while
// starting s. Under the lenient policy the session degrades: the client gets
// the readiness event and no container is launched.
func (m *Manager) engineDown(s *session.Session, client Client, image string, err error) error {
	short := logging.TruncateSessionID(s.ConnectionID)
	m.metrics.ProbeFailures.Inc()

	if m.engine.StartupPolicy == config.StartupPolicyLenient {
		s.SetState(session.StateDegraded)
		m.metrics.Launches.WithLabelValues(image, ResultDegraded).Inc()
		logging.Info("Lifecycle", "Session %s degraded for scenario %s: %v", short, s.ScenarioID, err)
		if sendErr := client.SendReady(); sendErr != nil {
			logging.Debug("Lifecycle", "Session %s ready not delivered: %v", short, sendErr)
		}
		return nil
	}
	s.SetState(session.StateFailed)
	m.metrics.Launches.WithLabelValues(image, ResultEngineUnavailable).Inc()
	return &EngineUnavailableError{Err: err}
}

func (m *Manager) runSpec(s *session.Session) containerizer.RunSpec {
	spec := containerizer.RunSpec{
		Name:    s.ContainerName,
		Image:   s.Image,
		Network: m.engine.Network,
		TTY:     m.engine.AllocateTTY,
		Env:     map[string]string{"TERM": m.session.Term},
	}
	if s.Privileged {
		spec.Volumes = append(spec.Volumes, m.engine.SocketPath+":"+m.engine.SocketPath)
	}
	return spec
}

// supervise relays output until the process ends, reports the exit code and
// tears the session down.
func (m *Manager) supervise(s *session.Session, proc containerizer.Process, client Client, cancelReady func()) {
	var wg sync.WaitGroup
	for _, stream := range proc.Outputs() {
		wg.Add(1)
		go func(stream containerizer.Stream) {
			defer wg.Done()
			pump(stream, client, s.ConnectionID)
		}(stream)
	}
	wg.Wait()

	code := m.reap(s, proc)
	cancelReady()

	// Only report the exit while the client is still attached.
	if m.registry.Contains(s.ConnectionID) {
		logging.Info("Lifecycle", "Container %s exited with code %d", s.ContainerName, code)
		if err := client.SendOutput([]byte(ExitMessage(code))); err != nil {
			logging.Debug("Lifecycle", "Session %s exit message not delivered: %v", logging.TruncateSessionID(s.ConnectionID), err)
		}
	}
	m.teardown(s, ReasonExit)
}

func (m *Manager) reap(s *session.Session, proc containerizer.Process) int {
	code, err := proc.Wait()
	if err != nil {
		logging.Error("Lifecycle", err, "Waiting for container %s", s.ContainerName)
	}
	if err := proc.Close(); err != nil {
		logging.Debug("Lifecycle", "Closing container %s process: %v", s.ContainerName, err)
	}
	return code
}

// teardown removes the session and, only if this call removed it, issues the
// single terminate command for its container.
func (m *Manager) teardown(s *session.Session, reason string) {
	if !m.registry.RemoveIfPresent(s.ConnectionID) {
		return
	}
	s.SetState(session.StateTerminating)
	m.metrics.ActiveSessions.Dec()
	m.metrics.Teardowns.WithLabelValues(reason).Inc()

	logging.Info("Lifecycle", "Tearing down session %s (%s)", logging.TruncateSessionID(s.ConnectionID), reason)
	m.killQuietly(s.ContainerName)
	s.SetState(session.StateTerminated)
}

// killQuietly issues one terminate command. The container may already be gone.
func (m *Manager) killQuietly(name string) {
	ctx, cancel := context.WithTimeout(context.Background(), m.engine.CommandTimeout)
	defer cancel()
	if err := m.launcher.Kill(ctx, name); err != nil {
		logging.Debug("Lifecycle", "Kill %s: %v", name, err)
	}
}
