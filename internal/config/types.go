package config

import "time"

// DojoConfig is the top-level configuration structure for dojo.
type DojoConfig struct {
	Server    ServerConfig   `yaml:"server"`
	Engine    EngineConfig   `yaml:"engine"`
	Session   SessionConfig  `yaml:"session"`
	Scenarios ScenarioConfig `yaml:"scenarios"`
	Log       LogConfig      `yaml:"log"`
}

// StartupPolicy selects how the server reacts when the container engine is unreachable.
type StartupPolicy string

const (
	// StartupPolicyStrict makes engine unavailability fatal at startup and per session.
	StartupPolicyStrict StartupPolicy = "strict"
	// StartupPolicyLenient degrades sessions to a no-container mode instead of failing.
	StartupPolicyLenient StartupPolicy = "lenient"
)

// ReadinessMode selects the ReadinessSignal implementation.
type ReadinessMode string

const (
	// ReadinessTimer fires a fixed delay after launch.
	ReadinessTimer ReadinessMode = "timer"
	// ReadinessInspect polls the engine until the container reports running.
	ReadinessInspect ReadinessMode = "inspect"
)

// ServerConfig defines the HTTP and duplex connection surface.
type ServerConfig struct {
	Host            string        `yaml:"host,omitempty"`            // Host to bind to (default: 0.0.0.0)
	Port            int           `yaml:"port,omitempty"`            // Listen port (default: 3001)
	AllowedOrigin   string        `yaml:"allowedOrigin,omitempty"`   // Frontend origin allowed to connect, "*" for any
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout,omitempty"` // Grace period for in-flight HTTP requests
	WriteWait       time.Duration `yaml:"writeWait,omitempty"`       // Deadline for a single outbound frame
	PongWait        time.Duration `yaml:"pongWait,omitempty"`        // Read deadline extended by every pong
	PingInterval    time.Duration `yaml:"pingInterval,omitempty"`    // Must be shorter than PongWait
	MetricsEnabled  bool          `yaml:"metricsEnabled"`            // Expose /metrics
	SystemdNotify   bool          `yaml:"systemdNotify"`             // Send sd_notify READY/STOPPING
}

// EngineConfig defines how the container engine CLI is invoked.
type EngineConfig struct {
	Binary          string        `yaml:"binary,omitempty"`         // docker or podman
	Network         string        `yaml:"network,omitempty"`        // Shared isolated network name
	SocketPath      string        `yaml:"socketPath,omitempty"`     // Control socket mounted into privileged scenarios
	StartupPolicy   StartupPolicy `yaml:"startupPolicy,omitempty"`  // strict or lenient
	CheckPerSession bool          `yaml:"checkPerSession"`          // Probe the engine before every launch
	AllocateTTY     bool          `yaml:"allocateTTY"`              // Pass -t to run
	CommandTimeout  time.Duration `yaml:"commandTimeout,omitempty"` // Timeout for short engine commands
}

// SessionConfig defines per-session behavior.
type SessionConfig struct {
	ReadinessDelay  time.Duration `yaml:"readinessDelay,omitempty"`
	Readiness       ReadinessMode `yaml:"readiness,omitempty"`
	InspectInterval time.Duration `yaml:"inspectInterval,omitempty"`
	// ContainerName is a text/template rendered with .ConnectionID and .ScenarioID.
	ContainerName string `yaml:"containerName,omitempty"`
	Term          string `yaml:"term,omitempty"`
}

// ScenarioConfig maps scenario identifiers to container images.
type ScenarioConfig struct {
	DefaultImage string            `yaml:"defaultImage,omitempty"`
	Images       map[string]string `yaml:"images,omitempty"`
	Privileged   []string          `yaml:"privileged,omitempty"`
}

// LogConfig defines logger output.
type LogConfig struct {
	Level  string `yaml:"level,omitempty"`  // debug, info, warn, error
	Format string `yaml:"format,omitempty"` // text or json
}

// Address returns the host:port the server listens on.
func (s ServerConfig) Address() string {
	return joinHostPort(s.Host, s.Port)
}
