package config

import (
	"net"
	"strconv"
	"time"
)

const (
	// DefaultPort matches the port the browser terminal connects to.
	DefaultPort = 3001

	// DefaultAllowedOrigin is the development frontend.
	DefaultAllowedOrigin = "http://localhost:3000"

	// DefaultNetwork is the shared isolated network every scenario container joins.
	DefaultNetwork = "devops-dojo-net"

	// DefaultContainerNameTemplate derives the container identity from the connection identity.
	DefaultContainerNameTemplate = "devops-dojo-{{ .ConnectionID }}"

	// DefaultImage is used for any scenario without an explicit mapping.
	DefaultImage = "devopslearn/scenario-base"
)

// DefaultScenarioImages is the built-in scenario catalog.
func DefaultScenarioImages() map[string]string {
	return map[string]string{
		"k8s-crashloop": "devopslearn/scenario-keycloak-crashloop",
		"tf-drift":      "devopslearn/scenario-terraform-drift",
		"rds-failure":   "devopslearn/scenario-rds-failure",
	}
}

// DefaultPrivilegedScenarios need the engine control socket to inspect containers from inside.
func DefaultPrivilegedScenarios() []string {
	return []string{"k8s-crashloop", "k8s-dns", "k8s-istio"}
}

// GetDefaultConfig returns the default configuration for dojo.
func GetDefaultConfig() DojoConfig {
	return DojoConfig{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            DefaultPort,
			AllowedOrigin:   DefaultAllowedOrigin,
			ShutdownTimeout: 10 * time.Second,
			WriteWait:       10 * time.Second,
			PongWait:        60 * time.Second,
			PingInterval:    50 * time.Second,
			MetricsEnabled:  true,
			SystemdNotify:   true,
		},
		Engine: EngineConfig{
			Binary:          "docker",
			Network:         DefaultNetwork,
			SocketPath:      "/var/run/docker.sock",
			StartupPolicy:   StartupPolicyStrict,
			CheckPerSession: true,
			AllocateTTY:     true,
			CommandTimeout:  10 * time.Second,
		},
		Session: SessionConfig{
			ReadinessDelay:  2 * time.Second,
			Readiness:       ReadinessTimer,
			InspectInterval: 500 * time.Millisecond,
			ContainerName:   DefaultContainerNameTemplate,
			Term:            "xterm-256color",
		},
		Scenarios: ScenarioConfig{
			DefaultImage: DefaultImage,
			Images:       DefaultScenarioImages(),
			Privileged:   DefaultPrivilegedScenarios(),
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

func joinHostPort(host string, port int) string {
	return net.JoinHostPort(host, strconv.Itoa(port))
}
