package containerizer

import (
	"fmt"
	"path/filepath"
	"strings"
)

// RuntimeType defines the type of container runtime
type RuntimeType string

const (
	RuntimeTypeDocker RuntimeType = "docker"
	RuntimeTypePodman RuntimeType = "podman"
)

// NewEngine creates an engine for the configured CLI binary. The binary may
// be a bare name or a path; its base name selects the runtime type.
func NewEngine(binary string) (*DockerEngine, error) {
	if binary == "" {
		binary = string(RuntimeTypeDocker)
	}

	rt := RuntimeType(strings.ToLower(filepath.Base(binary)))
	switch rt {
	case RuntimeTypeDocker, RuntimeTypePodman:
		// podman mirrors the docker CLI for every command used here.
		return NewDockerEngine(binary), nil
	default:
		return nil, fmt.Errorf("unsupported container runtime: %s", binary)
	}
}
