package containerizer

import (
	"context"
	"io"
)

// Engine defines the container engine operations the session orchestrator needs.
// Short commands take a context bounded by the engine command timeout. Run is
// not bound to a context because the process lives as long as the container.
type Engine interface {
	// Version checks that the engine daemon answers.
	Version(ctx context.Context) (string, error)

	// NetworkExists reports whether the named network is present.
	NetworkExists(ctx context.Context, name string) (bool, error)

	// CreateNetwork creates the named network.
	CreateNetwork(ctx context.Context, name string) error

	// ImageExists reports whether the image is present locally. It never pulls.
	ImageExists(ctx context.Context, image string) (bool, error)

	// Run starts an interactive, auto-removing container and returns its attached process.
	Run(spec RunSpec) (Process, error)

	// Kill sends the terminate command for a container by name.
	Kill(ctx context.Context, name string) error

	// IsContainerRunning checks if a container is running
	IsContainerRunning(ctx context.Context, name string) (bool, error)
}

// RunSpec holds configuration for launching a session container
type RunSpec struct {
	Name    string            // Container name, derived from the connection identity
	Image   string            // Container image
	Network string            // Network to attach to
	Volumes []string          // Bind mounts (host:container)
	TTY     bool              // Allocate a pseudo-terminal for the attached process
	Env     map[string]string // Extra environment for the engine CLI process
}

// Process is the attached engine CLI process for one container.
type Process interface {
	// Input receives bytes destined for the container's standard input.
	Input() io.Writer

	// Outputs returns the readable output streams. With a TTY standard output
	// and standard error arrive merged on a single stream.
	Outputs() []Stream

	// Wait blocks until the process exits and returns its exit code. Callers
	// must drain every output stream before calling Wait.
	Wait() (int, error)

	// Close releases the process's file descriptors.
	Close() error
}

// Stream is one named output of a Process.
type Stream struct {
	Name   string // "stdout", "stderr" or "tty"
	Reader io.Reader
}
