package containerizer

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"sort"
	"strings"

	"dojo/pkg/logging"
)

const engineSubsystem = "Engine"

// DockerEngine implements Engine using the docker CLI, or any CLI with the
// same command surface such as podman.
type DockerEngine struct {
	binary string
}

// execCommandContext is a variable to allow mocking in tests
var execCommandContext = exec.CommandContext

// NewDockerEngine creates an engine that shells out to binary. The binary is
// not looked up here: a missing binary surfaces as a probe or spawn failure
// so the server can still start in lenient mode.
func NewDockerEngine(binary string) *DockerEngine {
	return &DockerEngine{binary: binary}
}

// Binary returns the CLI used for every command.
func (d *DockerEngine) Binary() string {
	return d.binary
}

// Version checks that the engine daemon answers.
func (d *DockerEngine) Version(ctx context.Context) (string, error) {
	cmd := execCommandContext(ctx, d.binary, "version", "--format", "{{.Server.Version}}")
	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("%s version failed: %w: %s", d.binary, err, strings.TrimSpace(string(output)))
	}
	return strings.TrimSpace(string(output)), nil
}

// NetworkExists reports whether the named network is present.
func (d *DockerEngine) NetworkExists(ctx context.Context, name string) (bool, error) {
	cmd := execCommandContext(ctx, d.binary, "network", "inspect", name)
	return d.exists(cmd, "network inspect "+name)
}

// CreateNetwork creates the named network.
func (d *DockerEngine) CreateNetwork(ctx context.Context, name string) error {
	logging.Info(engineSubsystem, "Creating network %s", name)

	cmd := execCommandContext(ctx, d.binary, "network", "create", name)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("failed to create network %s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}

// ImageExists reports whether the image is present locally.
func (d *DockerEngine) ImageExists(ctx context.Context, image string) (bool, error) {
	logging.Debug(engineSubsystem, "Checking if image %s exists locally", image)

	cmd := execCommandContext(ctx, d.binary, "image", "inspect", image)
	return d.exists(cmd, "image inspect "+image)
}

// exists maps a non-zero exit to "absent" and any failure to run the command
// at all (missing binary, cancelled context) to an error.
func (d *DockerEngine) exists(cmd *exec.Cmd, what string) (bool, error) {
	err := cmd.Run()
	if err == nil {
		return true, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return false, nil
	}
	return false, fmt.Errorf("%s %s: %w", d.binary, what, err)
}

// Run starts an interactive, auto-removing container.
func (d *DockerEngine) Run(spec RunSpec) (Process, error) {
	args := BuildRunArgs(spec)

	logging.Debug(engineSubsystem, "Starting container with command: %s %s", d.binary, strings.Join(args, " "))

	// The attached process lives as long as the container, so it is not
	// bound to a request context.
	cmd := execCommandContext(context.Background(), d.binary, args...)
	cmd.Env = append(cmd.Environ(), envList(spec.Env)...)

	var (
		proc Process
		err  error
	)
	if spec.TTY {
		proc, err = startPTY(cmd)
	} else {
		proc, err = startPipes(cmd)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to start container %s: %w", spec.Name, err)
	}

	logging.Info(engineSubsystem, "Started container %s from image %s", spec.Name, spec.Image)
	return proc, nil
}

// Kill sends the terminate command for a container by name.
func (d *DockerEngine) Kill(ctx context.Context, name string) error {
	logging.Info(engineSubsystem, "Killing container %s", name)

	cmd := execCommandContext(ctx, d.binary, "kill", name)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("failed to kill container %s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}

// IsContainerRunning checks if a container is running
func (d *DockerEngine) IsContainerRunning(ctx context.Context, name string) (bool, error) {
	cmd := execCommandContext(ctx, d.binary, "inspect", "-f", "{{.State.Running}}", name)
	output, err := cmd.Output()
	if err != nil {
		return false, fmt.Errorf("failed to inspect container %s: %w", name, err)
	}

	return strings.TrimSpace(string(output)) == "true", nil
}

// BuildRunArgs builds the argument list for launching a session container:
// interactive, auto-removed, named, attached to the shared network, with any
// bind mounts before the image.
func BuildRunArgs(spec RunSpec) []string {
	flags := "-i"
	if spec.TTY {
		flags = "-it"
	}
	args := []string{"run", flags, "--rm", "--name", spec.Name}

	if spec.Network != "" {
		args = append(args, "--network", spec.Network)
	}

	for _, vol := range spec.Volumes {
		args = append(args, "-v", vol)
	}

	return append(args, spec.Image)
}

func envList(env map[string]string) []string {
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	list := make([]string, 0, len(keys))
	for _, k := range keys {
		list = append(list, k+"="+env[k])
	}
	return list
}
