package containerizer

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// init sets up the test environment
func init() {
	// Replace the exec command context with our mock in tests
	execCommandContext = mockExecCommandContext
}

// mockExecCommandContext is our mock implementation
func mockExecCommandContext(ctx context.Context, name string, args ...string) *exec.Cmd {
	return mockExecCommand(name, args...)
}

// mockExecCommand creates a mock command for testing
func mockExecCommand(command string, args ...string) *exec.Cmd {
	cs := []string{"-test.run=TestHelperProcess", "--", command}
	cs = append(cs, args...)
	cmd := exec.Command(os.Args[0], cs...)
	cmd.Env = []string{"GO_WANT_HELPER_PROCESS=1"}
	return cmd
}

// TestHelperProcess is a helper process for mocking exec.Command
func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}

	args := os.Args
	for i, arg := range args {
		if arg == "--" {
			args = args[i+1:]
			break
		}
	}

	if len(args) == 0 {
		fmt.Fprintf(os.Stderr, "No command\n")
		os.Exit(2)
	}

	cmd, args := args[0], args[1:]

	switch cmd {
	case "docker":
		if len(args) == 0 {
			fmt.Fprintf(os.Stderr, "No docker subcommand\n")
			os.Exit(1)
		}

		switch args[0] {
		case "version":
			fmt.Println("27.1.1")
			os.Exit(0)

		case "network":
			if len(args) > 2 && args[1] == "inspect" {
				if args[2] == "existing-net" {
					fmt.Println("[]")
					os.Exit(0)
				}
				fmt.Fprintf(os.Stderr, "Error: No such network: %s\n", args[2])
				os.Exit(1)
			}
			if len(args) > 2 && args[1] == "create" {
				fmt.Println("f00dcafe")
				os.Exit(0)
			}

		case "image":
			if len(args) > 2 && args[1] == "inspect" {
				if args[2] == "devopslearn/scenario-terraform-drift" {
					os.Exit(0)
				}
				fmt.Fprintf(os.Stderr, "Error: No such image: %s\n", args[2])
				os.Exit(1)
			}

		case "run":
			if len(args) > 1 && args[1] == "-it" {
				// On a pty both streams share the terminal and stdin never
				// reaches EOF on its own, so read a single line.
				fmt.Println("hello-from-container")
				fmt.Fprintln(os.Stderr, "err-line")
				line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
				fmt.Printf("got:%s", line)
				os.Exit(3)
			}
			// Echo stdin back so the test can check both directions.
			fmt.Printf("TERM=%s\n", os.Getenv("TERM"))
			fmt.Fprintln(os.Stderr, "starting scenario")
			data, _ := io.ReadAll(os.Stdin)
			fmt.Printf("got:%s", data)
			os.Exit(3)

		case "kill":
			if len(args) > 1 && args[1] == "devops-dojo-gone" {
				fmt.Fprintf(os.Stderr, "Error response from daemon: No such container: %s\n", args[1])
				os.Exit(1)
			}
			fmt.Println(args[1])
			os.Exit(0)

		case "inspect":
			if len(args) > 3 && args[1] == "-f" && args[2] == "{{.State.Running}}" {
				fmt.Println("true")
				os.Exit(0)
			}
		}

	case "docker-down":
		fmt.Fprintln(os.Stderr, "Cannot connect to the Docker daemon at unix:///var/run/docker.sock")
		os.Exit(1)
	}

	fmt.Fprintf(os.Stderr, "Unknown command: %s %v\n", cmd, args)
	os.Exit(1)
}

func TestBuildRunArgs(t *testing.T) {
	tests := []struct {
		name string
		spec RunSpec
		want []string
	}{
		{
			name: "plain session",
			spec: RunSpec{Name: "devops-dojo-abc", Image: "devopslearn/scenario-base", Network: "devops-dojo-net"},
			want: []string{"run", "-i", "--rm", "--name", "devops-dojo-abc", "--network", "devops-dojo-net", "devopslearn/scenario-base"},
		},
		{
			name: "tty with socket mount",
			spec: RunSpec{
				Name:    "devops-dojo-abc",
				Image:   "devopslearn/scenario-keycloak-crashloop",
				Network: "devops-dojo-net",
				Volumes: []string{"/var/run/docker.sock:/var/run/docker.sock"},
				TTY:     true,
			},
			want: []string{"run", "-it", "--rm", "--name", "devops-dojo-abc", "--network", "devops-dojo-net",
				"-v", "/var/run/docker.sock:/var/run/docker.sock", "devopslearn/scenario-keycloak-crashloop"},
		},
		{
			name: "no network",
			spec: RunSpec{Name: "n", Image: "i"},
			want: []string{"run", "-i", "--rm", "--name", "n", "i"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BuildRunArgs(tt.spec))
		})
	}
}

func TestDockerEngine_Version(t *testing.T) {
	ctx := context.Background()

	version, err := NewDockerEngine("docker").Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, "27.1.1", version)

	_, err = NewDockerEngine("docker-down").Version(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Cannot connect to the Docker daemon")
}

func TestDockerEngine_NetworkExists(t *testing.T) {
	d := NewDockerEngine("docker")
	ctx := context.Background()

	exists, err := d.NetworkExists(ctx, "existing-net")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = d.NetworkExists(ctx, "devops-dojo-net")
	require.NoError(t, err)
	assert.False(t, exists)

	assert.NoError(t, d.CreateNetwork(ctx, "devops-dojo-net"))
}

func TestDockerEngine_ImageExists(t *testing.T) {
	d := NewDockerEngine("docker")
	ctx := context.Background()

	exists, err := d.ImageExists(ctx, "devopslearn/scenario-terraform-drift")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = d.ImageExists(ctx, "devopslearn/scenario-missing")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestDockerEngine_ImageExists_BinaryMissing(t *testing.T) {
	oldExecCommandContext := execCommandContext
	defer func() { execCommandContext = oldExecCommandContext }()

	execCommandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		return exec.CommandContext(ctx, "/nonexistent/dojo-engine-binary", args...)
	}

	_, err := NewDockerEngine("docker").ImageExists(context.Background(), "anything")
	require.Error(t, err)
}

func TestDockerEngine_Kill(t *testing.T) {
	d := NewDockerEngine("docker")
	ctx := context.Background()

	assert.NoError(t, d.Kill(ctx, "devops-dojo-abc"))

	err := d.Kill(ctx, "devops-dojo-gone")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "No such container")
}

func TestDockerEngine_IsContainerRunning(t *testing.T) {
	running, err := NewDockerEngine("docker").IsContainerRunning(context.Background(), "devops-dojo-abc")
	require.NoError(t, err)
	assert.True(t, running)
}

func TestDockerEngine_RunWithPipes(t *testing.T) {
	d := NewDockerEngine("docker")

	proc, err := d.Run(RunSpec{
		Name:    "devops-dojo-abc",
		Image:   "devopslearn/scenario-terraform-drift",
		Network: "devops-dojo-net",
		Env:     map[string]string{"TERM": "xterm-256color"},
	})
	require.NoError(t, err)
	defer proc.Close()

	outputs := proc.Outputs()
	require.Len(t, outputs, 2)
	assert.Equal(t, "stdout", outputs[0].Name)
	assert.Equal(t, "stderr", outputs[1].Name)

	_, err = proc.Input().Write([]byte("ls -la\n"))
	require.NoError(t, err)
	require.NoError(t, proc.Close())

	type result struct {
		data []byte
		err  error
	}
	results := make([]chan result, len(outputs))
	for i, s := range outputs {
		results[i] = make(chan result, 1)
		go func(r io.Reader, ch chan result) {
			data, err := io.ReadAll(r)
			ch <- result{data, err}
		}(s.Reader, results[i])
	}
	stdout := <-results[0]
	stderr := <-results[1]
	require.NoError(t, stdout.err)
	require.NoError(t, stderr.err)

	code, err := proc.Wait()
	require.NoError(t, err)
	assert.Equal(t, 3, code)

	assert.True(t, strings.HasPrefix(string(stdout.data), "TERM=xterm-256color\n"), "stdout: %q", stdout.data)
	assert.Contains(t, string(stdout.data), "got:ls -la\n")
	assert.Equal(t, "starting scenario\n", string(stderr.data))
}

func TestDockerEngine_RunWithTTY(t *testing.T) {
	d := NewDockerEngine("docker")

	proc, err := d.Run(RunSpec{
		Name:    "devops-dojo-abc",
		Image:   "devopslearn/scenario-terraform-drift",
		Network: "devops-dojo-net",
		TTY:     true,
	})
	require.NoError(t, err)
	defer proc.Close()

	outputs := proc.Outputs()
	require.Len(t, outputs, 1)
	assert.Equal(t, "tty", outputs[0].Name)

	type result struct {
		data []byte
		err  error
	}
	done := make(chan result, 1)
	go func() {
		data, err := io.ReadAll(outputs[0].Reader)
		done <- result{data, err}
	}()

	_, err = proc.Input().Write([]byte("ls -la\n"))
	require.NoError(t, err)

	var out result
	select {
	case out = <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("terminal output did not reach EOF after the process exited")
	}
	// The pty reports EIO once the child side closes; callers see EOF.
	require.NoError(t, out.err)

	code, err := proc.Wait()
	require.NoError(t, err)
	assert.Equal(t, 3, code)

	output := string(out.data)
	assert.Contains(t, output, "hello-from-container\r\n")
	assert.Contains(t, output, "err-line\r\n")
	assert.Contains(t, output, "got:ls -la")
	assert.NoError(t, proc.Close())
}

func TestDockerEngine_RunStartFailure(t *testing.T) {
	oldExecCommandContext := execCommandContext
	defer func() { execCommandContext = oldExecCommandContext }()

	execCommandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		return exec.CommandContext(ctx, "/nonexistent/dojo-engine-binary", args...)
	}

	_, err := NewDockerEngine("docker").Run(RunSpec{Name: "devops-dojo-abc", Image: "img"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "devops-dojo-abc")
}

func TestNewEngine(t *testing.T) {
	tests := []struct {
		binary  string
		wantErr bool
	}{
		{"", false},
		{"docker", false},
		{"/usr/local/bin/podman", false},
		{"nerdctl", true},
	}

	for _, tt := range tests {
		t.Run(tt.binary, func(t *testing.T) {
			e, err := NewEngine(tt.binary)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, e.Binary())
		})
	}
}
