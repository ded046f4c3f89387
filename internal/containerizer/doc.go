// Package containerizer drives the local container engine through its CLI.
//
// The Engine interface covers exactly what a training session needs: a
// liveness check (version), the shared network (network inspect and create),
// a local image check that never pulls, launching an interactive
// auto-removing container, and killing it by name.
//
// # Launch
//
// Run builds its arguments with BuildRunArgs:
//
//	docker run -i[t] --rm --name <name> --network <net> [-v <sock>:<sock>] <image>
//
// With TTY set, the CLI process is attached to a pseudo-terminal (creack/pty)
// so `-t` works and standard output and error arrive merged on one stream.
// Without it, plain pipes are used and the two streams stay separate.
//
// # Probe
//
// Probe wraps an Engine for the lifecycle manager. Concurrent availability
// checks share one in-flight `version` call through singleflight, and every
// short command is bounded by the configured command timeout.
//
// # Runtimes
//
// NewEngine accepts docker or podman; both expose the same CLI surface for
// the commands used here.
//
// # Testing
//
// Commands are created through the package-level execCommandContext
// variable, which tests replace with a re-exec of the test binary
// (TestHelperProcess) to simulate engine responses.
package containerizer
