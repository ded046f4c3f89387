// Package orchestrator runs the container lifecycle behind every terminal
// session.
//
// # Lifecycle
//
// Each connection with a scenario identifier moves through
//
//	INIT -> CHECKING_ENGINE -> CHECKING_IMAGE -> LAUNCHING -> RUNNING -> TERMINATING -> TERMINATED
//
// with two terminal side branches: DEGRADED when the engine is unreachable
// under the lenient startup policy, and FAILED when a session is rejected.
//
//   - CHECKING_ENGINE probes the engine (or reuses the startup verdict when
//     per-session checks are disabled). Strict policy rejects the session with
//     EngineUnavailableError. Lenient policy sends scenario-ready without
//     launching anything and never registers the session.
//   - CHECKING_IMAGE resolves the scenario image and requires it to be present
//     locally. Missing images are rejected with ImageNotFoundError.
//   - LAUNCHING starts the container, then registers the session, then starts
//     the output pumps. Privileged scenarios get the engine socket mounted.
//   - RUNNING relays output chunks verbatim and arms the readiness signal.
//   - Teardown is triggered by whichever of disconnect or process exit comes
//     first. Only the caller whose RemoveIfPresent succeeded issues the kill,
//     so a session is killed exactly once.
//
// # Errors
//
// Per-session failures are returned from Start and rendered for the client
// with Diagnostic. Only Preflight under the strict policy reports an error
// that should stop the server.
//
// # Metrics
//
// Metrics exposes Prometheus collectors for active sessions, launch results,
// teardown reasons, probe failures and launch latency.
package orchestrator
