// Package session holds the per-connection session record, the registry
// that decides which sessions exist, and the readiness signal.
//
// The Registry is keyed by connection identity. RemoveIfPresent is the single
// point where a session ends: of any number of racing teardown paths exactly
// one observes true, and only that caller may terminate the container.
//
// Readiness implementations share one contract: fire at most once, and only
// while the session is still registered. TimerReadiness waits a fixed delay.
// InspectReadiness polls the engine for a running container instead.
package session
