package orchestrator

import (
	"errors"
	"fmt"
)

// ErrScenarioIDMissing is returned when a connection carries no scenario identifier.
// No session is ever created for such a connection.
var ErrScenarioIDMissing = errors.New("no scenario ID provided")

// ErrSessionNotFound is returned when an operation targets a connection
// without a registered session.
var ErrSessionNotFound = errors.New("session not found")

// EngineUnavailableError reports that the container engine did not answer.
// Under the strict policy it is fatal at startup and rejects sessions.
type EngineUnavailableError struct {
	// Err is the underlying probe failure.
	Err error
}

// Error implements the error interface for EngineUnavailableError.
func (e *EngineUnavailableError) Error() string {
	return fmt.Sprintf("container engine unavailable: %v", e.Err)
}

// Unwrap returns the underlying probe failure.
func (e *EngineUnavailableError) Unwrap() error {
	return e.Err
}

// IsEngineUnavailable checks if an error is an EngineUnavailableError using error unwrapping.
//
// Args:
//   - err: The error to check
//
// Returns:
//   - bool: true if the error is or wraps an EngineUnavailableError
func IsEngineUnavailable(err error) bool {
	var target *EngineUnavailableError
	return errors.As(err, &target)
}

// ImageNotFoundError reports that the resolved image is not present locally.
// Images are never pulled on demand.
type ImageNotFoundError struct {
	// Image is the resolved image reference.
	Image string
}

// Error implements the error interface for ImageNotFoundError.
func (e *ImageNotFoundError) Error() string {
	return fmt.Sprintf("image %s not found", e.Image)
}

// IsImageNotFound checks if an error is an ImageNotFoundError using error unwrapping.
func IsImageNotFound(err error) bool {
	var target *ImageNotFoundError
	return errors.As(err, &target)
}

// SpawnError reports that the container process could not be started.
type SpawnError struct {
	// Container is the container name that was being launched.
	Container string

	// Err is the underlying start failure.
	Err error
}

// Error implements the error interface for SpawnError.
func (e *SpawnError) Error() string {
	return fmt.Sprintf("failed to spawn container %s: %v", e.Container, e.Err)
}

// Unwrap returns the underlying start failure.
func (e *SpawnError) Unwrap() error {
	return e.Err
}

// IsSpawnFailure checks if an error is a SpawnError using error unwrapping.
func IsSpawnFailure(err error) bool {
	var target *SpawnError
	return errors.As(err, &target)
}

// NetworkEnsureError reports that the shared network could not be inspected
// or created. It is only ever logged: scenarios may still work if the network
// already exists.
type NetworkEnsureError struct {
	Network string
	Err     error
}

// Error implements the error interface for NetworkEnsureError.
func (e *NetworkEnsureError) Error() string {
	return fmt.Sprintf("failed to ensure network %s: %v", e.Network, e.Err)
}

// Unwrap returns the underlying engine failure.
func (e *NetworkEnsureError) Unwrap() error {
	return e.Err
}

// Diagnostic renders the terminal lines a client sees for a rejected session.
// Each element is sent as one output message.
func Diagnostic(err error) []string {
	var (
		imageErr  *ImageNotFoundError
		spawnErr  *SpawnError
		engineErr *EngineUnavailableError
	)

	switch {
	case errors.Is(err, ErrScenarioIDMissing):
		return []string{"\r\nError: No scenario ID provided\r\n"}
	case errors.As(err, &imageErr):
		return []string{
			fmt.Sprintf("\r\nError: Container image '%s' not found.\r\n", imageErr.Image),
			"Please run 'make scenario-build' to build the scenario images.\r\n",
			"\r\nDisconnecting...\r\n",
		}
	case errors.As(err, &spawnErr):
		return []string{fmt.Sprintf("\r\nError: Failed to start container: %v\r\n", spawnErr.Err)}
	case errors.As(err, &engineErr):
		return []string{
			"\r\nError: Container engine is not available. The scenario cannot be started.\r\n",
			"\r\nDisconnecting...\r\n",
		}
	default:
		return []string{fmt.Sprintf("\r\nError: Failed to start scenario: %v\r\n", err)}
	}
}

// ExitMessage is the informational line sent when the container process exits.
func ExitMessage(code int) string {
	return fmt.Sprintf("\r\nContainer exited with code %d\r\n", code)
}
