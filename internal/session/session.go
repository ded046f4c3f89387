package session

import (
	"errors"
	"io"
	"sync"
	"time"
)

// State is a session's position in the container lifecycle.
type State string

const (
	StateInit           State = "INIT"
	StateCheckingEngine State = "CHECKING_ENGINE"
	StateCheckingImage  State = "CHECKING_IMAGE"
	StateLaunching      State = "LAUNCHING"
	StateRunning        State = "RUNNING"
	StateTerminating    State = "TERMINATING"
	StateTerminated     State = "TERMINATED"
	// StateDegraded is terminal: the engine was unreachable under the lenient policy.
	StateDegraded State = "DEGRADED"
	// StateFailed is terminal: the session was rejected before or during launch.
	StateFailed State = "FAILED"
)

// IsTerminal reports whether no further transition can follow.
func (s State) IsTerminal() bool {
	switch s {
	case StateTerminated, StateDegraded, StateFailed:
		return true
	default:
		return false
	}
}

// ErrNoProcess is returned when input arrives for a session without an attached process.
var ErrNoProcess = errors.New("session has no attached process")

// Session is the live binding between one client connection and one
// container process. Identity fields are fixed at creation. State and the
// process input are only changed by the lifecycle manager.
type Session struct {
	ConnectionID  string
	ContainerName string
	ScenarioID    string
	Image         string
	// Privileged is resolved together with Image and decides whether the
	// engine control socket is mounted.
	Privileged bool
	CreatedAt  time.Time

	mu    sync.RWMutex
	state State

	inputMu sync.Mutex
	input   io.Writer
}

// New creates a session in StateInit.
func New(connectionID, containerName, scenarioID string) *Session {
	return &Session{
		ConnectionID:  connectionID,
		ContainerName: containerName,
		ScenarioID:    scenarioID,
		CreatedAt:     time.Now(),
		state:         StateInit,
	}
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// SetState moves the session to state and returns the previous one.
func (s *Session) SetState(state State) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	old := s.state
	s.state = state
	return old
}

// AttachInput connects the process's standard input.
func (s *Session) AttachInput(w io.Writer) {
	s.inputMu.Lock()
	s.input = w
	s.inputMu.Unlock()
}

// WriteInput forwards bytes verbatim to the process's standard input.
// Writes from concurrent callers are not interleaved.
func (s *Session) WriteInput(p []byte) error {
	s.inputMu.Lock()
	defer s.inputMu.Unlock()
	if s.input == nil {
		return ErrNoProcess
	}
	_, err := s.input.Write(p)
	return err
}
