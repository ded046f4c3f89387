package session

import (
	"context"
	"sync"
	"time"

	"dojo/pkg/logging"
)

// Readiness schedules the scenario-ready notification for a session.
//
// Every implementation fires onFire at most once, and only if the session is
// still registered at the moment of firing. The returned cancel function
// prevents a pending fire and is safe to call more than once.
type Readiness interface {
	ArmAfter(delay time.Duration, sessionID string, onFire func()) (cancel func())
}

// Presence answers whether a session is still registered.
type Presence interface {
	Contains(id string) bool
}

// Timer is the subset of *time.Timer used by TimerReadiness.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d. It matches time.AfterFunc.
type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// TimerReadiness fires a fixed delay after arming.
type TimerReadiness struct {
	presence  Presence
	afterFunc AfterFunc
}

// NewTimerReadiness creates a timer-based readiness signal gated on presence.
func NewTimerReadiness(presence Presence) *TimerReadiness {
	return &TimerReadiness{presence: presence, afterFunc: realAfterFunc}
}

// WithAfterFunc replaces the scheduler, for tests.
func (r *TimerReadiness) WithAfterFunc(f AfterFunc) *TimerReadiness {
	r.afterFunc = f
	return r
}

func (r *TimerReadiness) ArmAfter(delay time.Duration, sessionID string, onFire func()) func() {
	var once sync.Once
	fire := func() {
		once.Do(func() {
			if !r.presence.Contains(sessionID) {
				logging.Debug("Readiness", "Session %s gone before readiness, not notifying", logging.TruncateSessionID(sessionID))
				return
			}
			onFire()
		})
	}

	timer := r.afterFunc(delay, fire)
	return func() {
		timer.Stop()
		// A stopped or fired timer must never fire later.
		once.Do(func() {})
	}
}

// RunningChecker reports whether a named container is running.
type RunningChecker interface {
	IsContainerRunning(ctx context.Context, name string) (bool, error)
}

// InspectReadiness waits the initial delay, then polls the engine until the
// session's container reports running. It stops polling, without firing,
// as soon as the session leaves the registry.
type InspectReadiness struct {
	registry *Registry
	checker  RunningChecker
	interval time.Duration
	timeout  time.Duration
}

// NewInspectReadiness creates an engine-polling readiness signal.
// timeout bounds each inspect command.
func NewInspectReadiness(registry *Registry, checker RunningChecker, interval, timeout time.Duration) *InspectReadiness {
	return &InspectReadiness{registry: registry, checker: checker, interval: interval, timeout: timeout}
}

func (r *InspectReadiness) ArmAfter(delay time.Duration, sessionID string, onFire func()) func() {
	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}

		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()

		for {
			s, ok := r.registry.Get(sessionID)
			if !ok {
				logging.Debug("Readiness", "Session %s gone before readiness, not notifying", logging.TruncateSessionID(sessionID))
				return
			}

			if r.running(ctx, s.ContainerName) {
				// Re-check under the same gate as the timer signal.
				if ctx.Err() == nil && r.registry.Contains(sessionID) {
					onFire()
				}
				return
			}

			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()

	return cancel
}

func (r *InspectReadiness) running(ctx context.Context, name string) bool {
	cctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	running, err := r.checker.IsContainerRunning(cctx, name)
	if err != nil {
		// The container may not be created yet.
		logging.Debug("Readiness", "Inspect of %s not ready yet: %v", name, err)
		return false
	}
	return running
}
