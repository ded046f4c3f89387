package containerizer

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"dojo/pkg/logging"
)

// Probe answers "is the engine usable right now" and owns the shared network.
// Concurrent Available calls share one in-flight engine command. The answer
// is never cached beyond that call.
type Probe struct {
	engine  Engine
	timeout time.Duration
	group   singleflight.Group
}

// NewProbe creates a probe over engine. timeout bounds each engine command.
func NewProbe(engine Engine, timeout time.Duration) *Probe {
	return &Probe{engine: engine, timeout: timeout}
}

// Available returns nil when the engine daemon answers its version command.
func (p *Probe) Available(ctx context.Context) error {
	ch := p.group.DoChan("version", func() (interface{}, error) {
		// Detached from the first caller so its cancellation does not fail
		// the other callers sharing this flight.
		cctx, cancel := context.WithTimeout(context.Background(), p.timeout)
		defer cancel()
		return p.engine.Version(cctx)
	})

	select {
	case <-ctx.Done():
		return ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return res.Err
		}
		logging.Debug(engineSubsystem, "Engine available, server version %v", res.Val)
		return nil
	}
}

// EnsureNetwork makes sure the named network exists, creating it if needed.
func (p *Probe) EnsureNetwork(ctx context.Context, name string) error {
	cctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	exists, err := p.engine.NetworkExists(cctx, name)
	if err != nil {
		return fmt.Errorf("failed to inspect network %s: %w", name, err)
	}
	if exists {
		logging.Debug(engineSubsystem, "Network %s already exists", name)
		return nil
	}
	return p.engine.CreateNetwork(cctx, name)
}

// ImageExists checks for a local image within the command timeout.
func (p *Probe) ImageExists(ctx context.Context, image string) (bool, error) {
	cctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	return p.engine.ImageExists(cctx, image)
}
