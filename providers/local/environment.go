package local

import (
	"context"
	"fmt"
	"sync"

	"github.com/ruffel/procfuture"
)

var _ procfuture.Launcher = (*Launcher)(nil)

// Launcher implements procfuture.Launcher for the local operating system.
// Thread-safe wrapper around os/exec.
type Launcher struct {
	targetOS procfuture.TargetOS
	mu       sync.RWMutex
	active   int
	closed   bool
}

// New creates a new local launcher.
func New(opts ...Option) (*Launcher, error) {
	cfg := Config{
		targetOS: procfuture.DetectLocalOS(),
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	return &Launcher{
		targetOS: cfg.targetOS,
	}, nil
}

// Start creates the process and returns its live handle.
// Lifecycle events fire from a monitor goroutine once the process has finished.
func (e *Launcher) Start(ctx context.Context, cmd *procfuture.Command) (procfuture.Process, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", procfuture.ErrInvalidConfig, err)
	}

	e.mu.Lock()

	if e.closed {
		e.mu.Unlock()

		return nil, fmt.Errorf("cannot start command %q: %w", cmd.String(), procfuture.ErrEnvironmentClosed)
	}

	e.active++
	e.mu.Unlock()

	process := newProcess(e, cmd)

	err := process.start(ctx)
	if err != nil {
		e.decrementActive()

		return nil, err
	}

	return process, nil
}

// TargetOS returns the operating system of the host machine.
func (e *Launcher) TargetOS() procfuture.TargetOS {
	return e.targetOS
}

// ActiveProcesses returns the number of currently running commands.
func (e *Launcher) ActiveProcesses() int {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.active
}

// Close shuts down the launcher.
// New Start calls will fail. Existing processes keep running until they finish.
func (e *Launcher) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.closed = true

	return nil
}

func (e *Launcher) decrementActive() {
	e.mu.Lock()
	e.active--
	e.mu.Unlock()
}
