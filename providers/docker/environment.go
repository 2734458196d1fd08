package docker

import (
	"context"
	"fmt"
	"sync"

	"github.com/docker/docker/client"
	"github.com/ruffel/procfuture"
)

var _ procfuture.Launcher = (*Launcher)(nil)

// Launcher implements procfuture.Launcher by creating exec instances in one container.
type Launcher struct {
	config Config
	client *client.Client
	mu     sync.Mutex
	active int
	closed bool
}

// New connects to the Docker daemon.
func New(opts ...Option) (*Launcher, error) {
	var c Config
	for _, o := range opts {
		o(&c)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", procfuture.ErrInvalidConfig, err)
	}

	cli, err := client.NewClientWithOpts(c.clientOptions()...)
	if err != nil {
		return nil, fmt.Errorf("failed to create docker client: %w", err)
	}

	return &Launcher{
		config: c,
		client: cli,
	}, nil
}

// Start creates and attaches an exec instance for cmd.
func (e *Launcher) Start(ctx context.Context, cmd *procfuture.Command) (procfuture.Process, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", procfuture.ErrInvalidConfig, err)
	}

	if cmd.IPC {
		return nil, fmt.Errorf("cannot open ipc channel for %q in a container: %w", cmd.String(), procfuture.ErrNotSupported)
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

// TargetOS returns the operating system of the container.
func (e *Launcher) TargetOS() procfuture.TargetOS {
	if e.config.OS == procfuture.OSUnknown {
		return procfuture.OSLinux
	}

	return e.config.OS
}

// ActiveProcesses returns the number of exec instances still attached.
func (e *Launcher) ActiveProcesses() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.active
}

// Close shuts down the client connection.
func (e *Launcher) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}

	e.closed = true

	if e.client != nil {
		return e.client.Close()
	}

	return nil
}

func (e *Launcher) decrementActive() {
	e.mu.Lock()
	e.active--
	e.mu.Unlock()
}
