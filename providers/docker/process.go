package docker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"
	"github.com/ruffel/procfuture"
)

// exitPollTimeout bounds how long the exit code is polled for after output ends.
const exitPollTimeout = 30 * time.Second

// Process implements procfuture.Process for Docker execution.
// It manages the lifecycle of a `docker exec` session.
type Process struct {
	env    *Launcher
	client *client.Client
	cmd    *procfuture.Command

	execID string
	pid    int
	stream types.HijackedResponse

	stdout *procfuture.Stream
	stderr *procfuture.Stream
	events *procfuture.Events

	status *procfuture.Status
	mu     sync.RWMutex
	done   chan struct{}
	closed bool
}

var _ procfuture.Process = (*Process)(nil)

func newProcess(env *Launcher, cmd *procfuture.Command) *Process {
	return &Process{
		env:    env,
		client: env.client,
		cmd:    cmd,
		stdout: procfuture.NewStream(cmd.Stdout),
		stderr: procfuture.NewStream(cmd.Stderr),
		events: procfuture.NewEvents(),
		done:   make(chan struct{}),
	}
}

// copyOutput copies the process output streams to the given writers.
// In TTY mode, stdout/stderr are merged. In non-TTY mode, they are multiplexed.
func copyOutput(r io.Reader, stdout, stderr io.Writer, tty bool) error {
	if tty {
		_, err := io.Copy(stdout, r)

		return err
	}

	_, err := stdcopy.StdCopy(stdout, stderr, r)

	return err
}

// pollForExitCode polls the Docker API until the exec process exits or times out.
func pollForExitCode(ctx context.Context, cli *client.Client, execID string, timeout time.Duration) (container.ExecInspect, error) {
	pollCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		inspectResp, err := cli.ContainerExecInspect(pollCtx, execID)
		if err != nil {
			return inspectResp, err
		}

		if !inspectResp.Running {
			return inspectResp, nil
		}

		select {
		case <-pollCtx.Done():
			return inspectResp, pollCtx.Err()
		case <-ticker.C:
		}
	}
}

// PID returns the process id inside the container as reported by the daemon,
// or -1 if the daemon did not report one.
func (p *Process) PID() int {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.pid
}

// Stdout returns the live standard output stream.
func (p *Process) Stdout() *procfuture.Stream { return p.stdout }

// Stderr returns the live standard error stream.
func (p *Process) Stderr() *procfuture.Stream { return p.stderr }

// Events returns the lifecycle event source.
func (p *Process) Events() *procfuture.Events { return p.events }

// Wait blocks until the command completes.
func (p *Process) Wait() error {
	<-p.done

	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.status.Error != nil {
		return &procfuture.TransportError{Command: p.cmd, Err: p.status.Error}
	}

	if p.status.ExitCode != 0 {
		return &procfuture.ExitError{
			Command:  p.cmd,
			ExitCode: p.status.ExitCode,
		}
	}

	return nil
}

// Status returns the termination metadata (only valid after Wait completes).
func (p *Process) Status() *procfuture.Status {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.status == nil {
		return &procfuture.Status{}
	}

	s := *p.status

	return &s
}

// Signal terminates the exec session.
// The Engine API cannot deliver POSIX signals to exec processes, so any signal closes
// the hijacked connection, which hangs up the process.
func (p *Process) Signal(_ os.Signal) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return fmt.Errorf("cannot signal process %q: already closed", p.cmd.String())
	}

	if p.stream.Conn != nil {
		p.stream.Close()
	}

	return nil
}

// Close disconnects the stream and cleans up resources.
func (p *Process) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}

	p.closed = true

	if p.stream.Conn != nil {
		p.stream.Close()
	}

	return nil
}

func (p *Process) start(ctx context.Context) error {
	req := newExecRequest(p.cmd)

	idResp, err := p.client.ContainerExecCreate(ctx, p.env.config.ContainerID, req.create)
	if err != nil {
		return &procfuture.TransportError{Command: p.cmd, Err: fmt.Errorf("failed to create exec: %w", err)}
	}

	p.execID = idResp.ID

	resp, err := p.client.ContainerExecAttach(ctx, p.execID, req.start)
	if err != nil {
		return &procfuture.TransportError{Command: p.cmd, Err: fmt.Errorf("failed to attach exec: %w", err)}
	}

	p.stream = resp
	p.pid = -1

	if inspect, err := p.client.ContainerExecInspect(ctx, p.execID); err == nil && inspect.Pid > 0 {
		p.pid = inspect.Pid
	}

	if p.cmd.Stdin != nil {
		go func() {
			defer func() { _ = p.stream.CloseWrite() }()

			_, _ = io.Copy(p.stream.Conn, p.cmd.Stdin)
		}()
	}

	go p.monitor(ctx, time.Now())

	return nil
}

// monitor drains the output, then polls the daemon for the exit code and reports the
// lifecycle.
func (p *Process) monitor(ctx context.Context, startTime time.Time) {
	defer close(p.done)
	defer p.env.decrementActive()
	defer p.stream.Close()

	doneCheck := make(chan struct{})

	go func() {
		select {
		case <-ctx.Done():
			_ = p.Signal(os.Kill)
		case <-doneCheck:
		}
	}()

	copyErr := copyOutput(p.stream.Reader, p.stdout, p.stderr, p.cmd.Tty)

	close(doneCheck)

	// The caller's context may already be canceled; the exit code is still wanted.
	inspectResp, err := pollForExitCode(context.WithoutCancel(ctx), p.client, p.execID, exitPollTimeout)

	p.mu.Lock()
	p.status = &procfuture.Status{
		ExitCode: inspectResp.ExitCode,
		Duration: time.Since(startTime),
		Error:    err,
	}
	p.mu.Unlock()

	switch {
	case ctx.Err() != nil:
		p.events.EmitError(fmt.Errorf("process %q canceled: %w", p.cmd.String(), ctx.Err()))
	case err != nil:
		p.events.EmitError(&procfuture.TransportError{Command: p.cmd, Err: err})

		return
	case copyErr != nil && !errors.Is(copyErr, io.EOF):
		p.events.EmitError(&procfuture.TransportError{Command: p.cmd, Err: fmt.Errorf("output stream failed: %w", copyErr)})
	}

	p.events.EmitExit(inspectResp.ExitCode)
	p.events.EmitClose(inspectResp.ExitCode)
}
