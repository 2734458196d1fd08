package local

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/ruffel/procfuture"
	"github.com/ruffel/procfuture/ipc"
)

// Close releases resources associated with the process.
// If the process is still running, it will be killed to ensure cleanup.
func (p *Process) Close() error {
	p.mu.Lock()

	if p.closed {
		p.mu.Unlock()

		return nil // Already closed
	}

	shouldKill := p.execCmd != nil && p.execCmd.Process != nil && p.done != nil
	done := p.done
	channel := p.channel
	p.closed = true
	p.mu.Unlock()

	// Kill and wait outside of lock to avoid deadlock
	if shouldKill {
		select {
		case <-done:
		default:
			// Process still running, kill the process group to prevent leaks.
			if p.execCmd.Process.Pid > 0 {
				_ = killProcessGroup(p.execCmd.Process.Pid)
			}

			<-done
		}
	}

	if channel != nil {
		return channel.Close()
	}

	return nil
}

func (p *Process) start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return fmt.Errorf("cannot start process %q: already closed", p.cmd.String())
	}

	if p.cmd.Tty {
		return fmt.Errorf("cannot start process %q: %w", p.cmd.String(), procfuture.ErrNotSupported)
	}

	p.execCmd = exec.CommandContext(ctx, p.cmd.Cmd, p.cmd.Args...)

	if p.cmd.Dir != "" {
		p.execCmd.Dir = p.cmd.Dir
	}

	if len(p.cmd.Env) > 0 {
		p.execCmd.Env = append(os.Environ(), p.cmd.Env...)
	}

	// Create a new Process Group to allow killing the entire tree (children) later.
	setProcessGroup(p.execCmd)

	// os/exec copies each stream on its own goroutine and Wait returns only once both
	// copies are done, so the close event always sees complete output.
	p.execCmd.Stdout = p.stdout
	p.execCmd.Stderr = p.stderr

	if p.cmd.Stdin != nil {
		p.execCmd.Stdin = p.cmd.Stdin
	}

	var childEnds []*os.File

	if p.cmd.IPC {
		var err error

		childEnds, err = p.openChannel()
		if err != nil {
			return err
		}
	}

	p.done = make(chan struct{})

	startTime := time.Now()

	err := p.execCmd.Start()

	// The child owns its ends now (or never will).
	for _, f := range childEnds {
		_ = f.Close()
	}

	if err != nil {
		if p.channel != nil {
			_ = p.channel.Close()
		}

		return err
	}

	go p.monitor(ctx, startTime)

	return nil
}

// openChannel creates the two pipes of the message channel. The child's ends become
// its descriptors 3 (read) and 4 (write).
func (p *Process) openChannel() ([]*os.File, error) {
	if !channelSupported {
		return nil, fmt.Errorf("cannot open ipc channel for %q: %w", p.cmd.String(), procfuture.ErrNotSupported)
	}

	childR, parentW, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create ipc pipe: %w", err)
	}

	parentR, childW, err := os.Pipe()
	if err != nil {
		_ = childR.Close()
		_ = parentW.Close()

		return nil, fmt.Errorf("failed to create ipc pipe: %w", err)
	}

	p.execCmd.ExtraFiles = []*os.File{childR, childW}

	if p.execCmd.Env == nil {
		p.execCmd.Env = os.Environ()
	}

	p.execCmd.Env = append(p.execCmd.Env, ipc.Env(3))
	p.channel = ipc.NewChannel(parentR, parentW)

	return []*os.File{childR, childW}, nil
}

// monitor waits for the process and reports its lifecycle.
func (p *Process) monitor(ctx context.Context, startTime time.Time) {
	defer close(p.done)
	defer p.env.decrementActive()

	err := p.execCmd.Wait()
	duration := time.Since(startTime)

	exitCode := 0
	if p.execCmd.ProcessState != nil {
		exitCode = p.execCmd.ProcessState.ExitCode()
	}

	p.mu.Lock()
	p.status = &procfuture.Status{
		ExitCode: exitCode,
		Duration: duration,
		Error:    err,
	}
	p.mu.Unlock()

	var exitErr *exec.ExitError

	switch {
	case err == nil:
	case ctx.Err() != nil:
		p.events.EmitError(fmt.Errorf("process %q canceled: %w", p.cmd.String(), ctx.Err()))
	case errors.As(err, &exitErr):
	default:
		p.events.EmitError(err)

		return
	}

	p.events.EmitExit(exitCode)
	p.events.EmitClose(exitCode)
}
