package local

import (
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/ruffel/procfuture"
)

// PID returns the operating system process id.
func (p *Process) PID() int {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.execCmd == nil || p.execCmd.Process == nil {
		return 0
	}

	return p.execCmd.Process.Pid
}

// Stdout returns the live standard output stream.
func (p *Process) Stdout() *procfuture.Stream { return p.stdout }

// Stderr returns the live standard error stream.
func (p *Process) Stderr() *procfuture.Stream { return p.stderr }

// Events returns the lifecycle event source.
func (p *Process) Events() *procfuture.Events { return p.events }

// Wait blocks until the command completes.
// It returns a procfuture.ExitError if the command finished with a non-zero exit code,
// or a different error if the wait itself failed (e.g. context cancellation).
func (p *Process) Wait() error {
	p.mu.RLock()
	// If closed, we check if it was ever started.
	if p.closed {
		p.mu.RUnlock()

		return fmt.Errorf("cannot wait on process %q: already closed", p.cmd.String())
	}

	if p.done == nil {
		p.mu.RUnlock()

		return fmt.Errorf("cannot wait on process %q: not started", p.cmd.String())
	}

	p.mu.RUnlock()

	<-p.done

	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.status.Error != nil {
		exitErr := &exec.ExitError{}
		if errors.As(p.status.Error, &exitErr) {
			return &procfuture.ExitError{
				Command:  p.cmd,
				ExitCode: exitErr.ExitCode(),
				Cause:    p.status.Error,
			}
		}

		return p.status.Error
	}

	return nil
}

// Status returns the termination metadata of the command.
// It returns an empty status if the process is still running or hasn't started.
func (p *Process) Status() *procfuture.Status {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.status == nil {
		return &procfuture.Status{}
	}

	s := *p.status

	return &s
}

// Signal sends an OS signal to the running process.
// It delegates directly to os.Process.Signal.
func (p *Process) Signal(sig os.Signal) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return fmt.Errorf("cannot signal process %q: already closed", p.cmd.String())
	}

	if p.execCmd == nil || p.execCmd.Process == nil {
		return fmt.Errorf("cannot signal process %q: not started", p.cmd.String())
	}

	return p.execCmd.Process.Signal(sig)
}

// Send delivers v to the child over its message channel.
func (p *Process) Send(v any) error {
	if p.channel == nil {
		return fmt.Errorf("cannot send to process %q: started without IPC: %w", p.cmd.String(), procfuture.ErrNotSupported)
	}

	return p.channel.Send(v)
}

// OnMessage registers fn for messages from the child. It is a no-op for processes
// started without IPC.
func (p *Process) OnMessage(fn func(procfuture.Message)) {
	if p.channel == nil {
		return
	}

	p.channel.OnMessage(fn)
}
