package ssh

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/ruffel/procfuture"
	"golang.org/x/crypto/ssh"
)

// Process implements procfuture.Process for one SSH session.
type Process struct {
	env     *Launcher
	session *ssh.Session
	cmd     *procfuture.Command
	id      int

	stdout *procfuture.Stream
	stderr *procfuture.Stream
	events *procfuture.Events

	status *procfuture.Status
	mu     sync.RWMutex
	done   chan struct{}
	closed bool
}

var _ procfuture.Process = (*Process)(nil)

func newProcess(env *Launcher, id int, session *ssh.Session, cmd *procfuture.Command) *Process {
	return &Process{
		env:     env,
		session: session,
		cmd:     cmd,
		id:      id,
		stdout:  procfuture.NewStream(cmd.Stdout),
		stderr:  procfuture.NewStream(cmd.Stderr),
		events:  procfuture.NewEvents(),
		done:    make(chan struct{}),
	}
}

// PID returns the launcher-assigned session number, starting at 1.
// sshd does not report remote process ids.
func (p *Process) PID() int {
	return p.id
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
		// If it's a clean exit error, convert to procfuture.ExitError
		exitErr := &ssh.ExitError{}
		if errors.As(p.status.Error, &exitErr) {
			return &procfuture.ExitError{
				Command:  p.cmd,
				ExitCode: exitErr.ExitStatus(),
				Cause:    p.status.Error,
			}
		}

		return &procfuture.TransportError{Command: p.cmd, Err: p.status.Error}
	}

	return nil
}

// Status returns the termination metadata of the session.
func (p *Process) Status() *procfuture.Status {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.status == nil {
		return &procfuture.Status{}
	}

	s := *p.status

	return &s
}

// Signal sends a signal to the remote process.
func (p *Process) Signal(sig os.Signal) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed || p.session == nil {
		return fmt.Errorf("cannot signal process %q: closed or not started", p.cmd.String())
	}

	// Map OS signals to SSH signals
	var sshSig ssh.Signal

	switch sig {
	case os.Interrupt:
		sshSig = ssh.SIGINT
	case os.Kill:
		sshSig = ssh.SIGKILL
	default:
		return fmt.Errorf("signal %v not supported over ssh: %w", sig, procfuture.ErrNotSupported)
	}

	return p.session.Signal(sshSig)
}

// Close terminates the SSH session.
func (p *Process) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}

	p.closed = true

	if p.session != nil {
		if err := p.session.Close(); err != nil && !errors.Is(err, io.EOF) {
			return err
		}
	}

	return nil
}

func (p *Process) start(ctx context.Context) error {
	// The session copies each stream on its own goroutine; Wait returns after both finish.
	p.session.Stdout = p.stdout
	p.session.Stderr = p.stderr

	if p.cmd.Stdin != nil {
		p.session.Stdin = p.cmd.Stdin
	}

	isWindows := p.env.TargetOS() == procfuture.OSWindows

	if p.cmd.Tty {
		modes := buildTerminalModes()

		err := p.session.RequestPty("xterm", 80, 40, modes)
		if err != nil {
			return fmt.Errorf("request for pty failed: %w", err)
		}
	}

	startTime := time.Now()

	// Prepend env and dir to the command
	// Format: [vars] [cd] [cmd]
	// Example: export VAR='1'; cd '/tmp' && 'echo' 'hello'
	fullCommand := buildFullCommand(p.cmd, isWindows)

	err := p.session.Start(fullCommand)
	if err != nil {
		return &procfuture.TransportError{Command: p.cmd, Err: err}
	}

	go p.monitor(ctx, startTime)

	return nil
}

// monitor waits for the session and reports its lifecycle.
func (p *Process) monitor(ctx context.Context, startTime time.Time) {
	defer close(p.done)
	defer p.env.decrementActive()

	doneCheck := make(chan struct{})

	go func() {
		select {
		case <-ctx.Done():
			_ = p.Signal(os.Kill)
			_ = p.Close()
		case <-doneCheck:
		}
	}()

	err := p.session.Wait()

	close(doneCheck)

	exitCode, exited := exitStatus(err)

	p.mu.Lock()
	p.status = &procfuture.Status{
		ExitCode: exitCode,
		Duration: time.Since(startTime),
		Error:    err,
	}
	p.mu.Unlock()

	switch {
	case ctx.Err() != nil:
		p.events.EmitError(fmt.Errorf("process %q canceled: %w", p.cmd.String(), ctx.Err()))
	case !exited:
		p.events.EmitError(&procfuture.TransportError{Command: p.cmd, Err: err})

		return
	}

	p.events.EmitExit(exitCode)
	p.events.EmitClose(exitCode)
}
