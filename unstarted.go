package procfuture

import (
	"fmt"
	"os"
)

// unstartedProcess is the handle carried by a future whose process could not be created.
// Its error event has already fired with the launch error.
type unstartedProcess struct {
	cmd    *Command
	err    error
	events *Events
	stdout *Stream
	stderr *Stream
}

func newUnstartedProcess(cmd *Command, err error) *unstartedProcess {
	p := &unstartedProcess{
		cmd:    cmd,
		err:    err,
		events: NewEvents(),
		stdout: NewStream(nil),
		stderr: NewStream(nil),
	}
	p.events.EmitError(err)

	return p
}

func (p *unstartedProcess) PID() int        { return 0 }
func (p *unstartedProcess) Stdout() *Stream { return p.stdout }
func (p *unstartedProcess) Stderr() *Stream { return p.stderr }
func (p *unstartedProcess) Events() *Events { return p.events }
func (p *unstartedProcess) Close() error    { return nil }
func (p *unstartedProcess) Status() *Status { return &Status{ExitCode: -1, Error: p.err} }
func (p *unstartedProcess) Wait() error     { return &TransportError{Command: p.cmd, Err: p.err} }

func (p *unstartedProcess) Signal(sig os.Signal) error {
	return fmt.Errorf("cannot send %v: process was never started: %w", sig, p.err)
}
