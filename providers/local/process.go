package local

import (
	"os/exec"
	"sync"

	"github.com/ruffel/procfuture"
	"github.com/ruffel/procfuture/ipc"
)

// Process implements procfuture.Process for local command execution.
// It wraps `*exec.Cmd`; output flows through the handle's streams and the lifecycle
// is reported on its Events. Processes started with Command.IPC also implement
// procfuture.Messenger.
type Process struct {
	env     *Launcher
	cmd     *procfuture.Command
	execCmd *exec.Cmd

	stdout  *procfuture.Stream
	stderr  *procfuture.Stream
	events  *procfuture.Events
	channel *ipc.Channel

	// Status related fields
	status *procfuture.Status
	mu     sync.RWMutex
	done   chan struct{}
	closed bool
}

var (
	_ procfuture.Process   = (*Process)(nil)
	_ procfuture.Messenger = (*Process)(nil)
)

func newProcess(env *Launcher, cmd *procfuture.Command) *Process {
	return &Process{
		env:    env,
		cmd:    cmd,
		stdout: procfuture.NewStream(cmd.Stdout),
		stderr: procfuture.NewStream(cmd.Stderr),
		events: procfuture.NewEvents(),
	}
}
