package docker

import (
	"github.com/docker/docker/api/types/container"
	"github.com/ruffel/procfuture"
)

// ttySize is the console size requested for exec instances that allocate a TTY.
var ttySize = [2]uint{24, 80}

// execRequest holds the create and start options of one exec instance.
type execRequest struct {
	create container.ExecOptions
	start  container.ExecStartOptions
}

// newExecRequest maps cmd onto an exec instance. Output is always attached so the
// process streams see it; stdin only when cmd has one.
func newExecRequest(cmd *procfuture.Command) execRequest {
	req := execRequest{
		create: container.ExecOptions{
			Cmd:          append([]string{cmd.Cmd}, cmd.Args...),
			Env:          cmd.Env,
			WorkingDir:   cmd.Dir,
			AttachStdin:  cmd.Stdin != nil,
			AttachStdout: true,
			AttachStderr: true,
			Tty:          cmd.Tty,
		},
		start: container.ExecStartOptions{Tty: cmd.Tty},
	}

	if cmd.Tty {
		size := ttySize
		req.create.ConsoleSize = &size
		req.start.ConsoleSize = &size
	}

	return req
}
