//go:build windows

package local

import (
	"os/exec"
	"strconv"
)

// channelSupported reports whether ExtraFiles can carry the ipc channel.
// os/exec does not pass extra descriptors on Windows.
const channelSupported = false

// killProcessGroup kills the process group with the given PID.
//
// TODO(windows): Use Job Objects for proper process grouping if we need
// resource limits or orphan handling.
func killProcessGroup(pid int) error {
	return exec.Command("taskkill", "/T", "/F", "/PID", strconv.Itoa(pid)).Run()
}

// setProcessGroup sets the process group for the given command.
func setProcessGroup(_ *exec.Cmd) {}
