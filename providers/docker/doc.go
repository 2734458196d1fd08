// Package docker provides a procfuture.Launcher that runs commands inside existing
// Docker containers.
//
// It talks to the Docker Engine API directly and creates one 'exec' instance per
// command. Key features include:
//   - Automatic stream demultiplexing for non-TTY commands (stdout vs stderr)
//   - Lifecycle events reported once output drains and the daemon reports an exit code
//   - Context-aware cancellation by hanging up the exec session
//   - Support for both local socket and remote TCP Docker hosts
//
// Message channels are not available across the Engine API; forked executions are
// rejected with procfuture.ErrNotSupported.
//
// Usage:
//
//	env, err := docker.New(docker.WithContainerID("my-container"))
//	exec := procfuture.NewExecutor(env)
//	res, err := exec.RunShell(ctx, "uname -a").Wait(ctx)
package docker
