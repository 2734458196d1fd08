// Package ssh provides an implementation of the procfuture.Launcher interface
// for remote servers via the SSH protocol.
//
// It utilizes "golang.org/x/crypto/ssh" to manage sessions, providing support for:
//   - Interactive sessions with PTY allocation
//   - Signal propagation (Interrupt, Kill)
//   - Host aliases resolved from ~/.ssh/config
//
// Each process is one session. Arguments are always quoted for the remote shell.
// Forked processes (Command.IPC) are not supported.
//
// Usage:
//
//	env, err := ssh.New(ssh.WithHost("example.com"), ssh.WithUser("deploy"), ssh.WithAgent())
//	f := procfuture.NewExecutor(env).RunStreamed(ctx, procfuture.NewCommand("uptime"))
package ssh
