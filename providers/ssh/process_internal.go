package ssh

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ruffel/procfuture"
	"golang.org/x/crypto/ssh"
)

// buildEnvPrefix constructs the environment variable prefix for SSH commands.
// Since OpenSSH defaults PermitUserEnvironment=no, session.Setenv() won't work.
// We work around by prepending "export VAR='val';" to the command string.
func buildEnvPrefix(envVars []string, isWindows bool) string {
	var envPrefix strings.Builder

	for _, env := range envVars {
		k, v, found := strings.Cut(env, "=")
		if !found {
			continue // Skip malformed env
		}

		if isWindows {
			fmt.Fprintf(&envPrefix, "$env:%s=%s; ", k, quoteArg(v, true))
		} else {
			fmt.Fprintf(&envPrefix, "export %s=%s; ", k, quoteArg(v, false))
		}
	}

	return envPrefix.String()
}

// buildDirPrefix constructs the directory change prefix for SSH commands.
func buildDirPrefix(dir string, isWindows bool) string {
	if dir == "" {
		return ""
	}

	if isWindows {
		return fmt.Sprintf("cd %s; ", quoteArg(dir, true))
	}

	return fmt.Sprintf("cd %s && ", quoteArg(dir, false))
}

// quoteArg wraps s in single quotes for the remote shell.
// POSIX shells close, escape and reopen around a quote ('\''); PowerShell doubles it.
func quoteArg(s string, isWindows bool) string {
	if isWindows {
		return "'" + strings.ReplaceAll(s, "'", "''") + "'"
	}

	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// buildTerminalModes returns the default terminal modes for a PTY.
func buildTerminalModes() ssh.TerminalModes {
	return ssh.TerminalModes{
		ssh.ECHO:          1,     // enable echoing
		ssh.TTY_OP_ISPEED: 14400, // input speed = 14.4kbaud
		ssh.TTY_OP_OSPEED: 14400, // output speed = 14.4kbaud
	}
}

// buildFullCommand constructs the complete command string to execute on the remote server.
// Every token is quoted so arguments never reach the remote shell as syntax.
func buildFullCommand(cmd *procfuture.Command, isWindows bool) string {
	var b strings.Builder

	b.WriteString(buildEnvPrefix(cmd.Env, isWindows))
	b.WriteString(buildDirPrefix(cmd.Dir, isWindows))

	if isWindows {
		b.WriteString("& ")
	}

	b.WriteString(quoteArg(cmd.Cmd, isWindows))

	for _, arg := range cmd.Args {
		b.WriteString(" ")
		b.WriteString(quoteArg(arg, isWindows))
	}

	return b.String()
}

// exitStatus extracts the exit code from a session.Wait error.
// The boolean is false when the session ended without reporting an exit status.
func exitStatus(err error) (int, bool) {
	if err == nil {
		return 0, true
	}

	var exitErr *ssh.ExitError
	if !errors.As(err, &exitErr) {
		return -1, false
	}

	if exitErr.Signal() != "" {
		return -1, true
	}

	return exitErr.ExitStatus(), true
}
