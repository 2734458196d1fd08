package procfuture

import (
	"errors"
	"fmt"
	"io"
	"runtime"
	"strings"
	"time"

	"github.com/google/shlex"
)

// Command configures a process execution.
type Command struct {
	Cmd  string   // Binary name or path to executable
	Args []string // Arguments to pass to the binary
	Env  []string // Environment variables in "KEY=VALUE" format
	Dir  string   // Working directory for execution

	// Standard streams. If nil, defaults to empty/discard.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Tty allocates a PTY. Useful for interactive commands (e.g. sudo).
	Tty bool

	// IPC opens a message channel to the child (see package ipc).
	IPC bool
}

// Validate checks that the command is well-formed.
// Returns an error if the command is nil or has an empty binary.
func (c *Command) Validate() error {
	if c == nil {
		return errors.New("command cannot be nil")
	}

	if strings.TrimSpace(c.Cmd) == "" {
		return errors.New("command binary cannot be empty")
	}

	return nil
}

// NewCommand creates a new Command with the given binary and arguments.
func NewCommand(binary string, args ...string) *Command {
	return &Command{
		Cmd:  binary,
		Args: args,
	}
}

// String returns a simplified, shell-quoted string representation of the command.
func (c *Command) String() string {
	if len(c.Args) == 0 {
		return c.Cmd
	}

	var b strings.Builder
	b.WriteString(c.Cmd)

	for _, arg := range c.Args {
		b.WriteString(" ")

		if strings.Contains(arg, " ") {
			fmt.Fprintf(&b, "%q", arg)
		} else {
			b.WriteString(arg)
		}
	}

	return b.String()
}

// Line joins the binary and its arguments with single spaces, without quoting.
// This is the form used in failure messages.
func (c *Command) Line() string {
	if len(c.Args) == 0 {
		return c.Cmd
	}

	return c.Cmd + " " + strings.Join(c.Args, " ")
}

// clone returns a shallow copy with its own Args/Env slices.
func (c *Command) clone() *Command {
	cp := *c
	cp.Args = append([]string(nil), c.Args...)
	cp.Env = append([]string(nil), c.Env...)

	return &cp
}

// ParseCommand parses a shell command string into a Command struct using shlex.
// It handles quoted arguments correctly.
func ParseCommand(cmdStr string) (*Command, error) {
	parts, err := shlex.Split(cmdStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse command: %w", err)
	}

	if len(parts) == 0 {
		return nil, errors.New("empty command")
	}

	return &Command{
		Cmd:  parts[0],
		Args: parts[1:],
	}, nil
}

// Status contains provider-level metadata about a finished process.
type Status struct {
	ExitCode int           // Process exit code (0 indicates success, -1 killed by signal)
	Duration time.Duration // Time taken for execution
	Error    error         // Launch/Transport error (distinct from non-zero exit code)
}

// Success returns true if the command completed with exit code 0 and no transport error.
func (s *Status) Success() bool {
	return s.ExitCode == 0 && s.Error == nil
}

// Failed returns true if the command failed (non-zero exit code or transport error).
func (s *Status) Failed() bool {
	return !s.Success()
}

// Result is the value a process future resolves with.
// Optional fields are nil when absent: Stdout/Stderr when the stream was not captured,
// ExitCode for buffered-style executions.
type Result struct {
	Process  Process
	Stdout   *string
	Stderr   *string
	ExitCode *int
}

// StdoutString returns the captured standard output, or "" when it was not captured.
func (r *Result) StdoutString() string {
	return deref(r.Stdout)
}

// StderrString returns the captured standard error, or "" when it was not captured.
func (r *Result) StderrString() string {
	return deref(r.Stderr)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}

	return *s
}

// TargetOS identifies the operating system of the target environment.
type TargetOS int

const (
	// OSUnknown represents an unidentified operating system.
	OSUnknown TargetOS = iota
	// OSLinux represents the Linux kernel.
	OSLinux
	// OSWindows represents Microsoft Windows.
	OSWindows
	// OSDarwin represents macOS (Darwin).
	OSDarwin
)

func (os TargetOS) String() string {
	switch os {
	case OSLinux:
		return "linux"
	case OSWindows:
		return "windows"
	case OSDarwin:
		return "darwin"
	case OSUnknown:
		return "unknown"
	default:
		return "unknown"
	}
}

// ShellCommand constructs a command that runs the provided script inside the system shell.
// Returns "sh -c <script>" for UNIX-likes and "powershell ..." for Windows.
func (os TargetOS) ShellCommand(script string) *Command {
	switch os {
	case OSWindows:
		return &Command{
			Cmd:  "powershell",
			Args: []string{"-NoProfile", "-NonInteractive", "-Command", script},
		}
	case OSLinux, OSDarwin, OSUnknown:
		fallthrough
	default:
		return &Command{
			Cmd:  "sh",
			Args: []string{"-c", script},
		}
	}
}

// ParseTargetOS converts a typical OS string (e.g., "linux", "darwin") to a TargetOS.
func ParseTargetOS(osStr string) TargetOS {
	switch strings.ToLower(strings.TrimSpace(osStr)) {
	case "linux":
		return OSLinux
	case "windows", "windows_nt":
		return OSWindows
	case "darwin", "macos":
		return OSDarwin
	default:
		return OSUnknown
	}
}

// DetectLocalOS returns the TargetOS of the current running process.
func DetectLocalOS() TargetOS {
	return ParseTargetOS(runtime.GOOS)
}
