package procfuture

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"strconv"
	"syscall"
)

// ErrNotSupported indicates that the requested feature (e.g., TTY) is not supported
// by the specific provider or OS.
var ErrNotSupported = errors.New("operation not supported")

// ErrEnvironmentClosed indicates that an operation was attempted on a closed environment.
var ErrEnvironmentClosed = errors.New("environment is closed")

// ErrInvalidConfig indicates that a launch was refused because its configuration is invalid.
var ErrInvalidConfig = errors.New("invalid configuration")

// ExitError represents a successful execution that resulted in a non-zero exit code.
// Providers return it from Process.Wait.
type ExitError struct {
	Command  *Command
	ExitCode int
	Stderr   []byte
	Cause    error
}

func (e *ExitError) Error() string {
	if e.Command == nil {
		return fmt.Sprintf("command exited with code %d", e.ExitCode)
	}

	return fmt.Sprintf("command %q exited with code %d", e.Command.String(), e.ExitCode)
}

func (e *ExitError) Unwrap() error {
	return e.Cause
}

// TransportError represents a failure in the underlying transport or provider layer
// (e.g. connection lost, docker daemon unreachable, binary not found).
type TransportError struct {
	Command *Command
	Err     error
}

func (e *TransportError) Error() string {
	if e.Command == nil {
		return fmt.Sprintf("transport error: %v", e.Err)
	}

	return fmt.Sprintf("transport error executing %q: %v", e.Command.String(), e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Kind tells where a normalized failure came from.
type Kind int

const (
	// KindLaunch: the process could not be created or faulted before terminating.
	KindLaunch Kind = iota
	// KindExit: the process terminated with a code outside the successful set.
	KindExit
	// KindBuffered: a buffered-style execution reported a failure.
	KindBuffered
)

func (k Kind) String() string {
	switch k {
	case KindLaunch:
		return "launch"
	case KindExit:
		return "exit"
	case KindBuffered:
		return "buffered"
	default:
		return "unknown"
	}
}

// Symbolic codes used for failures that have no exit code.
const (
	CodeNotFound     = "ENOENT"
	CodePermission   = "EACCES"
	CodeExecFormat   = "ENOEXEC"
	CodeCanceled     = "ECANCELED"
	CodeInvalid      = "EINVAL"
	CodeNotSupported = "ENOTSUP"
	CodeClosed       = "ESHUTDOWN"
	CodeUnknown      = "EUNKNOWN"
)

// Code is either a process exit code or a symbolic error name.
type Code struct {
	exit    int
	name    string
	hasExit bool
}

// ExitCode returns a Code holding a process exit code.
func ExitCode(n int) Code {
	return Code{exit: n, hasExit: true}
}

// NamedCode returns a Code holding a symbolic name such as "ENOENT".
func NamedCode(name string) Code {
	return Code{name: name}
}

// Exit returns the exit code and true, or 0 and false for symbolic codes.
func (c Code) Exit() (int, bool) {
	return c.exit, c.hasExit
}

// Name returns the symbolic name, or "" for exit codes.
func (c Code) Name() string {
	return c.name
}

func (c Code) String() string {
	if c.hasExit {
		return strconv.Itoa(c.exit)
	}

	return c.name
}

// Error is the single failure shape every process future rejects with.
// Stdout and Stderr are nil when the stream was not captured.
type Error struct {
	Kind    Kind
	Message string
	Code    Code
	Stdout  *string
	Stderr  *string
	Process Process
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// PanicError is the rejection of a future whose executor or handler panicked.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("future callback panicked: %v", e.Value)
}

// UnhandledRejectionError is raised (as a panic) when a rejection reaches Done.
type UnhandledRejectionError struct {
	Err error
}

func (e *UnhandledRejectionError) Error() string {
	return fmt.Sprintf("unhandled rejection: %v", e.Err)
}

func (e *UnhandledRejectionError) Unwrap() error {
	return e.Err
}

// newLaunchFailure normalizes a failure to create the process, or a runtime fault
// reported before any termination signal.
func newLaunchFailure(err error, p Process, c *Capture) *Error {
	return &Error{
		Kind:    KindLaunch,
		Message: err.Error(),
		Code:    NamedCode(launchCode(err)),
		Stdout:  c.stdout(),
		Stderr:  c.stderr(),
		Process: p,
		Err:     err,
	}
}

// newExitFailure normalizes a termination with an unsuccessful exit code.
func newExitFailure(cmd *Command, code int, p Process, c *Capture) *Error {
	return &Error{
		Kind:    KindExit,
		Message: fmt.Sprintf("`%s` failed with code %d", cmd.Line(), code),
		Code:    ExitCode(code),
		Stdout:  c.stdout(),
		Stderr:  c.stderr(),
		Process: p,
	}
}

// newBufferedFailure normalizes the error reported by a buffered execution.
// line is the command as the caller wrote it.
func newBufferedFailure(line string, err error, p Process, stdout, stderr string) *Error {
	code := NamedCode(launchCode(err))

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		code = ExitCode(exitErr.ExitCode)
	}

	return &Error{
		Kind:    KindBuffered,
		Message: fmt.Sprintf("%s `%s` (exited with error code %s)", err.Error(), line, code),
		Code:    code,
		Stdout:  &stdout,
		Stderr:  &stderr,
		Process: p,
		Err:     err,
	}
}

// launchCode maps an underlying launch error to a symbolic code.
func launchCode(err error) string {
	switch {
	case errors.Is(err, ErrInvalidConfig):
		return CodeInvalid
	case errors.Is(err, ErrNotSupported):
		return CodeNotSupported
	case errors.Is(err, ErrEnvironmentClosed):
		return CodeClosed
	case errors.Is(err, exec.ErrNotFound), errors.Is(err, fs.ErrNotExist):
		return CodeNotFound
	case errors.Is(err, fs.ErrPermission):
		return CodePermission
	case errors.Is(err, syscall.ENOEXEC):
		return CodeExecFormat
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return CodeCanceled
	default:
		return CodeUnknown
	}
}
