// Package procfuture bridges external process execution into single-resolution futures.
//
// # Core Interfaces
//
// - Launcher: The connection to a system that can create processes (Local, SSH, Docker).
// - Process: A running command handle (PID, output streams, lifecycle events, Signal, Close).
// - Future: A value that settles exactly once with a *Result or an *Error, and carries the
// Process handle from the moment it is returned.
//
// # Styles
//
// Buffered style (RunBuffered, RunBufferedFile, RunShell) always captures both output
// streams and settles once the process has finished.
//
// Streamed style (RunStreamed, RunForked) exposes the live handle immediately and only
// captures the streams you ask for with WithCapture. The future settles on whichever
// termination signal (exit or close) the provider emits first.
//
// # Unhandled failures
//
// Call Done() at the end of a chain. A rejection that reaches it is re-raised on the
// Scheduler as a panic instead of being silently dropped.
package procfuture

import (
	"context"
	"encoding/json"
	"io"
	"os"
)

// Launcher abstracts the underlying system where processes are created (e.g., Local, SSH, Docker).
type Launcher interface {
	io.Closer

	// Start creates the process described by cmd and returns its live handle.
	// Output is delivered to cmd.Stdout/cmd.Stderr (if set) and to the handle's streams.
	// Lifecycle events (error, exit, close) are emitted on Process.Events().
	Start(ctx context.Context, cmd *Command) (Process, error)

	// TargetOS returns the operating system of the target environment.
	TargetOS() TargetOS
}

// Process represents a command that has been started.
// Providers own the handle; the futures built on top of it never close it.
type Process interface {
	io.Closer

	// PID returns the provider's identifier for the process. Zero means it never started.
	PID() int

	// Stdout is the live standard output of the process.
	Stdout() *Stream

	// Stderr is the live standard error of the process.
	Stderr() *Stream

	// Events is the lifecycle event source (error, exit, close).
	Events() *Events

	// Wait blocks until the process exits.
	// Returns an *ExitError if the exit code is non-zero.
	Wait() error

	// Status returns termination metadata (only meaningful after Wait).
	Status() *Status

	// Signal sends an OS signal to the process.
	// Note: support for specific signals depends on the underlying provider.
	Signal(sig os.Signal) error
}

// Message is a single value exchanged over a forked child's message channel.
type Message = json.RawMessage

// Messenger is implemented by processes started with Command.IPC set.
type Messenger interface {
	// Send encodes v as JSON and delivers it to the child.
	Send(v any) error

	// OnMessage registers fn for every message the child sends.
	// Messages received before the first registration are queued and replayed.
	OnMessage(fn func(Message))
}
