package procfuture

import (
	"context"
	"io"
	"strings"
)

// Builder provides a fluent API for constructing Commands and launching them.
type Builder struct {
	cmd *Command
}

// Cmd creates a new Builder for a command with the given name/path.
func Cmd(binary string) *Builder {
	return &Builder{
		cmd: &Command{
			Cmd: binary,
		},
	}
}

// Arg adds a single argument.
func (b *Builder) Arg(arg string) *Builder {
	b.cmd.Args = append(b.cmd.Args, arg)

	return b
}

// Args adds multiple arguments.
func (b *Builder) Args(args ...string) *Builder {
	b.cmd.Args = append(b.cmd.Args, args...)

	return b
}

// Env adds an environment variable in "KEY=VALUE" format.
func (b *Builder) Env(key, value string) *Builder {
	b.cmd.Env = append(b.cmd.Env, key+"="+value)

	return b
}

// Dir sets the working directory.
func (b *Builder) Dir(dir string) *Builder {
	b.cmd.Dir = dir

	return b
}

// Stdin sets the standard input stream.
func (b *Builder) Stdin(r io.Reader) *Builder {
	b.cmd.Stdin = r

	return b
}

// Input sets the standard input from a string.
func (b *Builder) Input(s string) *Builder {
	b.cmd.Stdin = strings.NewReader(s)

	return b
}

// Stdout mirrors the process standard output into w.
func (b *Builder) Stdout(w io.Writer) *Builder {
	b.cmd.Stdout = w

	return b
}

// Stderr mirrors the process standard error into w.
func (b *Builder) Stderr(w io.Writer) *Builder {
	b.cmd.Stderr = w

	return b
}

// Tty enables PTY allocation.
func (b *Builder) Tty() *Builder {
	b.cmd.Tty = true

	return b
}

// IPC opens a message channel to the child.
func (b *Builder) IPC() *Builder {
	b.cmd.IPC = true

	return b
}

// Build returns a copy of the constructed Command.
func (b *Builder) Build() *Command {
	return b.cmd.clone()
}

// Stream launches the command on e in streamed style.
func (b *Builder) Stream(ctx context.Context, e *Executor, opts ...Option) *Future[*Result] {
	return e.RunStreamed(ctx, b.Build(), opts...)
}

// Fork launches the command on e in streamed style with a message channel.
func (b *Builder) Fork(ctx context.Context, e *Executor, opts ...Option) *Future[*Result] {
	return e.RunForked(ctx, b.Build(), opts...)
}

// Buffer launches the command on e in buffered style.
func (b *Builder) Buffer(ctx context.Context, e *Executor, opts ...Option) *Future[*Result] {
	cmd := b.Build()

	return e.RunBufferedFile(ctx, cmd.Cmd, cmd.Args, opts...)
}
