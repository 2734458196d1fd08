package procfuture

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// Executor launches processes on a Launcher and returns futures for them.
type Executor struct {
	env   Launcher
	log   *slog.Logger
	sched Scheduler
}

// NewExecutor creates a new Executor with the given launcher.
func NewExecutor(env Launcher, opts ...ExecutorOption) *Executor {
	e := &Executor{
		env:   env,
		log:   slog.New(slog.DiscardHandler),
		sched: GoScheduler,
	}

	for _, o := range opts {
		o(e)
	}

	return e
}

// RunBuffered splits commandLine with shlex and runs it in buffered style: both streams
// are captured and the future settles once the process has finished. Any non-zero exit
// code rejects.
//
// No shell is involved, so pipes, redirections, globs and variable expansion are passed
// to the program as literal arguments. Use RunShell for shell syntax.
func (e *Executor) RunBuffered(ctx context.Context, commandLine string, opts ...Option) *Future[*Result] {
	cmd, err := ParseCommand(commandLine)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		p := newUnstartedProcess(&Command{Cmd: commandLine}, err)

		return e.rejected(p, newBufferedFailure(commandLine, err, p, "", ""))
	}

	return e.runBuffered(ctx, cmd, commandLine, opts)
}

// RunBufferedFile runs path with args in buffered style.
func (e *Executor) RunBufferedFile(ctx context.Context, path string, args []string, opts ...Option) *Future[*Result] {
	cmd := NewCommand(path, args...)

	return e.runBuffered(ctx, cmd, cmd.Line(), opts)
}

// RunShell runs script through the target's default shell in buffered style.
func (e *Executor) RunShell(ctx context.Context, script string, opts ...Option) *Future[*Result] {
	return e.runBuffered(ctx, e.env.TargetOS().ShellCommand(script), script, opts)
}

// RunStreamed starts cmd and returns a future carrying the live handle.
//
// The future resolves with the exit code (and any captured streams) on the first
// termination signal whose code is in the successful set, and rejects with an *Error
// on a launch/runtime failure or an unsuccessful exit code. Fields of cmd other than
// the streams selected for capture are forwarded to the Launcher unmodified.
func (e *Executor) RunStreamed(ctx context.Context, cmd *Command, opts ...Option) *Future[*Result] {
	return e.runStreamed(ctx, cmd, false, opts)
}

// RunForked is RunStreamed with a message channel to the child.
// The handle implements Messenger; the child obtains its end with ipc.FromEnv.
func (e *Executor) RunForked(ctx context.Context, cmd *Command, opts ...Option) *Future[*Result] {
	return e.runStreamed(ctx, cmd, true, opts)
}

// TargetOS returns the operating system of the underlying launcher.
func (e *Executor) TargetOS() TargetOS {
	return e.env.TargetOS()
}

func (e *Executor) runBuffered(ctx context.Context, cmd *Command, line string, opts []Option) *Future[*Result] {
	cfg := DefaultStreamConfig()
	for _, o := range opts {
		o(&cfg)
	}

	launch, err := e.prepare(cmd, cfg)
	if err != nil {
		p := newUnstartedProcess(cmd, err)

		return e.rejected(p, newBufferedFailure(line, err, p, "", ""))
	}

	capture := NewCapture(Stdout, Stderr)
	capture.Attach(launch)

	proc, err := e.env.Start(ctx, launch)
	if err != nil {
		e.log.DebugContext(ctx, "process launch failed", "cmd", line, "error", err)

		p := newUnstartedProcess(launch, err)

		return e.rejected(p, newBufferedFailure(line, err, p, "", ""))
	}

	e.log.DebugContext(ctx, "process started", "cmd", line, "pid", proc.PID(), "style", "buffered")

	f := newFuture[*Result](proc, e.sched)

	go func() {
		waitErr := proc.Wait()
		stdout, stderr := capture.stdout(), capture.stderr()

		if waitErr != nil {
			var exitErr *ExitError
			if errors.As(waitErr, &exitErr) {
				exitErr.Stderr = []byte(*stderr)
			}

			f.reject(newBufferedFailure(line, waitErr, proc, *stdout, *stderr))
			e.log.DebugContext(ctx, "process failed", "cmd", line, "pid", proc.PID(), "error", waitErr)

			return
		}

		f.resolve(&Result{Process: proc, Stdout: stdout, Stderr: stderr})
		e.log.DebugContext(ctx, "process succeeded", "cmd", line, "pid", proc.PID())
	}()

	return f
}

func (e *Executor) runStreamed(ctx context.Context, cmd *Command, ipc bool, opts []Option) *Future[*Result] {
	cfg := DefaultStreamConfig()
	for _, o := range opts {
		o(&cfg)
	}

	capture := NewCapture(cfg.Capture...)

	launch, err := e.prepare(cmd, cfg)
	if err != nil {
		p := newUnstartedProcess(cmd, err)

		return e.rejected(p, newLaunchFailure(err, p, capture))
	}

	launch.IPC = launch.IPC || ipc
	capture.Attach(launch)

	proc, err := e.env.Start(ctx, launch)
	if err != nil {
		e.log.DebugContext(ctx, "process launch failed", "cmd", cmd.Line(), "error", err)

		p := newUnstartedProcess(launch, err)

		return e.rejected(p, newLaunchFailure(err, p, capture))
	}

	e.log.DebugContext(ctx, "process started", "cmd", cmd.Line(), "pid", proc.PID(), "style", "streamed")

	f := newFuture[*Result](proc, e.sched)
	events := proc.Events()

	events.OnError(func(err error) {
		if f.reject(newLaunchFailure(err, proc, capture)) {
			e.log.DebugContext(ctx, "process faulted", "cmd", cmd.Line(), "pid", proc.PID(), "error", err)
		}
	})

	terminated := func(signal string) func(int) {
		return func(code int) {
			if !cfg.successful(code) {
				if f.reject(newExitFailure(cmd, code, proc, capture)) {
					e.log.DebugContext(ctx, "process failed", "cmd", cmd.Line(), "pid", proc.PID(), "code", code, "signal", signal)
				}

				return
			}

			exitCode := code

			if f.resolve(&Result{Process: proc, Stdout: capture.stdout(), Stderr: capture.stderr(), ExitCode: &exitCode}) {
				e.log.DebugContext(ctx, "process succeeded", "cmd", cmd.Line(), "pid", proc.PID(), "code", code, "signal", signal)
			}
		}
	}

	events.OnExit(terminated("exit"))
	events.OnClose(terminated("close"))

	return f
}

// prepare validates the execution and returns the command handed to the launcher.
func (e *Executor) prepare(cmd *Command, cfg StreamConfig) (*Command, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	launch := cmd.clone()
	if cfg.SudoConfig != nil {
		launch = e.applySudo(launch, cfg.SudoConfig)
	}

	return launch, nil
}

func (e *Executor) rejected(p Process, err *Error) *Future[*Result] {
	f := newFuture[*Result](p, e.sched)
	f.cell.reject(err)

	return f
}

func (e *Executor) applySudo(cmd *Command, cfg *SudoConfig) *Command {
	args := []string{"-n"}

	if cfg.User != "" {
		args = append(args, "-u", cfg.User)
	}

	if cfg.Group != "" {
		args = append(args, "-g", cfg.Group)
	}

	if cfg.PreserveEnv {
		args = append(args, "-E")
	}

	args = append(args, cfg.CustomFlags...)
	args = append(args, "--", cmd.Cmd)

	newCmd := *cmd
	newCmd.Args = append(args, cmd.Args...)
	newCmd.Cmd = "sudo"

	return &newCmd
}
