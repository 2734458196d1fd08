package procfuture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLaunchCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"invalid config", fmt.Errorf("%w: bad", ErrInvalidConfig), CodeInvalid},
		{"not supported", fmt.Errorf("tty: %w", ErrNotSupported), CodeNotSupported},
		{"closed", ErrEnvironmentClosed, CodeClosed},
		{"lookpath", &exec.Error{Name: "nope", Err: exec.ErrNotFound}, CodeNotFound},
		{"missing file", &fs.PathError{Op: "fork/exec", Path: "/nope", Err: syscall.ENOENT}, CodeNotFound},
		{"permission", &fs.PathError{Op: "fork/exec", Path: "/etc", Err: syscall.EACCES}, CodePermission},
		{"exec format", &fs.PathError{Op: "fork/exec", Path: "/bin.txt", Err: syscall.ENOEXEC}, CodeExecFormat},
		{"canceled", fmt.Errorf("stop: %w", context.Canceled), CodeCanceled},
		{"deadline", context.DeadlineExceeded, CodeCanceled},
		{"unknown", errors.New("boom"), CodeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, launchCode(tt.err))
		})
	}
}

func TestCode(t *testing.T) {
	t.Parallel()

	exit := ExitCode(2)
	n, ok := exit.Exit()
	assert.True(t, ok)
	assert.Equal(t, 2, n)
	assert.Empty(t, exit.Name())
	assert.Equal(t, "2", exit.String())

	named := NamedCode(CodeNotFound)
	_, ok = named.Exit()
	assert.False(t, ok)
	assert.Equal(t, "ENOENT", named.Name())
	assert.Equal(t, "ENOENT", named.String())

	assert.NotEqual(t, ExitCode(0), NamedCode(""))
}

func TestKind_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "launch", KindLaunch.String())
	assert.Equal(t, "exit", KindExit.String())
	assert.Equal(t, "buffered", KindBuffered.String())
	assert.Equal(t, "unknown", Kind(42).String())
}

func TestNewBufferedFailure(t *testing.T) {
	t.Parallel()

	t.Run("exit error", func(t *testing.T) {
		t.Parallel()

		cause := &ExitError{ExitCode: 1}
		e := newBufferedFailure("grep -q x", cause, nil, "out", "err")

		assert.Equal(t, "command exited with code 1 `grep -q x` (exited with error code 1)", e.Error())
		assert.Equal(t, ExitCode(1), e.Code)
		assert.Equal(t, "out", *e.Stdout)
		assert.Equal(t, "err", *e.Stderr)
		assert.ErrorIs(t, e, cause)
	})

	t.Run("launch error", func(t *testing.T) {
		t.Parallel()

		e := newBufferedFailure("nope", exec.ErrNotFound, nil, "", "")

		assert.Equal(t, NamedCode(CodeNotFound), e.Code)
		assert.Contains(t, e.Message, "(exited with error code ENOENT)")
		assert.Equal(t, KindBuffered, e.Kind)
	})
}

func TestNewExitFailure(t *testing.T) {
	t.Parallel()

	capture := NewCapture(Stdout)
	_, _ = capture.out.Write([]byte("partial"))

	e := newExitFailure(NewCommand("make", "build"), 2, nil, capture)

	assert.Equal(t, "`make build` failed with code 2", e.Message)
	assert.Equal(t, KindExit, e.Kind)
	assert.Equal(t, "partial", *e.Stdout)
	assert.Nil(t, e.Stderr)
	assert.NoError(t, e.Unwrap())
}

func TestErrorWrappers(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection reset")

	exitErr := &ExitError{Command: NewCommand("ls"), ExitCode: 1, Cause: cause}
	require.ErrorIs(t, exitErr, cause)

	transport := &TransportError{Command: NewCommand("ls"), Err: cause}
	require.ErrorIs(t, transport, cause)
	assert.Equal(t, `transport error executing "ls": connection reset`, transport.Error())
	assert.Equal(t, "transport error: connection reset", (&TransportError{Err: cause}).Error())

	unhandled := &UnhandledRejectionError{Err: cause}
	require.ErrorIs(t, unhandled, cause)
	assert.Equal(t, "unhandled rejection: connection reset", unhandled.Error())

	assert.Equal(t, "future callback panicked: x", (&PanicError{Value: "x"}).Error())
}

func TestCapture(t *testing.T) {
	t.Parallel()

	t.Run("unselected streams untouched", func(t *testing.T) {
		t.Parallel()

		var callerErr bytes.Buffer

		cmd := &Command{Cmd: "ls", Stderr: &callerErr}

		c := NewCapture(Stdout, Stdout)
		c.Attach(cmd)

		_, _ = cmd.Stdout.Write([]byte("a"))
		_, _ = cmd.Stdout.Write([]byte("b"))

		assert.Same(t, &callerErr, cmd.Stderr)
		assert.Equal(t, "ab", *c.stdout())
		assert.Nil(t, c.stderr())
	})

	t.Run("tees into caller writer", func(t *testing.T) {
		t.Parallel()

		var callerOut bytes.Buffer

		cmd := &Command{Cmd: "ls", Stdout: &callerOut}

		c := NewCapture(Stdout, Stderr)
		c.Attach(cmd)

		_, _ = cmd.Stdout.Write([]byte("out"))
		_, _ = cmd.Stderr.Write([]byte("err"))

		assert.Equal(t, "out", callerOut.String())
		assert.Equal(t, "out", *c.stdout())
		assert.Equal(t, "err", *c.stderr())
	})

	t.Run("nil capture", func(t *testing.T) {
		t.Parallel()

		var c *Capture

		assert.Nil(t, c.stdout())
		assert.Nil(t, c.stderr())
	})
}

func TestParseStream(t *testing.T) {
	t.Parallel()

	s, err := ParseStream(" STDOUT ")
	require.NoError(t, err)
	assert.Equal(t, Stdout, s)

	s, err = ParseStream("stderr")
	require.NoError(t, err)
	assert.Equal(t, Stderr, s)

	_, err = ParseStream("stdin")
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestStreamConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		opts    []Option
		wantErr bool
	}{
		{name: "defaults"},
		{name: "custom codes", opts: []Option{WithSuccessfulExitCodes(0, 1, 2)}},
		{name: "capture both", opts: []Option{WithCapture(Stdout, Stderr)}},
		{name: "no codes", opts: []Option{WithSuccessfulExitCodes()}, wantErr: true},
		{name: "unknown stream", opts: []Option{WithCapture("stdin")}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := DefaultStreamConfig()
			for _, o := range tt.opts {
				o(&cfg)
			}

			err := cfg.Validate()
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidConfig)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestStreamConfig_Successful(t *testing.T) {
	t.Parallel()

	cfg := DefaultStreamConfig()
	assert.True(t, cfg.successful(0))
	assert.False(t, cfg.successful(1))

	WithSuccessfulExitCodes(1, 2)(&cfg)
	assert.False(t, cfg.successful(0))
	assert.True(t, cfg.successful(2))
}
