package mock

import (
	"context"
	"io"
	"os"
	"sync"

	"github.com/ruffel/procfuture"
	"github.com/stretchr/testify/mock"
)

// Launcher implements a mock procfuture.Launcher using testify/mock.
type Launcher struct {
	mock.Mock
}

var _ procfuture.Launcher = (*Launcher)(nil)

// New creates a new mock launcher.
func New() *Launcher {
	return &Launcher{}
}

// Start mocks starting a command.
func (m *Launcher) Start(ctx context.Context, cmd *procfuture.Command) (procfuture.Process, error) {
	args := m.Called(ctx, cmd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(procfuture.Process), args.Error(1)
}

// ExpectStart registers a Start expectation for commands accepted by match and
// returns p, bound to the command it was started with.
func (m *Launcher) ExpectStart(match func(*procfuture.Command) bool, p *Process) *mock.Call {
	return m.On("Start", mock.Anything, mock.MatchedBy(match)).
		Run(func(args mock.Arguments) {
			p.Bind(args.Get(1).(*procfuture.Command))
		}).
		Return(p, nil)
}

// TargetOS mocks returning the target operating system.
func (m *Launcher) TargetOS() procfuture.TargetOS {
	args := m.Called()

	return args.Get(0).(procfuture.TargetOS)
}

// Close mocks closing the launcher.
func (m *Launcher) Close() error {
	args := m.Called()

	return args.Error(0)
}

// Process implements procfuture.Process and procfuture.Messenger.
//
// Wait, Status, Signal, Close and Send go through testify/mock. The streams and the
// lifecycle events are real so tests can drive them in any order.
type Process struct {
	mock.Mock

	pid    int
	events *procfuture.Events

	mu       sync.Mutex
	stdout   *procfuture.Stream
	stderr   *procfuture.Stream
	handlers []func(procfuture.Message)
	inbox    []procfuture.Message
}

var (
	_ procfuture.Process   = (*Process)(nil)
	_ procfuture.Messenger = (*Process)(nil)
)

// NewProcess creates an unbound mock process with the given PID.
func NewProcess(pid int) *Process {
	return &Process{
		pid:    pid,
		events: procfuture.NewEvents(),
		stdout: procfuture.NewStream(nil),
		stderr: procfuture.NewStream(nil),
	}
}

// Bind routes the process streams into the writers of cmd, the way a real provider
// would after Start.
func (m *Process) Bind(cmd *procfuture.Command) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stdout = procfuture.NewStream(cmd.Stdout)
	m.stderr = procfuture.NewStream(cmd.Stderr)
}

// PID returns the PID given to NewProcess.
func (m *Process) PID() int {
	return m.pid
}

// Stdout returns the standard output stream.
func (m *Process) Stdout() *procfuture.Stream {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.stdout
}

// Stderr returns the standard error stream.
func (m *Process) Stderr() *procfuture.Stream {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.stderr
}

// Events returns the lifecycle event source.
func (m *Process) Events() *procfuture.Events {
	return m.events
}

// WriteStdout simulates the process writing s to its standard output.
func (m *Process) WriteStdout(s string) {
	_, _ = io.WriteString(m.Stdout(), s)
}

// WriteStderr simulates the process writing s to its standard error.
func (m *Process) WriteStderr(s string) {
	_, _ = io.WriteString(m.Stderr(), s)
}

// Wait mocks waiting for the process to complete.
func (m *Process) Wait() error {
	args := m.Called()

	return args.Error(0)
}

// Status mocks returning the process status.
func (m *Process) Status() *procfuture.Status {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}

	return args.Get(0).(*procfuture.Status)
}

// Signal mocks sending a signal to the process.
func (m *Process) Signal(sig os.Signal) error {
	args := m.Called(sig)

	return args.Error(0)
}

// Close mocks closing the process.
func (m *Process) Close() error {
	args := m.Called()

	return args.Error(0)
}

// Send mocks sending a message to the child.
func (m *Process) Send(v any) error {
	args := m.Called(v)

	return args.Error(0)
}

// OnMessage registers fn and replays any message delivered before the first registration.
func (m *Process) OnMessage(fn func(procfuture.Message)) {
	m.mu.Lock()
	m.handlers = append(m.handlers, fn)
	queued := m.inbox
	m.inbox = nil
	m.mu.Unlock()

	for _, msg := range queued {
		fn(msg)
	}
}

// Deliver simulates the child sending msg.
func (m *Process) Deliver(msg procfuture.Message) {
	m.mu.Lock()
	if len(m.handlers) == 0 {
		m.inbox = append(m.inbox, msg)
		m.mu.Unlock()

		return
	}

	handlers := append([]func(procfuture.Message){}, m.handlers...)
	m.mu.Unlock()

	for _, fn := range handlers {
		fn(msg)
	}
}

// WriteOutput is a helper to simulate output writing for mocked processes.
// Usage: proc.On("Wait").Run(WriteOutput(&stdout, "output")).Return(nil).
func WriteOutput(w io.Writer, content string) func(mock.Arguments) {
	return func(mock.Arguments) {
		if w != nil {
			_, _ = io.WriteString(w, content)
		}
	}
}
