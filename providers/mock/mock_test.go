package mock

import (
	"context"
	"strings"
	"testing"

	"github.com/ruffel/procfuture"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestMockLauncher(t *testing.T) {
	t.Parallel()

	l := New()
	p := NewProcess(7)
	ctx := context.Background()

	var out strings.Builder

	l.ExpectStart(func(c *procfuture.Command) bool { return c.Cmd == "echo" }, p)

	got, err := l.Start(ctx, &procfuture.Command{Cmd: "echo", Stdout: &out})
	require.NoError(t, err)
	assert.Same(t, p, got)
	assert.Equal(t, 7, got.PID())

	p.WriteStdout("hello")
	assert.Equal(t, "hello", out.String())

	l.AssertExpectations(t)
}

func TestMockProcess_Events(t *testing.T) {
	t.Parallel()

	p := NewProcess(1)

	var codes []int

	p.Events().OnExit(func(code int) { codes = append(codes, code) })

	assert.True(t, p.Events().EmitExit(3))
	assert.False(t, p.Events().EmitExit(4))
	assert.Equal(t, []int{3}, codes)
}

func TestMockProcess_Messages(t *testing.T) {
	t.Parallel()

	p := NewProcess(1)
	p.Deliver(procfuture.Message(`"early"`))

	var got []string

	p.OnMessage(func(m procfuture.Message) { got = append(got, string(m)) })
	p.Deliver(procfuture.Message(`"late"`))

	assert.Equal(t, []string{`"early"`, `"late"`}, got)

	p.On("Send", mock.Anything).Return(nil)
	require.NoError(t, p.Send(map[string]int{"n": 1}))
	p.AssertCalled(t, "Send", map[string]int{"n": 1})
}

func TestWriteOutput(t *testing.T) {
	t.Parallel()

	l := New()
	p := NewProcess(9)

	var out strings.Builder

	l.ExpectStart(func(c *procfuture.Command) bool { return c.Cmd == "uptime" }, p)
	p.On("Wait").Run(WriteOutput(&out, "up 3 days\n")).Return(nil)

	got, err := l.Start(context.Background(), &procfuture.Command{Cmd: "uptime"})
	require.NoError(t, err)
	require.NoError(t, got.Wait())

	assert.Equal(t, "up 3 days\n", out.String())
	p.AssertExpectations(t)
}
