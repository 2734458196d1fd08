package ipc

import (
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pair returns two channels connected back to back.
func pair(t *testing.T) (*Channel, *Channel) {
	t.Helper()

	ar, bw := io.Pipe()
	br, aw := io.Pipe()

	a := NewChannel(ar, aw)
	b := NewChannel(br, bw)

	t.Cleanup(func() {
		_ = a.Close()
		_ = b.Close()
	})

	return a, b
}

func receive(t *testing.T, ch <-chan json.RawMessage) json.RawMessage {
	t.Helper()

	select {
	case m := <-ch:
		return m
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for message")

		return nil
	}
}

func TestChannel_RoundTrip(t *testing.T) {
	t.Parallel()

	a, b := pair(t)

	got := make(chan json.RawMessage, 4)
	b.OnMessage(func(m json.RawMessage) { got <- m })

	go func() {
		_ = a.Send(map[string]any{"hello": "world"})
		_ = a.Send([]int{1, 2, 3})
	}()

	assert.JSONEq(t, `{"hello":"world"}`, string(receive(t, got)))
	assert.JSONEq(t, `[1,2,3]`, string(receive(t, got)))
}

func TestChannel_QueuesUntilFirstListener(t *testing.T) {
	t.Parallel()

	a, b := pair(t)

	sent := make(chan error, 1)

	go func() { sent <- a.Send("early") }()

	require.NoError(t, <-sent)

	// The reader goroutine may still be between reading and queuing.
	require.Eventually(t, func() bool {
		b.mu.Lock()
		defer b.mu.Unlock()

		return len(b.inbox) == 1
	}, time.Second, 5*time.Millisecond)

	got := make(chan json.RawMessage, 1)
	b.OnMessage(func(m json.RawMessage) { got <- m })

	assert.JSONEq(t, `"early"`, string(receive(t, got)))
}

func TestChannel_CloseEndsPeer(t *testing.T) {
	t.Parallel()

	a, b := pair(t)

	require.NoError(t, a.Close())
	require.ErrorIs(t, a.Send("x"), ErrClosed)

	select {
	case <-b.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("peer reader did not stop")
	}

	assert.NoError(t, b.Err())
}

func TestFromEnv_Missing(t *testing.T) {
	t.Setenv(EnvFD, "")

	_, err := FromEnv()
	require.ErrorIs(t, err, ErrNoChannel)
}

func TestEnv(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "PROCFUTURE_CHANNEL_FD=3", Env(3))
}
