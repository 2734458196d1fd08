// Package ipc implements the message channel between a forked child and its parent.
//
// Messages are JSON values, one per line, written over a pair of pipes. The parent
// side is created by the local provider when Command.IPC is set; the child obtains its
// end with FromEnv.
package ipc

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"
)

// EnvFD names the environment variable carrying the child's read descriptor.
// The write descriptor is the next one.
const EnvFD = "PROCFUTURE_CHANNEL_FD"

// ErrClosed is returned by Send after the channel was closed.
var ErrClosed = errors.New("ipc channel closed")

// ErrNoChannel is returned by FromEnv when the process was not started with a channel.
var ErrNoChannel = errors.New("process has no ipc channel")

// Channel is one end of a message channel.
type Channel struct {
	r io.ReadCloser
	w io.WriteCloser

	wmu sync.Mutex
	enc *json.Encoder

	mu       sync.Mutex
	handlers []func(json.RawMessage)
	inbox    []json.RawMessage
	closed   bool
	err      error

	done chan struct{}
}

// NewChannel starts reading messages from r. Messages are written to w.
func NewChannel(r io.ReadCloser, w io.WriteCloser) *Channel {
	c := &Channel{
		r:    r,
		w:    w,
		enc:  json.NewEncoder(w),
		done: make(chan struct{}),
	}

	go c.read()

	return c
}

// FromEnv opens the channel inherited from the parent.
func FromEnv() (*Channel, error) {
	v, ok := os.LookupEnv(EnvFD)
	if !ok {
		return nil, ErrNoChannel
	}

	fd, err := strconv.Atoi(v)
	if err != nil || fd < 3 {
		return nil, fmt.Errorf("invalid %s %q: %w", EnvFD, v, ErrNoChannel)
	}

	r := os.NewFile(uintptr(fd), "ipc-read")
	w := os.NewFile(uintptr(fd+1), "ipc-write")

	if r == nil || w == nil {
		return nil, fmt.Errorf("descriptors %d/%d: %w", fd, fd+1, ErrNoChannel)
	}

	return NewChannel(r, w), nil
}

// Env returns the "KEY=VALUE" entry telling a child where its channel starts.
func Env(fd int) string {
	return EnvFD + "=" + strconv.Itoa(fd)
}

// Send encodes v as one JSON message.
func (c *Channel) Send(v any) error {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()

	if closed {
		return ErrClosed
	}

	c.wmu.Lock()
	defer c.wmu.Unlock()

	if err := c.enc.Encode(v); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}

	return nil
}

// OnMessage registers fn for every received message.
// Messages that arrived before the first registration are replayed to it.
// Handlers run sequentially on the channel's reader goroutine.
func (c *Channel) OnMessage(fn func(json.RawMessage)) {
	c.mu.Lock()
	c.handlers = append(c.handlers, fn)
	queued := c.inbox
	c.inbox = nil
	c.mu.Unlock()

	for _, msg := range queued {
		fn(msg)
	}
}

// Done is closed once the peer has closed its end or the stream became unreadable.
func (c *Channel) Done() <-chan struct{} {
	return c.done
}

// Err returns the error that stopped the reader, or nil on a clean end of stream.
func (c *Channel) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.err
}

// Close closes both ends. Pending reads stop; later Sends fail with ErrClosed.
func (c *Channel) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()

		return nil
	}

	c.closed = true
	c.mu.Unlock()

	c.wmu.Lock()
	werr := c.w.Close()
	c.wmu.Unlock()

	return errors.Join(werr, c.r.Close())
}

func (c *Channel) read() {
	defer close(c.done)

	br := bufio.NewReader(c.r)

	for {
		line, err := br.ReadBytes('\n')
		if len(line) > 0 {
			if derr := c.dispatch(line); derr != nil {
				c.setErr(derr)

				return
			}
		}

		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, os.ErrClosed) && !errors.Is(err, io.ErrClosedPipe) {
				c.setErr(err)
			}

			return
		}
	}
}

func (c *Channel) dispatch(line []byte) error {
	var msg json.RawMessage
	if err := json.Unmarshal(line, &msg); err != nil {
		return fmt.Errorf("malformed message: %w", err)
	}

	c.mu.Lock()
	if len(c.handlers) == 0 {
		c.inbox = append(c.inbox, msg)
		c.mu.Unlock()

		return nil
	}

	handlers := append([]func(json.RawMessage){}, c.handlers...)
	c.mu.Unlock()

	for _, fn := range handlers {
		fn(msg)
	}

	return nil
}

func (c *Channel) setErr(err error) {
	c.mu.Lock()
	c.err = err
	c.mu.Unlock()
}
