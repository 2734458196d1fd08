package procfuture

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

// StreamName identifies one of the process output streams.
type StreamName string

const (
	// Stdout is the process standard output.
	Stdout StreamName = "stdout"
	// Stderr is the process standard error.
	Stderr StreamName = "stderr"
)

// ParseStream converts "stdout"/"stderr" (case-insensitive) to a StreamName.
func ParseStream(s string) (StreamName, error) {
	switch StreamName(strings.ToLower(strings.TrimSpace(s))) {
	case Stdout:
		return Stdout, nil
	case Stderr:
		return Stderr, nil
	default:
		return "", fmt.Errorf("unknown stream %q: %w", s, ErrInvalidConfig)
	}
}

// captureBuffer accumulates one stream's output as text.
// It is written by the single goroutine copying that stream.
type captureBuffer struct {
	mu sync.Mutex
	b  strings.Builder
}

func (c *captureBuffer) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.b.Write(p)
}

func (c *captureBuffer) String() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.b.String()
}

// Capture holds the buffers for the streams selected by a capture policy.
// A stream that was not selected has no buffer and reports nil.
type Capture struct {
	out *captureBuffer
	err *captureBuffer
}

// NewCapture allocates buffers for the given streams.
func NewCapture(streams ...StreamName) *Capture {
	c := &Capture{}

	for _, s := range streams {
		switch s {
		case Stdout:
			if c.out == nil {
				c.out = &captureBuffer{}
			}
		case Stderr:
			if c.err == nil {
				c.err = &captureBuffer{}
			}
		}
	}

	return c
}

// Attach routes the selected streams of cmd into the buffers, keeping any writer the
// caller already set on cmd.
func (c *Capture) Attach(cmd *Command) {
	if c.out != nil {
		cmd.Stdout = tee(cmd.Stdout, c.out)
	}

	if c.err != nil {
		cmd.Stderr = tee(cmd.Stderr, c.err)
	}
}

func tee(existing io.Writer, buf *captureBuffer) io.Writer {
	if existing == nil {
		return buf
	}

	return io.MultiWriter(existing, buf)
}

// stdout returns the captured standard output, or nil if it was not selected.
func (c *Capture) stdout() *string {
	if c == nil || c.out == nil {
		return nil
	}

	s := c.out.String()

	return &s
}

// stderr returns the captured standard error, or nil if it was not selected.
func (c *Capture) stderr() *string {
	if c == nil || c.err == nil {
		return nil
	}

	s := c.err.String()

	return &s
}
