package procfuture

import (
	"io"
	"sync"
)

// Stream is one live output stream of a Process.
//
// Providers write every chunk the process produces into the Stream. The chunk is
// forwarded to the sink (usually the caller's Command.Stdout/Stderr) and then handed
// to each data listener. Listeners see only chunks written after they registered.
type Stream struct {
	mu        sync.Mutex
	sink      io.Writer
	listeners []func([]byte)
}

// NewStream creates a stream forwarding to sink. A nil sink discards.
func NewStream(sink io.Writer) *Stream {
	if sink == nil {
		sink = io.Discard
	}

	return &Stream{sink: sink}
}

// OnData registers fn for every subsequent chunk.
// The slice passed to fn is a copy owned by the listener.
func (s *Stream) OnData(fn func(chunk []byte)) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

// Write implements io.Writer.
func (s *Stream) Write(p []byte) (int, error) {
	s.mu.Lock()
	listeners := s.listeners
	s.mu.Unlock()

	n, err := s.sink.Write(p)

	for _, fn := range listeners {
		chunk := make([]byte, len(p))
		copy(chunk, p)
		fn(chunk)
	}

	return n, err
}
