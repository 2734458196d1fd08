package procfuture

import (
	"errors"
	"sync"
)

// errNilRejection replaces a nil error passed to reject.
var errNilRejection = errors.New("future rejected with nil error")

type cellState int

const (
	statePending cellState = iota
	stateResolved
	stateRejected
)

// cell is a write-once resolve/reject gate.
// The first resolve or reject wins; every later attempt is a no-op that returns false.
type cell[T any] struct {
	mu    sync.Mutex
	state cellState
	value T
	err   error
	done  chan struct{}
}

func newCell[T any]() *cell[T] {
	return &cell[T]{done: make(chan struct{})}
}

func (c *cell[T]) resolve(v T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != statePending {
		return false
	}

	c.state, c.value = stateResolved, v
	close(c.done)

	return true
}

func (c *cell[T]) reject(err error) bool {
	if err == nil {
		err = errNilRejection
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != statePending {
		return false
	}

	c.state, c.err = stateRejected, err
	close(c.done)

	return true
}

// outcome returns the settled value and error. Only valid after done is closed.
func (c *cell[T]) outcome() (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.value, c.err
}

func (c *cell[T]) pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.state == statePending
}
