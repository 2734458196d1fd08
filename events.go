package procfuture

import "sync"

// Events is the lifecycle event source of a Process.
//
// Each event fires at most once and is latched: a listener registered after the event
// was emitted is invoked immediately with the recorded value. Listeners run on the
// goroutine that emits (or, for late registrations, the one that registers).
type Events struct {
	mu sync.Mutex

	err       error
	errFired  bool
	exitCode  int
	exitFired bool
	closeCode int
	closed    bool

	onError []func(error)
	onExit  []func(int)
	onClose []func(int)
}

// NewEvents returns an empty event source. Providers create one per process.
func NewEvents() *Events {
	return &Events{}
}

// OnError registers fn for a launch or runtime failure of the process.
func (e *Events) OnError(fn func(err error)) {
	e.mu.Lock()

	if e.errFired {
		err := e.err
		e.mu.Unlock()
		fn(err)

		return
	}

	e.onError = append(e.onError, fn)
	e.mu.Unlock()
}

// OnExit registers fn for the moment the process has exited.
func (e *Events) OnExit(fn func(code int)) {
	e.mu.Lock()

	if e.exitFired {
		code := e.exitCode
		e.mu.Unlock()
		fn(code)

		return
	}

	e.onExit = append(e.onExit, fn)
	e.mu.Unlock()
}

// OnClose registers fn for the moment the process has exited and its output streams are drained.
func (e *Events) OnClose(fn func(code int)) {
	e.mu.Lock()

	if e.closed {
		code := e.closeCode
		e.mu.Unlock()
		fn(code)

		return
	}

	e.onClose = append(e.onClose, fn)
	e.mu.Unlock()
}

// EmitError records err and notifies listeners. Returns false if an error was already emitted.
func (e *Events) EmitError(err error) bool {
	e.mu.Lock()

	if e.errFired {
		e.mu.Unlock()

		return false
	}

	e.err, e.errFired = err, true
	listeners := e.onError
	e.onError = nil
	e.mu.Unlock()

	for _, fn := range listeners {
		fn(err)
	}

	return true
}

// EmitExit records the exit code and notifies listeners. Returns false on repeat calls.
func (e *Events) EmitExit(code int) bool {
	e.mu.Lock()

	if e.exitFired {
		e.mu.Unlock()

		return false
	}

	e.exitCode, e.exitFired = code, true
	listeners := e.onExit
	e.onExit = nil
	e.mu.Unlock()

	for _, fn := range listeners {
		fn(code)
	}

	return true
}

// EmitClose records the close code and notifies listeners. Returns false on repeat calls.
func (e *Events) EmitClose(code int) bool {
	e.mu.Lock()

	if e.closed {
		e.mu.Unlock()

		return false
	}

	e.closeCode, e.closed = code, true
	listeners := e.onClose
	e.onClose = nil
	e.mu.Unlock()

	for _, fn := range listeners {
		fn(code)
	}

	return true
}
