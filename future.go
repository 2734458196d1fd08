package procfuture

import (
	"context"
	"sync"
)

// Future is a value that settles exactly once, with a T or an error, and carries the
// Process handle it was created for.
//
// The handle is fixed when the future is created and every future derived from it
// (Then, Catch, Fail, Chain) carries the same reference. Deriving never re-runs the
// process.
type Future[T any] struct {
	cell    *cell[T]
	process Process
	sched   Scheduler
	gate    *progressGate
}

// FutureOption configures a Future created with New.
type FutureOption func(*futureConfig)

type futureConfig struct {
	sched Scheduler
}

// ScheduleOn sets the scheduler used for Progress callbacks and Done re-raises.
func ScheduleOn(s Scheduler) FutureOption {
	return func(c *futureConfig) {
		if s != nil {
			c.sched = s
		}
	}
}

// New creates a pending future with no process handle.
// If executor is non-nil it is invoked immediately with the resolve and reject
// capabilities. A panic inside executor rejects the future with a *PanicError.
func New[T any](executor func(resolve func(T), reject func(error)), opts ...FutureOption) *Future[T] {
	cfg := futureConfig{sched: GoScheduler}
	for _, o := range opts {
		o(&cfg)
	}

	f := newFuture[T](nil, cfg.sched)

	if executor != nil {
		f.run(func() (T, error) {
			executor(func(v T) { f.cell.resolve(v) }, func(err error) { f.cell.reject(err) })

			var zero T

			return zero, nil
		}, false)
	}

	return f
}

func newFuture[T any](p Process, sched Scheduler) *Future[T] {
	if sched == nil {
		sched = GoScheduler
	}

	return &Future[T]{
		cell:    newCell[T](),
		process: p,
		sched:   sched,
		gate:    &progressGate{},
	}
}

// derive creates a pending future sharing f's handle, scheduler and progress gate.
func derive[T, U any](f *Future[T]) *Future[U] {
	return &Future[U]{
		cell:    newCell[U](),
		process: f.process,
		sched:   f.sched,
		gate:    f.gate,
	}
}

// Process returns the handle of the process this future belongs to.
// It is nil only for futures created with New.
func (f *Future[T]) Process() Process {
	return f.process
}

// Progress schedules fn(handle) on the scheduler and returns f for chaining.
// fn never runs inline. Panics raised by fn are not converted into rejections.
//
// Launch adapters do not settle until progress callbacks registered before the process
// terminated have been dispatched by the scheduler. They do not wait for a callback to
// return, so a callback may Close or Wait on the handle.
func (f *Future[T]) Progress(fn func(p Process)) *Future[T] {
	dispatched := f.gate.add()
	p := f.process

	f.sched.Schedule(func() {
		close(dispatched)

		fn(p)
	})

	return f
}

// Then returns a future settled by onFulfilled or onRejected once f settles.
// A nil handler passes the value or error through unchanged. A handler returning a
// non-nil error rejects the derived future.
func (f *Future[T]) Then(onFulfilled func(T) (T, error), onRejected func(error) (T, error)) *Future[T] {
	next := derive[T, T](f)

	go func() {
		<-f.cell.done

		v, err := f.cell.outcome()

		next.run(func() (T, error) {
			if err != nil {
				if onRejected == nil {
					return v, err
				}

				return onRejected(err)
			}

			if onFulfilled == nil {
				return v, nil
			}

			return onFulfilled(v)
		}, true)
	}()

	return next
}

// Catch is Then(nil, onRejected).
func (f *Future[T]) Catch(onRejected func(error) (T, error)) *Future[T] {
	return f.Then(nil, onRejected)
}

// Fail is an alias of Catch.
func (f *Future[T]) Fail(onRejected func(error) (T, error)) *Future[T] {
	return f.Catch(onRejected)
}

// Chain is Then for handlers that change the value type.
// Rejections of f propagate to the returned future unchanged.
func Chain[T, U any](f *Future[T], onFulfilled func(T) (U, error)) *Future[U] {
	next := derive[T, U](f)

	go func() {
		<-f.cell.done

		v, err := f.cell.outcome()

		next.run(func() (U, error) {
			if err != nil {
				var zero U

				return zero, err
			}

			return onFulfilled(v)
		}, true)
	}()

	return next
}

// Done ends a chain. If f rejects, the error is re-raised on the scheduler as a panic
// carrying an *UnhandledRejectionError.
func (f *Future[T]) Done() {
	go func() {
		<-f.cell.done

		if _, err := f.cell.outcome(); err != nil {
			f.sched.Schedule(func() {
				panic(&UnhandledRejectionError{Err: err})
			})
		}
	}()
}

// Wait blocks until f settles or ctx is done.
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-f.cell.done:
		return f.cell.outcome()
	case <-ctx.Done():
		var zero T

		return zero, ctx.Err()
	}
}

// Settled returns a channel closed once f has settled.
func (f *Future[T]) Settled() <-chan struct{} {
	return f.cell.done
}

// Pending reports whether f has not settled yet.
func (f *Future[T]) Pending() bool {
	return f.cell.pending()
}

// resolve and reject are the adapters' settlement path: they wait until outstanding
// progress callbacks have been dispatched.
func (f *Future[T]) resolve(v T) bool {
	f.gate.wait()

	return f.cell.resolve(v)
}

func (f *Future[T]) reject(err error) bool {
	f.gate.wait()

	return f.cell.reject(err)
}

// run settles f from fn's return values, converting a panic into a *PanicError
// rejection. With settle=false only panics settle f.
func (f *Future[T]) run(fn func() (T, error), settle bool) {
	defer func() {
		if r := recover(); r != nil {
			f.cell.reject(&PanicError{Value: r})
		}
	}()

	v, err := fn()
	if !settle {
		return
	}

	if err != nil {
		f.cell.reject(err)

		return
	}

	f.cell.resolve(v)
}

// progressGate tracks progress callbacks that have been scheduled but not yet dispatched.
type progressGate struct {
	mu      sync.Mutex
	pending []chan struct{}
}

func (g *progressGate) add() chan struct{} {
	done := make(chan struct{})

	g.mu.Lock()
	g.pending = append(g.pending, done)
	g.mu.Unlock()

	return done
}

func (g *progressGate) wait() {
	g.mu.Lock()
	pending := g.pending
	g.pending = nil
	g.mu.Unlock()

	for _, done := range pending {
		<-done
	}
}
