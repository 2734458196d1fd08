package procfuture

// Scheduler runs deferred tasks: Progress callbacks and the re-raise performed by Done.
//
// A task must never run inline inside Schedule. Panics raised by a task are the
// scheduler's to handle; the default scheduler lets them crash the program like any
// other goroutine panic.
type Scheduler interface {
	Schedule(task func())
}

// SchedulerFunc adapts a function to the Scheduler interface.
type SchedulerFunc func(task func())

// Schedule calls f(task).
func (f SchedulerFunc) Schedule(task func()) {
	f(task)
}

// GoScheduler runs every task on its own goroutine.
var GoScheduler Scheduler = SchedulerFunc(func(task func()) { go task() })
