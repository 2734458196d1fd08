// Package local provides an implementation of the procfuture.Launcher interface
// for the local operating system.
//
// It is a thin wrapper around the standard library's "os/exec" package. Processes
// report exit and close once os/exec has reaped them and drained both output pipes.
// Commands with IPC set get a message channel on descriptors 3 and 4 (not on Windows).
//
// Usage:
//
//	l, _ := local.New()
//	f := procfuture.NewExecutor(l).RunStreamed(ctx, procfuture.NewCommand("echo", "hello"))
//	res, err := f.Wait(ctx)
package local
