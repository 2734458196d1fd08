// Package mock provides a controllable implementation of procfuture.Launcher
// for testing purposes.
//
// The Launcher records Start calls with testify/mock. The Process it returns has real
// streams and lifecycle events, so a test decides when output arrives and in which
// order error, exit and close fire.
//
// Usage:
//
//	l := mock.New()
//	p := mock.NewProcess(42)
//	l.ExpectStart(func(c *procfuture.Command) bool { return c.Cmd == "git" }, p)
//	f := procfuture.NewExecutor(l).RunStreamed(ctx, procfuture.NewCommand("git", "status"))
//	p.WriteStdout("On branch main\n")
//	p.Events().EmitExit(0)
package mock
