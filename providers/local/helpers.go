package local

import (
	"context"

	"github.com/ruffel/procfuture"
)

// RunCommand runs path with args in buffered style on a new local launcher.
func RunCommand(ctx context.Context, path string, args []string, opts ...procfuture.Option) *procfuture.Future[*procfuture.Result] {
	return executor().RunBufferedFile(ctx, path, args, opts...)
}

// RunShell runs a shell script in buffered style on a new local launcher.
func RunShell(ctx context.Context, script string, opts ...procfuture.Option) *procfuture.Future[*procfuture.Result] {
	return executor().RunShell(ctx, script, opts...)
}

// Stream runs cmd in streamed style on a new local launcher.
func Stream(ctx context.Context, cmd *procfuture.Command, opts ...procfuture.Option) *procfuture.Future[*procfuture.Result] {
	return executor().RunStreamed(ctx, cmd, opts...)
}

// executor returns an Executor on a fresh local launcher.
func executor() *procfuture.Executor {
	l, _ := New()

	return procfuture.NewExecutor(l)
}
