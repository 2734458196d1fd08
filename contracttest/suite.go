package contracttest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/ruffel/procfuture"
)

// Standard categories for grouping tests.
const (
	CategoryCore      = "core"
	CategoryCapture   = "capture"
	CategoryLifecycle = "lifecycle"
	CategoryLauncher  = "launcher"
	CategoryErrors    = "errors"
)

// settleTimeout bounds every wait on a future inside a contract.
const settleTimeout = 30 * time.Second

// T is the minimal interface required for testify/assert and require.
type T interface {
	Errorf(format string, args ...any)
	FailNow()
	Skipf(format string, args ...any)
	Context() context.Context
	Name() string
}

// Factory creates a fresh launcher for a single contract.
type Factory func(t T) procfuture.Launcher

// TestCase defines a single behavioral contract requirement.
type TestCase struct {
	Category    string
	Name        string
	Description string
	Prereq      func(t T, env procfuture.Launcher) (ok bool, reason string)
	Run         func(t T, env procfuture.Launcher)
}

// ID returns the stable, globally unique contract identifier.
func (tc TestCase) ID() string {
	return fmt.Sprintf("%s/%s", tc.Category, tc.Name)
}

// Verify is the standard Go test entry point for provider authors.
// Every contract gets its own launcher from factory, closed when the contract ends.
func Verify(t *testing.T, factory Factory) {
	t.Helper()

	for _, tc := range AllContracts() {
		t.Run(tc.ID(), func(t *testing.T) {
			env := factory(t)

			t.Cleanup(func() { _ = env.Close() })

			if tc.Prereq != nil {
				ok, reason := tc.Prereq(t, env)
				if !ok {
					t.Skipf("prereq unmet: %s", reason)
				}
			}

			tc.Run(t, env)
		})
	}
}

// await waits for f with the contract timeout.
func await(t T, f *procfuture.Future[*procfuture.Result]) (*procfuture.Result, error) {
	ctx, cancel := context.WithTimeout(t.Context(), settleTimeout)
	defer cancel()

	return f.Wait(ctx)
}

// exitScript returns a shell script that exits with code.
func exitScript(code int) string {
	return fmt.Sprintf("exit %d", code)
}

// bothStreamsScript writes "out" to stdout and "err" to stderr, then exits with code.
func bothStreamsScript(env procfuture.Launcher, code int) string {
	if env.TargetOS() == procfuture.OSWindows {
		return fmt.Sprintf("[Console]::Out.Write('out'); [Console]::Error.Write('err'); exit %d", code)
	}

	return fmt.Sprintf("printf out; printf err >&2; exit %d", code)
}
