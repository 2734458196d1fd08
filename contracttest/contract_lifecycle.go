package contracttest

import (
	"sync/atomic"
	"time"

	"github.com/ruffel/procfuture"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lifecycleContracts() []TestCase {
	return []TestCase{
		{
			Category:    CategoryLifecycle,
			Name:        "progress-runs-once",
			Description: "A progress callback registered at launch runs exactly once with the handle",
			Run: func(t T, env procfuture.Launcher) {
				exec := procfuture.NewExecutor(env)

				var calls atomic.Int32

				var seen atomic.Value

				f := exec.RunStreamed(t.Context(), env.TargetOS().ShellCommand(exitScript(0))).
					Progress(func(p procfuture.Process) {
						calls.Add(1)
						seen.Store(p)
					})

				_, err := await(t, f)
				require.NoError(t, err)

				assert.Eventually(t, func() bool { return calls.Load() == 1 }, settleTimeout, 10*time.Millisecond)
				assert.Same(t, f.Process(), seen.Load())
			},
		},
		{
			Category:    CategoryLifecycle,
			Name:        "events-latched",
			Description: "Exit and close listeners registered after termination are replayed",
			Run: func(t T, env procfuture.Launcher) {
				exec := procfuture.NewExecutor(env)

				f := exec.RunStreamed(t.Context(), env.TargetOS().ShellCommand(exitScript(0)))
				_, err := await(t, f)
				require.NoError(t, err)

				var exit, closed atomic.Int32

				exit.Store(-1)
				closed.Store(-1)

				events := f.Process().Events()
				events.OnExit(func(code int) { exit.Store(int32(code)) })
				events.OnClose(func(code int) { closed.Store(int32(code)) })

				assert.Equal(t, int32(0), exit.Load())
				assert.Equal(t, int32(0), closed.Load())
			},
		},
		{
			Category:    CategoryLifecycle,
			Name:        "wait-after-settlement",
			Description: "The handle stays usable after the future settled",
			Run: func(t T, env procfuture.Launcher) {
				exec := procfuture.NewExecutor(env)

				f := exec.RunStreamed(t.Context(), env.TargetOS().ShellCommand(exitScript(0)))
				_, err := await(t, f)
				require.NoError(t, err)

				require.NoError(t, f.Process().Wait())
				assert.NoError(t, f.Process().Close())
			},
		},
	}
}
