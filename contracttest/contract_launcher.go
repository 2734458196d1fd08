package contracttest

import (
	"github.com/ruffel/procfuture"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func launcherContracts() []TestCase {
	return []TestCase{
		{
			Category:    CategoryLauncher,
			Name:        "close-idempotent",
			Description: "Closing a launcher multiple times is deterministic and non-fatal",
			Run: func(t T, env procfuture.Launcher) {
				require.NoError(t, env.Close())
				require.NoError(t, env.Close())
			},
		},
		{
			Category:    CategoryLauncher,
			Name:        "close-post-start-fails",
			Description: "Start fails deterministically after launcher close",
			Run: func(t T, env procfuture.Launcher) {
				require.NoError(t, env.Close())

				_, err := env.Start(t.Context(), env.TargetOS().ShellCommand("echo procfuture-contract"))
				require.Error(t, err)
			},
		},
		{
			Category:    CategoryLauncher,
			Name:        "close-post-run-rejects",
			Description: "A future launched after close is already rejected with a placeholder handle",
			Run: func(t T, env procfuture.Launcher) {
				require.NoError(t, env.Close())

				f := procfuture.NewExecutor(env).RunStreamed(t.Context(), env.TargetOS().ShellCommand(exitScript(0)))
				require.NotNil(t, f.Process())
				assert.Equal(t, 0, f.Process().PID())

				_, err := await(t, f)

				var perr *procfuture.Error
				require.ErrorAs(t, err, &perr)
				assert.Equal(t, procfuture.KindLaunch, perr.Kind)
				assert.ErrorIs(t, err, procfuture.ErrEnvironmentClosed)
			},
		},
	}
}
