package contracttest

import (
	"strings"

	"github.com/ruffel/procfuture"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func coreContracts() []TestCase {
	return []TestCase{
		{
			Category: CategoryCore,
			Name:     "buffered-echo",
			Run: func(t T, env procfuture.Launcher) {
				exec := procfuture.NewExecutor(env)

				result, err := await(t, exec.RunBuffered(t.Context(), "echo hello"))
				require.NoError(t, err)
				require.NotNil(t, result)

				assert.Equal(t, "hello", strings.TrimSpace(result.StdoutString()))
				require.NotNil(t, result.Stderr)
				assert.Nil(t, result.ExitCode)
			},
		},
		{
			Category: CategoryCore,
			Name:     "streamed-exit-code",
			Run: func(t T, env procfuture.Launcher) {
				exec := procfuture.NewExecutor(env)

				f := exec.RunStreamed(t.Context(), env.TargetOS().ShellCommand(exitScript(0)))
				result, err := await(t, f)
				require.NoError(t, err)

				require.NotNil(t, result.ExitCode)
				assert.Equal(t, 0, *result.ExitCode)
				assert.Nil(t, result.Stdout)
				assert.Nil(t, result.Stderr)
			},
		},
		{
			Category:    CategoryCore,
			Name:        "handle-propagation",
			Description: "The handle is attached at return and shared by every derived future and the result",
			Run: func(t T, env procfuture.Launcher) {
				exec := procfuture.NewExecutor(env)

				f := exec.RunStreamed(t.Context(), env.TargetOS().ShellCommand(exitScript(0)))
				p := f.Process()
				require.NotNil(t, p)

				derived := f.Then(nil, nil).Catch(nil)
				assert.Same(t, p, derived.Process())

				result, err := await(t, derived)
				require.NoError(t, err)
				assert.Same(t, p, result.Process)
			},
		},
		{
			Category: CategoryCore,
			Name:     "successful-exit-codes",
			Run: func(t T, env procfuture.Launcher) {
				exec := procfuture.NewExecutor(env)

				f := exec.RunStreamed(t.Context(), env.TargetOS().ShellCommand(exitScript(2)),
					procfuture.WithSuccessfulExitCodes(0, 2))

				result, err := await(t, f)
				require.NoError(t, err)
				require.NotNil(t, result.ExitCode)
				assert.Equal(t, 2, *result.ExitCode)
			},
		},
	}
}
