package contracttest

import (
	"bytes"

	"github.com/ruffel/procfuture"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureContracts() []TestCase {
	return []TestCase{
		{
			Category:    CategoryCapture,
			Name:        "selected-streams-only",
			Description: "Only the streams named by the capture policy appear in the result",
			Run: func(t T, env procfuture.Launcher) {
				exec := procfuture.NewExecutor(env)

				f := exec.RunStreamed(t.Context(), env.TargetOS().ShellCommand(bothStreamsScript(env, 0)),
					procfuture.WithCapture(procfuture.Stdout))

				result, err := await(t, f)
				require.NoError(t, err)

				require.NotNil(t, result.Stdout)
				assert.Equal(t, "out", *result.Stdout)
				assert.Nil(t, result.Stderr)
			},
		},
		{
			Category:    CategoryCapture,
			Name:        "attached-on-failure",
			Description: "Captured output is attached to exit failures",
			Run: func(t T, env procfuture.Launcher) {
				exec := procfuture.NewExecutor(env)

				f := exec.RunStreamed(t.Context(), env.TargetOS().ShellCommand(bothStreamsScript(env, 3)),
					procfuture.WithCapture(procfuture.Stdout, procfuture.Stderr))

				_, err := await(t, f)
				require.Error(t, err)

				var perr *procfuture.Error
				require.ErrorAs(t, err, &perr)
				assert.Equal(t, procfuture.KindExit, perr.Kind)
				assert.Equal(t, procfuture.ExitCode(3), perr.Code)
				require.NotNil(t, perr.Stdout)
				require.NotNil(t, perr.Stderr)
				assert.Equal(t, "out", *perr.Stdout)
				assert.Equal(t, "err", *perr.Stderr)
				assert.Same(t, f.Process(), perr.Process)
			},
		},
		{
			Category:    CategoryCapture,
			Name:        "caller-writers-preserved",
			Description: "Writers set on the command still receive output while capturing",
			Run: func(t T, env procfuture.Launcher) {
				exec := procfuture.NewExecutor(env)

				var mirror bytes.Buffer

				cmd := env.TargetOS().ShellCommand(bothStreamsScript(env, 0))
				cmd.Stdout = &mirror

				result, err := await(t, exec.RunStreamed(t.Context(), cmd, procfuture.WithCapture(procfuture.Stdout)))
				require.NoError(t, err)

				assert.Equal(t, "out", result.StdoutString())
				assert.Equal(t, "out", mirror.String())
			},
		},
	}
}
