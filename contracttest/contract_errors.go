package contracttest

import (
	"github.com/ruffel/procfuture"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	bufferedExitErrorCode = 13
	waitExitErrorCode     = 23
	shellNotFoundCode     = 127
)

func errorContracts() []TestCase {
	return []TestCase{
		bufferedNonZeroNormalizedContract(),
		startWaitNonZeroReturnsExitErrorContract(),
		missingBinaryRejectsContract(),
		invalidConfigRejectsContract(),
		ttyUnsupportedNormalizedContract(),
	}
}

func bufferedNonZeroNormalizedContract() TestCase {
	return TestCase{
		Category:    CategoryErrors,
		Name:        "buffered-nonzero-normalized",
		Description: "Buffered failures carry the exit code and both streams",
		Run: func(t T, env procfuture.Launcher) {
			exec := procfuture.NewExecutor(env)

			_, err := await(t, exec.RunShell(t.Context(), exitScript(bufferedExitErrorCode)))
			require.Error(t, err)

			var perr *procfuture.Error
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, procfuture.KindBuffered, perr.Kind)
			assert.Equal(t, procfuture.ExitCode(bufferedExitErrorCode), perr.Code)
			assert.Contains(t, perr.Message, "(exited with error code 13)")
			assert.NotNil(t, perr.Stdout)
			assert.NotNil(t, perr.Stderr)

			var exitErr *procfuture.ExitError
			require.ErrorAs(t, err, &exitErr)
			assert.Equal(t, bufferedExitErrorCode, exitErr.ExitCode)
		},
	}
}

func startWaitNonZeroReturnsExitErrorContract() TestCase {
	return TestCase{
		Category:    CategoryErrors,
		Name:        "start-wait-nonzero-returns-exiterror",
		Description: "Wait non-zero failures must return *procfuture.ExitError",
		Run: func(t T, env procfuture.Launcher) {
			process, err := env.Start(t.Context(), env.TargetOS().ShellCommand(exitScript(waitExitErrorCode)))
			require.NoError(t, err)
			require.NotNil(t, process)

			defer func() {
				_ = process.Close()
			}()

			err = process.Wait()
			require.Error(t, err)

			var exitErr *procfuture.ExitError
			require.ErrorAs(t, err, &exitErr)
			require.Equal(t, waitExitErrorCode, exitErr.ExitCode)
		},
	}
}

func missingBinaryRejectsContract() TestCase {
	return TestCase{
		Category:    CategoryErrors,
		Name:        "missing-binary-rejects",
		Description: "A missing binary rejects as a launch failure, or as exit 127 where a remote shell resolves it",
		Run: func(t T, env procfuture.Launcher) {
			exec := procfuture.NewExecutor(env)

			f := exec.RunStreamed(t.Context(), procfuture.NewCommand("procfuture-contract-no-such-binary"))
			_, err := await(t, f)
			require.Error(t, err)

			var perr *procfuture.Error
			require.ErrorAs(t, err, &perr)

			switch perr.Kind {
			case procfuture.KindLaunch:
				assert.Equal(t, procfuture.CodeNotFound, perr.Code.Name())
			case procfuture.KindExit:
				assert.Equal(t, procfuture.ExitCode(shellNotFoundCode), perr.Code)
			default:
				t.Errorf("unexpected failure kind %s", perr.Kind)
			}
		},
	}
}

func invalidConfigRejectsContract() TestCase {
	return TestCase{
		Category:    CategoryErrors,
		Name:        "invalid-config-rejects",
		Description: "An empty successful exit code set is refused before launch",
		Run: func(t T, env procfuture.Launcher) {
			exec := procfuture.NewExecutor(env)

			f := exec.RunStreamed(t.Context(), env.TargetOS().ShellCommand(exitScript(0)),
				procfuture.WithSuccessfulExitCodes())

			_, err := await(t, f)

			var perr *procfuture.Error
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, procfuture.KindLaunch, perr.Kind)
			assert.Equal(t, procfuture.CodeInvalid, perr.Code.Name())
			assert.ErrorIs(t, err, procfuture.ErrInvalidConfig)
		},
	}
}

func ttyUnsupportedNormalizedContract() TestCase {
	return TestCase{
		Category:    CategoryErrors,
		Name:        "tty-unsupported-normalized",
		Description: "If TTY is unsupported by a provider, it must wrap procfuture.ErrNotSupported",
		Run: func(t T, env procfuture.Launcher) {
			cmd := env.TargetOS().ShellCommand("echo procfuture-contract-tty")
			cmd.Tty = true

			process, err := env.Start(t.Context(), cmd)
			if err != nil {
				require.ErrorIs(t, err, procfuture.ErrNotSupported)

				return
			}

			require.NotNil(t, process)

			defer func() {
				_ = process.Close()
			}()

			require.NoError(t, process.Wait())
		},
	}
}
