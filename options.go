package procfuture

import (
	"fmt"
	"log/slog"
	"slices"
)

// StreamConfig holds configuration for streamed and forked executions.
type StreamConfig struct {
	// SuccessfulExitCodes lists the exit codes treated as success (default {0}).
	SuccessfulExitCodes []int
	// Capture selects the streams accumulated into the result or error (default none).
	Capture []StreamName
	// SudoConfig wraps the command in sudo when non-nil.
	SudoConfig *SudoConfig
}

// DefaultStreamConfig returns defaults.
func DefaultStreamConfig() StreamConfig {
	return StreamConfig{
		SuccessfulExitCodes: []int{0},
	}
}

// Validate checks the configuration at call time.
func (c StreamConfig) Validate() error {
	if len(c.SuccessfulExitCodes) == 0 {
		return fmt.Errorf("successful exit codes cannot be empty: %w", ErrInvalidConfig)
	}

	for _, s := range c.Capture {
		if s != Stdout && s != Stderr {
			return fmt.Errorf("cannot capture unknown stream %q: %w", s, ErrInvalidConfig)
		}
	}

	return nil
}

func (c StreamConfig) successful(code int) bool {
	return slices.Contains(c.SuccessfulExitCodes, code)
}

// SudoConfig defines advanced privilege escalation options.
type SudoConfig struct {
	User        string   // Target user (-u)
	Group       string   // Target group (-g)
	PreserveEnv bool     // Preserve environment (-E)
	CustomFlags []string // Additional flags
}

// Option defines a functional option for a single execution.
// Buffered-style executions only honour the sudo options; they always capture both
// streams and treat any non-zero exit code as failure.
type Option func(*StreamConfig)

// SudoOption defines a functional option for sudo configuration.
type SudoOption func(*SudoConfig)

// WithSuccessfulExitCodes replaces the set of exit codes treated as success.
func WithSuccessfulExitCodes(codes ...int) Option {
	return func(c *StreamConfig) {
		c.SuccessfulExitCodes = append([]int(nil), codes...)
	}
}

// WithCapture selects the streams to accumulate into the result or error.
func WithCapture(streams ...StreamName) Option {
	return func(c *StreamConfig) {
		c.Capture = append(c.Capture, streams...)
	}
}

// WithSudo wraps the command in sudo.
func WithSudo(opts ...SudoOption) Option {
	return func(c *StreamConfig) {
		if c.SudoConfig == nil {
			c.SudoConfig = &SudoConfig{}
		}

		for _, o := range opts {
			o(c.SudoConfig)
		}
	}
}

// WithSudoUser sets the target user.
func WithSudoUser(user string) SudoOption {
	return func(s *SudoConfig) {
		s.User = user
	}
}

// WithSudoGroup sets the target group.
func WithSudoGroup(group string) SudoOption {
	return func(s *SudoConfig) {
		s.Group = group
	}
}

// WithSudoPreserveEnv preserves the environment.
func WithSudoPreserveEnv() SudoOption {
	return func(s *SudoConfig) {
		s.PreserveEnv = true
	}
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithLogger sets the structured logger. Launches and settlements are logged at Debug.
func WithLogger(l *slog.Logger) ExecutorOption {
	return func(e *Executor) {
		if l != nil {
			e.log = l
		}
	}
}

// WithScheduler sets the scheduler handed to every future the Executor creates.
func WithScheduler(s Scheduler) ExecutorOption {
	return func(e *Executor) {
		if s != nil {
			e.sched = s
		}
	}
}
