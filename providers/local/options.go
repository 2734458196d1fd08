package local

import "github.com/ruffel/procfuture"

// Config holds configuration for the local launcher.
type Config struct {
	targetOS procfuture.TargetOS
}

// Option defines a functional option for the local provider.
type Option func(*Config)

// WithTargetOS overrides the detected operating system. It only changes how
// shell commands are built (see procfuture.TargetOS.ShellCommand).
func WithTargetOS(os procfuture.TargetOS) Option {
	return func(c *Config) {
		c.targetOS = os
	}
}
