package docker

import (
	"net/http"

	"github.com/ruffel/procfuture"
)

// Option configures a Launcher created with New.
type Option func(*Config)

// WithConfig replaces the whole configuration with c.
func WithConfig(c Config) Option {
	return func(cfg *Config) { *cfg = c }
}

// WithContainerID selects the container commands run in.
func WithContainerID(id string) Option {
	return func(c *Config) { c.ContainerID = id }
}

// WithHost points the client at a daemon other than DOCKER_HOST.
func WithHost(host string) Option {
	return func(c *Config) { c.Host = host }
}

// WithVersion pins the API version instead of negotiating it.
func WithVersion(version string) Option {
	return func(c *Config) { c.Version = version }
}

// WithHTTPClient sets the HTTP client used to reach the daemon.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Config) { c.HTTPClient = client }
}

// WithTargetOS declares the container operating system (default: Linux).
func WithTargetOS(os procfuture.TargetOS) Option {
	return func(c *Config) { c.OS = os }
}
