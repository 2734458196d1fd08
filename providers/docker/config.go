package docker

import (
	"errors"
	"net/http"
	"strings"

	"github.com/docker/docker/client"
	"github.com/ruffel/procfuture"
)

// Config selects the daemon to talk to and the container commands run in.
type Config struct {
	ContainerID string              // Container name or ID; required
	Host        string              // Daemon address; DOCKER_HOST when empty
	Version     string              // API version; negotiated with the daemon when empty
	HTTPClient  *http.Client        // Custom transport, e.g. for TLS
	OS          procfuture.TargetOS // Container OS; selects shell quoting (default OSLinux)
}

// NewConfig returns a Config for commands run in containerID on the default daemon.
func NewConfig(containerID string) Config {
	return Config{ContainerID: containerID, OS: procfuture.OSLinux}
}

// Validate reports whether c names a container.
func (c Config) Validate() error {
	if strings.TrimSpace(c.ContainerID) == "" {
		return errors.New("container ID is required")
	}

	return nil
}

// clientOptions builds the docker client options for c. Environment settings
// (DOCKER_HOST, DOCKER_TLS_VERIFY, DOCKER_CERT_PATH) apply first and explicit
// fields override them.
func (c Config) clientOptions() []client.Opt {
	opts := []client.Opt{client.FromEnv, client.WithAPIVersionNegotiation()}

	if c.Host != "" {
		opts = append(opts, client.WithHost(c.Host))
	}

	if c.Version != "" {
		opts = append(opts, client.WithVersion(c.Version))
	}

	if c.HTTPClient != nil {
		opts = append(opts, client.WithHTTPClient(c.HTTPClient))
	}

	return opts
}
