package ssh

import (
	"context"
	"fmt"
	"net"
	"os"
	"sync"
	"time"

	"github.com/ruffel/procfuture"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
)

var _ procfuture.Launcher = (*Launcher)(nil)

// Launcher implements procfuture.Launcher over one SSH connection.
// Every Start opens a new session on the shared client.
type Launcher struct {
	config Config
	client *ssh.Client
	mu     sync.Mutex
	active int
	lastID int
	closed bool
}

// loadPrivateKeyAuth loads a private key from a file and returns an ssh.AuthMethod.
// Returns nil if the path is empty.
func loadPrivateKeyAuth(keyPath string) (ssh.AuthMethod, error) {
	if keyPath == "" {
		return nil, nil //nolint:nilnil // Valid state: no key path provided, so no auth method returned
	}

	keyBytes, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read private key file: %w", err)
	}

	signer, err := ssh.ParsePrivateKey(keyBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key file: %w", err)
	}

	return ssh.PublicKeys(signer), nil
}

// loadAgentAuth connects to the SSH agent and returns an ssh.AuthMethod.
// Returns nil if useAgent is false or the agent socket is unavailable.
func loadAgentAuth(useAgent bool) ssh.AuthMethod {
	if !useAgent {
		return nil
	}

	socket := os.Getenv("SSH_AUTH_SOCK")
	if socket == "" {
		return nil
	}

	conn, err := (&net.Dialer{Timeout: 500 * time.Millisecond}).DialContext(context.Background(), "unix", socket)
	if err != nil {
		return nil
	}

	signers, err := agent.NewClient(conn).Signers()
	if err != nil {
		return nil
	}

	return ssh.PublicKeys(signers...)
}

// New establishes a new SSH connection from the given options.
func New(opts ...Option) (*Launcher, error) {
	var c Config
	for _, o := range opts {
		o(&c)
	}

	c = c.WithDefaults()
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", procfuture.ErrInvalidConfig, err)
	}

	clientConfig, err := c.ToClientConfig()
	if err != nil {
		return nil, err
	}

	if keyAuth, err := loadPrivateKeyAuth(c.PrivateKeyPath); err != nil {
		return nil, err
	} else if keyAuth != nil {
		clientConfig.Auth = append(clientConfig.Auth, keyAuth)
	}

	if agentAuth := loadAgentAuth(c.UseAgent); agentAuth != nil {
		clientConfig.Auth = append(clientConfig.Auth, agentAuth)
	}

	addr := net.JoinHostPort(c.Host, fmt.Sprint(c.Port))

	client, err := ssh.Dial("tcp", addr, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to dial ssh at %s: %w", addr, err)
	}

	return NewFromClient(client, c), nil
}

// NewFromClient creates a new SSH launcher from an existing client.
func NewFromClient(client *ssh.Client, config Config) *Launcher {
	return &Launcher{
		config: config.WithDefaults(),
		client: client,
	}
}

// Start opens a NEW SSH session for the command.
func (e *Launcher) Start(ctx context.Context, cmd *procfuture.Command) (procfuture.Process, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", procfuture.ErrInvalidConfig, err)
	}

	if cmd.IPC {
		return nil, fmt.Errorf("cannot open ipc channel for %q over ssh: %w", cmd.String(), procfuture.ErrNotSupported)
	}

	e.mu.Lock()

	if e.closed {
		e.mu.Unlock()

		return nil, fmt.Errorf("cannot start command %q: %w", cmd.String(), procfuture.ErrEnvironmentClosed)
	}

	e.active++
	e.lastID++
	id := e.lastID
	e.mu.Unlock()

	session, err := e.client.NewSession()
	if err != nil {
		e.decrementActive()

		return nil, &procfuture.TransportError{Command: cmd, Err: fmt.Errorf("failed to create ssh session: %w", err)}
	}

	process := newProcess(e, id, session, cmd)

	if err := process.start(ctx); err != nil {
		_ = session.Close()

		e.decrementActive()

		return nil, err
	}

	return process, nil
}

// TargetOS returns the operating system as configured.
func (e *Launcher) TargetOS() procfuture.TargetOS {
	return e.config.OS
}

// ActiveProcesses returns the number of sessions still running.
func (e *Launcher) ActiveProcesses() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.active
}

// Close closes the underlying SSH connection.
func (e *Launcher) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}

	e.closed = true

	if e.client != nil {
		return e.client.Close()
	}

	return nil
}

func (e *Launcher) decrementActive() {
	e.mu.Lock()
	e.active--
	e.mu.Unlock()
}
