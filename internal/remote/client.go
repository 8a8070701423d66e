// Package remote runs commands on fleet hosts over SSH and pulls files
// back for archival. It is pure transport: one attempt per command, no
// retries, so a destructive remote command can never run twice.
package remote

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strings"
	"time"

	"golang.org/x/crypto/ssh"
)

// ExecutionError is any SSH-level failure: connect, launch, timeout, or a
// non-zero remote exit. Callers treat it as "skip this unit, continue".
type ExecutionError struct {
	Server string
	User   string
	Reason string
	Stderr string
}

func (e *ExecutionError) Error() string {
	msg := fmt.Sprintf("remote execution on %s@%s: %s", e.User, e.Server, e.Reason)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

// Runner is the executor contract the lifecycle engine depends on. Run
// returns trimmed stdout lines on success; an empty slice is a valid
// result, not an error.
type Runner interface {
	Run(ctx context.Context, command string) ([]string, error)
}

// Dialer opens a connection to one (server, user) with the given key.
// The engine takes a Dialer so tests can substitute a fake fleet.
type Dialer func(server, user, keyPath string) (Conn, error)

// Conn is an established connection: a Runner that can also transfer
// files and must be closed after the unit completes.
type Conn interface {
	Runner
	Transfer
	Close() error
}

// Client is the production Conn over golang.org/x/crypto/ssh.
type Client struct {
	ssh    *ssh.Client
	server string
	user   string
	logger *slog.Logger
}

// DialTimeout is the TCP and handshake budget for opening a connection.
const DialTimeout = 30 * time.Second

// Dial connects to server as user, authenticating with the private key at
// keyPath. Host keys are not verified; fleet hosts are reinstalled often
// enough that pinning them would strand every pipeline run.
func Dial(server, user, keyPath string, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}

	keyData, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, fmt.Errorf("reading key file %s: %w", keyPath, err)
	}
	signer, err := ssh.ParsePrivateKey(keyData)
	if err != nil {
		return nil, fmt.Errorf("parsing key file %s: %w", keyPath, err)
	}

	addr := server
	if _, _, err := net.SplitHostPort(server); err != nil {
		addr = net.JoinHostPort(server, "22")
	}

	cfg := &ssh.ClientConfig{
		User:            user,
		Auth:            []ssh.AuthMethod{ssh.PublicKeys(signer)},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         DialTimeout,
	}

	conn, err := ssh.Dial("tcp", addr, cfg)
	if err != nil {
		return nil, &ExecutionError{Server: server, User: user, Reason: fmt.Sprintf("connect: %v", err)}
	}

	return &Client{ssh: conn, server: server, user: user, logger: logger}, nil
}

// Run executes one command in a fresh session and returns its stdout split
// into trimmed lines. A non-zero exit or a context deadline both surface
// as *ExecutionError.
func (c *Client) Run(ctx context.Context, command string) ([]string, error) {
	sess, err := c.ssh.NewSession()
	if err != nil {
		return nil, &ExecutionError{Server: c.server, User: c.user, Reason: fmt.Sprintf("open session: %v", err)}
	}
	defer sess.Close()

	var stdout, stderr bytes.Buffer
	sess.Stdout = &stdout
	sess.Stderr = &stderr

	c.logger.Debug("running remote command", "server", c.server, "user", c.user, "command", command)

	done := make(chan error, 1)
	go func() { done <- sess.Run(command) }()

	select {
	case <-ctx.Done():
		// Closing the session tears the channel down; the remote side may
		// still finish what it started, which is the safer failure mode
		// for destructive commands.
		sess.Close()
		return nil, &ExecutionError{Server: c.server, User: c.user, Reason: fmt.Sprintf("command timed out: %v", ctx.Err())}
	case err := <-done:
		if err != nil {
			return nil, &ExecutionError{
				Server: c.server,
				User:   c.user,
				Reason: fmt.Sprintf("command failed: %v", err),
				Stderr: strings.TrimSpace(stderr.String()),
			}
		}
	}

	return splitLines(stdout.String()), nil
}

// Close shuts the underlying SSH connection.
func (c *Client) Close() error {
	return c.ssh.Close()
}

func splitLines(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return []string{}
	}
	raw := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		l = strings.TrimSpace(l)
		if l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}
