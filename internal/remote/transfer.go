package remote

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/pkg/sftp"
)

// Transfer pulls one remote file to a local path. In dry-run mode the
// implementation still performs a remote round-trip (a Stat of the source)
// so a preview run validates connectivity and the file's existence; it
// just writes nothing locally.
type Transfer interface {
	Pull(ctx context.Context, remotePath, localPath string, dryRun bool) (int64, error)
}

// Pull copies remotePath to localPath over SFTP, preserving the remote
// modification time. Partial local files are removed on failure.
func (c *Client) Pull(ctx context.Context, remotePath, localPath string, dryRun bool) (int64, error) {
	type result struct {
		n   int64
		err error
	}
	done := make(chan result, 1)

	client, err := sftp.NewClient(c.ssh)
	if err != nil {
		return 0, &ExecutionError{Server: c.server, User: c.user, Reason: fmt.Sprintf("open sftp: %v", err)}
	}
	defer client.Close()

	go func() {
		n, err := c.pull(client, remotePath, localPath, dryRun)
		done <- result{n, err}
	}()

	select {
	case <-ctx.Done():
		// Unblocks the transfer goroutine; the deferred Close is then a
		// no-op.
		client.Close()
		return 0, &ExecutionError{Server: c.server, User: c.user, Reason: fmt.Sprintf("transfer timed out: %v", ctx.Err())}
	case r := <-done:
		if r.err != nil {
			return 0, &ExecutionError{Server: c.server, User: c.user, Reason: r.err.Error()}
		}
		return r.n, nil
	}
}

func (c *Client) pull(client *sftp.Client, remotePath, localPath string, dryRun bool) (int64, error) {
	info, err := client.Stat(remotePath)
	if err != nil {
		return 0, fmt.Errorf("stat %s: %w", remotePath, err)
	}

	if dryRun {
		c.logger.Info("transfer preview", "server", c.server, "remote", remotePath, "local", localPath, "size", info.Size())
		return info.Size(), nil
	}

	src, err := client.Open(remotePath)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", remotePath, err)
	}
	defer src.Close()

	dst, err := os.Create(localPath)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", localPath, err)
	}

	n, err := io.Copy(dst, src)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(localPath)
		return 0, fmt.Errorf("copy to %s: %w", localPath, err)
	}

	// Keep the remote mtime so archive ageing stays meaningful.
	if err := os.Chtimes(localPath, info.ModTime(), info.ModTime()); err != nil {
		c.logger.Warn("could not preserve modification time", "path", localPath, "error", err)
	}

	return n, nil
}
