package lifecycle

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/dnchandra/logfleet/internal/inventory"
	"github.com/dnchandra/logfleet/internal/remote"
	"github.com/dnchandra/logfleet/internal/safety"
)

// Unit is one (server, user, path-entry) processing unit.
type Unit struct {
	Server string
	User   string
	OS     inventory.OSType
	Entry  inventory.PathEntry
}

func (u Unit) String() string {
	return fmt.Sprintf("%s@%s:%s", u.User, u.Server, u.Entry.LogBasePath)
}

// Action is one lifecycle stage applied to each eligible file of a unit.
// Apply failures are isolated per file; siblings in the same batch still
// run.
type Action interface {
	Name() string
	// Filter selects which files discovery returns for this action.
	Filter() remote.ExtFilter
	// Policy is the eligibility rule applied after pattern filtering.
	Policy() Policy
	// FileTimeout bounds one Apply call.
	FileTimeout() time.Duration
	Apply(ctx context.Context, conn remote.Conn, unit Unit, path string) error
}

// CompressAction gzips (Linux) or zip-and-removes (Windows) files older
// than the threshold. Dry-run logs intent and issues no remote call.
type CompressAction struct {
	ThresholdDays int
	Timeout       time.Duration
	DryRun        bool
	Logger        *slog.Logger
}

func (a *CompressAction) Name() string { return "compress" }
func (a *CompressAction) Filter() remote.ExtFilter { return remote.FilterUncompressed }
func (a *CompressAction) FileTimeout() time.Duration { return a.Timeout }

func (a *CompressAction) Policy() Policy {
	return Policy{ThresholdDays: a.ThresholdDays, RequireDate: true}
}

func (a *CompressAction) Apply(ctx context.Context, conn remote.Conn, unit Unit, path string) error {
	cmds := remote.CommandsFor(string(unit.OS))
	if a.DryRun {
		a.Logger.Info("dry-run: would compress", "server", unit.Server, "user", unit.User, "path", path)
		return nil
	}
	if _, err := conn.Run(ctx, cmds.Compress(path)); err != nil {
		return err
	}
	a.Logger.Info("compressed", "server", unit.Server, "user", unit.User, "path", path)
	return nil
}

// DeleteAction removes compressed files older than the threshold. The
// removal syntax is chosen from the path string itself, not the declared
// OS, so a stray Windows path in a Linux entry still gets the right form.
type DeleteAction struct {
	ThresholdDays int
	Timeout       time.Duration
	DryRun        bool
	Logger        *slog.Logger
}

func (a *DeleteAction) Name() string { return "delete" }
func (a *DeleteAction) Filter() remote.ExtFilter { return remote.FilterCompressed }
func (a *DeleteAction) FileTimeout() time.Duration { return a.Timeout }

func (a *DeleteAction) Policy() Policy {
	return Policy{ThresholdDays: a.ThresholdDays, RequireDate: true}
}

func (a *DeleteAction) Apply(ctx context.Context, conn remote.Conn, unit Unit, path string) error {
	if a.DryRun {
		a.Logger.Info("dry-run: would delete", "server", unit.Server, "user", unit.User, "path", path)
		return nil
	}
	cmd := remote.RemoveCommandFor(path, remote.CommandsFor(string(unit.OS)))
	if _, err := conn.Run(ctx, cmd); err != nil {
		return err
	}
	a.Logger.Info("deleted", "server", unit.Server, "user", unit.User, "path", path)
	return nil
}

// ArchiveAction pulls every already-compressed file to the local archive
// tree, age-independent. Files land at
// {root}/{server}/{YYYYMMDD-of-run}/{basename}; same-named files from a
// rerun on the same day are overwritten. Dry-run still performs the
// transfer's preview round-trip so a preview run exercises connectivity.
type ArchiveAction struct {
	Root    string
	Today   time.Time
	Timeout time.Duration
	DryRun  bool
	Logger  *slog.Logger
}

func (a *ArchiveAction) Name() string { return "archive" }
func (a *ArchiveAction) Filter() remote.ExtFilter { return remote.FilterCompressed }
func (a *ArchiveAction) FileTimeout() time.Duration { return a.Timeout }

func (a *ArchiveAction) Policy() Policy {
	return Policy{ThresholdDays: 0, RequireDate: false}
}

func (a *ArchiveAction) Apply(ctx context.Context, conn remote.Conn, unit Unit, path string) error {
	destDir := filepath.Join(a.Root, unit.Server, a.Today.Format("20060102"))
	if !a.DryRun {
		// MkdirAll is idempotent, so parallel units on the same server
		// cannot race each other into an error here.
		if err := os.MkdirAll(destDir, 0755); err != nil {
			return fmt.Errorf("creating archive dir %s: %w", destDir, err)
		}
	}
	// The basename comes from a remote listing; never let it climb out of
	// the dated directory.
	localPath, err := safety.ArchivePath(destDir, Basename(path))
	if err != nil {
		return err
	}

	n, err := conn.Pull(ctx, path, localPath, a.DryRun)
	if err != nil {
		return err
	}
	if a.DryRun {
		a.Logger.Info("dry-run: would archive", "server", unit.Server, "remote", path, "local", localPath, "size", n)
	} else {
		a.Logger.Info("archived", "server", unit.Server, "remote", path, "local", localPath, "size", n)
	}
	return nil
}
