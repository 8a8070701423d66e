package main

import (
	"time"

	"github.com/dnchandra/logfleet/internal/lifecycle"
	"github.com/spf13/cobra"
)

var (
	archiveDryRun bool
	archiveRoot   string
)

func newArchiveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Pull compressed log files into the local archive tree",
		Long: `Archive copies every already-compressed file (.gz/.zip) under every
monitored path to the local archive tree, regardless of age. Files land
at {local_root}/{server}/{YYYYMMDD}/{basename}; a rerun on the same day
overwrites same-named files.

With --dry-run the transfer runs in preview mode: it still contacts the
remote host and checks the source file, but writes nothing locally.`,
		Example: `  logfleet archive --dry-run
  logfleet archive
  logfleet archive --archive-root /mnt/archive`,
		RunE: archiveRun,
	}

	cmd.Flags().BoolVar(&archiveDryRun, "dry-run", false, "preview transfers without writing local files")
	cmd.Flags().StringVar(&archiveRoot, "archive-root", "", "override the local archive root directory")

	return cmd
}

func archiveRun(cmd *cobra.Command, args []string) error {
	root := globalCfg.Archive.LocalRoot
	if archiveRoot != "" {
		root = archiveRoot
	}

	action := &lifecycle.ArchiveAction{
		Root:    root,
		Today:   time.Now(),
		Timeout: globalCfg.Remote.TransferTimeout(),
		DryRun:  archiveDryRun,
		Logger:  logger,
	}
	return executePipeline(cmd, action, archiveDryRun)
}
