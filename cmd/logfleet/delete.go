package main

import (
	"github.com/dnchandra/logfleet/internal/lifecycle"
	"github.com/spf13/cobra"
)

var deleteDryRun bool

func newDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete compressed log files past the deletion age threshold",
		Long: `Delete finds already-compressed files (.gz/.zip) under every monitored
path whose filename date is at or past the configured threshold (default
15 days) and removes them from the remote host.

With --dry-run, eligibility is still computed from a real remote listing
but nothing is removed.`,
		Example: `  logfleet delete --dry-run
  logfleet delete`,
		RunE: deleteRun,
	}

	cmd.Flags().BoolVar(&deleteDryRun, "dry-run", false, "show what would be deleted without making changes")

	return cmd
}

func deleteRun(cmd *cobra.Command, args []string) error {
	action := &lifecycle.DeleteAction{
		ThresholdDays: globalCfg.Retention.DeleteAfterDays,
		Timeout:       globalCfg.Remote.CommandTimeout(),
		DryRun:        deleteDryRun,
		Logger:        logger,
	}
	return executePipeline(cmd, action, deleteDryRun)
}
