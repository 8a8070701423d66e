package main

import (
	"github.com/dnchandra/logfleet/internal/lifecycle"
	"github.com/spf13/cobra"
)

var compressDryRun bool

func newCompressCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compress",
		Short: "Compress log files past the compression age threshold",
		Long: `Compress finds uncompressed log files under every monitored path whose
filename date is at or past the configured threshold (default 5 days) and
compresses them in place: gzip on Linux, Compress-Archive plus removal of
the original on Windows.

With --dry-run, eligibility is still computed from a real remote listing
but no mutating command is issued.`,
		Example: `  logfleet compress --dry-run
  logfleet compress`,
		RunE: compressRun,
	}

	cmd.Flags().BoolVar(&compressDryRun, "dry-run", false, "show what would be compressed without making changes")

	return cmd
}

func compressRun(cmd *cobra.Command, args []string) error {
	action := &lifecycle.CompressAction{
		ThresholdDays: globalCfg.Retention.CompressAfterDays,
		Timeout:       globalCfg.Remote.CommandTimeout(),
		DryRun:        compressDryRun,
		Logger:        logger,
	}
	return executePipeline(cmd, action, compressDryRun)
}
