package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	historyLimit  int
	historyErrors bool
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent pipeline runs from the run-history database",
		Example: `  logfleet history
  logfleet history --limit 50 --errors`,
		RunE: historyRun,
	}

	cmd.Flags().IntVar(&historyLimit, "limit", 20, "number of runs to show")
	cmd.Flags().BoolVar(&historyErrors, "errors", false, "show per-unit errors for each run")

	return cmd
}

func historyRun(cmd *cobra.Command, args []string) error {
	if globalStore == nil {
		return fmt.Errorf("run history database unavailable")
	}

	runs, err := globalStore.ListRuns(historyLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no recorded runs")
		return nil
	}

	for _, r := range runs {
		mode := "execute"
		if r.DryRun {
			mode = "dry-run"
		}
		fmt.Printf("#%d %s %s (%s) %s discovered=%d matched=%d acted=%d failed=%d skipped_servers=%d\n",
			r.ID, r.StartTime.Format("2006-01-02 15:04:05"), r.Operation, mode,
			r.Status, r.Discovered, r.Matched, r.Acted, r.Failed, r.SkippedServers)

		if historyErrors {
			errs, err := globalStore.RunErrors(r.ID)
			if err != nil {
				return err
			}
			for _, e := range errs {
				fmt.Printf("    %s: %s\n", e.Unit, e.Reason)
			}
		}
	}
	return nil
}
