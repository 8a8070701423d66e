package main

import (
	"fmt"
	"time"

	"github.com/dnchandra/logfleet/internal/inventory"
	"github.com/dnchandra/logfleet/internal/lifecycle"
	"github.com/dnchandra/logfleet/internal/remote"
	"github.com/spf13/cobra"
)

// executePipeline wires one action into a fleet walk. The process exits
// non-zero only when the inventory or credential file cannot be loaded;
// per-unit remote failures are logged and summarized, not propagated.
func executePipeline(cmd *cobra.Command, action lifecycle.Action, dryRun bool) error {
	inv, err := inventory.LoadInventory(globalCfg.Files.Inventory)
	if err != nil {
		return err
	}
	keys, err := inventory.LoadKeys(globalCfg.Files.Keys)
	if err != nil {
		return err
	}

	if len(inv) == 0 {
		logger.Warn("inventory is empty, nothing to do")
		return nil
	}

	fleet := &lifecycle.Fleet{
		Inventory: inv,
		Keys:      keys,
		Dial: func(server, user, keyPath string) (remote.Conn, error) {
			return remote.Dial(server, user, keyPath, logger)
		},
		CommandTimeout: globalCfg.Remote.CommandTimeout(),
		Workers:        globalCfg.Remote.MaxWorkers,
		Today:          time.Now(),
		Logger:         logger,
	}

	pipeline := &lifecycle.Pipeline{
		Fleet:  fleet,
		Store:  globalStore,
		Logger: logger,
	}

	sum := pipeline.Execute(cmd.Context(), action, dryRun)

	fmt.Printf("%s summary: discovered=%d matched=%d acted=%d failed=%d skipped_servers=%d\n",
		action.Name(), sum.Discovered, sum.Matched, sum.Acted, sum.Failed, sum.SkippedServers)
	for _, ue := range sum.Errors {
		fmt.Printf("  %s: %s\n", ue.Unit, ue.Reason)
	}

	return nil
}
