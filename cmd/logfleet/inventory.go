package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/dnchandra/logfleet/internal/inventory"
	"github.com/spf13/cobra"
)

var (
	invFilterServer string
	invFilterUser   string
	invRemoveServer string
	invRemoveUser   string
)

func newInventoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inventory",
		Short: "Manage the server log inventory",
		Long: `Inventory manages the JSON file describing which directories on which
servers are monitored, and with which include/exclude patterns. Pipelines
read this file; they never modify it.`,
	}

	view := &cobra.Command{
		Use:     "view",
		Short:   "Display inventory entries",
		Example: `  logfleet inventory view --server web01 --user appsvc`,
		RunE:    inventoryViewRun,
	}
	view.Flags().StringVar(&invFilterServer, "server", "", "only show the named server")
	view.Flags().StringVar(&invFilterUser, "user", "", "only show the named user")

	add := &cobra.Command{
		Use:   "add",
		Short: "Add a path entry interactively",
		RunE:  inventoryAddRun,
	}

	importCmd := &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Bulk-import entries from a CSV file",
		Long: `Import merges rows from a CSV file into the inventory. Required columns:
server, os, user, log_base_path, log_folder, include_patterns,
exclude_patterns. Pattern cells hold comma-separated glob patterns.`,
		Args: cobra.ExactArgs(1),
		RunE: inventoryImportRun,
	}

	remove := &cobra.Command{
		Use:   "remove [file.csv]",
		Short: "Remove users from the inventory",
		Long: `Remove deletes (server, user) pairs either from a CSV file with "server"
and "user" columns, or a single pair given with --server and --user.
A server is dropped entirely once its last user is removed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: inventoryRemoveRun,
	}
	remove.Flags().StringVar(&invRemoveServer, "server", "", "server of the pair to remove")
	remove.Flags().StringVar(&invRemoveUser, "user", "", "user of the pair to remove")

	cmd.AddCommand(view, add, importCmd, remove)
	return cmd
}

func inventoryViewRun(cmd *cobra.Command, args []string) error {
	inv, err := inventory.LoadInventory(globalCfg.Files.Inventory)
	if err != nil {
		return err
	}
	if len(inv) == 0 {
		fmt.Println("inventory is empty")
		return nil
	}

	for _, server := range inv.ServerNames() {
		if invFilterServer != "" && server != invFilterServer {
			continue
		}
		srv := inv[server]
		fmt.Printf("%s (%s)\n", server, srv.OS)
		for _, user := range srv.UserNames() {
			if invFilterUser != "" && user != invFilterUser {
				continue
			}
			fmt.Printf("  %s\n", user)
			for _, e := range srv.Users[user] {
				fmt.Printf("    %s\n", e.LogBasePath)
				if len(e.IncludePatterns) > 0 {
					fmt.Printf("      include: %s\n", strings.Join(e.IncludePatterns, ", "))
				}
				if len(e.ExcludePatterns) > 0 {
					fmt.Printf("      exclude: %s\n", strings.Join(e.ExcludePatterns, ", "))
				}
			}
		}
	}
	return nil
}

func inventoryAddRun(cmd *cobra.Command, args []string) error {
	// A missing inventory is fine here; add creates it. A malformed one
	// is not: overwriting it would drop every existing entry.
	inv, err := inventory.LoadInventoryOrNew(globalCfg.Files.Inventory)
	if err != nil {
		return err
	}

	var (
		server   string
		osType   = "linux"
		user     string
		base     string
		folder   string
		include  string
		exclude  string
		confirm  = true
		required = func(s string) error {
			if strings.TrimSpace(s) == "" {
				return fmt.Errorf("value is required")
			}
			return nil
		}
	)

	if err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Server name").
				Placeholder("web01.example.com").
				Value(&server).
				Validate(required),
			huh.NewSelect[string]().
				Title("Operating system").
				Options(
					huh.NewOption("Linux", "linux"),
					huh.NewOption("Windows", "windows"),
				).
				Value(&osType),
			huh.NewInput().
				Title("User").
				Placeholder("appsvc").
				Value(&user).
				Validate(required),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Log base path").
				Placeholder("/var/log/app").
				Value(&base).
				Validate(required),
			huh.NewInput().
				Title("Log folder label (optional)").
				Value(&folder),
			huh.NewInput().
				Title("Include patterns (comma-separated, empty = all)").
				Placeholder("*.log, app.*").
				Value(&include),
			huh.NewInput().
				Title("Exclude patterns (comma-separated)").
				Placeholder("*debug*").
				Value(&exclude),
			huh.NewConfirm().
				Title("Save this entry?").
				Value(&confirm),
		),
	).Run(); err != nil {
		return err
	}

	if !confirm {
		fmt.Println("entry discarded")
		return nil
	}

	// Existing servers keep their recorded OS; the form value only applies
	// to new ones.
	if existing, ok := inv[server]; ok && !strings.EqualFold(existing.OS, osType) {
		logger.Warn("server already exists with a different os, keeping existing", "server", server, "os", existing.OS)
	}

	inv.AddEntry(strings.TrimSpace(server), osType, strings.TrimSpace(user), inventory.PathEntry{
		LogBasePath:     strings.TrimSpace(base),
		LogFolder:       strings.TrimSpace(folder),
		IncludePatterns: inventory.SplitPatterns(include),
		ExcludePatterns: inventory.SplitPatterns(exclude),
	})

	if err := inv.Save(globalCfg.Files.Inventory); err != nil {
		return err
	}
	fmt.Printf("entry added for %s@%s\n", user, server)
	return nil
}

func inventoryImportRun(cmd *cobra.Command, args []string) error {
	inv, err := inventory.LoadInventoryOrNew(globalCfg.Files.Inventory)
	if err != nil {
		return err
	}

	stats, err := inv.ImportCSV(args[0])
	if err != nil {
		return err
	}
	if err := inv.Save(globalCfg.Files.Inventory); err != nil {
		return err
	}
	fmt.Printf("imported %d entries (%d new servers, %d new users)\n", stats.Entries, stats.Servers, stats.Users)
	return nil
}

func inventoryRemoveRun(cmd *cobra.Command, args []string) error {
	inv, err := inventory.LoadInventory(globalCfg.Files.Inventory)
	if err != nil {
		return err
	}

	removed := 0
	switch {
	case len(args) == 1:
		removed, err = inv.RemoveCSV(args[0])
		if err != nil {
			return err
		}
	case invRemoveServer != "" && invRemoveUser != "":
		if inv.RemoveUser(invRemoveServer, invRemoveUser) {
			removed = 1
		}
	default:
		return fmt.Errorf("provide a CSV file or both --server and --user")
	}

	if err := inv.Save(globalCfg.Files.Inventory); err != nil {
		return err
	}
	fmt.Printf("removed %d user(s)\n", removed)
	return nil
}
