package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/dnchandra/logfleet/internal/inventory"
	"github.com/spf13/cobra"
)

var (
	keyRemoveServer string
	keyRemoveUser   string
)

func newKeysCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Manage the per-user SSH key file",
		Long: `Keys manages the credential file mapping (server, user) pairs to SSH
private-key paths on this host. A server without a credential entry is
skipped whole by every pipeline.`,
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List configured keys and whether each key file exists",
		RunE:  keysListRun,
	}

	set := &cobra.Command{
		Use:   "set",
		Short: "Add or update a key path interactively",
		RunE:  keysSetRun,
	}

	remove := &cobra.Command{
		Use:   "remove",
		Short: "Remove a key entry",
		RunE:  keysRemoveRun,
	}
	remove.Flags().StringVar(&keyRemoveServer, "server", "", "server of the entry to remove")
	remove.Flags().StringVar(&keyRemoveUser, "user", "", "user of the entry to remove")

	cmd.AddCommand(list, set, remove)
	return cmd
}

func keysListRun(cmd *cobra.Command, args []string) error {
	keys, err := inventory.LoadKeys(globalCfg.Files.Keys)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		fmt.Println("no keys configured")
		return nil
	}

	for _, server := range keys.ServerNames() {
		sk := keys[server]
		fmt.Printf("%s\n", server)
		if sk == nil {
			continue
		}
		for _, user := range sk.UserNames() {
			path := sk.Users[user]
			status := "ok"
			if _, err := os.Stat(path); err != nil {
				status = "missing"
			}
			fmt.Printf("  %s: %s (%s)\n", user, path, status)
		}
	}
	return nil
}

func keysSetRun(cmd *cobra.Command, args []string) error {
	keys, err := inventory.LoadKeysOrNew(globalCfg.Files.Keys)
	if err != nil {
		return err
	}

	var (
		server, user, path string

		required = func(s string) error {
			if strings.TrimSpace(s) == "" {
				return fmt.Errorf("value is required")
			}
			return nil
		}
	)

	if err := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("Server name").
			Value(&server).
			Validate(required),
		huh.NewInput().
			Title("User").
			Value(&user).
			Validate(required),
		huh.NewInput().
			Title("Private key path").
			Placeholder("/home/operator/.ssh/id_web01").
			Value(&path).
			Validate(func(s string) error {
				if strings.TrimSpace(s) == "" {
					return fmt.Errorf("value is required")
				}
				if _, err := os.Stat(strings.TrimSpace(s)); err != nil {
					return fmt.Errorf("key file not found: %s", s)
				}
				return nil
			}),
	)).Run(); err != nil {
		return err
	}

	server = strings.TrimSpace(server)
	user = strings.TrimSpace(user)
	if keys[server] == nil {
		keys[server] = &inventory.ServerKeys{Users: map[string]string{}}
	}
	keys[server].Users[user] = strings.TrimSpace(path)

	if err := keys.Save(globalCfg.Files.Keys); err != nil {
		return err
	}
	fmt.Printf("key set for %s@%s\n", user, server)
	return nil
}

func keysRemoveRun(cmd *cobra.Command, args []string) error {
	if keyRemoveServer == "" || keyRemoveUser == "" {
		return fmt.Errorf("both --server and --user are required")
	}

	keys, err := inventory.LoadKeys(globalCfg.Files.Keys)
	if err != nil {
		return err
	}

	sk, ok := keys[keyRemoveServer]
	if !ok || sk == nil {
		return fmt.Errorf("no entry for server %s", keyRemoveServer)
	}
	if _, ok := sk.Users[keyRemoveUser]; !ok {
		return fmt.Errorf("no entry for %s@%s", keyRemoveUser, keyRemoveServer)
	}

	delete(sk.Users, keyRemoveUser)
	if len(sk.Users) == 0 {
		delete(keys, keyRemoveServer)
	}

	if err := keys.Save(globalCfg.Files.Keys); err != nil {
		return err
	}
	fmt.Printf("removed key for %s@%s\n", keyRemoveUser, keyRemoveServer)
	return nil
}
