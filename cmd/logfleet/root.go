package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/dnchandra/logfleet/internal/config"
	"github.com/dnchandra/logfleet/internal/store"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgPath   string
	logLevel  string
	logFormat string
	quiet     bool
	globalCfg *config.Config
	logger    *slog.Logger

	// Global components
	globalStore *store.Store
)

// initializeStore opens the run-history database. A store failure is not
// fatal: pipelines still run, they just go unrecorded.
func initializeStore() {
	if globalCfg == nil {
		return
	}
	st, err := store.New(globalCfg.Files.DBPath, logger)
	if err != nil {
		logger.Warn("run history disabled", "path", globalCfg.Files.DBPath, "error", err)
		return
	}
	globalStore = st
}

// shouldSkipComponentInit checks if a command should skip store initialization
func shouldSkipComponentInit(cmdName string) bool {
	skipInitCmds := map[string]bool{
		"help":      true,
		"version":   true,
		"inventory": true,
		"keys":      true,
	}
	return skipInitCmds[cmdName]
}

// closeStore closes the global store connection
func closeStore() {
	if globalStore != nil {
		if err := globalStore.Close(); err != nil {
			logger.Error("failed to close store", "error", err)
		}
	}
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logfleet",
		Short: "Log lifecycle management for remote servers over SSH",
		Long: `logfleet ages log files on a fleet of Linux and Windows servers through
compress, archive, and delete stages. File age is read from filename
conventions; eligibility is decided locally from a single remote listing
per monitored path. Each pipeline supports a dry-run preview.`,
		Example: `  logfleet compress --dry-run
  logfleet compress
  logfleet archive
  logfleet delete --dry-run
  logfleet inventory view
  logfleet history`,
		Version: "0.1.0",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Initialize logging
			setupLogging()

			if shouldSkipConfig(cmd.Name()) {
				return nil
			}

			// Load config
			if cfgPath == "" {
				var err error
				cfgPath, err = config.FindConfigFile()
				if err != nil {
					logger.Debug("config file not found, using defaults", "error", err)
				}
			}

			if cfgPath != "" {
				var err error
				globalCfg, err = config.Load(cfgPath)
				if err != nil {
					return fmt.Errorf("failed to load config: %w", err)
				}
			} else {
				globalCfg = config.DefaultConfig()
			}

			if !quiet {
				logger.Debug("config loaded", "path", cfgPath)
			}

			parent := cmd.Name()
			if cmd.Parent() != nil && cmd.Parent().Name() != "logfleet" {
				parent = cmd.Parent().Name()
			}
			if !shouldSkipComponentInit(parent) {
				initializeStore()
			}

			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			closeStore()
		},
	}

	// Add persistent flags
	cmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to config file (auto-discovered if not specified)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format (text or json)")
	cmd.PersistentFlags().BoolVar(&quiet, "quiet", false, "suppress non-error output")

	// Add subcommands
	cmd.AddCommand(
		newCompressCmd(),
		newArchiveCmd(),
		newDeleteCmd(),
		newInventoryCmd(),
		newKeysCmd(),
		newHistoryCmd(),
	)

	return cmd
}

// setupLogging initializes the slog logger based on flags
func setupLogging() {
	var level slog.Level
	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	if quiet {
		level = slog.LevelError
	}

	var handler slog.Handler
	if strings.ToLower(logFormat) == "json" {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	}

	logger = slog.New(handler)
	slog.SetDefault(logger)
}

// shouldSkipConfig checks if a command should skip config loading
func shouldSkipConfig(cmdName string) bool {
	skipConfigCmds := map[string]bool{
		"help":    true,
		"version": true,
	}
	return skipConfigCmds[cmdName]
}
