package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestDefaultConfig verifies that DefaultConfig returns sensible defaults
func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name string
		got  interface{}
		want interface{}
	}{
		{"inventory path", cfg.Files.Inventory, "inventory.json"},
		{"keys path", cfg.Files.Keys, "server_user_keys.json"},
		{"db path", cfg.Files.DBPath, "/var/lib/logfleet/logfleet.db"},
		{"compress threshold", cfg.Retention.CompressAfterDays, 5},
		{"delete threshold", cfg.Retention.DeleteAfterDays, 15},
		{"command timeout", cfg.Remote.CommandTimeout(), 60 * time.Second},
		{"transfer timeout", cfg.Remote.TransferTimeout(), 120 * time.Second},
		{"workers", cfg.Remote.MaxWorkers, 1},
		{"archive root", cfg.Archive.LocalRoot, "/logs/archival"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}
}

// TestLoad tests loading a valid config file
func TestLoad(t *testing.T) {
	tempDir := t.TempDir()
	configFile := filepath.Join(tempDir, "logfleet.yaml")

	configContent := `
files:
  inventory: /etc/logfleet/inventory.json
  keys: /etc/logfleet/server_user_keys.json
retention:
  compress_after_days: 3
  delete_after_days: 30
remote:
  command_timeout_secs: 30
  transfer_timeout_secs: 300
  max_workers: 4
archive:
  local_root: /mnt/archive
`
	if err := os.WriteFile(configFile, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := Load(configFile)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Files.Inventory != "/etc/logfleet/inventory.json" {
		t.Errorf("inventory = %q", cfg.Files.Inventory)
	}
	if cfg.Retention.CompressAfterDays != 3 {
		t.Errorf("compress_after_days = %d, want 3", cfg.Retention.CompressAfterDays)
	}
	if cfg.Retention.DeleteAfterDays != 30 {
		t.Errorf("delete_after_days = %d, want 30", cfg.Retention.DeleteAfterDays)
	}
	if cfg.Remote.CommandTimeout() != 30*time.Second {
		t.Errorf("command timeout = %v, want 30s", cfg.Remote.CommandTimeout())
	}
	if cfg.Remote.TransferTimeout() != 5*time.Minute {
		t.Errorf("transfer timeout = %v, want 5m", cfg.Remote.TransferTimeout())
	}
	if cfg.Remote.MaxWorkers != 4 {
		t.Errorf("max_workers = %d, want 4", cfg.Remote.MaxWorkers)
	}
	if cfg.Archive.LocalRoot != "/mnt/archive" {
		t.Errorf("local_root = %q", cfg.Archive.LocalRoot)
	}

	// Unset fields keep their defaults.
	if cfg.Files.DBPath != "/var/lib/logfleet/logfleet.db" {
		t.Errorf("db_path = %q, want default", cfg.Files.DBPath)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestLoadInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"negative threshold", "retention:\n  compress_after_days: -1\n"},
		{"zero command timeout", "remote:\n  command_timeout_secs: 0\n"},
		{"zero workers", "remote:\n  max_workers: 0\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "logfleet.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
