package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration
type Config struct {
	Files     FilesConfig     `yaml:"files"`
	Retention RetentionConfig `yaml:"retention"`
	Remote    RemoteConfig    `yaml:"remote"`
	Archive   ArchiveConfig   `yaml:"archive"`
}

// FilesConfig holds the paths of the operator-side data files
type FilesConfig struct {
	Inventory string `yaml:"inventory"`
	Keys      string `yaml:"keys"`
	DBPath    string `yaml:"db_path"`
}

// RetentionConfig holds the per-action age thresholds in days
type RetentionConfig struct {
	CompressAfterDays int `yaml:"compress_after_days"`
	DeleteAfterDays   int `yaml:"delete_after_days"`
}

// RemoteConfig holds SSH execution settings
type RemoteConfig struct {
	CommandTimeoutSecs  int `yaml:"command_timeout_secs"`
	TransferTimeoutSecs int `yaml:"transfer_timeout_secs"`
	MaxWorkers          int `yaml:"max_workers"`
}

// CommandTimeout returns the per-command wall-clock budget
func (r RemoteConfig) CommandTimeout() time.Duration {
	return time.Duration(r.CommandTimeoutSecs) * time.Second
}

// TransferTimeout returns the per-file transfer budget
func (r RemoteConfig) TransferTimeout() time.Duration {
	return time.Duration(r.TransferTimeoutSecs) * time.Second
}

// ArchiveConfig holds local archive destination settings
type ArchiveConfig struct {
	LocalRoot string `yaml:"local_root"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Files: FilesConfig{
			Inventory: "inventory.json",
			Keys:      "server_user_keys.json",
			DBPath:    "/var/lib/logfleet/logfleet.db",
		},
		Retention: RetentionConfig{
			CompressAfterDays: 5,
			DeleteAfterDays:   15,
		},
		Remote: RemoteConfig{
			CommandTimeoutSecs:  60,
			TransferTimeoutSecs: 120,
			MaxWorkers:          1,
		},
		Archive: ArchiveConfig{
			LocalRoot: "/logs/archival",
		},
	}
}

// Load reads a config file from the given path
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// FindConfigFile searches for a config file in standard locations
func FindConfigFile() (string, error) {
	searchPaths := []string{
		"logfleet.yaml",
		"/etc/logfleet/logfleet.yaml",
	}

	if home, err := os.UserHomeDir(); err == nil {
		searchPaths = append(searchPaths,
			filepath.Join(home, ".config", "logfleet", "logfleet.yaml"),
		)
	}

	for _, path := range searchPaths {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	return "", fmt.Errorf("no config file found (searched: %v)", searchPaths)
}

func (c *Config) validate() error {
	if c.Retention.CompressAfterDays < 0 {
		return fmt.Errorf("retention.compress_after_days must not be negative")
	}
	if c.Retention.DeleteAfterDays < 0 {
		return fmt.Errorf("retention.delete_after_days must not be negative")
	}
	if c.Remote.CommandTimeoutSecs <= 0 {
		return fmt.Errorf("remote.command_timeout_secs must be positive")
	}
	if c.Remote.TransferTimeoutSecs <= 0 {
		return fmt.Errorf("remote.transfer_timeout_secs must be positive")
	}
	if c.Remote.MaxWorkers < 1 {
		return fmt.Errorf("remote.max_workers must be at least 1")
	}
	return nil
}
