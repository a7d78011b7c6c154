// Package config provides configuration management for schooldb.
//
// The config file says where the store lives and how backups run. It never
// holds school data.
//
// Config file locations (priority order):
//  1. $SCHOOLDB_CONFIG
//  2. ./schooldb.yaml
//  3. $XDG_CONFIG_HOME/schooldb/config.yaml, or ~/.config/schooldb/config.yaml
//  4. /etc/schooldb/config.yaml
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultStoragePath is the slot database used when none is configured
	DefaultStoragePath = "./schooldb.db"
	// MemoryStoragePath keeps the store in memory only
	MemoryStoragePath = ":memory:"
	// DefaultBackupDir receives exports and backups
	DefaultBackupDir = "./backups"
	// DefaultBackupInterval is the period of the automatic backup
	DefaultBackupInterval = 30 * time.Minute
)

// Load finds and loads the config file, or returns defaults if none found
func Load() (*Config, string, error) {
	path := FindConfigPath()

	if path == "" {
		// No config found - return defaults
		return DefaultConfig(), "", nil
	}

	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, path, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, path, err
	}

	return &cfg, path, nil
}

// Save writes config to the specified path
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// Init writes DefaultConfig to path, or to DefaultConfigPath when path is
// empty. An existing file is never overwritten.
func Init(path string) (string, error) {
	if path == "" {
		path = DefaultConfigPath()
	}
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("config already exists: %s", path)
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("stat config: %w", err)
	}

	if err := DefaultConfig().Save(path); err != nil {
		return "", err
	}
	return path, nil
}

// DefaultConfig returns sensible defaults for a new installation
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		Storage: StorageConfig{Path: DefaultStoragePath},
		Backup: BackupConfig{
			Dir:      DefaultBackupDir,
			Interval: Duration(DefaultBackupInterval),
		},
	}
}

// applyDefaults fills in missing values with defaults
func (c *Config) applyDefaults() {
	if c.Version == 0 {
		c.Version = 1
	}
	if c.Storage.Path == "" {
		c.Storage.Path = DefaultStoragePath
	}
	if c.Backup.Dir == "" {
		c.Backup.Dir = DefaultBackupDir
	}
	if c.Backup.Interval == 0 {
		c.Backup.Interval = Duration(DefaultBackupInterval)
	}
}

func (c *Config) validate() error {
	if c.Backup.Interval.Duration() < time.Second {
		return fmt.Errorf("backup.interval %s is below one second", c.Backup.Interval.Duration())
	}
	return nil
}

// Summary returns a human-readable config summary
func (c *Config) Summary() string {
	storage := c.Storage.Path
	if c.Storage.InMemory() {
		storage = "(memory)"
	}
	auto := "off"
	if c.Backup.AutoEnabled() {
		auto = "every " + c.Backup.Interval.Duration().String()
	}
	return fmt.Sprintf("Storage: %s, Backups: %s (auto %s), Refresh script on every change: %v",
		storage, c.Backup.Dir, auto, c.Scripts.RefreshOnEveryChange)
}
