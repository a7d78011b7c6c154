package config

import (
	"os"
	"path/filepath"
)

const (
	// EnvConfigPath names an explicit config file
	EnvConfigPath = "SCHOOLDB_CONFIG"
	// ConfigFileName is looked up in the working directory
	ConfigFileName = "schooldb.yaml"
	// ConfigDirName is the per-user and system config directory
	ConfigDirName = "schooldb"

	userFileName = "config.yaml"
)

// searchPaths lists config candidates, highest priority first:
// $SCHOOLDB_CONFIG, ./schooldb.yaml, the user config dir, /etc/schooldb.
func searchPaths() []string {
	var paths []string
	if p := os.Getenv(EnvConfigPath); p != "" {
		paths = append(paths, p)
	}
	if abs, err := filepath.Abs(ConfigFileName); err == nil {
		paths = append(paths, abs)
	} else {
		paths = append(paths, ConfigFileName)
	}
	if dir := userConfigDir(); dir != "" {
		paths = append(paths, filepath.Join(dir, ConfigDirName, userFileName))
	}
	return append(paths, filepath.Join("/etc", ConfigDirName, userFileName))
}

// userConfigDir is $XDG_CONFIG_HOME, else ~/.config, else empty
func userConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return xdg
	}
	if home := os.Getenv("HOME"); home != "" {
		return filepath.Join(home, ".config")
	}
	return ""
}

// FindConfigPath returns the first existing candidate of searchPaths,
// or "" when there is none
func FindConfigPath() string {
	for _, p := range searchPaths() {
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p
		}
	}
	return ""
}

// DefaultConfigPath is where Init writes when no path is given: the user
// config dir, or ./schooldb.yaml when HOME is unset
func DefaultConfigPath() string {
	if dir := userConfigDir(); dir != "" {
		return filepath.Join(dir, ConfigDirName, userFileName)
	}
	return ConfigFileName
}
