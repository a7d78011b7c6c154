package config

import (
	"time"
)

// Config is the root configuration structure
type Config struct {
	Version int           `yaml:"version"`
	Storage StorageConfig `yaml:"storage"`
	Backup  BackupConfig  `yaml:"backup"`
	Scripts ScriptsConfig `yaml:"scripts"`
}

// StorageConfig locates the durable slot database holding the snapshot
type StorageConfig struct {
	Path string `yaml:"path"` // ":memory:" = nothing survives exit
}

// BackupConfig controls exports and the periodic backup
type BackupConfig struct {
	Dir        string   `yaml:"dir"`
	Auto       *bool    `yaml:"auto,omitempty"` // nil = enabled
	Interval   Duration `yaml:"interval"`
	ImportPath string   `yaml:"import_path,omitempty"`
}

// ScriptsConfig controls the cached reconstruction script
type ScriptsConfig struct {
	RefreshOnEveryChange bool `yaml:"refresh_on_every_change"`
}

// InMemory reports whether the store is kept in memory only
func (s StorageConfig) InMemory() bool {
	return s.Path == MemoryStoragePath
}

// AutoEnabled reports whether the periodic backup should run
func (b BackupConfig) AutoEnabled() bool {
	return b.Auto == nil || *b.Auto
}

// Duration wraps time.Duration for YAML unmarshaling
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Duration returns the underlying time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}
