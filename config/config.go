package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dygy/strudel-client-sub004/internal/util"
	"gopkg.in/yaml.v3"
)

// Default configuration constants. See [Config] for field descriptions.
const (
	DefaultDatabasePath = "strudel.db"

	// DefaultMigrateBatchSize is the number of nodes per bulk-insert batch
	// during legacy migration.
	DefaultMigrateBatchSize = 500

	DefaultLogLvl = util.InfoLevel
)

// Config contains runtime configuration values.
type Config struct {
	DatabasePath     string        // Path to the SQLite database file (Default "strudel.db")
	MigrateBatchSize int           // Nodes per bulk-insert batch during migration (Default 500)
	LogLvl           util.LogLevel // Global log level (Default info)
}

// ConfigOverride uses pointer fields to distinguish between unset and zero
// values when loading partial configuration. See [Config] for field
// descriptions.
type ConfigOverride struct {
	DatabasePath     *string        `yaml:"database_path,omitempty" json:"database_path,omitempty"`
	MigrateBatchSize *int           `yaml:"migrate_batch_size,omitempty" json:"migrate_batch_size,omitempty"`
	LogLvl           *util.LogLevel `yaml:"log_level,omitempty" json:"log_level,omitempty"`
}

// NewDefaultConfig creates a new Config with all default values.
func NewDefaultConfig() *Config {
	return &Config{
		DatabasePath:     DefaultDatabasePath,
		MigrateBatchSize: DefaultMigrateBatchSize,
		LogLvl:           DefaultLogLvl,
	}
}

// NewConfig creates a Config from defaults with an optional override applied.
func NewConfig(override *ConfigOverride) *Config {
	cfg := NewDefaultConfig()
	if override != nil {
		cfg.Merge(override)
	}
	return cfg
}

// Merge applies non-nil values from override onto this Config.
// This allows partial configuration updates while preserving existing values.
func (c *Config) Merge(override *ConfigOverride) {
	if override.DatabasePath != nil {
		c.DatabasePath = *override.DatabasePath
	}
	if override.MigrateBatchSize != nil {
		c.MigrateBatchSize = *override.MigrateBatchSize
	}
	if override.LogLvl != nil {
		c.LogLvl = *override.LogLvl
	}
}

// LoadConfigOverrideFile loads configuration overrides from a file without
// merging. Supports both YAML (.yaml, .yml) and JSON (.json) formats.
func LoadConfigOverrideFile(path string) (*ConfigOverride, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var override ConfigOverride

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &override); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config file: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &override); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config file: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown config file extension: %s", path)
	}

	return &override, nil
}

// NewConfigFromFile creates a new Config by merging file overrides with
// defaults.
func NewConfigFromFile(path string) (*Config, error) {
	override, err := LoadConfigOverrideFile(path)
	if err != nil {
		return nil, err
	}
	return NewConfig(override), nil
}
