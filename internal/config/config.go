package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// HistoryConfig controls the lint run history database
type HistoryConfig struct {
	// Enabled records every lint run in the history database
	Enabled bool `yaml:"enabled"`

	// DBPath is the path to the SQLite database (empty = $JJL_HOME/history.db)
	DBPath string `yaml:"db_path"`

	// KeepRuns is the number of most recent runs kept (0 = keep all)
	KeepRuns int `yaml:"keep_runs"`
}

// Config represents jjl configuration options
type Config struct {
	// LogLevel sets the logging verbosity (trace, debug, info, warn, error)
	LogLevel string `yaml:"log_level"`

	// LogDir is the directory where run logs are written (empty = no file log)
	LogDir string `yaml:"log_dir"`

	// Format is the default report format (text, json, html)
	Format string `yaml:"format"`

	// DisableLinters lists linters that are never run
	DisableLinters []string `yaml:"disable_linters"`

	// Linters holds per-linter option overrides keyed by linter name
	Linters map[string]map[string]string `yaml:"-"`

	// History contains run history configuration
	History HistoryConfig `yaml:"history"`
}

// DefaultConfig returns a Config with sensible default values
func DefaultConfig() *Config {
	return &Config{
		LogLevel:       "info",
		LogDir:         "",
		Format:         "text",
		DisableLinters: []string{},
		Linters:        map[string]map[string]string{},
		History: HistoryConfig{
			Enabled:  true,
			DBPath:   "",
			KeepRuns: 500,
		},
	}
}

// LoadConfig loads configuration from the specified file path
// If the file doesn't exist, returns default configuration without error
// If the file exists but is malformed, returns an error
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	type yamlConfig struct {
		LogLevel       string                            `yaml:"log_level"`
		LogDir         string                            `yaml:"log_dir"`
		Format         string                            `yaml:"format"`
		DisableLinters []string                          `yaml:"disable_linters"`
		Linters        map[string]map[string]interface{} `yaml:"linters"`
		History        HistoryConfig                     `yaml:"history"`
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if yamlCfg.LogLevel != "" {
		cfg.LogLevel = yamlCfg.LogLevel
	}
	if yamlCfg.LogDir != "" {
		cfg.LogDir = yamlCfg.LogDir
	}
	if yamlCfg.Format != "" {
		cfg.Format = yamlCfg.Format
	}
	if yamlCfg.DisableLinters != nil {
		cfg.DisableLinters = yamlCfg.DisableLinters
	}

	// Linter options are kept as strings; each linter converts them to the
	// type of its defaults when its settings are resolved.
	for name, options := range yamlCfg.Linters {
		overrides := make(map[string]string, len(options))
		for key, value := range options {
			overrides[key] = scalarString(value)
		}
		cfg.Linters[name] = overrides
	}

	// Only override history fields that were present in the file
	var rawMap map[string]interface{}
	if err := yaml.Unmarshal(data, &rawMap); err == nil {
		if historySection, exists := rawMap["history"]; exists && historySection != nil {
			historyMap, _ := historySection.(map[string]interface{})

			if _, exists := historyMap["enabled"]; exists {
				cfg.History.Enabled = yamlCfg.History.Enabled
			}
			if _, exists := historyMap["db_path"]; exists {
				cfg.History.DBPath = yamlCfg.History.DBPath
			}
			if _, exists := historyMap["keep_runs"]; exists {
				cfg.History.KeepRuns = yamlCfg.History.KeepRuns
			}
		}
	}

	return cfg, nil
}

// scalarString renders a YAML scalar the way it was written
func scalarString(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// LoadConfigFromDir loads configuration from .jjl/config.yaml in the specified directory
// If the directory or file doesn't exist, returns default configuration without error
func LoadConfigFromDir(dir string) (*Config, error) {
	configPath := filepath.Join(dir, ".jjl", "config.yaml")
	return LoadConfig(configPath)
}

// MergeWithFlags merges CLI flags into the configuration
// Non-nil flag values override configuration values
func (c *Config) MergeWithFlags(logLevel *string, format *string, disable []string, noHistory *bool) {
	if logLevel != nil {
		c.LogLevel = *logLevel
	}
	if format != nil {
		c.Format = *format
	}
	if len(disable) > 0 {
		c.DisableLinters = append(c.DisableLinters, disable...)
	}
	if noHistory != nil && *noHistory {
		c.History.Enabled = false
	}
}

// IsDisabled reports whether the named linter is disabled
func (c *Config) IsDisabled(name string) bool {
	for _, disabled := range c.DisableLinters {
		if disabled == name {
			return true
		}
	}
	return false
}

// LinterOverrides returns the option overrides configured for a linter
// The returned map may be nil
func (c *Config) LinterOverrides(name string) map[string]string {
	return c.Linters[name]
}

// Validate validates the configuration values
// known lists the registered linter names; references to any other name are errors
func (c *Config) Validate(known []string) error {
	validLevels := map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.LogLevel] {
		return fmt.Errorf("invalid log_level %q, must be one of: trace, debug, info, warn, error", c.LogLevel)
	}

	validFormats := map[string]bool{"text": true, "json": true, "html": true}
	if !validFormats[c.Format] {
		return fmt.Errorf("invalid format %q, must be one of: text, json, html", c.Format)
	}

	if c.History.KeepRuns < 0 {
		return fmt.Errorf("history.keep_runs must be >= 0, got %d", c.History.KeepRuns)
	}

	knownSet := make(map[string]bool, len(known))
	for _, name := range known {
		knownSet[name] = true
	}

	var unknown []string
	for _, name := range c.DisableLinters {
		if !knownSet[name] {
			unknown = append(unknown, name)
		}
	}
	for name := range c.Linters {
		if !knownSet[name] {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return fmt.Errorf("unknown linter(s) in configuration: %s", strings.Join(unknown, ", "))
	}

	return nil
}
