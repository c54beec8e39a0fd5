// Package config loads reqmap configuration from .reqmap/config.json
// with environment-variable overrides (REQMAP_*).
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the complete reqmap configuration
type Config struct {
	Version  int    `json:"version" mapstructure:"version"`
	RepoRoot string `json:"repoRoot" mapstructure:"repoRoot"`

	Mapping MappingConfig `json:"mapping" mapstructure:"mapping"`
	Apply   ApplyConfig   `json:"apply" mapstructure:"apply"`
	Index   IndexConfig   `json:"index" mapstructure:"index"`
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`
}

// MappingConfig controls keyword extraction, scoring and ranking
type MappingConfig struct {
	// MaxCandidates is the candidate cutoff after ranking
	MaxCandidates int `json:"maxCandidates" mapstructure:"maxCandidates"`
	// MaxWindowsPerFile caps the matched-location windows reported per file
	MaxWindowsPerFile int `json:"maxWindowsPerFile" mapstructure:"maxWindowsPerFile"`
	// ContextLines is the number of lines of context around a matched line
	ContextLines int `json:"contextLines" mapstructure:"contextLines"`
	// MaxSnippetChars truncates window snippets for review display
	MaxSnippetChars int `json:"maxSnippetChars" mapstructure:"maxSnippetChars"`
	// MaxDescriptionChars truncates the requirement description before tokenizing
	MaxDescriptionChars int `json:"maxDescriptionChars" mapstructure:"maxDescriptionChars"`
	// MaxComments is how many requirement comments feed the keyword pool
	MaxComments int `json:"maxComments" mapstructure:"maxComments"`
	// RulesetPath points at an optional TOML scoring ruleset
	RulesetPath string `json:"rulesetPath,omitempty" mapstructure:"rulesetPath"`
}

// ApplyConfig controls the change applier
type ApplyConfig struct {
	// Workers is the bounded worker pool size for per-file application
	Workers int `json:"workers" mapstructure:"workers"`
	// BranchPrefix is prepended to generated feature branch names
	BranchPrefix string `json:"branchPrefix" mapstructure:"branchPrefix"`
}

// IndexConfig controls where the code index lives
type IndexConfig struct {
	// Path is the code index JSON produced by the external indexer
	Path string `json:"path" mapstructure:"path"`
	// CacheEnabled persists the index into .reqmap/reqmap.db
	CacheEnabled bool `json:"cacheEnabled" mapstructure:"cacheEnabled"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Format string `json:"format" mapstructure:"format"`
	Level  string `json:"level" mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version:  1,
		RepoRoot: ".",
		Mapping: MappingConfig{
			MaxCandidates:       30,
			MaxWindowsPerFile:   10,
			ContextLines:        5,
			MaxSnippetChars:     500,
			MaxDescriptionChars: 3000,
			MaxComments:         5,
		},
		Apply: ApplyConfig{
			Workers:      4,
			BranchPrefix: "feature",
		},
		Index: IndexConfig{
			Path:         ".reqmap/code_index.json",
			CacheEnabled: true,
		},
		Logging: LoggingConfig{
			Format: "human",
			Level:  "info",
		},
	}
}

// LoadConfig loads configuration from <repoRoot>/.reqmap/config.json.
// A missing config file is not an error; defaults apply.
func LoadConfig(repoRoot string) (*Config, error) {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("version", defaults.Version)
	v.SetDefault("repoRoot", defaults.RepoRoot)
	v.SetDefault("mapping.maxCandidates", defaults.Mapping.MaxCandidates)
	v.SetDefault("mapping.maxWindowsPerFile", defaults.Mapping.MaxWindowsPerFile)
	v.SetDefault("mapping.contextLines", defaults.Mapping.ContextLines)
	v.SetDefault("mapping.maxSnippetChars", defaults.Mapping.MaxSnippetChars)
	v.SetDefault("mapping.maxDescriptionChars", defaults.Mapping.MaxDescriptionChars)
	v.SetDefault("mapping.maxComments", defaults.Mapping.MaxComments)
	v.SetDefault("apply.workers", defaults.Apply.Workers)
	v.SetDefault("apply.branchPrefix", defaults.Apply.BranchPrefix)
	v.SetDefault("index.path", defaults.Index.Path)
	v.SetDefault("index.cacheEnabled", defaults.Index.CacheEnabled)
	v.SetDefault("logging.format", defaults.Logging.Format)
	v.SetDefault("logging.level", defaults.Logging.Level)

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(filepath.Join(repoRoot, ".reqmap"))

	v.SetEnvPrefix("REQMAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the configuration to <repoRoot>/.reqmap/config.json
func (c *Config) Save(repoRoot string) error {
	dir := filepath.Join(repoRoot, ".reqmap")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(dir, "config.json"), data, 0644)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Mapping.MaxCandidates <= 0 {
		return &ConfigError{Field: "mapping.maxCandidates", Message: "must be positive"}
	}
	if c.Mapping.MaxWindowsPerFile <= 0 {
		return &ConfigError{Field: "mapping.maxWindowsPerFile", Message: "must be positive"}
	}
	if c.Mapping.ContextLines < 0 {
		return &ConfigError{Field: "mapping.contextLines", Message: "must not be negative"}
	}
	if c.Apply.Workers <= 0 {
		return &ConfigError{Field: "apply.workers", Message: "must be positive"}
	}
	if c.Apply.BranchPrefix == "" {
		return &ConfigError{Field: "apply.branchPrefix", Message: "must not be empty"}
	}
	return nil
}

// ConfigError represents a configuration validation error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
