package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"reqmap/internal/config"
	"reqmap/internal/logging"
)

// getRepoRoot returns the repository root directory.
func getRepoRoot() (string, error) {
	return os.Getwd()
}

// mustGetRepoRoot returns the repository root or exits on error.
func mustGetRepoRoot() string {
	repoRoot, err := getRepoRoot()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return repoRoot
}

// mustLoadConfig loads the repo config or exits on error. A missing
// config file falls back to defaults inside LoadConfig.
func mustLoadConfig(repoRoot string) *config.Config {
	cfg, err := config.LoadConfig(repoRoot)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

// mustLoadRuleset loads the scoring ruleset named by the config, or
// the defaults when none is configured.
func mustLoadRuleset(repoRoot string, cfg *config.Config) config.Ruleset {
	path := cfg.Mapping.RulesetPath
	if path == "" {
		path = filepath.Join(repoRoot, ".reqmap", config.RulesetFile)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return config.DefaultRuleset()
		}
	}
	ruleset, err := config.LoadRuleset(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading ruleset: %v\n", err)
		os.Exit(1)
	}
	return ruleset
}

// newContext creates a new context for command execution.
func newContext() context.Context {
	return context.Background()
}

// loggerConfig derives the logger settings from the repo config plus
// the command's output format: a json output flag forces json logs so
// stderr stays machine-readable alongside stdout.
func loggerConfig(cfg config.LoggingConfig, format string) logging.Config {
	logFormat := logging.Format(cfg.Format)
	if format == "json" {
		logFormat = logging.JSONFormat
	}
	if logFormat != logging.JSONFormat && logFormat != logging.HumanFormat {
		logFormat = logging.HumanFormat
	}

	level := logging.LogLevel(cfg.Level)
	switch level {
	case logging.DebugLevel, logging.InfoLevel, logging.WarnLevel, logging.ErrorLevel:
	default:
		level = logging.InfoLevel
	}

	return logging.Config{Format: logFormat, Level: level}
}

// newLogger creates a logger honoring the configured level and format.
func newLogger(cfg config.LoggingConfig, format string) *logging.Logger {
	return logging.NewLogger(loggerConfig(cfg, format))
}

// printResult formats and prints a command response, exiting on
// formatting errors.
func printResult(resp interface{}, format string) {
	output, err := FormatResponse(resp, OutputFormat(format))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(output)
}
