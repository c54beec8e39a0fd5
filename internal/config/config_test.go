package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Mapping.MaxCandidates != 30 {
		t.Errorf("MaxCandidates = %d, want 30", cfg.Mapping.MaxCandidates)
	}
	if cfg.Mapping.MaxWindowsPerFile != 10 {
		t.Errorf("MaxWindowsPerFile = %d, want 10", cfg.Mapping.MaxWindowsPerFile)
	}
	if cfg.Apply.Workers != 4 {
		t.Errorf("Workers = %d, want 4", cfg.Apply.Workers)
	}
	if cfg.Apply.BranchPrefix != "feature" {
		t.Errorf("BranchPrefix = %q, want feature", cfg.Apply.BranchPrefix)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadConfig_FromFile(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, ".reqmap")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	content := `{
  "mapping": {"maxCandidates": 10, "contextLines": 2},
  "apply": {"workers": 8},
  "logging": {"format": "json", "level": "debug"}
}`
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(root)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Mapping.MaxCandidates != 10 {
		t.Errorf("MaxCandidates = %d, want 10", cfg.Mapping.MaxCandidates)
	}
	if cfg.Mapping.ContextLines != 2 {
		t.Errorf("ContextLines = %d, want 2", cfg.Mapping.ContextLines)
	}
	// Untouched fields keep defaults.
	if cfg.Mapping.MaxWindowsPerFile != 10 {
		t.Errorf("MaxWindowsPerFile = %d, want default 10", cfg.Mapping.MaxWindowsPerFile)
	}
	if cfg.Apply.Workers != 8 {
		t.Errorf("Workers = %d, want 8", cfg.Apply.Workers)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Logging.Format = %q, want json", cfg.Logging.Format)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	root := t.TempDir()
	cfg := DefaultConfig()
	cfg.Mapping.MaxCandidates = 15

	if err := cfg.Save(root); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := LoadConfig(root)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if loaded.Mapping.MaxCandidates != 15 {
		t.Errorf("MaxCandidates after round trip = %d, want 15", loaded.Mapping.MaxCandidates)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"default is valid", func(c *Config) {}, false},
		{"zero candidates", func(c *Config) { c.Mapping.MaxCandidates = 0 }, true},
		{"zero windows", func(c *Config) { c.Mapping.MaxWindowsPerFile = 0 }, true},
		{"negative context", func(c *Config) { c.Mapping.ContextLines = -1 }, true},
		{"zero workers", func(c *Config) { c.Apply.Workers = 0 }, true},
		{"empty branch prefix", func(c *Config) { c.Apply.BranchPrefix = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadRuleset(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, RulesetFile)
	content := `
proximity_lines = 5
extra_stop_words = ["todo", "wip"]

[weights]
exact = 20.0
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	rs, err := LoadRuleset(path)
	if err != nil {
		t.Fatalf("LoadRuleset failed: %v", err)
	}

	if rs.Weights.Exact != 20.0 {
		t.Errorf("Exact = %v, want 20.0", rs.Weights.Exact)
	}
	// Unset weights keep defaults.
	if rs.Weights.Substring != 5.0 {
		t.Errorf("Substring = %v, want default 5.0", rs.Weights.Substring)
	}
	if rs.Weights.FullText != 0.5 {
		t.Errorf("FullText = %v, want default 0.5", rs.Weights.FullText)
	}
	if rs.ProximityLines != 5 {
		t.Errorf("ProximityLines = %d, want 5", rs.ProximityLines)
	}
	if len(rs.ExtraStopWords) != 2 {
		t.Errorf("ExtraStopWords = %v, want 2 entries", rs.ExtraStopWords)
	}
}

func TestLoadRuleset_MissingFile(t *testing.T) {
	rs, err := LoadRuleset(filepath.Join(t.TempDir(), "absent.toml"))
	if err == nil {
		t.Fatal("expected error for missing ruleset")
	}
	// Defaults still come back usable.
	if rs.Weights.Exact != 10.0 {
		t.Errorf("Exact fallback = %v, want 10.0", rs.Weights.Exact)
	}
}
