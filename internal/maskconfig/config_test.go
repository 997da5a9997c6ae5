package maskconfig

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileYieldsEmptyConfig(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Policy.DefaultMode != "" {
		t.Fatalf("DefaultMode = %q, want empty", cfg.Policy.DefaultMode)
	}
	if len(cfg.Modes) != 0 {
		t.Fatalf("Modes = %v, want empty", cfg.Modes)
	}
}

func TestLoadDecodesPolicyAndModes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	contents := `
skip_comments = true

[policy]
default_mode = "full"

[[policy.patterns]]
glob = "*_TOKEN"
mode = "partial"

[[policy.sources]]
glob = "*.env.example"
mode = "none"

[modes.partial]
show_start = 2
show_end = 2
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.SkipComments {
		t.Error("SkipComments = false, want true")
	}
	if cfg.Policy.DefaultMode != "full" {
		t.Errorf("DefaultMode = %q, want full", cfg.Policy.DefaultMode)
	}
	if len(cfg.Policy.Patterns) != 1 || cfg.Policy.Patterns[0].Glob != "*_TOKEN" {
		t.Errorf("Patterns = %v", cfg.Policy.Patterns)
	}
	if len(cfg.Policy.Sources) != 1 || cfg.Policy.Sources[0].Mode != "none" {
		t.Errorf("Sources = %v", cfg.Policy.Sources)
	}
	partial, ok := cfg.Modes["partial"]
	if !ok {
		t.Fatalf("expected modes.partial, got %v", cfg.Modes)
	}
	if partial["show_start"] != 2 {
		t.Errorf("show_start = %v, want 2", partial["show_start"])
	}
}

func TestLoadAppliesEnvOverrideOnTopOfFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	contents := "[policy]\ndefault_mode = \"full\"\n"
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	t.Setenv("ENVMASK_POLICY_DEFAULT_MODE", "partial")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Policy.DefaultMode != "partial" {
		t.Errorf("DefaultMode = %q, want partial (env should win over file)", cfg.Policy.DefaultMode)
	}
}

func TestDecodeNilMapYieldsEmptyConfig(t *testing.T) {
	cfg, err := Decode(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Modes == nil {
		t.Fatal("Modes should be a non-nil empty map")
	}
}

func TestDecodeRulesSkipsMalformedEntries(t *testing.T) {
	rules := decodeRules([]any{
		map[string]any{"glob": "*_TOKEN", "mode": "partial"},
		map[string]any{"glob": "", "mode": "partial"},
		map[string]any{"glob": "*_KEY"},
		"not a rule",
	})
	if len(rules) != 1 {
		t.Fatalf("expected 1 valid rule, got %v", rules)
	}
	if rules[0].Glob != "*_TOKEN" {
		t.Errorf("Glob = %q, want *_TOKEN", rules[0].Glob)
	}
}
