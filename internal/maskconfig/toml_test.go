package maskconfig

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

func TestTOMLLoaderMissingFileReturnsNilMap(t *testing.T) {
	loader := NewTOMLLoader(filepath.Join(t.TempDir(), "missing.toml"))
	m, err := loader.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m != nil {
		t.Fatalf("expected nil map for missing file, got %v", m)
	}
}

func TestTOMLLoaderParsesNestedTables(t *testing.T) {
	loader := NewTOMLLoader("irrelevant.toml")
	m, err := loader.LoadFromReader(strings.NewReader(`
skip_comments = true

[policy]
default_mode = "full"

[[policy.patterns]]
glob = "*_TOKEN"
mode = "partial"
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	policy, ok := m["policy"].(map[string]any)
	if !ok {
		t.Fatalf("expected policy table, got %T", m["policy"])
	}
	if policy["default_mode"] != "full" {
		t.Fatalf("default_mode = %v, want full", policy["default_mode"])
	}
}

func TestTOMLLoaderMalformedReturnsParseError(t *testing.T) {
	loader := NewTOMLLoader("bad.toml")
	_, err := loader.LoadFromReader(strings.NewReader(`not = [valid toml`))
	if err == nil {
		t.Fatal("expected error for malformed TOML")
	}
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *ParseError, got %T: %v", err, err)
	}
}

func TestDeepMergeSrcWinsOnScalars(t *testing.T) {
	dst := map[string]any{"a": 1, "b": map[string]any{"x": 1}}
	src := map[string]any{"a": 2, "b": map[string]any{"y": 2}}

	merged := DeepMerge(dst, src)

	if merged["a"] != 2 {
		t.Fatalf("a = %v, want 2", merged["a"])
	}
	nested, ok := merged["b"].(map[string]any)
	if !ok {
		t.Fatalf("expected nested map, got %T", merged["b"])
	}
	if nested["x"] != 1 || nested["y"] != 2 {
		t.Fatalf("nested merge incomplete: %v", nested)
	}
}

func TestDeepMergeNilDst(t *testing.T) {
	merged := DeepMerge(nil, map[string]any{"a": 1})
	if merged["a"] != 1 {
		t.Fatalf("a = %v, want 1", merged["a"])
	}
}
