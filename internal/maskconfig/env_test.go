package maskconfig

import "testing"

func TestEnvToPath(t *testing.T) {
	cases := map[string]string{
		"POLICY_DEFAULT_MODE": "policy.default_mode",
		"SKIP_COMMENTS":       "skip_comments",
	}
	for in, want := range cases {
		got, ok := envToPath(in)
		if !ok {
			t.Errorf("envToPath(%q) = not ok, want %q", in, want)
			continue
		}
		if got != want {
			t.Errorf("envToPath(%q) = %q, want %q", in, got, want)
		}
	}

	unsupported := []string{"POLICY", "MODES_PARTIAL_SHOW_START", "BOGUS"}
	for _, in := range unsupported {
		if _, ok := envToPath(in); ok {
			t.Errorf("envToPath(%q) expected not ok", in)
		}
	}
}

func TestParseValueCoercion(t *testing.T) {
	if v := parseValue("true"); v != true {
		t.Errorf("parseValue(true) = %v (%T)", v, v)
	}
	if v := parseValue("42"); v != 42 {
		t.Errorf("parseValue(42) = %v (%T)", v, v)
	}
	if v := parseValue("3.5"); v != 3.5 {
		t.Errorf("parseValue(3.5) = %v (%T)", v, v)
	}
	if v := parseValue("full"); v != "full" {
		t.Errorf("parseValue(full) = %v (%T)", v, v)
	}
}

func TestSetByPathBuildsNestedMaps(t *testing.T) {
	m := make(map[string]any)
	setByPath(m, "policy.default_mode", "partial")

	policy, ok := m["policy"].(map[string]any)
	if !ok {
		t.Fatalf("expected nested map, got %T", m["policy"])
	}
	if policy["default_mode"] != "partial" {
		t.Fatalf("default_mode = %v, want partial", policy["default_mode"])
	}
}

func TestLoadEnvOverridesScansPrefixedVars(t *testing.T) {
	t.Setenv("ENVMASK_POLICY_DEFAULT_MODE", "none")
	t.Setenv("UNRELATED_VAR", "ignored")

	out := LoadEnvOverrides()

	policy, ok := out["policy"].(map[string]any)
	if !ok {
		t.Fatalf("expected policy table in overrides, got %v", out)
	}
	if policy["default_mode"] != "none" {
		t.Fatalf("default_mode = %v, want none", policy["default_mode"])
	}
	if _, present := out["unrelated"]; present {
		t.Fatalf("unrelated env var leaked into overrides: %v", out)
	}
}

func TestLoadEnvOverridesIgnoresMalformedEntries(t *testing.T) {
	// Environ() entries are always KEY=VALUE; this just guards against a
	// stray ENVMASK_ with no remaining path segment.
	t.Setenv("ENVMASK_", "x")
	out := LoadEnvOverrides()
	if len(out) != 0 {
		t.Fatalf("expected no overrides from bare prefix, got %v", out)
	}
}
