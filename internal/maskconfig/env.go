package maskconfig

import (
	"os"
	"strconv"
	"strings"
)

// envPrefix is the environment variable namespace mask configuration
// overrides live under, e.g. ENVMASK_POLICY_DEFAULT_MODE.
const envPrefix = "ENVMASK_"

// LoadEnvOverrides scans the process environment for ENVMASK_* variables
// and returns them as a nested map keyed by dot-path, using the same
// shape TOMLLoader produces so the two can be merged with DeepMerge.
//
// Only two forms are recognized: ENVMASK_POLICY_<NAME>, mapped to
// policy.<name> with the name lowercased, and ENVMASK_SKIP_COMMENTS:
//
//	ENVMASK_POLICY_DEFAULT_MODE=partial -> {"policy": {"default_mode": "partial"}}
//	ENVMASK_SKIP_COMMENTS=true          -> {"skip_comments": true}
//
// Per-mode options ([modes.*] in the TOML file) are deliberately not
// addressable here: mode option names already contain underscores
// (show_start, fixed_length), so there is no way to split
// ENVMASK_MODES_PARTIAL_SHOW_START into a mode name and an option name
// without guessing. Configure per-mode options via the TOML file or
// ConfigureMode directly. Any other ENVMASK_* variable is ignored.
func LoadEnvOverrides() map[string]any {
	out := make(map[string]any)
	for _, kv := range os.Environ() {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, envPrefix) {
			continue
		}
		path, ok := envToPath(strings.TrimPrefix(key, envPrefix))
		if !ok {
			continue
		}
		setByPath(out, path, parseValue(value))
	}
	return out
}

// envToPath maps the two supported override forms to their dot-path in
// the configuration tree. See LoadEnvOverrides for why this is not a
// generic FOO_BAR_BAZ -> foo.bar.baz splitter.
func envToPath(name string) (string, bool) {
	if name == "SKIP_COMMENTS" {
		return "skip_comments", true
	}
	if rest, ok := strings.CutPrefix(name, "POLICY_"); ok && rest != "" {
		return "policy." + strings.ToLower(rest), true
	}
	return "", false
}

func parseValue(raw string) any {
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return int(n)
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	return raw
}

func setByPath(m map[string]any, path string, value any) {
	parts := strings.Split(path, ".")
	cur := m
	for i, part := range parts {
		if i == len(parts)-1 {
			cur[part] = value
			return
		}
		next, ok := cur[part].(map[string]any)
		if !ok {
			next = make(map[string]any)
			cur[part] = next
		}
		cur = next
	}
}
