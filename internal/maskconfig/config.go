package maskconfig

import "github.com/dshills/envmask/internal/policy"

// Config is the decoded shape of a policy/mode configuration file:
//
//	skip_comments = true
//
//	[policy]
//	default_mode = "full"
//
//	[[policy.patterns]]
//	glob = "*_TOKEN"
//	mode = "partial"
//
//	[[policy.sources]]
//	glob = "*.env.example"
//	mode = "none"
//
//	[modes.partial]
//	show_start = 2
//	show_end = 2
type Config struct {
	Policy       policy.Table
	Modes        map[string]map[string]any
	SkipComments bool
}

// Load reads path via TOMLLoader, layers ENVMASK_* environment overrides
// on top, and decodes the result into a Config. A missing file produces
// a Config with only environment overrides applied on top of an empty
// base.
func Load(path string) (Config, error) {
	base, err := NewTOMLLoader(path).Load()
	if err != nil {
		return Config{}, err
	}
	merged := DeepMerge(base, LoadEnvOverrides())
	return Decode(merged)
}

// Decode turns a generic nested map (as produced by TOMLLoader or
// DeepMerge) into a typed Config, tolerating missing sections.
func Decode(m map[string]any) (Config, error) {
	cfg := Config{Modes: make(map[string]map[string]any)}
	if m == nil {
		return cfg, nil
	}

	if policyRaw, ok := m["policy"].(map[string]any); ok {
		if dm, ok := policyRaw["default_mode"].(string); ok {
			cfg.Policy.DefaultMode = dm
		}
		cfg.Policy.Patterns = decodeRules(policyRaw["patterns"])
		cfg.Policy.Sources = decodeRules(policyRaw["sources"])
	}

	if skip, ok := m["skip_comments"].(bool); ok {
		cfg.SkipComments = skip
	}

	if modesRaw, ok := m["modes"].(map[string]any); ok {
		for name, optsRaw := range modesRaw {
			if opts, ok := optsRaw.(map[string]any); ok {
				cfg.Modes[name] = opts
			}
		}
	}

	return cfg, nil
}

func decodeRules(raw any) []policy.Rule {
	list, ok := raw.([]any)
	if !ok {
		return nil
	}
	rules := make([]policy.Rule, 0, len(list))
	for _, item := range list {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		glob, _ := entry["glob"].(string)
		mode, _ := entry["mode"].(string)
		if glob == "" || mode == "" {
			continue
		}
		rules = append(rules, policy.Rule{Glob: glob, Mode: mode})
	}
	return rules
}
