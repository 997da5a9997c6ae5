package mode

import (
	"fmt"

	"github.com/dshills/envmask/internal/obslog"
)

// Registry maps mode names to their definitions and current configured
// options. It has no built-in modes until RegisterBuiltins is called.
type Registry struct {
	definitions map[string]*Definition
	configured  map[string]map[string]any

	log *obslog.Logger
	// warned tracks which unknown mode names have already produced a
	// once-per-process diagnostic, per spec's ModeNotFound handling.
	warned map[string]bool
}

// New creates an empty Registry.
func New(log *obslog.Logger) *Registry {
	if log == nil {
		log = obslog.NullLogger
	}
	return &Registry{
		definitions: make(map[string]*Definition),
		configured:  make(map[string]map[string]any),
		log:         log.WithComponent("mode"),
		warned:      make(map[string]bool),
	}
}

// Register adds a new mode definition, seeding its configured options
// from DefaultOptions (or the schema's defaults if DefaultOptions is
// nil). It returns ErrAlreadyRegistered if the name is taken.
func (r *Registry) Register(def Definition) error {
	if _, exists := r.definitions[def.Name]; exists {
		return fmt.Errorf("%w: %s", ErrAlreadyRegistered, def.Name)
	}
	d := def
	r.definitions[d.Name] = &d

	defaults := d.DefaultOptions
	if defaults == nil {
		defaults = d.OptionSchema.Defaults()
	}
	r.configured[d.Name] = cloneOptions(defaults)
	return nil
}

// MustRegister panics if Register would return an error. Used for
// built-in modes at construction time, where a failure is a programming
// error, not a runtime condition.
func (r *Registry) MustRegister(def Definition) {
	if err := r.Register(def); err != nil {
		panic(err)
	}
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.definitions[name]
	return ok
}

// List returns the registered mode names.
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.definitions))
	for name := range r.definitions {
		names = append(names, name)
	}
	return names
}

// Info returns the definition and current configured options for name.
func (r *Registry) Info(name string) (*Definition, map[string]any, bool) {
	def, ok := r.definitions[name]
	if !ok {
		return nil, nil, false
	}
	return def, cloneOptions(r.configured[name]), true
}

// Configure validates options against name's schema and, if valid,
// replaces its configured options. On validation failure the previous
// configuration is left untouched and the error is returned.
func (r *Registry) Configure(name string, options map[string]any) error {
	def, ok := r.definitions[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrModeNotFound, name)
	}
	merged := mergeOptions(r.configured[name], options)
	normalizeOptions(def.OptionSchema, merged)
	if err := validate(def.OptionSchema, merged); err != nil {
		return err
	}
	r.configured[name] = merged
	return nil
}

// Create returns a bound Instance for name, applying overrides (if any)
// on top of the mode's currently configured options without mutating the
// registry's stored configuration.
//
// If name is not registered, Create resolves defaultMode instead and
// emits a once-per-process Warn diagnostic for the unknown name, per the
// ModeNotFound fallback policy.
func (r *Registry) Create(name, defaultMode string, overrides map[string]any) (*Instance, error) {
	def, ok := r.definitions[name]
	if !ok {
		if !r.warned[name] {
			r.warned[name] = true
			r.log.Warn("mode %q not registered, falling back to %q", name, defaultMode)
		}
		def, ok = r.definitions[defaultMode]
		if !ok {
			return nil, fmt.Errorf("%w: default mode %q is also unregistered", ErrModeNotFound, defaultMode)
		}
		name = defaultMode
	}

	merged := mergeOptions(r.configured[name], overrides)
	normalizeOptions(def.OptionSchema, merged)
	if err := validate(def.OptionSchema, merged); err != nil {
		return nil, err
	}

	return &Instance{name: def.Name, apply: def.Apply, options: merged}, nil
}

func cloneOptions(src map[string]any) map[string]any {
	out := make(map[string]any, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

func mergeOptions(base, overrides map[string]any) map[string]any {
	out := cloneOptions(base)
	for k, v := range overrides {
		out[k] = v
	}
	return out
}

func validate(schema OptionSchema, options map[string]any) error {
	for name, opt := range schema {
		value, present := options[name]
		if !present {
			continue
		}
		if err := validateOption(opt, value); err != nil {
			return err
		}
	}
	return nil
}

func validateOption(opt Option, value any) error {
	switch opt.Type {
	case OptString:
		if _, ok := value.(string); !ok {
			return &ValidationError{Option: opt.Name, Message: fmt.Sprintf("expected string, got %T", value)}
		}
	case OptBool:
		if _, ok := value.(bool); !ok {
			return &ValidationError{Option: opt.Name, Message: fmt.Sprintf("expected bool, got %T", value)}
		}
	case OptInt:
		n, ok := toInt(value)
		if !ok {
			return &ValidationError{Option: opt.Name, Message: fmt.Sprintf("expected int, got %T", value)}
		}
		if opt.Minimum != nil && n < *opt.Minimum {
			return &ValidationError{Option: opt.Name, Message: fmt.Sprintf("%d is below minimum %d", n, *opt.Minimum)}
		}
		if opt.Maximum != nil && n > *opt.Maximum {
			return &ValidationError{Option: opt.Name, Message: fmt.Sprintf("%d is above maximum %d", n, *opt.Maximum)}
		}
	case OptEnum:
		s, ok := value.(string)
		if !ok {
			return &ValidationError{Option: opt.Name, Message: fmt.Sprintf("expected string enum, got %T", value)}
		}
		found := false
		for _, allowed := range opt.Enum {
			if allowed == s {
				found = true
				break
			}
		}
		if !found {
			return &ValidationError{Option: opt.Name, Message: fmt.Sprintf("%q is not one of %v", s, opt.Enum)}
		}
	}
	return nil
}

// normalizeOptions rewrites every OptInt-typed entry present in options to
// a plain int, in place. Config sources such as go-toml/v2 decode integers
// into map[string]any as int64, not int; without this, an ApplyFunc's bare
// opts["foo"].(int) assertion fails silently on a TOML-sourced value and
// falls back to the zero value instead of the configured one.
func normalizeOptions(schema OptionSchema, options map[string]any) {
	for name, opt := range schema {
		if opt.Type != OptInt {
			continue
		}
		value, present := options[name]
		if !present {
			continue
		}
		if n, ok := toInt(value); ok {
			options[name] = n
		}
	}
}

func toInt(value any) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case int32:
		return int(v), true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}
