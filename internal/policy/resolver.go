package policy

import "sort"

// Rule is one (glob, mode) pair as declared in a Table.
type Rule struct {
	Glob string
	Mode string
}

// Table is the policy configuration: ordered key and source rules plus a
// fallback mode.
type Table struct {
	Patterns    []Rule
	Sources     []Rule
	DefaultMode string
}

// Resolver is a Table compiled into specificity-ordered matchers. Building
// a Resolver is the only place pattern compilation happens; Resolve is a
// plain linear scan and does no allocation beyond its own memo.
type Resolver struct {
	keyPatterns    []compiledPattern
	sourcePatterns []compiledPattern
	defaultMode    string
}

// Compile builds a Resolver from a Table. Patterns are sorted once here so
// Resolve never has to reorder anything.
func Compile(t Table) *Resolver {
	r := &Resolver{defaultMode: t.DefaultMode}

	r.keyPatterns = make([]compiledPattern, len(t.Patterns))
	for i, rule := range t.Patterns {
		r.keyPatterns[i] = compile(rule.Glob, rule.Mode, i)
	}
	sort.SliceStable(r.keyPatterns, func(i, j int) bool {
		return moreSpecific(r.keyPatterns[i], r.keyPatterns[j])
	})

	r.sourcePatterns = make([]compiledPattern, len(t.Sources))
	for i, rule := range t.Sources {
		r.sourcePatterns[i] = compile(rule.Glob, rule.Mode, i)
	}
	sort.SliceStable(r.sourcePatterns, func(i, j int) bool {
		return moreSpecific(r.sourcePatterns[i], r.sourcePatterns[j])
	})

	return r
}

// Resolve returns the mode name for key, consulting sourceBasename only if
// no key pattern matches. An empty sourceBasename means no source is known
// and source patterns are skipped.
func (r *Resolver) Resolve(key, sourceBasename string) string {
	for _, p := range r.keyPatterns {
		if matches(p, key) {
			return p.mode
		}
	}
	if sourceBasename != "" {
		for _, p := range r.sourcePatterns {
			if matches(p, sourceBasename) {
				return p.mode
			}
		}
	}
	return r.defaultMode
}

// DefaultMode returns the resolver's fallback mode name.
func (r *Resolver) DefaultMode() string {
	return r.defaultMode
}

// Memo wraps a Resolver with a per-call memo table keyed by key, so a
// single generate() call resolving the same key repeatedly (common in
// buffers with duplicate keys across sections) only pays resolution cost
// once per distinct key.
type Memo struct {
	resolver *Resolver
	cache    map[string]string
}

// NewMemo creates a call-scoped memo over resolver.
func NewMemo(resolver *Resolver) *Memo {
	return &Memo{resolver: resolver, cache: make(map[string]string)}
}

// Resolve returns the memoized mode name for key.
func (m *Memo) Resolve(key, sourceBasename string) string {
	if mode, ok := m.cache[key]; ok {
		return mode
	}
	mode := m.resolver.Resolve(key, sourceBasename)
	m.cache[key] = mode
	return mode
}
