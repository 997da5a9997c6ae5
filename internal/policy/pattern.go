// Package policy resolves a (key, source basename) pair to a mode name
// using glob pattern priority: key patterns before source patterns, with
// ties broken by specificity and then by declaration order.
package policy

import (
	"strings"

	"github.com/tidwall/match"
)

// compiledPattern is a glob pattern pre-ranked by specificity so resolution
// is a single linear scan in priority order.
type compiledPattern struct {
	glob       string
	mode       string
	wildcards  int
	prefixLen  int
	isExact    bool
	declareIdx int
}

func compile(glob, mode string, declareIdx int) compiledPattern {
	wildcards := strings.Count(glob, "*") + strings.Count(glob, "?")
	prefix := 0
	for prefix < len(glob) && glob[prefix] != '*' && glob[prefix] != '?' {
		prefix++
	}
	return compiledPattern{
		glob:       glob,
		mode:       mode,
		wildcards:  wildcards,
		prefixLen:  prefix,
		isExact:    wildcards == 0,
		declareIdx: declareIdx,
	}
}

// moreSpecific reports whether a is strictly more specific than b:
// exact match > fewer wildcards > longer literal prefix > earlier
// declaration.
func moreSpecific(a, b compiledPattern) bool {
	if a.isExact != b.isExact {
		return a.isExact
	}
	if a.wildcards != b.wildcards {
		return a.wildcards < b.wildcards
	}
	if a.prefixLen != b.prefixLen {
		return a.prefixLen > b.prefixLen
	}
	return a.declareIdx < b.declareIdx
}

func matches(p compiledPattern, s string) bool {
	if p.isExact {
		return p.glob == s
	}
	return match.Match(s, p.glob)
}
