package mask

import (
	"path/filepath"

	"github.com/dshills/envmask/internal/edf"
	"github.com/dshills/envmask/internal/mode"
	"github.com/dshills/envmask/internal/policy"
)

// Config carries the decoration builder's own knobs, separate from any
// individual mode's options.
type Config struct {
	SkipComments bool
}

// Builder drives the pattern resolver and mode registry across a
// ParseResult's entries to produce Records.
type Builder struct {
	resolver *policy.Resolver
	registry *mode.Registry
	config   Config
}

// New creates a Builder over resolver and registry.
func New(resolver *policy.Resolver, registry *mode.Registry, config Config) *Builder {
	return &Builder{resolver: resolver, registry: registry, config: config}
}

// Result is the decoration builder's output for a single generate call.
type Result struct {
	Masks       []Record
	LineOffsets []int
}

// Build runs the decoration algorithm over parsed, whose entries are
// assumed already in ascending value_start order (Parse's own
// invariant), emitting records in the same order.
func (b *Builder) Build(parsed *edf.ParseResult, source string) Result {
	return Result{
		Masks:       b.BuildEntries(parsed.Entries, source),
		LineOffsets: parsed.LineOffsets,
	}
}

// BuildEntries runs the decoration algorithm over an explicit subset of
// entries, independent of any particular ParseResult. The incremental
// controller uses this to recompute only the entries whose line falls
// inside an edit's changed range.
func (b *Builder) BuildEntries(entries []edf.Entry, source string) []Record {
	sourceBasename := ""
	if source != "" {
		sourceBasename = filepath.Base(source)
	}

	modeMemo := policy.NewMemo(b.resolver)
	instances := make(map[string]*mode.Instance)

	ctx := mode.Context{Source: sourceBasename}
	var records []Record
	for _, entry := range entries {
		if entry.IsComment && b.config.SkipComments {
			continue
		}

		modeName := modeMemo.Resolve(string(entry.Key), sourceBasename)

		inst, ok := instances[modeName]
		if !ok {
			created, err := b.registry.Create(modeName, b.resolver.DefaultMode(), nil)
			if err != nil {
				// Registry.Create already falls back to the default mode
				// for unknown names; an error here means even the default
				// mode is unregistered, which leaves nothing safe to draw.
				continue
			}
			inst = created
			instances[modeName] = inst
			instances[inst.Name()] = inst
		}

		value := string(entry.Value)
		ctx.Key = string(entry.Key)
		ctx.Value = value
		ctx.LineNumber = entry.LineNumber
		ctx.QuoteType = entry.QuoteType
		ctx.IsComment = entry.IsComment
		maskText, err := inst.ApplyTo(ctx)
		if err != nil || maskText == value {
			continue
		}

		records = append(records, Record{
			LineNumber:   entry.LineNumber,
			ValueEndLine: entry.ValueEndLine,
			ValueStart:   entry.ValueStart,
			ValueEnd:     entry.ValueEnd,
			Mask:         maskText,
			QuoteType:    entry.QuoteType,
			Value:        value,
		})
	}

	return records
}
