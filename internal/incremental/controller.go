// Package incremental implements the edit-scoped recomputation controller:
// given a full buffer, an edit descriptor, and the caller's previous
// decoration cache, it recomputes only the entries an edit actually
// touched and merges the result with what's still valid.
//
// The controller holds no state of its own between calls -- the cache it
// reads and the snapshot it returns are both owned by the caller, per the
// buffer-cache ownership rule: the engine never keeps a buffer's
// decorations alive on the caller's behalf.
package incremental

import (
	"sort"

	"github.com/dshills/envmask/internal/edf"
	"github.com/dshills/envmask/internal/fingerprint"
	"github.com/dshills/envmask/internal/mask"
)

// EditKind identifies the shape of an edit descriptor.
type EditKind uint8

const (
	// FullRebuild recomputes every entry, regardless of the cache.
	FullRebuild EditKind = iota
	// LineRange recomputes only entries whose line falls in [MinLine,
	// MaxLine] and reuses cached records for everything else.
	LineRange
)

// Edit describes what changed since the caller's last call.
type Edit struct {
	Kind EditKind
	// MinLine, MaxLine are 1-indexed and inclusive; used only when Kind
	// is LineRange.
	MinLine, MaxLine int
}

// Snapshot is what a caller stores after a call and passes back in on
// the next one. The zero Snapshot (no prior call) is always treated as a
// cache miss.
type Snapshot struct {
	Masks       []mask.Record
	LineOffsets []int
	LineCount   int
	Fingerprint fingerprint.Fingerprint
	// NeedsFullRemask is the "paste" latch: when true, the next call
	// forces a FullRebuild regardless of the Edit it's given, then the
	// returned Snapshot clears it.
	NeedsFullRemask bool
	// valid is false for a Snapshot with no prior fingerprint, so a
	// zero-value Snapshot can't accidentally fingerprint-match anything.
	valid bool
}

// MarkPaste returns a copy of snap with the full-remask latch set, for
// callers to store immediately after a paste-shaped bulk edit.
func MarkPaste(snap Snapshot) Snapshot {
	snap.NeedsFullRemask = true
	return snap
}

// Output is the result of one controller call.
type Output struct {
	// Masks is the complete, merged record list, what the caller should
	// store as part of its next Snapshot.
	Masks []mask.Record
	// MasksToApply is the minimal subset the host needs to redraw.
	MasksToApply []mask.Record
	LineOffsets  []int
	// Snapshot is the full cache state the caller should retain for its
	// next call.
	Snapshot Snapshot
	// FastPathHit is true when the fingerprint fast path skipped parsing
	// and decoration entirely.
	FastPathHit bool
}

// Controller wraps a cached parser and a decoration builder to implement
// the edit-scoped recomputation algorithm.
type Controller struct {
	parser  *edf.CachedParser
	builder *mask.Builder
}

// New creates a Controller over parser and builder.
func New(parser *edf.CachedParser, builder *mask.Builder) *Controller {
	return &Controller{parser: parser, builder: builder}
}

// Generate runs the incremental algorithm for one edit against input,
// given the caller's previous Snapshot (its zero value if there is
// none).
func (c *Controller) Generate(input []byte, source string, edit Edit, prev Snapshot) (Output, error) {
	fp := fingerprint.Of(input)

	forceFull := edit.Kind == FullRebuild || prev.NeedsFullRemask

	if edit.Kind == FullRebuild && prev.valid && !prev.NeedsFullRemask && fp.Equal(prev.Fingerprint) {
		return Output{
			Masks:        prev.Masks,
			MasksToApply: nil,
			LineOffsets:  prev.LineOffsets,
			Snapshot:     prev,
			FastPathHit:  true,
		}, nil
	}

	parsed, _, err := c.parser.Parse(input, edf.DefaultOptions())
	if err != nil {
		return Output{}, err
	}

	if forceFull || !prev.valid {
		masks := c.builder.BuildEntries(parsed.Entries, source)
		snap := Snapshot{
			Masks:       masks,
			LineOffsets: parsed.LineOffsets,
			LineCount:   parsed.LineCount(),
			Fingerprint: fp,
			valid:       true,
		}
		return Output{Masks: masks, MasksToApply: masks, LineOffsets: parsed.LineOffsets, Snapshot: snap}, nil
	}

	unchanged := make([]mask.Record, 0, len(prev.Masks))
	for _, m := range prev.Masks {
		if m.LineNumber < edit.MinLine || m.LineNumber > edit.MaxLine {
			unchanged = append(unchanged, m)
		}
	}

	var changedEntries []edf.Entry
	for _, e := range parsed.Entries {
		if e.LineNumber >= edit.MinLine && e.LineNumber <= edit.MaxLine {
			changedEntries = append(changedEntries, e)
		}
	}
	newRecords := c.builder.BuildEntries(changedEntries, source)

	merged := make([]mask.Record, 0, len(unchanged)+len(newRecords))
	merged = append(merged, unchanged...)
	merged = append(merged, newRecords...)
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].LineNumber < merged[j].LineNumber
	})

	snap := Snapshot{
		Masks:       merged,
		LineOffsets: parsed.LineOffsets,
		LineCount:   parsed.LineCount(),
		Fingerprint: fp,
		valid:       true,
	}
	return Output{Masks: merged, MasksToApply: newRecords, LineOffsets: parsed.LineOffsets, Snapshot: snap}, nil
}
