// Package mask builds decoration records: byte-exact spans paired with
// the replacement text a host should overlay on top of them.
package mask

import "github.com/dshills/envmask/internal/edf"

// Record is one decoration instruction: "at this byte span, draw this
// replacement text instead of the underlying bytes."
type Record struct {
	LineNumber   int
	ValueEndLine int
	ValueStart   int
	ValueEnd     int
	Mask         string
	QuoteType    edf.QuoteType
	// Value is a copy of the original entry's value, kept for diagnostics;
	// it does not share memory with the parsed input.
	Value string
}
