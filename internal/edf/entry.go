// Package edf tokenises dotenv ("EDF") text into byte-exact entries without
// copying the input. An Entry's Key and Value fields are slices of the
// original input; callers that need to retain them past the lifetime of the
// input must copy explicitly.
package edf

// QuoteType identifies how a value was quoted in the source text.
type QuoteType uint8

const (
	// QuoteNone means the value was unquoted.
	QuoteNone QuoteType = 0
	// QuoteSingle means the value was wrapped in single quotes.
	QuoteSingle QuoteType = 1
	// QuoteDouble means the value was wrapped in double quotes.
	QuoteDouble QuoteType = 2
)

// Entry is one parsed KEY=VALUE line, with byte-exact spans into the
// original input that produced it.
type Entry struct {
	Key   []byte
	Value []byte

	KeyStart   int
	KeyEnd     int
	ValueStart int
	ValueEnd   int

	// LineNumber is the 1-indexed line containing the start of the value.
	LineNumber int
	// ValueEndLine is the 1-indexed line containing the last byte of the
	// value; equal to LineNumber except for multi-line quoted values.
	ValueEndLine int

	QuoteType  QuoteType
	IsExported bool
	IsComment  bool
}

// ParseResult is the output of Parse: the ordered entries found in the
// input, plus the byte offset at which each 1-indexed line begins.
type ParseResult struct {
	Entries []Entry
	// LineOffsets is 1-indexed: LineOffsets[i] is the byte offset at which
	// line i begins. Index 0 is unused and always zero.
	LineOffsets []int
}

// LineCount returns the number of lines represented in LineOffsets.
func (r *ParseResult) LineCount() int {
	if len(r.LineOffsets) == 0 {
		return 0
	}
	return len(r.LineOffsets) - 1
}

// Column converts an absolute byte offset on a known line into a 0-indexed
// byte column. The caller supplies the line number (as carried by an Entry)
// rather than having Column search for it, since callers always already
// know which line an offset belongs to.
func (r *ParseResult) Column(lineNumber, byteOffset int) int {
	if lineNumber < 1 || lineNumber >= len(r.LineOffsets) {
		return 0
	}
	return byteOffset - r.LineOffsets[lineNumber]
}

// LineEnd returns the byte offset one past the end of lineNumber, using
// inputLen as the sentinel for the last line.
func (r *ParseResult) LineEnd(lineNumber, inputLen int) int {
	if lineNumber+1 < len(r.LineOffsets) {
		return r.LineOffsets[lineNumber+1]
	}
	return inputLen
}
