package edf

import (
	"bytes"
	"unicode/utf8"
)

// Options controls what Parse tracks. Position tracking (line offsets) is
// always computed since the decoration builder depends on it; the flags
// here mirror the external parse(...) contract's knobs.
type Options struct {
	// IncludeComments controls whether comment-shaped entries are kept in
	// the result. When false, comment entries are parsed (to keep the
	// tokeniser's single-pass contract) but dropped before returning.
	IncludeComments bool
}

// DefaultOptions returns the options used when a caller has no preference.
func DefaultOptions() Options {
	return Options{IncludeComments: true}
}

var bom = []byte{0xEF, 0xBB, 0xBF}

// Parse tokenises input into a ParseResult. It never allocates a copy of
// input: every Entry's Key and Value slice borrows input directly.
//
// The only hard failure is invalid UTF-8; malformed lines simply produce no
// entry.
func Parse(input []byte, opts Options) (*ParseResult, error) {
	if !utf8.Valid(input) {
		return nil, &ErrInvalidEncoding{Offset: firstInvalidOffset(input)}
	}

	s := newScanner(input)
	result := &ParseResult{LineOffsets: s.lineOffsets}

	for s.pos < len(s.data) {
		entry, ok := parseLine(s)
		if ok {
			if entry.IsComment && !opts.IncludeComments {
				continue
			}
			result.Entries = append(result.Entries, entry)
		}
	}

	result.LineOffsets = s.lineOffsets
	return result, nil
}

func firstInvalidOffset(input []byte) int {
	for i := 0; i < len(input); {
		r, size := utf8.DecodeRune(input[i:])
		if r == utf8.RuneError && size <= 1 {
			return i
		}
		i += size
	}
	return len(input)
}

// scanner walks input one byte at a time, maintaining line_offsets as it
// crosses newlines. Every forward step in the tokeniser goes through
// advance() so line tracking can never drift out of sync with pos.
type scanner struct {
	data        []byte
	pos         int
	line        int
	lineOffsets []int // 1-indexed; index 0 unused
}

func newScanner(data []byte) *scanner {
	start := 0
	if len(data) >= 3 && data[0] == bom[0] && data[1] == bom[1] && data[2] == bom[2] {
		start = 3
	}
	return &scanner{
		data:        data,
		pos:         start,
		line:        1,
		lineOffsets: []int{0, 0},
	}
}

func (s *scanner) peek() (byte, bool) {
	if s.pos >= len(s.data) {
		return 0, false
	}
	return s.data[s.pos], true
}

func (s *scanner) peekAt(offset int) (byte, bool) {
	p := s.pos + offset
	if p < 0 || p >= len(s.data) {
		return 0, false
	}
	return s.data[p], true
}

// advance consumes one byte, updating line tracking if it was a newline.
func (s *scanner) advance() byte {
	b := s.data[s.pos]
	s.pos++
	if b == '\n' {
		s.line++
		s.lineOffsets = append(s.lineOffsets, s.pos)
	}
	return b
}

func isHSpace(b byte) bool { return b == ' ' || b == '\t' }

func isKeyStartByte(b byte) bool {
	return b == '_' || (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}

func isKeyChar(b byte) bool {
	return isKeyStartByte(b) || (b >= '0' && b <= '9')
}

// skipToEOL advances past the remainder of the current line, consuming its
// terminator (\n or \r\n) if present.
func skipToEOL(s *scanner) {
	for {
		b, ok := s.peek()
		if !ok {
			return
		}
		if b == '\n' {
			s.advance()
			return
		}
		if b == '\r' {
			if b2, ok2 := s.peekAt(1); ok2 && b2 == '\n' {
				s.advance()
				s.advance()
				return
			}
		}
		s.advance()
	}
}

const exportKeyword = "export"

// tryConsumeExport consumes a leading "export" keyword and the mandatory
// whitespace after it, returning false (and consuming nothing) if the
// keyword isn't followed by whitespace -- in that case it's just a key name
// that happens to start with "export".
func tryConsumeExport(s *scanner) bool {
	if s.pos+len(exportKeyword) > len(s.data) {
		return false
	}
	if string(s.data[s.pos:s.pos+len(exportKeyword)]) != exportKeyword {
		return false
	}
	next := s.pos + len(exportKeyword)
	if next >= len(s.data) || !isHSpace(s.data[next]) {
		return false
	}
	for i := 0; i < len(exportKeyword); i++ {
		s.advance()
	}
	for {
		b, ok := s.peek()
		if !ok || !isHSpace(b) {
			break
		}
		s.advance()
	}
	return true
}

// parseLine consumes one logical line (which, for a multi-line quoted
// value, spans several physical lines) starting at the scanner's current
// position, which must be at the start of a physical line. It returns the
// entry found, if any, and leaves the scanner positioned at the start of
// the next physical line.
func parseLine(s *scanner) (Entry, bool) {
	for {
		b, ok := s.peek()
		if !ok || !isHSpace(b) {
			break
		}
		s.advance()
	}

	b, ok := s.peek()
	if !ok {
		return Entry{}, false
	}
	if b == '\n' {
		s.advance()
		return Entry{}, false
	}
	if b == '\r' {
		if b2, ok2 := s.peekAt(1); ok2 && b2 == '\n' {
			s.advance()
			s.advance()
			return Entry{}, false
		}
	}

	isComment := false
	if b == '#' {
		isComment = true
		s.advance()
		for {
			b2, ok2 := s.peek()
			if !ok2 || !isHSpace(b2) {
				break
			}
			s.advance()
		}
	}

	isExported := tryConsumeExport(s)

	keyStart := s.pos
	first := true
	for {
		b2, ok2 := s.peek()
		if !ok2 {
			break
		}
		if first {
			if !isKeyStartByte(b2) {
				break
			}
		} else if !isKeyChar(b2) {
			break
		}
		first = false
		s.advance()
	}
	keyEnd := s.pos

	if keyEnd == keyStart {
		skipToEOL(s)
		return Entry{}, false
	}

	for {
		b2, ok2 := s.peek()
		if !ok2 || !isHSpace(b2) {
			break
		}
		s.advance()
	}

	b3, ok3 := s.peek()
	if !ok3 || b3 != '=' {
		skipToEOL(s)
		return Entry{}, false
	}
	s.advance()

	for {
		b2, ok2 := s.peek()
		if !ok2 || !isHSpace(b2) {
			break
		}
		s.advance()
	}

	lineNumber := s.line
	quote, valueStart, valueEnd, valueEndLine := parseValue(s)

	entry := Entry{
		Key:          s.data[keyStart:keyEnd],
		Value:        s.data[valueStart:valueEnd],
		KeyStart:     keyStart,
		KeyEnd:       keyEnd,
		ValueStart:   valueStart,
		ValueEnd:     valueEnd,
		LineNumber:   lineNumber,
		ValueEndLine: valueEndLine,
		QuoteType:    quote,
		IsExported:   isExported,
		IsComment:    isComment,
	}

	skipToEOL(s)
	return entry, true
}

// parseValue parses the value grammar starting right after '=' and any
// leading whitespace, returning the quote kind and the value's byte span
// (excluding quote bytes for quoted values) and end line.
func parseValue(s *scanner) (QuoteType, int, int, int) {
	b, ok := s.peek()

	switch {
	case ok && b == '\'':
		s.advance()
		start := s.pos
		// With no closing quote before end of input the value is
		// unterminated and ends at the end of its line.
		if bytes.IndexByte(s.data[start:], '\'') < 0 {
			for {
				b2, ok2 := s.peek()
				if !ok2 || b2 == '\n' {
					break
				}
				if b3, ok3 := s.peekAt(1); b2 == '\r' && ok3 && b3 == '\n' {
					break
				}
				s.advance()
			}
			return QuoteSingle, start, s.pos, s.line
		}
		for {
			b2, ok2 := s.peek()
			if !ok2 {
				return QuoteSingle, start, s.pos, s.line
			}
			if b2 == '\'' {
				end := s.pos
				endLine := s.line
				s.advance()
				return QuoteSingle, start, end, endLine
			}
			s.advance()
		}

	case ok && b == '"':
		s.advance()
		start := s.pos
		for {
			b2, ok2 := s.peek()
			if !ok2 {
				return QuoteDouble, start, s.pos, s.line
			}
			if b2 == '\\' {
				s.advance()
				if _, ok3 := s.peek(); ok3 {
					s.advance()
				}
				continue
			}
			if b2 == '"' {
				end := s.pos
				endLine := s.line
				s.advance()
				return QuoteDouble, start, end, endLine
			}
			s.advance()
		}

	default:
		start := s.pos
		for {
			b2, ok2 := s.peek()
			if !ok2 {
				break
			}
			if b2 == '\n' {
				break
			}
			if b2 == '\r' {
				if b3, ok3 := s.peekAt(1); ok3 && b3 == '\n' {
					break
				}
			}
			if b2 == '#' && s.pos > start && isHSpace(s.data[s.pos-1]) {
				break
			}
			s.advance()
		}
		end := s.pos
		for end > start && isHSpace(s.data[end-1]) {
			end--
		}
		return QuoteNone, start, end, s.line
	}
}
