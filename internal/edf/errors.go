package edf

import "fmt"

// ErrInvalidEncoding is returned by Parse when the input is not valid UTF-8.
// This is the only hard failure the tokeniser produces; malformed lines
// never fail, they simply produce no entry.
type ErrInvalidEncoding struct {
	// Offset is the byte offset of the first invalid UTF-8 sequence.
	Offset int
}

func (e *ErrInvalidEncoding) Error() string {
	return fmt.Sprintf("edf: invalid UTF-8 at byte offset %d", e.Offset)
}
