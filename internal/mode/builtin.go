package mode

import "github.com/dshills/envmask/internal/maskpool"

// fixedLengthUnset is the sentinel default for full mode's fixed_length
// option: "absent" per spec, represented as -1 since 0 is a legitimate
// (if unusual) fixed length.
const fixedLengthUnset = -1

func maskChar(opts map[string]any) rune {
	if s, ok := opts["mask_char"].(string); ok && len(s) > 0 {
		r := []rune(s)
		return r[0]
	}
	return '*'
}

// FullDefinition returns the built-in "full" mode: the whole value is
// replaced by a run of mask_char, sized by fixed_length, then
// preserve_length, then falling back to a single character.
func FullDefinition() Definition {
	return Definition{
		Name: "full",
		OptionSchema: OptionSchema{
			"mask_char":       {Name: "mask_char", Type: OptString, Default: "*"},
			"preserve_length": {Name: "preserve_length", Type: OptBool, Default: true},
			"fixed_length":    {Name: "fixed_length", Type: OptInt, Default: fixedLengthUnset},
		},
		Apply: func(ctx Context, opts map[string]any) (string, error) {
			return applyFull(ctx.Value, opts), nil
		},
	}
}

func applyFull(value string, opts map[string]any) string {
	char := maskChar(opts)

	if fixedLen, ok := opts["fixed_length"].(int); ok && fixedLen != fixedLengthUnset {
		return maskpool.Default().Fill(char, fixedLen)
	}

	preserve, _ := opts["preserve_length"].(bool)
	if preserve {
		return maskpool.Default().Fill(char, len(value))
	}

	return maskpool.Default().Fill(char, 1)
}

// FixedDefinition returns the built-in "fixed" mode: a run of mask_char
// of a length fixed by configuration, ignoring the value's own length.
// Unlike full mode's fixed_length option, this is a standalone entry
// point for policies that always want a constant-width mask regardless
// of the value being masked.
func FixedDefinition() Definition {
	return Definition{
		Name: "fixed",
		OptionSchema: OptionSchema{
			"mask_char": {Name: "mask_char", Type: OptString, Default: "*"},
			"length":    {Name: "length", Type: OptInt, Default: 8, Minimum: intPtr(0)},
		},
		Apply: func(ctx Context, opts map[string]any) (string, error) {
			char := maskChar(opts)
			length, _ := opts["length"].(int)
			return maskpool.Default().Fill(char, length), nil
		},
	}
}

// NoneDefinition returns the built-in "none" mode: the identity
// function. The decoration builder detects mask == value and emits no
// record.
func NoneDefinition() Definition {
	return Definition{
		Name:         "none",
		OptionSchema: OptionSchema{},
		Apply: func(ctx Context, opts map[string]any) (string, error) {
			return ctx.Value, nil
		},
	}
}

// PartialDefinition returns the built-in "partial" mode: preserves
// show_start leading and show_end trailing bytes, masking the middle,
// falling back to full or none when the value is too short to preserve
// both ends and still mask at least min_mask bytes.
func PartialDefinition() Definition {
	return Definition{
		Name: "partial",
		OptionSchema: OptionSchema{
			"mask_char":     {Name: "mask_char", Type: OptString, Default: "*"},
			"show_start":    {Name: "show_start", Type: OptInt, Default: 0, Minimum: intPtr(0)},
			"show_end":      {Name: "show_end", Type: OptInt, Default: 0, Minimum: intPtr(0)},
			"min_mask":      {Name: "min_mask", Type: OptInt, Default: 1, Minimum: intPtr(1)},
			"fallback_mode": {Name: "fallback_mode", Type: OptEnum, Default: "full", Enum: []string{"full", "none"}},
		},
		Apply: func(ctx Context, opts map[string]any) (string, error) {
			return applyPartial(ctx.Value, opts), nil
		},
	}
}

// PartialDefaults is a convenience set of partial-mode options for
// callers that want sensible behavior without specifying options
// explicitly: show_start = show_end = min_mask = 3.
func PartialDefaults() map[string]any {
	return map[string]any{
		"mask_char":     "*",
		"show_start":    3,
		"show_end":      3,
		"min_mask":      3,
		"fallback_mode": "full",
	}
}

func applyPartial(value string, opts map[string]any) string {
	char := maskChar(opts)
	showStart, _ := opts["show_start"].(int)
	showEnd, _ := opts["show_end"].(int)
	minMask, _ := opts["min_mask"].(int)
	fallback, _ := opts["fallback_mode"].(string)

	// Counting is by byte length, not rune/grapheme count, see the
	// resolved Open Question on this in the project's design notes.
	if len(value) <= showStart+showEnd+minMask {
		if fallback == "none" {
			return value
		}
		return maskpool.Default().Fill(char, len(value))
	}

	middle := len(value) - showStart - showEnd
	head := value[:showStart]
	tail := value[len(value)-showEnd:]
	return head + maskpool.Default().Fill(char, middle) + tail
}

func intPtr(n int) *int { return &n }
