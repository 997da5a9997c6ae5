// Package mode implements the masking-mode registry: named strategies
// that turn an entry's value into a replacement string, selected by the
// pattern resolver and applied by the decoration builder.
//
// The engine calls into this package synchronously and from one
// goroutine at a time (see the engine's concurrency contract), so the
// registry and the mode instances it produces do no internal locking.
package mode

import "github.com/dshills/envmask/internal/edf"

// Context is the fixed, reusable struct passed to a mode's Apply
// function. The decoration builder mutates one Context per generate()
// call across entries rather than allocating a new one each iteration.
type Context struct {
	Key        string
	Value      string
	Source     string
	LineNumber int
	QuoteType  edf.QuoteType
	IsComment  bool
	// Config carries mode-wide options resolved for the current call;
	// it is the same map an Instance was created with.
	Config map[string]any
}

// ApplyFunc turns a Context into the string that should be displayed in
// place of Value. It must be pure with respect to ctx and opts.
type ApplyFunc func(ctx Context, opts map[string]any) (string, error)

// OptionType identifies the expected Go type of a mode option value.
type OptionType uint8

const (
	OptString OptionType = iota
	OptInt
	OptBool
	OptEnum
)

// Option describes one entry in a mode's option schema: its type,
// default, and (for enums) the allowed values.
type Option struct {
	Name    string
	Type    OptionType
	Default any
	Enum    []string
	// Minimum/Maximum apply to OptInt options; nil means unbounded.
	Minimum *int
	Maximum *int
}

// OptionSchema is a mode's declared set of configurable options, keyed by
// option name.
type OptionSchema map[string]Option

// Defaults returns a fresh map of this schema's default option values.
func (s OptionSchema) Defaults() map[string]any {
	out := make(map[string]any, len(s))
	for name, opt := range s {
		out[name] = opt.Default
	}
	return out
}

// Definition is what Register takes: a mode's name, its apply function,
// and its option schema.
type Definition struct {
	Name           string
	Apply          ApplyFunc
	OptionSchema   OptionSchema
	DefaultOptions map[string]any
}

// Instance is a mode bound to a fully resolved, validated set of options,
// the product of Registry.Create.
type Instance struct {
	name    string
	apply   ApplyFunc
	options map[string]any
}

// Name returns the mode name this instance was created from.
func (i *Instance) Name() string { return i.name }

// ApplyTo runs the mode against ctx, attaching the instance's resolved
// options to ctx.Config first.
func (i *Instance) ApplyTo(ctx Context) (string, error) {
	ctx.Config = i.options
	return i.apply(ctx, i.options)
}
