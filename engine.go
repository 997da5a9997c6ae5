package envmask

import (
	"github.com/google/uuid"

	"github.com/dshills/envmask/internal/edf"
	"github.com/dshills/envmask/internal/incremental"
	"github.com/dshills/envmask/internal/mask"
	"github.com/dshills/envmask/internal/maskconfig"
	"github.com/dshills/envmask/internal/mode"
	"github.com/dshills/envmask/internal/obslog"
	"github.com/dshills/envmask/internal/policy"
)

// Snapshot is the caller-owned cache state returned by GenerateIncremental
// and fed back into the next call for the same buffer. The zero Snapshot
// means "no prior call" and always produces a full rebuild.
type Snapshot = incremental.Snapshot

// Edit describes what changed in a buffer since the caller's last
// GenerateIncremental call.
type Edit = incremental.Edit

// EditKind identifies the shape of an Edit.
type EditKind = incremental.EditKind

const (
	FullRebuild = incremental.FullRebuild
	LineRange   = incremental.LineRange
)

// MaskRecord is one emitted decoration: a byte-exact span in the input
// plus the replacement text a host should draw over it.
type MaskRecord = mask.Record

// ModeOption describes one configurable knob on a mode's schema.
type ModeOption = mode.Option

// ModeDefinition is what RegisterMode takes to add a custom mode: its
// name, its Apply function, and its option schema.
type ModeDefinition = mode.Definition

// ModeContext is what a mode's Apply function receives.
type ModeContext = mode.Context

// PolicyTable is the set of key/source patterns and the default mode
// SetPolicy compiles into a Resolver.
type PolicyTable = policy.Table

// PolicyRule is one (glob, mode) pair in a PolicyTable.
type PolicyRule = policy.Rule

// GenerateResult is the output of Generate: a full set of decorations for
// one buffer plus the line offsets needed to convert byte spans to
// line/column positions.
type GenerateResult struct {
	Masks       []MaskRecord
	LineOffsets []int
}

// IncrementalResult is the output of GenerateIncremental.
type IncrementalResult struct {
	Masks        []MaskRecord
	MasksToApply []MaskRecord
	LineOffsets  []int
	Snapshot     Snapshot
	FastPathHit  bool
}

// Engine is the explicit, host-owned entry point to every operation:
// parsing, full and incremental generation, mode registration and
// configuration, and policy management. A host creates one Engine per
// thread it drives the engine from; Engine itself performs no
// synchronization, per the single-threaded, synchronous concurrency
// contract this package is built to.
type Engine struct {
	log          *obslog.Logger
	parser       *edf.CachedParser
	registry     *mode.Registry
	resolver     *policy.Resolver
	builder      *mask.Builder
	ctrl         *incremental.Controller
	skipComments bool

	id string
}

// Option configures a new Engine.
type Option func(*engineConfig)

type engineConfig struct {
	log          *obslog.Logger
	policy       policy.Table
	skipComments bool
}

// WithLogger attaches a logger for mode-fallback and config-reload
// diagnostics. The default is obslog.NullLogger.
func WithLogger(log *obslog.Logger) Option {
	return func(c *engineConfig) { c.log = log }
}

// WithPolicy sets the initial policy table, equivalent to calling
// SetPolicy immediately after New.
func WithPolicy(table PolicyTable) Option {
	return func(c *engineConfig) { c.policy = table }
}

// WithSkipComments controls whether comment-shaped entries are masked.
// The default is false: comments are masked like any other entry.
func WithSkipComments(skip bool) Option {
	return func(c *engineConfig) { c.skipComments = skip }
}

// New creates an Engine with the mandatory built-in modes (full, partial,
// none, fixed) already registered and an empty policy table, falling
// back to "full" for every key until SetPolicy is called.
func New(opts ...Option) *Engine {
	cfg := engineConfig{log: obslog.NullLogger, policy: policy.Table{DefaultMode: "full"}}
	for _, opt := range opts {
		opt(&cfg)
	}

	registry := mode.New(cfg.log)
	mode.RegisterBuiltins(registry)

	resolver := policy.Compile(cfg.policy)
	builder := mask.New(resolver, registry, mask.Config{SkipComments: cfg.skipComments})
	parser := edf.NewCachedParser()

	return &Engine{
		log:          cfg.log,
		parser:       parser,
		registry:     registry,
		resolver:     resolver,
		builder:      builder,
		ctrl:         incremental.New(parser, builder),
		skipComments: cfg.skipComments,
		id:           uuid.NewString(),
	}
}

// ID returns an opaque identifier for this Engine instance, minted once
// at construction. It exists purely to correlate log lines across
// multiple Engines in a host process (one per thread); it is never used
// as a cache key by the Engine itself, which keeps no buffer-keyed state.
func (e *Engine) ID() string { return e.id }

// Parse tokenises input into an edf.ParseResult, the same tokenisation
// Generate uses internally. Hosts that only need raw entries (e.g. a
// linter checking for malformed KEY=VALUE lines) can call this directly
// without going through the masking pipeline.
func (e *Engine) Parse(input []byte, opts edf.Options) (*edf.ParseResult, error) {
	result, err := edf.Parse(input, opts)
	if err != nil {
		return nil, wrapParseError(err)
	}
	return result, nil
}

// Generate produces the complete decoration set for input. source, if
// non-empty, is used for source-pattern policy matching by its basename
// only; full paths are never passed to the pattern resolver.
func (e *Engine) Generate(input []byte, source string) (GenerateResult, error) {
	parsed, _, err := e.parser.Parse(input, edf.DefaultOptions())
	if err != nil {
		return GenerateResult{}, wrapParseError(err)
	}
	result := e.builder.Build(parsed, source)
	return GenerateResult{Masks: result.Masks, LineOffsets: result.LineOffsets}, nil
}

// GenerateIncremental recomputes decorations for input given what changed
// (edit) and the Snapshot the caller retained from its previous call for
// this same buffer. Passing the zero Snapshot always forces a full
// rebuild, matching a buffer's first call.
//
// The Engine keeps no record of prev or of the Snapshot it returns:
// per-buffer cache ownership belongs entirely to the caller.
func (e *Engine) GenerateIncremental(input []byte, source string, edit Edit, prev Snapshot) (IncrementalResult, error) {
	out, err := e.ctrl.Generate(input, source, edit, prev)
	if err != nil {
		return IncrementalResult{}, wrapParseError(err)
	}
	return IncrementalResult{
		Masks:        out.Masks,
		MasksToApply: out.MasksToApply,
		LineOffsets:  out.LineOffsets,
		Snapshot:     out.Snapshot,
		FastPathHit:  out.FastPathHit,
	}, nil
}

// MarkPaste returns a copy of snap with its full-remask latch set. A
// host should call this immediately after detecting a paste-shaped bulk
// edit (line-count change, multi-line replace) and store the result as
// the Snapshot it passes into the next GenerateIncremental call, which
// then forces a FullRebuild regardless of the Edit it's given.
func (e *Engine) MarkPaste(snap Snapshot) Snapshot {
	return incremental.MarkPaste(snap)
}

// RegisterMode adds a custom mode definition. It returns
// ErrModeAlreadyRegistered if name is already taken.
func (e *Engine) RegisterMode(def ModeDefinition) error {
	return e.registry.Register(def)
}

// RegisterLuaMode compiles a Lua script defining a global
// `mask(value, opts)` function and registers it as a custom mode named
// name, with the given option schema and defaults.
func (e *Engine) RegisterLuaMode(name, script string, schema mode.OptionSchema, defaults map[string]any) error {
	lm, err := mode.NewLuaMode(name, script)
	if err != nil {
		return err
	}
	return e.registry.Register(lm.Definition(schema, defaults))
}

// ConfigureMode validates options against name's declared schema and, if
// valid, replaces its stored configuration. On a SchemaViolation the
// mode's previous configuration is left untouched and a *ValidationError
// is returned.
func (e *Engine) ConfigureMode(name string, options map[string]any) error {
	return wrapValidationError(e.registry.Configure(name, options))
}

// ListModes returns the names of every registered mode, built-in and
// custom.
func (e *Engine) ListModes() []string {
	return e.registry.List()
}

// ModeInfo returns the definition and currently configured options for
// name, or ErrModeNotFound if name is not registered.
func (e *Engine) ModeInfo(name string) (ModeDefinition, map[string]any, error) {
	def, opts, ok := e.registry.Info(name)
	if !ok {
		return ModeDefinition{}, nil, ErrModeNotFound
	}
	return *def, opts, nil
}

// SetPolicy recompiles the pattern resolver from table and rebuilds the
// decoration builder over it. Per the engine's ordering contract,
// changing policy invalidates every previously returned Snapshot: callers
// must discard their buffer caches (or call ClearCaches) after this,
// since stale records must never be returned.
func (e *Engine) SetPolicy(table PolicyTable) {
	e.resolver = policy.Compile(table)
	e.rebuildBuilder()
}

// SetSkipComments toggles whether comment-shaped entries are masked,
// rebuilding the decoration builder the same way SetPolicy does.
func (e *Engine) SetSkipComments(skip bool) {
	e.skipComments = skip
	e.rebuildBuilder()
}

func (e *Engine) rebuildBuilder() {
	e.builder = mask.New(e.resolver, e.registry, mask.Config{SkipComments: e.skipComments})
	e.ctrl = incremental.New(e.parser, e.builder)
}

// ClearCaches empties this Engine's parser LRU. It does not affect
// any Snapshot a caller is holding; those remain valid until the next
// SetPolicy or ConfigureMode call that changes what they'd decorate to.
func (e *Engine) ClearCaches() {
	e.parser.Clear()
}

// LoadConfig reads policy and mode configuration from a TOML file (with
// ENVMASK_* environment overrides layered on top) and applies it: SetPolicy
// with the decoded policy table, SetSkipComments with the decoded flag,
// and ConfigureMode for every mode named under [modes.*]. Mode
// configuration errors for one mode do not prevent the rest from being
// applied; the first error encountered, if any, is returned after all
// modes have been attempted.
func (e *Engine) LoadConfig(path string) error {
	cfg, err := maskconfig.Load(path)
	if err != nil {
		return err
	}
	return e.ApplyConfig(cfg)
}

// WatchConfig starts an fsnotify-backed watch on path and returns the
// Watcher so the caller can read reload events on its own thread and
// apply them via ApplyConfig at a point where no Generate/
// GenerateIncremental call is in flight. The engine never applies a
// reload itself: doing so from the watcher's background goroutine would
// mutate engine state concurrently with whatever thread is driving
// generate calls, breaking the single-threaded contract the rest of this
// package is built on. The returned Watcher must be closed by the caller
// when the Engine is no longer in use.
func (e *Engine) WatchConfig(path string) (*maskconfig.Watcher, error) {
	return maskconfig.NewWatcher(path, e.log)
}

// ApplyConfig applies a decoded configuration the way LoadConfig does:
// SetPolicy, SetSkipComments, then ConfigureMode for every mode named
// under [modes.*]. Callers typically obtain cfg either from
// maskconfig.Load directly or from a Watcher's Updates channel.
func (e *Engine) ApplyConfig(cfg maskconfig.Config) error {
	e.SetPolicy(cfg.Policy)
	e.SetSkipComments(cfg.SkipComments)

	var firstErr error
	for name, opts := range cfg.Modes {
		if err := e.ConfigureMode(name, opts); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
