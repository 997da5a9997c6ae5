package mask

import (
	"testing"

	"github.com/dshills/envmask/internal/edf"
	"github.com/dshills/envmask/internal/mode"
	"github.com/dshills/envmask/internal/policy"
)

func newBuilder(t *testing.T, table policy.Table, config Config) *Builder {
	t.Helper()
	reg := mode.New(nil)
	mode.RegisterBuiltins(reg)
	resolver := policy.Compile(table)
	return New(resolver, reg, config)
}

func mustParse(t *testing.T, input string) *edf.ParseResult {
	t.Helper()
	res, err := edf.Parse([]byte(input), edf.DefaultOptions())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return res
}

func TestBuildUnquotedSingleLine(t *testing.T) {
	b := newBuilder(t, policy.Table{DefaultMode: "full"}, Config{})
	res := b.Build(mustParse(t, "API_KEY=secret123\n"), "")

	if len(res.Masks) != 1 {
		t.Fatalf("expected 1 record, got %d", len(res.Masks))
	}
	m := res.Masks[0]
	if m.ValueStart != 8 || m.ValueEnd != 17 {
		t.Errorf("span = [%d,%d)", m.ValueStart, m.ValueEnd)
	}
	if m.LineNumber != 1 || m.ValueEndLine != 1 {
		t.Errorf("lines = %d/%d", m.LineNumber, m.ValueEndLine)
	}
	if m.Mask != "*********" {
		t.Errorf("mask = %q, want 9 stars", m.Mask)
	}
}

func TestBuildPartialWithPolicyPattern(t *testing.T) {
	table := policy.Table{
		Patterns: []policy.Rule{{Glob: "*_TOKEN", Mode: "partial"}},
		DefaultMode: "full",
	}
	reg := mode.New(nil)
	mode.RegisterBuiltins(reg)
	if err := reg.Configure("partial", map[string]any{"show_start": 2, "show_end": 2, "min_mask": 1}); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	b := New(policy.Compile(table), reg, Config{})

	res := b.Build(mustParse(t, "TOKEN=mysecretvalue\n"), "")
	if res.Masks[0].Mask != "*************" {
		t.Errorf("TOKEN mask = %q, want full fallback (13 stars)", res.Masks[0].Mask)
	}

	res2 := b.Build(mustParse(t, "AUTH_TOKEN=secrettoken\n"), "")
	if res2.Masks[0].Mask != "se*******en" {
		t.Errorf("AUTH_TOKEN mask = %q, want se*******en", res2.Masks[0].Mask)
	}
}

func TestBuildSkipComments(t *testing.T) {
	b := newBuilder(t, policy.Table{DefaultMode: "full"}, Config{SkipComments: true})
	res := b.Build(mustParse(t, "#FOO=bar\nBAR=baz\n"), "")
	if len(res.Masks) != 1 {
		t.Fatalf("expected 1 record, got %d", len(res.Masks))
	}
	if res.Masks[0].Value != "baz" {
		t.Errorf("unexpected record value %q", res.Masks[0].Value)
	}
}

func TestBuildDoubleQuotedMultiline(t *testing.T) {
	b := newBuilder(t, policy.Table{DefaultMode: "full"}, Config{})
	input := "JSON=\"{\n  \\\"k\\\": \\\"v\\\"\n}\"\n"
	res := b.Build(mustParse(t, input), "")
	if len(res.Masks) != 1 {
		t.Fatalf("expected 1 record, got %d", len(res.Masks))
	}
	m := res.Masks[0]
	if m.LineNumber != 1 || m.ValueEndLine != 3 {
		t.Errorf("lines = %d/%d, want 1/3", m.LineNumber, m.ValueEndLine)
	}
	if m.QuoteType != edf.QuoteDouble {
		t.Errorf("quote type = %v", m.QuoteType)
	}
}

func TestBuildSourceOverrideToNone(t *testing.T) {
	table := policy.Table{
		Sources:     []policy.Rule{{Glob: "dev.env", Mode: "none"}},
		DefaultMode: "full",
	}
	b := newBuilder(t, table, Config{})
	res := b.Build(mustParse(t, "KEY=secret\n"), "dev.env")
	if len(res.Masks) != 0 {
		t.Fatalf("expected 0 records, got %d", len(res.Masks))
	}
}

func TestBuildOnlyBasenameUsedForSourceMatching(t *testing.T) {
	table := policy.Table{
		Sources:     []policy.Rule{{Glob: "dev.env", Mode: "none"}},
		DefaultMode: "full",
	}
	b := newBuilder(t, table, Config{})
	res := b.Build(mustParse(t, "KEY=secret\n"), "/etc/project/dev.env")
	if len(res.Masks) != 0 {
		t.Fatalf("expected basename-only matching to still hit 'none', got %d records", len(res.Masks))
	}
}

func TestBuildIsIdempotent(t *testing.T) {
	b := newBuilder(t, policy.Table{DefaultMode: "full"}, Config{})
	input := "API_KEY=secret123\n"
	res1 := b.Build(mustParse(t, input), "")
	res2 := b.Build(mustParse(t, input), "")
	if len(res1.Masks) != len(res2.Masks) || res1.Masks[0].Mask != res2.Masks[0].Mask {
		t.Error("expected idempotent results")
	}
}

func TestBuildRecordsAscendingByValueStart(t *testing.T) {
	b := newBuilder(t, policy.Table{DefaultMode: "full"}, Config{})
	res := b.Build(mustParse(t, "A=1\nB=2\nC=3\n"), "")
	for i := 1; i < len(res.Masks); i++ {
		if res.Masks[i].ValueStart <= res.Masks[i-1].ValueStart {
			t.Fatalf("records not ascending by value_start: %+v", res.Masks)
		}
	}
}
