package fingerprint

import (
	"bytes"
	"testing"
)

func TestOfEqualForIdenticalSmallInput(t *testing.T) {
	a := Of([]byte("FOO=bar\n"))
	b := Of([]byte("FOO=bar\n"))
	if !a.Equal(b) {
		t.Error("expected equal fingerprints for identical small input")
	}
}

func TestOfDiffersForDifferentSmallInput(t *testing.T) {
	a := Of([]byte("FOO=bar\n"))
	b := Of([]byte("FOO=baz\n"))
	if a.Equal(b) {
		t.Error("expected different fingerprints for different input")
	}
}

func TestOfLargeInputRegime(t *testing.T) {
	big := bytes.Repeat([]byte("x"), 1000)
	a := Of(big)
	b := Of(bytes.Repeat([]byte("x"), 1000))
	if !a.Equal(b) {
		t.Error("expected equal fingerprints for identical large input")
	}
	c := Of(bytes.Repeat([]byte("y"), 1000))
	if a.Equal(c) {
		t.Error("expected different fingerprints for different large content")
	}
}

func TestOfDiffersByLengthAlone(t *testing.T) {
	a := Of(bytes.Repeat([]byte("x"), 1000))
	b := Of(bytes.Repeat([]byte("x"), 1001))
	if a.Equal(b) {
		t.Error("expected different fingerprints for different length")
	}
}

func TestLRUEvictsOldest(t *testing.T) {
	c := NewLRU(2)
	c.Put(Of([]byte("a")), "A")
	c.Put(Of([]byte("b")), "B")
	c.Put(Of([]byte("c")), "C")

	if _, ok := c.Get(Of([]byte("a"))); ok {
		t.Error("expected 'a' to be evicted")
	}
	if v, ok := c.Get(Of([]byte("c"))); !ok || v != "C" {
		t.Error("expected 'c' to still be cached")
	}
}

func TestLRUPromotesOnGet(t *testing.T) {
	c := NewLRU(2)
	c.Put(Of([]byte("a")), "A")
	c.Put(Of([]byte("b")), "B")
	c.Get(Of([]byte("a"))) // promote a
	c.Put(Of([]byte("c")), "C")

	if _, ok := c.Get(Of([]byte("b"))); ok {
		t.Error("expected 'b' to be evicted after promotion of 'a'")
	}
	if _, ok := c.Get(Of([]byte("a"))); !ok {
		t.Error("expected 'a' to remain cached")
	}
}
