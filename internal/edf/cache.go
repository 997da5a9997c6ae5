package edf

import "github.com/dshills/envmask/internal/fingerprint"

// defaultCacheCapacity is the bound on cached ParseResults, per the
// content-hash gate contract.
const defaultCacheCapacity = 200

// CachedParser wraps Parse with a fingerprint-keyed LRU so repeated calls
// on unchanged input skip tokenising entirely. Each Engine creates its own
// CachedParser, shared by its Generate calls and its incremental
// controller; it is not shared between Engines.
type CachedParser struct {
	lru *fingerprint.LRU
}

// NewCachedParser creates a CachedParser with the standard 200-entry
// bound.
func NewCachedParser() *CachedParser {
	return &CachedParser{lru: fingerprint.NewLRU(defaultCacheCapacity)}
}

// Parse returns the cached ParseResult for input's fingerprint if
// present, otherwise parses input and caches the result.
func (c *CachedParser) Parse(input []byte, opts Options) (*ParseResult, fingerprint.Fingerprint, error) {
	fp := fingerprint.Of(input)

	if cached, ok := c.lru.Get(fp); ok {
		return cached.(*ParseResult), fp, nil
	}

	result, err := Parse(input, opts)
	if err != nil {
		return nil, fp, err
	}

	c.lru.Put(fp, result)
	return result, fp, nil
}

// Clear empties the cache.
func (c *CachedParser) Clear() {
	c.lru.Clear()
}
