// Package maskconfig loads policy and mode configuration from a TOML
// file, with environment variable overrides layered on top, and can
// optionally watch the file for live reloads.
package maskconfig

import (
	"fmt"
	"io"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// TOMLLoader reads configuration from a TOML file on disk.
type TOMLLoader struct {
	path string
}

// NewTOMLLoader creates a loader for the file at path.
func NewTOMLLoader(path string) *TOMLLoader {
	return &TOMLLoader{path: path}
}

// Load reads and parses the configured path. A missing file is not an
// error: it returns a nil map so callers fall back to defaults.
func (l *TOMLLoader) Load() (map[string]any, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading config file %s: %w", l.path, err)
	}
	return l.parse(data)
}

// LoadFromReader parses configuration from an arbitrary reader, mainly
// for tests.
func (l *TOMLLoader) LoadFromReader(r io.Reader) (map[string]any, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return l.parse(data)
}

func (l *TOMLLoader) parse(data []byte) (map[string]any, error) {
	var out map[string]any
	if err := toml.Unmarshal(data, &out); err != nil {
		return nil, &ParseError{Path: l.path, Message: err.Error(), Err: err}
	}
	if out != nil {
		normalizeTOMLInts(out)
	}
	return out, nil
}

// normalizeTOMLInts walks m in place, rewriting every int64 leaf (go-toml/v2's
// decoded type for TOML integers when unmarshalling into map[string]any) to
// a plain int, recursing into nested maps and slices. Keeping this at the
// decode boundary means every downstream consumer of this package's output
// can compare/assert against plain int without knowing where the value came
// from.
func normalizeTOMLInts(m map[string]any) {
	for k, v := range m {
		m[k] = normalizeTOMLIntsValue(v)
	}
}

func normalizeTOMLIntsValue(v any) any {
	switch x := v.(type) {
	case int64:
		return int(x)
	case map[string]any:
		normalizeTOMLInts(x)
		return x
	case []any:
		for i, elem := range x {
			x[i] = normalizeTOMLIntsValue(elem)
		}
		return x
	default:
		return v
	}
}

// DeepMerge recursively merges src into dst, with src's values taking
// precedence. Maps merge recursively; any other value type is replaced
// outright.
func DeepMerge(dst, src map[string]any) map[string]any {
	if dst == nil {
		dst = make(map[string]any)
	}
	for key, srcVal := range src {
		dstVal, exists := dst[key]
		if !exists {
			dst[key] = srcVal
			continue
		}
		srcMap, srcIsMap := srcVal.(map[string]any)
		dstMap, dstIsMap := dstVal.(map[string]any)
		if srcIsMap && dstIsMap {
			dst[key] = DeepMerge(dstMap, srcMap)
		} else {
			dst[key] = srcVal
		}
	}
	return dst
}
