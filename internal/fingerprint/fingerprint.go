// Package fingerprint computes a cheap content summary used to skip
// re-parsing and re-masking unchanged input, and provides the bounded LRU
// that keys cached parse results by that summary.
package fingerprint

// smallInputThreshold is the boundary between the two fingerprint regimes.
const smallInputThreshold = 512

// sampleStride and maxSamples bound the work done on large inputs.
const (
	sampleStride = 16
	maxSamples   = 512
)

// Fingerprint is a cheap, collision-tolerant summary of an input's
// content. Two inputs with equal fingerprints are assumed identical; a
// false positive's worst consequence is a stale decoration the next edit
// corrects.
type Fingerprint struct {
	length int
	// head holds the first 64 bytes for small inputs, or is unused for
	// large inputs (hash is used instead).
	head [64]byte
	headN int
	hash  uint32
	large bool
}

// Of computes the fingerprint of input.
func Of(input []byte) Fingerprint {
	fp := Fingerprint{length: len(input)}

	if len(input) < smallInputThreshold {
		n := copy(fp.head[:], input)
		fp.headN = n
		return fp
	}

	fp.large = true
	var h uint32
	samples := 0
	for i := 0; i < len(input) && samples < maxSamples; i += sampleStride {
		h = h*31 + uint32(input[i])
		samples++
	}
	fp.hash = h
	return fp
}

// Equal reports whether two fingerprints are considered equal.
func (f Fingerprint) Equal(other Fingerprint) bool {
	if f.length != other.length || f.large != other.large {
		return false
	}
	if f.large {
		return f.hash == other.hash
	}
	if f.headN != other.headN {
		return false
	}
	return f.head == other.head
}
