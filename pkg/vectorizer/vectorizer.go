// Package vectorizer turns a tokenized line into a sparse binary feature
// vector of fixed dimension, so that training and query share the same
// feature space without ever building an explicit vocabulary.
package vectorizer

import (
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// DefaultDimension is the feature-space size used when none is configured.
const DefaultDimension = 1 << 18

// Vector is a sparse binary row: sorted, de-duplicated column indices.
// Every index implicitly carries value 1; absent indices are 0.
type Vector struct {
	Dim     int
	Indices []uint32
}

// Empty reports whether the vector has no nonzero coordinate, i.e. the
// input line tokenized to nothing.
func (v Vector) Empty() bool { return len(v.Indices) == 0 }

// Vectorizer hashes whitespace-separated tokens into a fixed-dimension
// binary feature space.
type Vectorizer struct {
	dim int
}

// New returns a Vectorizer over dim columns. dim must match between
// training and query; it is part of the on-disk model format.
func New(dim int) *Vectorizer {
	if dim <= 0 {
		dim = DefaultDimension
	}
	return &Vectorizer{dim: dim}
}

// Dim returns the vectorizer's feature-space dimension.
func (vz *Vectorizer) Dim() int { return vz.dim }

// Transform turns a token string into a sparse binary feature vector. Each
// distinct token contributes exactly one set coordinate at
// hash(token) mod dim, regardless of how many times it occurs in the line.
func (vz *Vectorizer) Transform(tokenString string) Vector {
	if tokenString == "" {
		return Vector{Dim: vz.dim}
	}
	seen := make(map[uint32]struct{})
	for _, tok := range strings.Fields(tokenString) {
		idx := uint32(xxhash.Sum64String(tok) % uint64(vz.dim))
		seen[idx] = struct{}{}
	}
	indices := make([]uint32, 0, len(seen))
	for idx := range seen {
		indices = append(indices, idx)
	}
	sort.Slice(indices, func(i, j int) bool { return indices[i] < indices[j] })
	return Vector{Dim: vz.dim, Indices: indices}
}
