// Package index defines the per-model nearest-neighbour search interface and
// the sparse cosine-distance semantics shared by any implementation of it.
// Only a brute-force implementation exists today; the interface seam exists
// so a second algorithm could be added later without touching callers.
package index

import (
	"errors"

	"github.com/logjuicer/logjuicer/pkg/vectorizer"
)

// ErrNotTrained is the "skip" signal returned when Query is called on an
// index that never saw Train (or saw it with zero rows).
var ErrNotTrained = errors.New("index: not trained")

// Algorithm is the nearest-neighbour search contract every per-model index
// implements: train on a set of baseline vectors, then query new vectors
// for their distance to the nearest trained neighbour.
type Algorithm interface {
	// Train stores rows as the baseline matrix. Rows must already be
	// de-duplicated by the caller before vectorising.
	Train(rows []vectorizer.Vector) error

	// Query returns, for each input vector, the cosine distance
	// (1 - cosine similarity) to its nearest trained row. Returns
	// ErrNotTrained if Train was never called or trained zero rows.
	Query(queries []vectorizer.Vector) ([]float64, error)

	// Info returns a short human-readable statistic, e.g.
	// "128 samples, 262144 features".
	Info() string

	// Size returns the number of trained rows.
	Size() int
}
