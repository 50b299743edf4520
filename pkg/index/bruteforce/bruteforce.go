// Package bruteforce implements index.Algorithm as an exact sparse
// cosine-distance nearest-neighbour scan over the trained baseline matrix.
// Binary sparse cosine similarity reduces to a simple set-intersection
// count, which is cheap enough to scan exactly at the scale a single
// model's baseline matrix reaches.
package bruteforce

import (
	"fmt"
	"math"

	"github.com/logjuicer/logjuicer/pkg/index"
	"github.com/logjuicer/logjuicer/pkg/vectorizer"
)

// DefaultChunkSize is the default query batch size.
const DefaultChunkSize = 512

// Index is a brute-force nearest-neighbour index over binary sparse
// vectors. It implements index.Algorithm.
type Index struct {
	rows      []vectorizer.Vector
	norms     []float64
	chunkSize int
}

// New returns an empty Index. chunkSize bounds how many query vectors are
// scored per batch; pass 0 for DefaultChunkSize.
func New(chunkSize int) *Index {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &Index{chunkSize: chunkSize}
}

var _ index.Algorithm = (*Index)(nil)

// Train stores rows as the baseline matrix and precomputes their norms.
// Every row is expected to be non-zero; Train trusts the caller to have
// already de-duplicated and filtered out empty rows.
func (idx *Index) Train(rows []vectorizer.Vector) error {
	idx.rows = make([]vectorizer.Vector, len(rows))
	idx.norms = make([]float64, len(rows))
	copy(idx.rows, rows)
	for i, r := range rows {
		idx.norms[i] = math.Sqrt(float64(len(r.Indices)))
	}
	return nil
}

// Size returns the number of trained rows.
func (idx *Index) Size() int { return len(idx.rows) }

// Info returns a short human-readable training statistic.
func (idx *Index) Info() string {
	if len(idx.rows) == 0 {
		return "0 samples"
	}
	return fmt.Sprintf("%d samples, %d features", len(idx.rows), idx.rows[0].Dim)
}

// Query returns, for each input vector, the cosine distance to its nearest
// trained row, processed in chunks of idx.chunkSize to bound the amount of
// intermediate state held at once.
func (idx *Index) Query(queries []vectorizer.Vector) ([]float64, error) {
	if len(idx.rows) == 0 {
		return nil, index.ErrNotTrained
	}
	out := make([]float64, len(queries))
	for start := 0; start < len(queries); start += idx.chunkSize {
		end := start + idx.chunkSize
		if end > len(queries) {
			end = len(queries)
		}
		for i := start; i < end; i++ {
			out[i] = idx.nearest(queries[i])
		}
	}
	return out, nil
}

// nearest returns the cosine distance from q to its nearest trained row.
// An empty query vector is distance 0.0: it cannot be an anomaly relative
// to anything, since it carries no information at all.
func (idx *Index) nearest(q vectorizer.Vector) float64 {
	if q.Empty() {
		return 0.0
	}
	qNorm := math.Sqrt(float64(len(q.Indices)))

	best := 1.0
	for i, row := range idx.rows {
		sim := cosineSimilarity(q.Indices, row.Indices, qNorm, idx.norms[i])
		dist := 1 - sim
		if dist < best {
			best = dist
		}
		if best == 0 {
			break
		}
	}
	return best
}

// cosineSimilarity computes |A ∩ B| / sqrt(|A| * |B|) over two sorted,
// de-duplicated index slices, taking advantage of binary cosine similarity
// reducing to a set intersection count.
func cosineSimilarity(a, b []uint32, aNorm, bNorm float64) float64 {
	if aNorm == 0 || bNorm == 0 {
		return 0
	}
	var intersection int
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			intersection++
			i++
			j++
		case a[i] < b[j]:
			i++
		default:
			j++
		}
	}
	return float64(intersection) / (aNorm * bNorm)
}
