package bruteforce_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/logjuicer/logjuicer/pkg/index"
	"github.com/logjuicer/logjuicer/pkg/index/bruteforce"
	"github.com/logjuicer/logjuicer/pkg/vectorizer"
)

func vec(dim int, idx ...uint32) vectorizer.Vector {
	return vectorizer.Vector{Dim: dim, Indices: idx}
}

func TestQuery_UntrainedYieldsSkipSignal(t *testing.T) {
	idx := bruteforce.New(0)
	_, err := idx.Query([]vectorizer.Vector{vec(8, 1, 2)})
	assert.ErrorIs(t, err, index.ErrNotTrained)
}

func TestQuery_ExactMatchIsZeroDistance(t *testing.T) {
	idx := bruteforce.New(0)
	require.NoError(t, idx.Train([]vectorizer.Vector{vec(8, 1, 2, 3)}))

	dists, err := idx.Query([]vectorizer.Vector{vec(8, 1, 2, 3)})
	require.NoError(t, err)
	assert.InDelta(t, 0.0, dists[0], 1e-9)
}

func TestQuery_DisjointIsMaxDistance(t *testing.T) {
	idx := bruteforce.New(0)
	require.NoError(t, idx.Train([]vectorizer.Vector{vec(8, 1, 2, 3)}))

	dists, err := idx.Query([]vectorizer.Vector{vec(8, 4, 5, 6)})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, dists[0], 1e-9)
}

func TestQuery_EmptyVectorIsZeroDistance(t *testing.T) {
	idx := bruteforce.New(0)
	require.NoError(t, idx.Train([]vectorizer.Vector{vec(8, 1, 2, 3)}))

	dists, err := idx.Query([]vectorizer.Vector{vec(8)})
	require.NoError(t, err)
	assert.Equal(t, 0.0, dists[0])
}

func TestQuery_NearestAmongMultipleRows(t *testing.T) {
	idx := bruteforce.New(0)
	require.NoError(t, idx.Train([]vectorizer.Vector{
		vec(8, 1, 2, 3, 4),
		vec(8, 1, 2),
	}))

	dists, err := idx.Query([]vectorizer.Vector{vec(8, 1, 2)})
	require.NoError(t, err)
	assert.InDelta(t, 0.0, dists[0], 1e-9)
}

func TestQuery_ChunkedMatchesUnchunked(t *testing.T) {
	rows := []vectorizer.Vector{vec(8, 1, 2), vec(8, 3, 4)}
	queries := make([]vectorizer.Vector, 0, 10)
	for i := 0; i < 10; i++ {
		queries = append(queries, vec(8, uint32(i%8)))
	}

	chunked := bruteforce.New(2)
	require.NoError(t, chunked.Train(rows))
	chunkedDists, err := chunked.Query(queries)
	require.NoError(t, err)

	unchunked := bruteforce.New(1000)
	require.NoError(t, unchunked.Train(rows))
	unchunkedDists, err := unchunked.Query(queries)
	require.NoError(t, err)

	assert.Equal(t, unchunkedDists, chunkedDists)
}

func TestInfo(t *testing.T) {
	idx := bruteforce.New(0)
	assert.Equal(t, "0 samples", idx.Info())

	require.NoError(t, idx.Train([]vectorizer.Vector{vec(262144, 1, 2)}))
	assert.Equal(t, "1 samples, 262144 features", idx.Info())
}
