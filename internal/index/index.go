// Package index implements an exact in-memory vector index over the chunks
// of one video. Vectors are L2-normalized by the embedder, so inner product
// equals cosine similarity; a linear scan is exact and comfortably fast for
// the few hundred chunks a transcript produces.
package index

import (
	"errors"
	"fmt"
	"sort"

	"vidsage/internal/domain"
)

// DefaultK is the number of neighbors returned when the caller does not ask
// for a specific k.
const DefaultK = 4

// Index holds the (chunk, vector) pairs for one video. Content is append-only
// after Build; queries are safe for concurrent use.
type Index struct {
	dimension int
	chunks    []domain.Chunk
	vectors   [][]float64
}

// Build creates a one-shot index from parallel chunk and vector slices.
func Build(chunks []domain.Chunk, vectors [][]float64) (*Index, error) {
	if len(chunks) == 0 {
		return nil, errors.New("no chunks to index")
	}
	if len(chunks) != len(vectors) {
		return nil, fmt.Errorf("chunks and vectors length mismatch: %d vs %d", len(chunks), len(vectors))
	}

	dimension := len(vectors[0])
	for i, v := range vectors {
		if len(v) != dimension {
			return nil, fmt.Errorf("vector %d has dimension %d, want %d", i, len(v), dimension)
		}
	}

	return &Index{
		dimension: dimension,
		chunks:    chunks,
		vectors:   vectors,
	}, nil
}

// Query returns up to k chunks ranked by descending cosine similarity to the
// query vector, ties broken by ascending chunk ID. A nil index fails with
// domain.ErrIndexNotBuilt.
func (ix *Index) Query(vec []float64, k int) ([]domain.ScoredChunk, error) {
	if ix == nil || len(ix.chunks) == 0 {
		return nil, domain.ErrIndexNotBuilt
	}
	if len(vec) != ix.dimension {
		return nil, fmt.Errorf("query vector has dimension %d, want %d", len(vec), ix.dimension)
	}
	if k <= 0 {
		k = DefaultK
	}

	results := make([]domain.ScoredChunk, len(ix.chunks))
	for i, chunk := range ix.chunks {
		results[i] = domain.ScoredChunk{Chunk: chunk, Score: dot(ix.vectors[i], vec)}
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Chunk.ID < results[j].Chunk.ID
	})

	if k > len(results) {
		k = len(results)
	}
	return results[:k], nil
}

// Len returns the number of indexed chunks.
func (ix *Index) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.chunks)
}

// Chunks returns the indexed chunks in ID order.
func (ix *Index) Chunks() []domain.Chunk {
	if ix == nil {
		return nil
	}
	return ix.chunks
}

// Vectors returns the indexed vectors, parallel to Chunks.
func (ix *Index) Vectors() [][]float64 {
	if ix == nil {
		return nil
	}
	return ix.vectors
}

func dot(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
