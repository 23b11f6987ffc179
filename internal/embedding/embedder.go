// Package embedding provides a local, deterministic text embedder based on
// feature hashing. No model download, no network calls: the same text always
// produces the same vector, which keeps chunk and query embeddings in one
// compatible space.
package embedding

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"regexp"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"vidsage/internal/config"
	"vidsage/internal/domain"
)

const defaultDimension = 384

// Embedder hashes lowercased word tokens into a fixed number of buckets,
// weights by term frequency and L2-normalizes, so dot products of its
// vectors are cosine similarities.
type Embedder struct {
	dimension    int
	tokenPattern *regexp.Regexp
}

// New creates an embedder from retrieval configuration (DI constructor).
func New(cfg *config.RetrievalConfig) *Embedder {
	dimension := cfg.EmbeddingDimension
	if dimension <= 0 {
		dimension = defaultDimension
	}
	return &Embedder{
		dimension:    dimension,
		tokenPattern: regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*|\p{N}+`),
	}
}

// Embed converts text into a vector of length Dimension. Input with no
// extractable tokens fails with domain.ErrEmptyText; callers that want a
// zero vector must decide that themselves.
func (e *Embedder) Embed(text string) ([]float64, error) {
	tokens := e.tokenize(text)
	if len(tokens) == 0 {
		return nil, fmt.Errorf("embed %q: %w", text, domain.ErrEmptyText)
	}

	vec := make([]float64, e.dimension)
	for _, tok := range tokens {
		h := fnv.New64a()
		_, _ = h.Write([]byte(tok))
		sum := h.Sum64()

		idx := int(sum % uint64(e.dimension))
		// A second hash bit decides the sign, which keeps bucket
		// collisions from only ever accumulating.
		sign := 1.0
		if (sum>>32)&1 == 1 {
			sign = -1.0
		}
		vec[idx] += sign
	}

	norm := 0.0
	for _, v := range vec {
		norm += v * v
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range vec {
			vec[i] /= norm
		}
	}

	return vec, nil
}

// EmbedBatch embeds many texts on a bounded worker pool. Order is preserved;
// the first failure aborts the batch.
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	vectors := make([][]float64, len(texts))

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, text := range texts {
		i, text := i, text
		g.Go(func() error {
			vec, err := e.Embed(text)
			if err != nil {
				return fmt.Errorf("batch item %d: %w", i, err)
			}
			vectors[i] = vec
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return vectors, nil
}

// Dimension returns the vector dimension.
func (e *Embedder) Dimension() int {
	return e.dimension
}

func (e *Embedder) tokenize(text string) []string {
	return e.tokenPattern.FindAllString(strings.ToLower(text), -1)
}
