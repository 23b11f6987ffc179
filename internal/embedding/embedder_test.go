package embedding_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"vidsage/internal/config"
	"vidsage/internal/domain"
	"vidsage/internal/embedding"
)

func newEmbedder(dimension int) *embedding.Embedder {
	return embedding.New(&config.RetrievalConfig{EmbeddingDimension: dimension})
}

func cosine(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

func TestEmbedder_Embed(t *testing.T) {
	t.Run("should return vector of configured dimension", func(t *testing.T) {
		e := newEmbedder(128)
		require.Equal(t, 128, e.Dimension())

		vec, err := e.Embed("the speaker explains pricing")
		require.NoError(t, err)
		require.Len(t, vec, 128)
	})

	t.Run("should be deterministic", func(t *testing.T) {
		e := newEmbedder(384)

		first, err := e.Embed("pricing is low this quarter")
		require.NoError(t, err)
		second, err := e.Embed("pricing is low this quarter")
		require.NoError(t, err)
		require.Equal(t, first, second)
	})

	t.Run("should produce unit-length vectors", func(t *testing.T) {
		e := newEmbedder(384)

		vec, err := e.Embed("hello world")
		require.NoError(t, err)
		require.InDelta(t, 1.0, cosine(vec, vec), 1e-9)
	})

	t.Run("should fail on empty text", func(t *testing.T) {
		e := newEmbedder(384)

		_, err := e.Embed("")
		require.ErrorIs(t, err, domain.ErrEmptyText)

		_, err = e.Embed("   \n\t ")
		require.ErrorIs(t, err, domain.ErrEmptyText)
	})

	t.Run("should score shared vocabulary above disjoint vocabulary", func(t *testing.T) {
		e := newEmbedder(384)

		query, err := e.Embed("what about pricing")
		require.NoError(t, err)
		relevant, err := e.Embed("pricing is low")
		require.NoError(t, err)
		unrelated, err := e.Embed("hello")
		require.NoError(t, err)

		require.Greater(t, cosine(query, relevant), cosine(query, unrelated))
	})
}

func TestEmbedder_EmbedBatch(t *testing.T) {
	t.Run("should preserve order and match single embeds", func(t *testing.T) {
		e := newEmbedder(384)
		texts := []string{"first chunk text", "second chunk text", "third chunk text"}

		vectors, err := e.EmbedBatch(context.Background(), texts)
		require.NoError(t, err)
		require.Len(t, vectors, len(texts))

		for i, text := range texts {
			single, embedErr := e.Embed(text)
			require.NoError(t, embedErr)
			require.Equal(t, single, vectors[i])
		}
	})

	t.Run("should fail when any text is empty", func(t *testing.T) {
		e := newEmbedder(384)

		_, err := e.EmbedBatch(context.Background(), []string{"fine", ""})
		require.ErrorIs(t, err, domain.ErrEmptyText)
	})

	t.Run("should handle empty batch", func(t *testing.T) {
		e := newEmbedder(384)

		vectors, err := e.EmbedBatch(context.Background(), nil)
		require.NoError(t, err)
		require.Empty(t, vectors)
	})
}
