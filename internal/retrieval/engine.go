// Package retrieval orchestrates the RAG pipeline: build-once per video
// (fetch, chunk, embed, index) and query-many per question.
package retrieval

import (
	"context"
	"errors"
	"fmt"

	"vidsage/internal/cache"
	"vidsage/internal/chunker"
	"vidsage/internal/config"
	"vidsage/internal/domain"
	"vidsage/internal/index"
	"vidsage/internal/observability"
)

const (
	defaultTopK = 4

	// defaultThreshold is the not-covered cutoff: when the best chunk
	// scores below it the question is treated as outside the video and no
	// generation call is made.
	defaultThreshold = 0.15
)

// Engine builds and queries per-video vector indexes through the cache store.
type Engine struct {
	store     *cache.Store
	provider  domain.TranscriptProvider
	chunker   *chunker.Chunker
	embedder  domain.Embedder
	topK      int
	threshold float64
}

// NewEngine creates a retrieval engine (DI constructor).
func NewEngine(
	store *cache.Store,
	provider domain.TranscriptProvider,
	ch *chunker.Chunker,
	embedder domain.Embedder,
	cfg *config.RetrievalConfig,
) *Engine {
	topK := cfg.TopK
	if topK <= 0 {
		topK = defaultTopK
	}
	threshold := cfg.ScoreThreshold
	if threshold <= 0 {
		threshold = defaultThreshold
	}
	return &Engine{
		store:     store,
		provider:  provider,
		chunker:   ch,
		embedder:  embedder,
		topK:      topK,
		threshold: threshold,
	}
}

// EnsureIndex returns the cache entry for a video, building it at most once.
// Calling it again for a cached video returns the same entry with no
// recomputation; concurrent calls for one uncached video coalesce.
func (e *Engine) EnsureIndex(ctx context.Context, videoID string) (*cache.Entry, error) {
	return e.store.GetOrBuild(ctx, videoID, func(buildCtx context.Context) (*cache.Entry, error) {
		return e.build(buildCtx, videoID)
	})
}

// AnswerContext embeds the question and returns the top-k transcript chunks
// for prompt construction. When the best score is below the not-covered
// threshold it fails with domain.ErrNotCovered so the caller can answer
// without a generation call.
func (e *Engine) AnswerContext(ctx context.Context, videoID, question string, k int) ([]domain.ScoredChunk, error) {
	entry, err := e.EnsureIndex(ctx, videoID)
	if err != nil {
		return nil, err
	}

	if k <= 0 {
		k = e.topK
	}

	logger := observability.FromContext(ctx)

	queryVec, err := e.embedder.Embed(question)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyText) {
			return nil, err
		}
		logger.Error("query embedding failed", observability.Error(err))
		return nil, fmt.Errorf("%w: embed question: %v", domain.ErrInternal, err)
	}

	results, err := entry.Index.Query(queryVec, k)
	if err != nil {
		logger.Error("index query failed",
			observability.String("video_id", videoID),
			observability.Error(err))
		return nil, fmt.Errorf("%w: query index: %v", domain.ErrInternal, err)
	}

	if len(results) == 0 || results[0].Score < e.threshold {
		topScore := 0.0
		if len(results) > 0 {
			topScore = results[0].Score
		}
		logger.Info("question not covered by transcript",
			observability.String("video_id", videoID),
			observability.Float64("top_score", topScore),
			observability.Float64("threshold", e.threshold))
		return nil, domain.ErrNotCovered
	}

	logger.Info("retrieved question context",
		observability.String("video_id", videoID),
		observability.Int("chunks", len(results)),
		observability.Float64("top_score", results[0].Score))

	return results, nil
}

// build runs the expensive pipeline for one video. Provider failures pass
// through tagged; chunking, embedding and index errors are internal and are
// wrapped so raw details never reach users.
func (e *Engine) build(ctx context.Context, videoID string) (*cache.Entry, error) {
	logger := observability.FromContext(ctx)

	tr, err := e.provider.Fetch(ctx, videoID)
	if err != nil {
		return nil, err
	}

	chunks, err := e.chunker.Chunk(tr)
	if err != nil {
		logger.Error("chunking failed",
			observability.String("video_id", videoID),
			observability.Error(err))
		return nil, fmt.Errorf("%w: chunk transcript: %v", domain.ErrInternal, err)
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	vectors, err := e.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		logger.Error("chunk embedding failed",
			observability.String("video_id", videoID),
			observability.Error(err))
		return nil, fmt.Errorf("%w: embed chunks: %v", domain.ErrInternal, err)
	}

	ix, err := index.Build(chunks, vectors)
	if err != nil {
		logger.Error("index build failed",
			observability.String("video_id", videoID),
			observability.Error(err))
		return nil, fmt.Errorf("%w: build index: %v", domain.ErrInternal, err)
	}

	logger.Info("video index built",
		observability.String("video_id", videoID),
		observability.String("title", tr.Title),
		observability.Int("chunks", ix.Len()),
		observability.Int("dimension", e.embedder.Dimension()))

	return cache.NewEntry(videoID, tr, ix), nil
}
