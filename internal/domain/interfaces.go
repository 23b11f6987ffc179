package domain

import (
	"context"
	"time"
)

// TranscriptProvider fetches timestamped transcripts for videos.
type TranscriptProvider interface {
	// Fetch retrieves the transcript for a video. Failures are tagged with
	// ErrNoCaptions, ErrVideoUnavailable, ErrAgeRestricted, ErrRateLimited
	// or ErrTimeout.
	Fetch(ctx context.Context, videoID string) (*Transcript, error)
}

// Embedder converts text into fixed-dimension vectors. Implementations must
// be pure and deterministic: the same text always yields the same vector,
// with no network calls. Chunks and queries for one index must go through
// the same Embedder.
type Embedder interface {
	// Embed converts a single text into a vector of length Dimension.
	Embed(text string) ([]float64, error)

	// EmbedBatch converts many texts at once.
	EmbedBatch(ctx context.Context, texts []string) ([][]float64, error)

	// Dimension returns the vector dimension.
	Dimension() int
}

// Generator wraps the hosted language model.
type Generator interface {
	// Answer produces a grounded answer to a question from retrieved chunks.
	// Returns ErrNotCovered when the model reports the answer is absent.
	Answer(ctx context.Context, video *Transcript, chunks []ScoredChunk, question, language string, history []Turn) (string, error)

	// Summary generates the structured per-language video summary.
	Summary(ctx context.Context, video *Transcript, language string) (string, error)

	// DeepDive generates a thematic analysis of the video.
	DeepDive(ctx context.Context, video *Transcript, language string) (string, error)

	// ActionPoints extracts concrete action items from the video.
	ActionPoints(ctx context.Context, video *Transcript, language string) (string, error)

	// Simplified explains the video (or a topic within it) in simple terms.
	Simplified(ctx context.Context, video *Transcript, language, topic string) (string, error)
}

// ArtifactStore is an optional shared second cache tier keyed by video ID.
// Implementations must tolerate being down: callers treat every error as a
// miss and continue with a local build.
type ArtifactStore interface {
	// Get loads serialized artifacts for a video, or nil on miss.
	Get(ctx context.Context, videoID string) (*Artifacts, error)

	// Set stores serialized artifacts with a TTL.
	Set(ctx context.Context, videoID string, a *Artifacts, ttl time.Duration) error

	// Delete drops the stored artifacts for a video.
	Delete(ctx context.Context, videoID string) error
}
