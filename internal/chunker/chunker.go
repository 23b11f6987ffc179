// Package chunker splits timestamped transcripts into overlapping text
// windows suitable for embedding and retrieval.
package chunker

import (
	"strings"

	"vidsage/internal/config"
	"vidsage/internal/domain"
)

const (
	defaultTargetChars = 400
	defaultOverlap     = 2
)

// Chunker merges consecutive transcript segments into chunks of roughly
// targetChars characters, carrying the last overlap segments into the next
// chunk so context is not cut at boundaries.
type Chunker struct {
	targetChars int
	overlap     int
}

// New creates a chunker from retrieval configuration (DI constructor).
func New(cfg *config.RetrievalConfig) *Chunker {
	targetChars := cfg.ChunkTargetChars
	if targetChars <= 0 {
		targetChars = defaultTargetChars
	}
	overlap := cfg.ChunkOverlap
	if overlap < 0 {
		overlap = defaultOverlap
	}
	return &Chunker{targetChars: targetChars, overlap: overlap}
}

// Chunk splits a transcript into ordered, overlapping chunks covering every
// segment. Chunk IDs are assigned in order and start times are
// non-decreasing. Deterministic for identical input.
func (c *Chunker) Chunk(t *domain.Transcript) ([]domain.Chunk, error) {
	if t == nil {
		return nil, domain.ErrEmptyTranscript
	}

	segments := make([]domain.Segment, 0, len(t.Segments))
	for _, s := range t.Segments {
		if strings.TrimSpace(s.Text) != "" {
			segments = append(segments, s)
		}
	}
	if len(segments) == 0 {
		return nil, domain.ErrEmptyTranscript
	}

	var chunks []domain.Chunk
	start := 0
	for start < len(segments) {
		end := start
		size := 0
		for end < len(segments) && size < c.targetChars {
			size += len(segments[end].Text) + 1
			end++
		}

		texts := make([]string, 0, end-start)
		for _, s := range segments[start:end] {
			texts = append(texts, s.Text)
		}

		last := segments[end-1]
		chunks = append(chunks, domain.Chunk{
			ID:    len(chunks),
			Start: segments[start].Start,
			End:   last.Start + last.Duration,
			Text:  strings.Join(texts, " "),
		})

		if end >= len(segments) {
			break
		}

		// Step back by the overlap, but always make forward progress.
		next := end - c.overlap
		if next <= start {
			next = start + 1
		}
		start = next
	}

	return chunks, nil
}
