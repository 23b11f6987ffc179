package cache

import (
	"fmt"
	"sync"
	"time"

	"vidsage/internal/domain"
	"vidsage/internal/index"
)

// Entry holds every per-video artifact: the immutable transcript, the built
// vector index and the per-language generated summaries. Entries are owned
// exclusively by the Store.
type Entry struct {
	VideoID    string
	Transcript *domain.Transcript
	Index      *index.Index
	CreatedAt  time.Time

	mu        sync.RWMutex
	summaries map[string]string
}

// NewEntry creates a cache entry for a freshly built index.
func NewEntry(videoID string, transcript *domain.Transcript, ix *index.Index) *Entry {
	return &Entry{
		VideoID:    videoID,
		Transcript: transcript,
		Index:      ix,
		CreatedAt:  time.Now(),
		summaries:  make(map[string]string),
	}
}

// Summary returns the cached summary for a language, if any.
func (e *Entry) Summary(language string) (string, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	text, ok := e.summaries[language]
	return text, ok
}

// PutSummary stores a generated summary for a language.
func (e *Entry) PutSummary(language, text string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.summaries[language] = text
}

// Artifacts serializes the entry for the shared artifact store.
func (e *Entry) Artifacts() *domain.Artifacts {
	e.mu.RLock()
	summaries := make(map[string]string, len(e.summaries))
	for lang, text := range e.summaries {
		summaries[lang] = text
	}
	e.mu.RUnlock()

	return &domain.Artifacts{
		Transcript: e.Transcript,
		Chunks:     e.Index.Chunks(),
		Vectors:    e.Index.Vectors(),
		Summaries:  summaries,
		CreatedAt:  e.CreatedAt,
	}
}

// entryFromArtifacts rebuilds an entry from its serialized form, skipping
// transcript fetch and embedding entirely.
func entryFromArtifacts(videoID string, a *domain.Artifacts) (*Entry, error) {
	if a == nil || a.Transcript == nil {
		return nil, fmt.Errorf("artifacts for %s are incomplete", videoID)
	}

	ix, err := index.Build(a.Chunks, a.Vectors)
	if err != nil {
		return nil, fmt.Errorf("rebuild index for %s: %w", videoID, err)
	}

	summaries := a.Summaries
	if summaries == nil {
		summaries = make(map[string]string)
	}

	return &Entry{
		VideoID:    videoID,
		Transcript: a.Transcript,
		Index:      ix,
		CreatedAt:  a.CreatedAt,
		summaries:  summaries,
	}, nil
}
