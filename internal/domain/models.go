package domain

import (
	"fmt"
	"strings"
	"time"
)

// Segment is a single timestamped entry of a video transcript.
type Segment struct {
	Start    float64 `json:"start_seconds"`
	Duration float64 `json:"duration_seconds,omitempty"`
	Text     string  `json:"text"`
}

// Transcript is the full timestamped transcript of one video.
// Segments are ordered by start time and never mutated after fetch.
type Transcript struct {
	VideoID     string    `json:"video_id"`
	Title       string    `json:"title"`
	Duration    string    `json:"duration,omitempty"`
	Description string    `json:"description,omitempty"`
	Language    string    `json:"language,omitempty"`
	Segments    []Segment `json:"segments"`
}

// TextBlock renders the transcript as timestamped lines, one per segment.
func (t *Transcript) TextBlock() string {
	lines := make([]string, len(t.Segments))
	for i, s := range t.Segments {
		lines[i] = fmt.Sprintf("[%s] %s", FormatTimestamp(s.Start), s.Text)
	}
	return strings.Join(lines, "\n")
}

// Chunk is an overlapping text window derived from a transcript,
// the unit of retrieval. IDs are assigned in transcript order.
type Chunk struct {
	ID    int     `json:"id"`
	Start float64 `json:"start_seconds"`
	End   float64 `json:"end_seconds"`
	Text  string  `json:"text"`
}

// Timestamp renders the chunk start time as M:SS or H:MM:SS.
func (c Chunk) Timestamp() string {
	return FormatTimestamp(c.Start)
}

// ScoredChunk is a retrieval result: a chunk with its similarity score.
type ScoredChunk struct {
	Chunk Chunk   `json:"chunk"`
	Score float64 `json:"score"`
}

// Conversation turn roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one exchange in a user's conversation history.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Artifacts is the serialized per-video cache value used by the shared
// artifact store: everything needed to reconstruct an index without
// re-fetching or re-embedding.
type Artifacts struct {
	Transcript *Transcript       `json:"transcript"`
	Chunks     []Chunk           `json:"chunks"`
	Vectors    [][]float64       `json:"vectors"`
	Summaries  map[string]string `json:"summaries,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
}

// FormatTimestamp renders seconds as M:SS, or H:MM:SS past one hour.
func FormatTimestamp(seconds float64) string {
	s := int(seconds)
	h, r := s/3600, s%3600
	m, s := r/60, r%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
