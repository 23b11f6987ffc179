package transcript

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"vidsage/internal/domain"
)

// Wire structures for the transcription model's JSON reply.
type wireTranscript struct {
	Title            string      `json:"title"`
	Duration         string      `json:"duration"`
	Description      string      `json:"description"`
	LanguageOriginal string      `json:"language_original"`
	Transcript       []wireEntry `json:"transcript"`
}

type wireEntry struct {
	Timestamp    string  `json:"timestamp"`
	StartSeconds float64 `json:"start_seconds"`
	Text         string  `json:"text"`
}

// Models sometimes wrap their JSON in markdown fences despite instructions.
var fenceRegex = regexp.MustCompile("(?m)^```(?:json)?\\s*|\\s*```$")

// ParseReply decodes a transcription reply into a domain transcript.
// Segments are ordered by start time; a reply with no usable speech entries
// fails with domain.ErrNoCaptions.
func ParseReply(videoID, raw string) (*domain.Transcript, error) {
	clean := strings.TrimSpace(fenceRegex.ReplaceAllString(raw, ""))

	var wire wireTranscript
	if err := json.Unmarshal([]byte(clean), &wire); err != nil {
		return nil, fmt.Errorf("decode transcript reply: %w", err)
	}

	segments := make([]domain.Segment, 0, len(wire.Transcript))
	for _, entry := range wire.Transcript {
		text := strings.TrimSpace(entry.Text)
		if text == "" {
			continue
		}
		segments = append(segments, domain.Segment{
			Start: entry.StartSeconds,
			Text:  text,
		})
	}
	if len(segments) == 0 {
		return nil, fmt.Errorf("reply for %s has no speech entries: %w", videoID, domain.ErrNoCaptions)
	}

	sort.SliceStable(segments, func(i, j int) bool {
		return segments[i].Start < segments[j].Start
	})

	// Derive durations from the gap to the next segment so chunk time spans
	// cover the transcript without holes.
	for i := range segments {
		if i+1 < len(segments) {
			segments[i].Duration = segments[i+1].Start - segments[i].Start
		}
	}

	title := wire.Title
	if title == "" {
		title = "YouTube Video"
	}

	return &domain.Transcript{
		VideoID:     videoID,
		Title:       title,
		Duration:    wire.Duration,
		Description: wire.Description,
		Language:    wire.LanguageOriginal,
		Segments:    segments,
	}, nil
}
