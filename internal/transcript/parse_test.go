package transcript_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"vidsage/internal/domain"
	"vidsage/internal/transcript"
)

func TestExtractVideoID(t *testing.T) {
	cases := []struct {
		name string
		text string
		want string
	}{
		{"watch url", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"short url", "https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"shorts url", "https://youtube.com/shorts/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"embed url", "https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"no scheme", "youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"embedded in text", "check this out https://youtu.be/dQw4w9WgXcQ please", "dQw4w9WgXcQ"},
		{"plain text", "what is this video about", ""},
		{"wrong host", "https://vimeo.com/123456789", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, transcript.ExtractVideoID(tc.text))
			require.Equal(t, tc.want != "", transcript.IsVideoURL(tc.text))
		})
	}
}

func TestParseReply(t *testing.T) {
	t.Run("should parse a clean JSON reply", func(t *testing.T) {
		raw := `{
			"title": "Pricing Explained",
			"duration": "3:20",
			"description": "A talk about pricing",
			"language_original": "English",
			"transcript": [
				{"timestamp": "0:00", "start_seconds": 0, "text": "hello"},
				{"timestamp": "0:05", "start_seconds": 5, "text": "world"},
				{"timestamp": "0:10", "start_seconds": 10, "text": "pricing is low"}
			]
		}`

		tr, err := transcript.ParseReply("vid-1", raw)
		require.NoError(t, err)
		require.Equal(t, "vid-1", tr.VideoID)
		require.Equal(t, "Pricing Explained", tr.Title)
		require.Len(t, tr.Segments, 3)
		require.InDelta(t, 10.0, tr.Segments[2].Start, 1e-9)
		require.Equal(t, "pricing is low", tr.Segments[2].Text)
		// Gap-derived durations.
		require.InDelta(t, 5.0, tr.Segments[0].Duration, 1e-9)
	})

	t.Run("should strip markdown fences", func(t *testing.T) {
		raw := "```json\n{\"title\":\"T\",\"transcript\":[{\"start_seconds\":0,\"text\":\"hi\"}]}\n```"

		tr, err := transcript.ParseReply("vid-1", raw)
		require.NoError(t, err)
		require.Len(t, tr.Segments, 1)
	})

	t.Run("should order segments by start time", func(t *testing.T) {
		raw := `{"transcript":[
			{"start_seconds": 20, "text": "later"},
			{"start_seconds": 0, "text": "earlier"}
		]}`

		tr, err := transcript.ParseReply("vid-1", raw)
		require.NoError(t, err)
		require.Equal(t, "earlier", tr.Segments[0].Text)
		require.Equal(t, "later", tr.Segments[1].Text)
	})

	t.Run("should drop blank entries and fail when nothing remains", func(t *testing.T) {
		raw := `{"transcript":[{"start_seconds":0,"text":"  "}]}`

		_, err := transcript.ParseReply("vid-1", raw)
		require.ErrorIs(t, err, domain.ErrNoCaptions)
	})

	t.Run("should fail on malformed json", func(t *testing.T) {
		_, err := transcript.ParseReply("vid-1", "I cannot access that video")
		require.Error(t, err)
	})

	t.Run("should default the title", func(t *testing.T) {
		raw := `{"transcript":[{"start_seconds":0,"text":"hi"}]}`

		tr, err := transcript.ParseReply("vid-1", raw)
		require.NoError(t, err)
		require.Equal(t, "YouTube Video", tr.Title)
	})
}
