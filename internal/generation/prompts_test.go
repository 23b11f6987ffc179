package generation_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"vidsage/internal/domain"
	"vidsage/internal/generation"
)

func sampleVideo() *domain.Transcript {
	return &domain.Transcript{
		VideoID:  "vid-1",
		Title:    "Pricing Talk",
		Duration: "3:20",
		Segments: []domain.Segment{
			{Start: 0, Text: "hello"},
			{Start: 200, Text: "pricing is low"},
		},
	}
}

func TestAnswerPrompt(t *testing.T) {
	chunks := []domain.ScoredChunk{
		{Chunk: domain.Chunk{ID: 1, Start: 200, Text: "pricing is low"}, Score: 0.8},
	}

	t.Run("should include context with timestamps and the question", func(t *testing.T) {
		prompt := generation.AnswerPrompt(sampleVideo(), chunks, "what about pricing", "English", nil)

		require.Contains(t, prompt, "Pricing Talk")
		require.Contains(t, prompt, "[Timestamp: 3:20]")
		require.Contains(t, prompt, "pricing is low")
		require.Contains(t, prompt, "USER QUESTION: what about pricing")
		require.Contains(t, prompt, generation.NotCoveredSentinel)
		require.Contains(t, prompt, "Respond in **English**")
	})

	t.Run("should include only the last six history turns", func(t *testing.T) {
		history := make([]domain.Turn, 0, 10)
		for i := 0; i < 10; i++ {
			role := "user"
			if i%2 == 1 {
				role = "assistant"
			}
			history = append(history, domain.Turn{Role: role, Content: strings.Repeat("x", i+1)})
		}

		prompt := generation.AnswerPrompt(sampleVideo(), chunks, "q", "English", history)

		require.Contains(t, prompt, "Previous conversation:")
		require.NotContains(t, prompt, "User: xxx\n")
		require.Contains(t, prompt, strings.Repeat("x", 10))
	})
}

func TestSummaryPrompt(t *testing.T) {
	prompt := generation.SummaryPrompt(sampleVideo(), "Hindi")

	require.Contains(t, prompt, "Respond ENTIRELY in Hindi")
	require.Contains(t, prompt, "5 Key Points")
	require.Contains(t, prompt, "[3:20] pricing is low")
	require.Contains(t, prompt, "Duration: 3:20")
}

func TestSimplifiedPrompt(t *testing.T) {
	t.Run("without topic", func(t *testing.T) {
		prompt := generation.SimplifiedPrompt(sampleVideo(), "English", "")
		require.NotContains(t, prompt, "specifically about")
	})

	t.Run("with topic", func(t *testing.T) {
		prompt := generation.SimplifiedPrompt(sampleVideo(), "English", "pricing")
		require.Contains(t, prompt, `specifically about "pricing"`)
	})
}

func TestPrepareTranscriptTruncation(t *testing.T) {
	long := &domain.Transcript{
		VideoID: "vid-1",
		Title:   "Long",
		Segments: []domain.Segment{
			{Start: 0, Text: strings.Repeat("a ", 30_000)},
			{Start: 10, Text: strings.Repeat("b ", 30_000)},
		},
	}

	prompt := generation.DeepDivePrompt(long, "English")
	require.Contains(t, prompt, "[...]")
	require.Less(t, len(prompt), 45_000)
}

func TestIsNotCovered(t *testing.T) {
	cases := []struct {
		name   string
		answer string
		want   bool
	}{
		{"sentinel", "NOT_COVERED", true},
		{"sentinel embedded", "The answer is NOT_COVERED here", true},
		{"phrase", "This topic is not mentioned in the transcript.", true},
		{"too short", "x", true},
		{"real answer", "At 3:20 the speaker says pricing is low.", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, generation.IsNotCovered(tc.answer))
		})
	}
}
