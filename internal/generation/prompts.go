package generation

import (
	"fmt"
	"strings"

	"vidsage/internal/domain"
)

// maxTranscriptChars bounds how much transcript text a full-video prompt may
// carry; longer transcripts keep their head and tail.
const maxTranscriptChars = 40_000

// NotCoveredSentinel is the exact token the answer prompt instructs the model
// to emit when the transcript does not contain the answer.
const NotCoveredSentinel = "NOT_COVERED"

// notCoveredPhrases are model phrasings normalized to the sentinel.
var notCoveredPhrases = []string{
	"not covered", "not mentioned", "not discussed",
	"not in the video", "not found", "no information",
	"cannot find", "does not appear", "does not mention",
}

// IsNotCovered reports whether a model answer amounts to "the transcript does
// not contain this".
func IsNotCovered(answer string) bool {
	if len(answer) < 2 {
		return true
	}
	lower := strings.ToLower(answer)
	if strings.Contains(answer, NotCoveredSentinel) {
		return true
	}
	for _, phrase := range notCoveredPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// AnswerPrompt builds the grounded Q&A prompt from retrieved chunks.
func AnswerPrompt(video *domain.Transcript, chunks []domain.ScoredChunk, question, language string, history []domain.Turn) string {
	contexts := make([]string, len(chunks))
	for i, sc := range chunks {
		contexts[i] = fmt.Sprintf("[Timestamp: %s]\n%s", sc.Chunk.Timestamp(), sc.Chunk.Text)
	}

	historyText := ""
	if len(history) > 0 {
		turns := history
		if len(turns) > 6 {
			turns = turns[len(turns)-6:]
		}
		lines := make([]string, len(turns))
		for i, turn := range turns {
			role := "Assistant"
			if turn.Role == domain.RoleUser {
				role = "User"
			}
			lines[i] = fmt.Sprintf("%s: %s", role, turn.Content)
		}
		historyText = fmt.Sprintf("\nPrevious conversation:\n%s\n", strings.Join(lines, "\n"))
	}

	return fmt.Sprintf(`You are a precise Q&A assistant for the YouTube video: %q.
%s
You MUST answer ONLY using the transcript context below.
If the answer is not present in the context, output exactly: %s
Never guess, infer beyond the text, or use outside knowledge.
Respond in **%s**.
When relevant, cite the timestamp (e.g. "At 3:45, the speaker says...").

TRANSCRIPT CONTEXT:
%s

USER QUESTION: %s

ANSWER:`, video.Title, historyText, NotCoveredSentinel, language, strings.Join(contexts, "\n\n---\n\n"), question)
}

// SummaryPrompt builds the structured summary prompt.
func SummaryPrompt(video *domain.Transcript, language string) string {
	duration := video.Duration
	if duration == "" {
		duration = "N/A"
	}
	return fmt.Sprintf(`You are an expert video analyst. Analyze this transcript and generate a structured summary.
Respond ENTIRELY in %s.

VIDEO: %s
TRANSCRIPT:
%s

FORMAT:
*%s*
Duration: %s

*5 Key Points*
1. [Point 1]
2. [Point 2]
3. [Point 3]
4. [Point 4]
5. [Point 5]

*Important Timestamps*
- [MM:SS] - [Description]
- [MM:SS] - [Description]
- [MM:SS] - [Description]

*Core Takeaway*
[One powerful sentence]

*Who Should Watch This*
[1-2 sentences]`, language, video.Title, prepareTranscript(video), video.Title, duration)
}

// DeepDivePrompt builds the thematic analysis prompt.
func DeepDivePrompt(video *domain.Transcript, language string) string {
	return fmt.Sprintf("Perform a deep analytical dive on this video transcript in %s. Video: %s\n\nTranscript:\n%s",
		language, video.Title, prepareTranscript(video))
}

// ActionPointsPrompt builds the action item extraction prompt.
func ActionPointsPrompt(video *domain.Transcript, language string) string {
	return fmt.Sprintf("Extract concrete action points from this video in %s. Video: %s\n\nTranscript:\n%s",
		language, video.Title, prepareTranscript(video))
}

// SimplifiedPrompt builds the plain-terms explanation prompt, optionally
// focused on one topic.
func SimplifiedPrompt(video *domain.Transcript, language, topic string) string {
	about := ""
	if topic != "" {
		about = fmt.Sprintf(" specifically about %q", topic)
	}
	return fmt.Sprintf(`Explain this video content%s in very simple terms. Respond ENTIRELY in %s.
VIDEO: %s
TRANSCRIPT:
%s

FORMAT:
*Simple Explanation*
[Explain like I'm 10 years old]

*Key Terms*
- [Term] -> [Simple meaning]

*Metaphor*
[One metaphor to make it click]`, about, language, video.Title, prepareTranscript(video))
}

// prepareTranscript renders the timestamped transcript, truncated to head
// and tail when it exceeds the context limit.
func prepareTranscript(video *domain.Transcript) string {
	text := video.TextBlock()
	if len(text) <= maxTranscriptChars {
		return text
	}
	half := maxTranscriptChars / 2
	return text[:half] + "\n[...]\n" + text[len(text)-half:]
}
