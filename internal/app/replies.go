package app

import (
	"errors"
	"fmt"

	"vidsage/internal/domain"
)

const (
	replyStart = "👋 Hi! Send me a YouTube link and I'll read its transcript for you.\n\n" +
		"Once a video is loaded you can:\n" +
		"• Ask any question about it\n" +
		"• /summary — key points\n" +
		"• /deepdive — detailed walkthrough\n" +
		"• /actionpoints — actionable takeaways\n" +
		"• /language <name> — answer in another language\n" +
		"• /reset — forget the current video"

	replyNoVideo = "Please send me a YouTube link first, then ask away."

	replyReset = "Done. Send me a new YouTube link whenever you're ready."

	replyAskAnything = "\n\n💬 Ask me anything about this video."
)

// renderError turns a pipeline error into the text shown to the user.
// Internal details never leak; each taxonomy class has a fixed message.
func renderError(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidVideoRef):
		return "That doesn't look like a YouTube link I can read. Try a full watch or youtu.be URL."
	case errors.Is(err, domain.ErrNoActiveVideo):
		return replyNoVideo
	case errors.Is(err, domain.ErrNoCaptions):
		return "This video has no transcript I can work with, so I can't answer questions about it."
	case errors.Is(err, domain.ErrVideoUnavailable):
		return "I couldn't open this video. It may be private, deleted, or region-locked."
	case errors.Is(err, domain.ErrAgeRestricted):
		return "This video is age-restricted and its transcript isn't accessible to me."
	case errors.Is(err, domain.ErrEmptyText):
		return "Please type a question about the video."
	case errors.Is(err, domain.ErrRateLimited):
		return "I'm being rate limited right now. Please try again in a minute."
	case errors.Is(err, domain.ErrTimeout):
		return "That took too long to process. Please try again."
	default:
		return "Something went wrong while processing this video. Please try again."
	}
}

func renderNotCovered(title string) string {
	if title == "" {
		title = "this video"
	}
	return fmt.Sprintf("🤔 The video %q doesn't cover that topic. Try asking about something discussed in it, or /summary to see what it's about.", title)
}
