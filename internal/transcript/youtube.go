package transcript

import "regexp"

// youtubeRegex matches watch, shorts, embed and youtu.be forms and captures
// the 11-character video ID.
var youtubeRegex = regexp.MustCompile(
	`(?:https?://)?(?:www\.)?` +
		`(?:youtube\.com/(?:watch\?v=|shorts/|embed/)|youtu\.be/)` +
		`([a-zA-Z0-9_-]{11})`)

// ExtractVideoID pulls a video ID out of free text, or returns empty when
// the text contains no recognizable video link.
func ExtractVideoID(text string) string {
	m := youtubeRegex.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return m[1]
}

// IsVideoURL reports whether the text contains a recognizable video link.
func IsVideoURL(text string) bool {
	return ExtractVideoID(text) != ""
}

// WatchURL builds the canonical watch URL for a video ID.
func WatchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}
