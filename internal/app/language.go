package app

import "strings"

// languageKeywords maps supported response languages to the words users
// write to request them, in native script or transliterated.
var languageKeywords = map[string][]string{
	"Hindi":   {"hindi", "हिंदी", "हिन्दी"},
	"Tamil":   {"tamil", "தமிழ்"},
	"Kannada": {"kannada", "ಕನ್ನಡ"},
	"Telugu":  {"telugu", "తెలుగు"},
	"Marathi": {"marathi", "मराठी"},
	"Bengali": {"bengali", "bangla", "বাংলা"},
	"English": {"english"},
}

// detectRequestedLanguage returns the language a message asks to switch to,
// or empty when the message is not a language request.
func detectRequestedLanguage(text string) string {
	lower := strings.ToLower(text)
	// Only short messages count as switch requests; a question that merely
	// mentions a language should reach the Q&A path.
	if len(strings.Fields(lower)) > 4 {
		return ""
	}
	for language, keywords := range languageKeywords {
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				return language
			}
		}
	}
	return ""
}
