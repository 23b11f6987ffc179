// Package session holds per-user conversation state. One session per chat
// user: the active video, response language and bounded Q&A history. Nothing
// here is shared across users.
package session

import (
	"sync"
	"time"

	"vidsage/internal/domain"
)

// DefaultLanguage is the response language for new sessions.
const DefaultLanguage = "English"

// Session is the mutable state of one user. A session is idle until a video
// is bound and returns to idle on reset.
type Session struct {
	UserID string

	// handling serializes message processing for this user: the app layer
	// holds it for the duration of one message, so two in-flight requests
	// from the same user never interleave.
	handling sync.Mutex

	mu         sync.Mutex
	videoID    string
	language   string
	history    []domain.Turn
	maxHistory int
	lastActive time.Time
}

// Acquire blocks until this user's previous message is fully processed.
func (s *Session) Acquire() { s.handling.Lock() }

// Release ends this user's message processing turn.
func (s *Session) Release() { s.handling.Unlock() }

// Loaded reports whether a video is bound to this session.
func (s *Session) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.videoID != ""
}

// VideoID returns the active video, or empty when idle.
func (s *Session) VideoID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.videoID
}

// SetVideo binds a video to the session and starts a fresh conversation.
func (s *Session) SetVideo(videoID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.videoID = videoID
	s.history = nil
}

// ClearVideo unbinds the active video, returning the session to idle.
func (s *Session) ClearVideo() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.videoID = ""
	s.history = nil
}

// Language returns the selected response language.
func (s *Session) Language() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.language
}

// SetLanguage records the response language for subsequent prompts.
func (s *Session) SetLanguage(language string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.language = language
}

// History returns a copy of the conversation history.
func (s *Session) History() []domain.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Turn, len(s.history))
	copy(out, s.history)
	return out
}

// AddTurn appends one exchange, trimming to the configured bound.
func (s *Session) AddTurn(role, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, domain.Turn{Role: role, Content: content})
	if len(s.history) > s.maxHistory {
		s.history = s.history[len(s.history)-s.maxHistory:]
	}
}

func (s *Session) touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActive = time.Now()
}

func (s *Session) expired(ttl time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return time.Since(s.lastActive) > ttl
}
