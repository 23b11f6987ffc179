package session

import (
	"sync"
	"time"

	"vidsage/internal/config"
)

const (
	defaultTTL        = 6 * time.Hour
	defaultMaxHistory = 20
)

// Manager owns every user session. Safe for concurrent use from multiple
// in-flight requests.
type Manager struct {
	mu         sync.Mutex
	sessions   map[string]*Session
	ttl        time.Duration
	maxHistory int
}

// NewManager creates a session manager (DI constructor).
func NewManager(cfg *config.SessionConfig) *Manager {
	ttl := time.Duration(cfg.TTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = defaultTTL
	}
	maxHistory := cfg.MaxHistory
	if maxHistory <= 0 {
		maxHistory = defaultMaxHistory
	}
	return &Manager{
		sessions:   make(map[string]*Session),
		ttl:        ttl,
		maxHistory: maxHistory,
	}
}

// Get returns the session for a user, creating it on first interaction.
// Expired sessions are swept on every access.
func (m *Manager) Get(userID string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sweepLocked()

	s, ok := m.sessions[userID]
	if !ok {
		s = &Session{
			UserID:     userID,
			language:   DefaultLanguage,
			maxHistory: m.maxHistory,
		}
		m.sessions[userID] = s
	}
	s.touch()
	return s
}

// Reset drops a user's session entirely; the next interaction starts fresh
// with default language and no video.
func (m *Manager) Reset(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
}

// Len returns the number of active sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *Manager) sweepLocked() {
	for userID, s := range m.sessions {
		if s.expired(m.ttl) {
			delete(m.sessions, userID)
		}
	}
}
