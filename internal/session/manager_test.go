package session_test

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"vidsage/internal/config"
	"vidsage/internal/session"
)

func newManager(ttlSeconds, maxHistory int) *session.Manager {
	return session.NewManager(&config.SessionConfig{
		TTLSeconds: ttlSeconds,
		MaxHistory: maxHistory,
	})
}

func TestManager_Get(t *testing.T) {
	t.Run("should create session with defaults on first interaction", func(t *testing.T) {
		m := newManager(3600, 20)

		s := m.Get("user-1")
		require.NotNil(t, s)
		require.Equal(t, "user-1", s.UserID)
		require.Equal(t, session.DefaultLanguage, s.Language())
		require.False(t, s.Loaded())
		require.Empty(t, s.VideoID())
	})

	t.Run("should return the same session on repeated access", func(t *testing.T) {
		m := newManager(3600, 20)

		first := m.Get("user-1")
		second := m.Get("user-1")
		require.Same(t, first, second)
		require.Equal(t, 1, m.Len())
	})

	t.Run("should isolate sessions across users", func(t *testing.T) {
		m := newManager(3600, 20)

		a := m.Get("user-a")
		b := m.Get("user-b")
		a.SetVideo("vid-1")
		a.SetLanguage("Hindi")

		require.False(t, b.Loaded())
		require.Equal(t, session.DefaultLanguage, b.Language())
		require.Equal(t, 2, m.Len())
	})

	t.Run("should sweep expired sessions", func(t *testing.T) {
		m := newManager(1, 20)

		m.Get("user-1")
		require.Equal(t, 1, m.Len())

		time.Sleep(1100 * time.Millisecond)
		m.Get("user-2")
		require.Equal(t, 1, m.Len())
	})

	t.Run("should be safe under concurrent access", func(t *testing.T) {
		m := newManager(3600, 20)

		var wg sync.WaitGroup
		for i := 0; i < 32; i++ {
			i := i
			wg.Add(1)
			go func() {
				defer wg.Done()
				s := m.Get(fmt.Sprintf("user-%d", i%4))
				s.SetLanguage("English")
				s.AddTurn("user", "hello")
			}()
		}
		wg.Wait()

		require.Equal(t, 4, m.Len())
	})
}

func TestManager_Reset(t *testing.T) {
	t.Run("should return session to idle with default language", func(t *testing.T) {
		m := newManager(3600, 20)

		s := m.Get("user-1")
		s.SetVideo("vid-1")
		s.SetLanguage("Tamil")
		s.AddTurn("user", "question")
		require.True(t, s.Loaded())

		m.Reset("user-1")

		fresh := m.Get("user-1")
		require.NotSame(t, s, fresh)
		require.False(t, fresh.Loaded())
		require.Equal(t, session.DefaultLanguage, fresh.Language())
		require.Empty(t, fresh.History())
	})
}

func TestSession_State(t *testing.T) {
	t.Run("should transition idle to loaded and back", func(t *testing.T) {
		m := newManager(3600, 20)
		s := m.Get("user-1")

		require.False(t, s.Loaded())
		s.SetVideo("vid-1")
		require.True(t, s.Loaded())
		require.Equal(t, "vid-1", s.VideoID())

		s.ClearVideo()
		require.False(t, s.Loaded())
	})

	t.Run("should start fresh history when a new video is bound", func(t *testing.T) {
		m := newManager(3600, 20)
		s := m.Get("user-1")

		s.SetVideo("vid-1")
		s.AddTurn("user", "q1")
		s.AddTurn("assistant", "a1")
		require.Len(t, s.History(), 2)

		s.SetVideo("vid-2")
		require.Empty(t, s.History())
	})

	t.Run("should bound history length", func(t *testing.T) {
		m := newManager(3600, 4)
		s := m.Get("user-1")

		for i := 0; i < 10; i++ {
			s.AddTurn("user", fmt.Sprintf("q%d", i))
		}

		history := s.History()
		require.Len(t, history, 4)
		require.Equal(t, "q6", history[0].Content)
		require.Equal(t, "q9", history[3].Content)
	})

	t.Run("language change should not alter loaded state", func(t *testing.T) {
		m := newManager(3600, 20)
		s := m.Get("user-1")

		s.SetLanguage("Bengali")
		require.False(t, s.Loaded())

		s.SetVideo("vid-1")
		s.SetLanguage("Marathi")
		require.True(t, s.Loaded())
		require.Equal(t, "Marathi", s.Language())
	})
}
