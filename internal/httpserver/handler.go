// Package httpserver exposes the ops surface of the bot: a health probe and
// runtime stats. The chat traffic itself never goes through HTTP.
package httpserver

import (
	"encoding/json"
	"net/http"
	"time"

	"vidsage/internal/cache"
	"vidsage/internal/observability"
	"vidsage/internal/session"
)

// Handler handles ops HTTP requests.
type Handler struct {
	store    *cache.Store
	sessions *session.Manager
	started  time.Time
}

// NewHandler creates a new ops handler (DI constructor).
func NewHandler(store *cache.Store, sessions *session.Manager) *Handler {
	return &Handler{
		store:    store,
		sessions: sessions,
		started:  time.Now(),
	}
}

// statsResponse is the /v1/stats payload.
type statsResponse struct {
	CachedVideos   int    `json:"cached_videos"`
	ActiveSessions int    `json:"active_sessions"`
	UptimeSeconds  int64  `json:"uptime_seconds"`
	StartedAt      string `json:"started_at"`
}

// HandleStats reports runtime counters for dashboards and probes.
func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	resp := statsResponse{
		CachedVideos:   h.store.Len(),
		ActiveSessions: h.sessions.Len(),
		UptimeSeconds:  int64(time.Since(h.started).Seconds()),
		StartedAt:      h.started.UTC().Format(time.RFC3339),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger := observability.FromContext(r.Context())
		logger.Error("failed to encode stats response", observability.Error(err))
	}
}

// HandleHealth handles health check requests.
func (h *Handler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(map[string]string{
		"status": "healthy",
	}); err != nil {
		// Already written status, can't change it, just log.
		return
	}
}
