// Package cache is the single source of truth for per-video artifacts. It
// guarantees at-most-once expensive recomputation per video: concurrent
// requests for the same uncached video coalesce into one build, and completed
// builds are reused until evicted.
package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"vidsage/internal/config"
	"vidsage/internal/domain"
	"vidsage/internal/observability"
)

const (
	defaultCapacity = 64
	defaultTTL      = 24 * time.Hour
)

// Builder produces a cache entry for one video by running the expensive
// fetch, chunk, embed, build pipeline.
type Builder func(ctx context.Context) (*Entry, error)

type node struct {
	entry      *Entry
	lastAccess time.Time
}

// Store is a mutex-guarded memoizing cache keyed by video ID, with
// single-build-in-flight per key, LRU eviction over a capacity bound, TTL
// expiry and an optional shared second tier.
type Store struct {
	mu       sync.Mutex
	entries  map[string]*node
	flight   singleflight.Group
	remote   domain.ArtifactStore
	capacity int
	ttl      time.Duration
}

// NewStore creates a cache store. remote may be nil for local-only caching.
func NewStore(cfg *config.CacheConfig, remote domain.ArtifactStore) *Store {
	capacity := cfg.Capacity
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	ttl := time.Duration(cfg.TTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Store{
		entries:  make(map[string]*node),
		remote:   remote,
		capacity: capacity,
		ttl:      ttl,
	}
}

// GetOrBuild returns the cached entry for videoID, or runs build exactly once
// to create it. Concurrent callers for the same uncached video all receive
// the result (or the failure) of that single execution. Failures are never
// memoized, so a later retry runs the builder again.
func (s *Store) GetOrBuild(ctx context.Context, videoID string, build Builder) (*Entry, error) {
	if entry := s.lookup(videoID); entry != nil {
		return entry, nil
	}

	result, err, shared := s.flight.Do(videoID, func() (interface{}, error) {
		// A build may have completed between the miss and this flight.
		if entry := s.lookup(videoID); entry != nil {
			return entry, nil
		}

		if entry := s.remoteLookup(ctx, videoID); entry != nil {
			s.insert(videoID, entry)
			return entry, nil
		}

		entry, buildErr := build(ctx)
		if buildErr != nil {
			return nil, buildErr
		}

		s.insert(videoID, entry)
		s.remoteStore(ctx, entry)
		return entry, nil
	})

	// Successful builds are served from the map; forgetting the flight key
	// here means a failed build never wedges the video ID.
	s.flight.Forget(videoID)

	if err != nil {
		return nil, err
	}
	if shared {
		observability.FromContext(ctx).Debug("coalesced into in-flight build",
			observability.String("video_id", videoID))
	}
	return result.(*Entry), nil
}

// Get returns the cached entry for videoID without building, or nil.
func (s *Store) Get(videoID string) *Entry {
	return s.lookup(videoID)
}

// Summary returns the cached summary for a video and language, if present.
func (s *Store) Summary(videoID, language string) (string, bool) {
	entry := s.lookup(videoID)
	if entry == nil {
		return "", false
	}
	return entry.Summary(language)
}

// PutSummary stores a generated summary and writes it through to the shared
// tier when one is configured.
func (s *Store) PutSummary(ctx context.Context, videoID, language, text string) {
	entry := s.lookup(videoID)
	if entry == nil {
		return
	}
	entry.PutSummary(language, text)
	s.remoteStore(ctx, entry)
}

// Reset drops every artifact for a video, locally and in the shared tier.
func (s *Store) Reset(ctx context.Context, videoID string) {
	s.mu.Lock()
	delete(s.entries, videoID)
	s.mu.Unlock()

	s.flight.Forget(videoID)

	if s.remote != nil {
		if err := s.remote.Delete(ctx, videoID); err != nil {
			observability.FromContext(ctx).Warn("failed to delete remote artifacts",
				observability.String("video_id", videoID),
				observability.Error(err))
		}
	}
}

// Len returns the number of locally cached videos.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// lookup returns a live entry and refreshes its last access, expiring stale
// entries on the way.
func (s *Store) lookup(videoID string) *Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.entries[videoID]
	if !ok {
		return nil
	}
	if time.Since(n.lastAccess) > s.ttl {
		delete(s.entries, videoID)
		return nil
	}
	n.lastAccess = time.Now()
	return n.entry
}

func (s *Store) insert(videoID string, entry *Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[videoID] = &node{entry: entry, lastAccess: time.Now()}

	for len(s.entries) > s.capacity {
		oldestID := ""
		var oldest time.Time
		for id, n := range s.entries {
			if oldestID == "" || n.lastAccess.Before(oldest) {
				oldestID = id
				oldest = n.lastAccess
			}
		}
		delete(s.entries, oldestID)
	}
}

func (s *Store) remoteLookup(ctx context.Context, videoID string) *Entry {
	if s.remote == nil {
		return nil
	}

	logger := observability.FromContext(ctx)

	artifacts, err := s.remote.Get(ctx, videoID)
	if err != nil {
		logger.Warn("remote artifact lookup failed, building locally",
			observability.String("video_id", videoID),
			observability.Error(err))
		return nil
	}
	if artifacts == nil {
		return nil
	}

	entry, err := entryFromArtifacts(videoID, artifacts)
	if err != nil {
		logger.Warn("remote artifacts unusable, building locally",
			observability.String("video_id", videoID),
			observability.Error(err))
		return nil
	}

	logger.Info("restored video artifacts from remote cache",
		observability.String("video_id", videoID),
		observability.Int("chunks", entry.Index.Len()))
	return entry
}

func (s *Store) remoteStore(ctx context.Context, entry *Entry) {
	if s.remote == nil {
		return
	}
	if err := s.remote.Set(ctx, entry.VideoID, entry.Artifacts(), s.ttl); err != nil {
		observability.FromContext(ctx).Warn("failed to write artifacts to remote cache",
			observability.String("video_id", entry.VideoID),
			observability.Error(err))
	}
}
