// Package redis implements the shared artifact store on Redis, so multiple
// bot instances (or restarts) reuse transcripts and embeddings instead of
// re-running the expensive pipeline.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"vidsage/internal/config"
	"vidsage/internal/domain"
	"vidsage/internal/observability"
)

const keyPrefix = "vidsage:v:"

// Store persists serialized per-video artifacts in Redis with a TTL.
type Store struct {
	client *redis.Client
}

// NewStore creates a Redis artifact store and verifies connectivity.
func NewStore(ctx context.Context, cfg *config.CacheConfig) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	observability.FromContext(ctx).Info("redis artifact store connected",
		observability.String("addr", cfg.RedisAddr))

	return &Store{client: client}, nil
}

// Get loads artifacts for a video, or nil on miss.
func (s *Store) Get(ctx context.Context, videoID string) (*domain.Artifacts, error) {
	data, err := s.client.Get(ctx, keyPrefix+videoID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", videoID, err)
	}

	var artifacts domain.Artifacts
	if unmarshalErr := json.Unmarshal(data, &artifacts); unmarshalErr != nil {
		return nil, fmt.Errorf("decode artifacts for %s: %w", videoID, unmarshalErr)
	}

	observability.FromContext(ctx).Debug("remote artifact hit",
		observability.String("video_id", videoID),
		observability.Int("bytes", len(data)))

	return &artifacts, nil
}

// Set stores artifacts for a video with the given TTL.
func (s *Store) Set(ctx context.Context, videoID string, a *domain.Artifacts, ttl time.Duration) error {
	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("encode artifacts for %s: %w", videoID, err)
	}

	if setErr := s.client.Set(ctx, keyPrefix+videoID, data, ttl).Err(); setErr != nil {
		return fmt.Errorf("redis set %s: %w", videoID, setErr)
	}

	observability.FromContext(ctx).Debug("remote artifacts stored",
		observability.String("video_id", videoID),
		observability.Int("bytes", len(data)),
		observability.Duration("ttl", ttl))

	return nil
}

// Delete drops the stored artifacts for a video.
func (s *Store) Delete(ctx context.Context, videoID string) error {
	if err := s.client.Del(ctx, keyPrefix+videoID).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", videoID, err)
	}
	return nil
}
