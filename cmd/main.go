package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/dig"

	"vidsage/internal/app"
	"vidsage/internal/cache"
	"vidsage/internal/cache/redis"
	"vidsage/internal/chunker"
	"vidsage/internal/config"
	"vidsage/internal/domain"
	"vidsage/internal/embedding"
	"vidsage/internal/generation"
	"vidsage/internal/httpserver"
	"vidsage/internal/httpserver/middleware"
	"vidsage/internal/observability"
	"vidsage/internal/retrieval"
	"vidsage/internal/session"
	"vidsage/internal/telegram"
	"vidsage/internal/transcript"
)

const shutdownTimeout = 10 * time.Second

func main() {
	container := buildContainer()

	err := container.Invoke(func(bot *telegram.Bot, server *httpserver.Server) {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		go func() {
			if err := server.Start(); err != nil {
				log.Fatalf("Ops server failed to start: %v", err)
			}
		}()

		if err := bot.Run(ctx); err != nil && ctx.Err() == nil {
			log.Fatalf("Bot failed: %v", err)
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("Ops server shutdown: %v", err)
		}
	})
	if err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}
}

func buildContainer() *dig.Container {
	container := dig.New()

	// Configuration
	if err := container.Provide(config.Load); err != nil {
		log.Fatalf("Failed to provide config: %v", err)
	}
	if err := container.Provide(config.ParseDependenciesConfig); err != nil {
		log.Fatalf("Failed to provide config dependencies: %v", err)
	}

	// Observability
	if err := container.Provide(observability.InitLogger); err != nil {
		log.Fatalf("Failed to provide logger: %v", err)
	}

	// Retrieval pipeline
	if err := container.Provide(chunker.New); err != nil {
		log.Fatalf("Failed to provide chunker: %v", err)
	}
	if err := container.Provide(func(cfg *config.RetrievalConfig) domain.Embedder {
		return embedding.New(cfg)
	}); err != nil {
		log.Fatalf("Failed to provide embedder: %v", err)
	}
	if err := container.Provide(func(cfg *config.OpenRouterConfig) (domain.TranscriptProvider, error) {
		return transcript.NewProvider(cfg)
	}); err != nil {
		log.Fatalf("Failed to provide transcript provider: %v", err)
	}
	if err := container.Provide(func(cfg *config.CacheConfig) domain.ArtifactStore {
		return artifactStore(cfg)
	}); err != nil {
		log.Fatalf("Failed to provide artifact store: %v", err)
	}
	if err := container.Provide(cache.NewStore); err != nil {
		log.Fatalf("Failed to provide cache store: %v", err)
	}
	if err := container.Provide(retrieval.NewEngine); err != nil {
		log.Fatalf("Failed to provide retrieval engine: %v", err)
	}

	// Generation
	if err := container.Provide(func(cfg *config.OpenRouterConfig) (domain.Generator, error) {
		return generation.NewClient(cfg)
	}); err != nil {
		log.Fatalf("Failed to provide generator: %v", err)
	}

	// Sessions and dispatch
	if err := container.Provide(session.NewManager); err != nil {
		log.Fatalf("Failed to provide session manager: %v", err)
	}
	if err := container.Provide(app.NewService); err != nil {
		log.Fatalf("Failed to provide app service: %v", err)
	}

	// Transports
	if err := container.Provide(telegram.NewBot); err != nil {
		log.Fatalf("Failed to provide telegram bot: %v", err)
	}
	if err := container.Provide(middleware.BuildMiddlewareChain); err != nil {
		log.Fatalf("Failed to provide middleware chain: %v", err)
	}
	if err := container.Provide(httpserver.NewHandler); err != nil {
		log.Fatalf("Failed to provide ops handler: %v", err)
	}
	if err := container.Provide(httpserver.NewServer); err != nil {
		log.Fatalf("Failed to provide ops server: %v", err)
	}

	return container
}

// artifactStore builds the optional shared Redis tier. A nil store keeps the
// cache purely local.
func artifactStore(cfg *config.CacheConfig) domain.ArtifactStore {
	if !cfg.UseRedis {
		return nil
	}

	store, err := redis.NewStore(context.Background(), cfg)
	if err != nil {
		// Redis being down must not keep the bot from starting.
		log.Printf("Redis unavailable, continuing with local cache only: %v", err)
		return nil
	}
	return store
}
