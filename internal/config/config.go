package config

import (
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"go.uber.org/dig"
)

// Config represents the bot configuration.
type Config struct {
	Telegram   TelegramConfig
	OpenRouter OpenRouterConfig
	Retrieval  RetrievalConfig
	Cache      CacheConfig
	Session    SessionConfig
	Server     ServerConfig
	CORS       CORSConfig
}

// TelegramConfig contains chat transport settings.
type TelegramConfig struct {
	Token          string `env:"TELEGRAM_BOT_TOKEN"`
	UpdateTimeout  int    `env:"TELEGRAM_UPDATE_TIMEOUT" envDefault:"30"`
	MaxMessageLen  int    `env:"TELEGRAM_MAX_MESSAGE_LEN" envDefault:"4000"`
	DropPendingOld bool   `env:"TELEGRAM_DROP_PENDING"    envDefault:"true"`
}

// OpenRouterConfig contains settings for the hosted model gateway used for
// both transcript extraction and answer generation.
type OpenRouterConfig struct {
	APIKey             string `env:"OPENROUTER_API_KEY"`
	BaseURL            string `env:"OPENROUTER_BASE_URL"      envDefault:"https://openrouter.ai/api/v1"`
	TranscriptionModel string `env:"TRANSCRIPTION_MODEL"      envDefault:"google/gemma-3n-e4b-it:free"`
	GenerationModel    string `env:"GENERATION_MODEL"         envDefault:"stepfun/step-3.5-flash:free"`
	TimeoutSeconds     int    `env:"OPENROUTER_TIMEOUT"       envDefault:"90"`
	MaxRetries         int    `env:"OPENROUTER_MAX_RETRIES"   envDefault:"2"`
}

// RetrievalConfig contains chunking, embedding and search settings.
type RetrievalConfig struct {
	ChunkTargetChars   int     `env:"CHUNK_TARGET_CHARS"   envDefault:"400"`
	ChunkOverlap       int     `env:"CHUNK_OVERLAP"        envDefault:"2"`
	EmbeddingDimension int     `env:"EMBEDDING_DIMENSION"  envDefault:"384"`
	TopK               int     `env:"TOP_K_CHUNKS"         envDefault:"4"`
	ScoreThreshold     float64 `env:"SCORE_THRESHOLD"      envDefault:"0.15"`
}

// CacheConfig contains per-video artifact cache settings.
type CacheConfig struct {
	Capacity      int    `env:"CACHE_CAPACITY"     envDefault:"64"`
	TTLSeconds    int    `env:"CACHE_TTL_SECONDS"  envDefault:"86400"`
	UseRedis      bool   `env:"USE_REDIS"          envDefault:"false"`
	RedisAddr     string `env:"REDIS_ADDR"         envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB"           envDefault:"0"`
}

// SessionConfig contains per-user session settings.
type SessionConfig struct {
	TTLSeconds int `env:"SESSION_TTL_SECONDS" envDefault:"21600"`
	MaxHistory int `env:"SESSION_MAX_HISTORY" envDefault:"20"`
}

// ServerConfig contains ops HTTP server settings.
type ServerConfig struct {
	Port         int `env:"SERVER_PORT"          envDefault:"8080"`
	ReadTimeout  int `env:"SERVER_READ_TIMEOUT"  envDefault:"30"`
	WriteTimeout int `env:"SERVER_WRITE_TIMEOUT" envDefault:"30"`
}

// CORSConfig contains CORS policy settings for the ops server.
type CORSConfig struct {
	AllowedOrigins   []string `env:"CORS_ALLOWED_ORIGINS"   envSeparator:"," envDefault:"*"`
	AllowedMethods   []string `env:"CORS_ALLOWED_METHODS"   envSeparator:"," envDefault:"GET,OPTIONS"`
	AllowedHeaders   []string `env:"CORS_ALLOWED_HEADERS"   envSeparator:"," envDefault:"Content-Type,Authorization"`
	AllowCredentials bool     `env:"CORS_ALLOW_CREDENTIALS"                  envDefault:"false"`
	MaxAge           int      `env:"CORS_MAX_AGE"                            envDefault:"86400"`
}

// DepConfig is used for dependency injection with dig.
type DepConfig struct {
	dig.Out
	*TelegramConfig
	*OpenRouterConfig
	*RetrievalConfig
	*CacheConfig
	*SessionConfig
	*ServerConfig
	*CORSConfig
}

// Load loads environment files and parses configuration.
func Load() *Config {
	for _, file := range []string{".env"} {
		_ = godotenv.Load(file)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		panic(err)
	}

	return &cfg
}

// ParseDependenciesConfig returns pointers to sub-configs for dependency injection.
func ParseDependenciesConfig(cfg *Config) DepConfig {
	return DepConfig{
		dig.Out{},
		&cfg.Telegram,
		&cfg.OpenRouter,
		&cfg.Retrieval,
		&cfg.Cache,
		&cfg.Session,
		&cfg.Server,
		&cfg.CORS,
	}
}
