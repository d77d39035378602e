package config

import (
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	pkgRetry "github.com/mshayganfar/starting-ragchatbot-codebase/internal/pkg/retry"
)

// Config holds the application configuration
type Config struct {
	// Server configuration
	ServerAddr string `env:"SERVER_ADDR" envDefault:":8000"`

	// External service configurations
	AnthropicCfg AnthropicConnectorConfig `envPrefix:"ANTHROPIC_"`
	EmbeddingCfg EmbeddingConnectorConfig `envPrefix:"EMBEDDING_"`

	// Retrieval configuration
	VectorCfg VectorStoreConfig `envPrefix:"VECTOR_"`
	ChunkCfg  ChunkingConfig    `envPrefix:"CHUNK_"`

	// Conversation configuration
	SessionCfg SessionConfig `envPrefix:"SESSION_"`

	// Ingestion configuration
	IngestCfg IngestConfig `envPrefix:"INGEST_"`

	// Logging configuration
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Mock configuration
	EnableMocks bool `env:"ENABLE_MOCKS" envDefault:"false"`

	// Telegram bot configuration (optional, used by cmd/telegram-bot only)
	TelegramCfg TelegramConfig `envPrefix:"TELEGRAM_"`

	// Environment (set from flag, not from env var)
	Environment string
}

// AnthropicConnectorConfig drives the Anthropic Messages client and the
// tool round policy built on top of it.
type AnthropicConnectorConfig struct {
	HTTPClientConfig
	Model         string               `env:"MODEL" envDefault:"claude-sonnet-4-20250514"`
	APIVersion    string               `env:"API_VERSION" envDefault:"2023-06-01"`
	MaxTokens     int                  `env:"MAX_TOKENS" envDefault:"800"`
	Temperature   float64              `env:"TEMPERATURE" envDefault:"0"`
	MaxToolRounds int                  `env:"MAX_TOOL_ROUNDS" envDefault:"2"`
	Retry         pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

type EmbeddingConnectorConfig struct {
	HTTPClientConfig
	Model string               `env:"MODEL" envDefault:"text-embedding-3-small"`
	Retry pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

// VectorStoreConfig selects and tunes the vector index backend.
type VectorStoreConfig struct {
	Backend           string        `env:"BACKEND" envDefault:"memory"` // memory, chroma, pgvector
	MaxResults        int           `env:"MAX_RESULTS" envDefault:"5"`
	CatalogCollection string        `env:"CATALOG_COLLECTION" envDefault:"course_catalog"`
	ContentCollection string        `env:"CONTENT_COLLECTION" envDefault:"course_content"`
	ResolveCacheTTL   time.Duration `env:"RESOLVE_CACHE_TTL" envDefault:"5m"`

	ChromaCfg   ChromaConnectorConfig `envPrefix:"CHROMA_"`
	PostgresCfg PostgresConfig        `envPrefix:"PG_"`
}

type ChromaConnectorConfig struct {
	HTTPClientConfig
	Retry pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

type PostgresConfig struct {
	DatabaseURL         string        `env:"DATABASE_URL"`
	MaxConns            int           `env:"MAX_CONNS" envDefault:"25"`
	MinConns            int           `env:"MIN_CONNS" envDefault:"5"`
	MaxConnLifetime     time.Duration `env:"MAX_CONN_LIFETIME" envDefault:"1h"`
	MaxConnIdleTime     time.Duration `env:"MAX_CONN_IDLE_TIME" envDefault:"30m"`
	HealthCheckPeriod   time.Duration `env:"HEALTH_CHECK_PERIOD" envDefault:"1m"`
	EmbeddingDimensions int           `env:"EMBEDDING_DIMENSIONS" envDefault:"1536"`
}

type ChunkingConfig struct {
	Size    int `env:"SIZE" envDefault:"800"`
	Overlap int `env:"OVERLAP" envDefault:"100"`
}

// SessionConfig tunes conversation memory. MaxHistory counts exchanges, not
// messages: 2 means the last two query/answer pairs survive.
type SessionConfig struct {
	Backend    string      `env:"BACKEND" envDefault:"memory"` // memory, redis
	MaxHistory int         `env:"MAX_HISTORY" envDefault:"2"`
	RedisCfg   RedisConfig `envPrefix:"REDIS_"`
}

type RedisConfig struct {
	Addr     string        `env:"ADDR" envDefault:"localhost:6379"`
	Password string        `env:"PASSWORD"`
	DB       int           `env:"DB" envDefault:"0"`
	TTL      time.Duration `env:"TTL" envDefault:"24h"`
}

// IngestConfig controls the course-documents folder loaded at startup.
type IngestConfig struct {
	DocsDir       string `env:"DOCS_DIR" envDefault:"docs"`
	LoadOnStartup bool   `env:"LOAD_ON_STARTUP" envDefault:"true"`
}

// TelegramConfig holds Telegram bot configuration
type TelegramConfig struct {
	BotToken        string `env:"BOT_TOKEN"`
	UpdateTimeout   int    `env:"UPDATE_TIMEOUT" envDefault:"30"`
	ShutdownTimeout int    `env:"SHUTDOWN_TIMEOUT" envDefault:"10"` // seconds

	// Per-chat limit on queries, each one costs an LLM call
	RateLimitPerMinute int `env:"RATE_LIMIT_PER_MINUTE" envDefault:"20"`
	RateLimitBurst     int `env:"RATE_LIMIT_BURST" envDefault:"5"`
}

type HTTPClientConfig struct {
	RequestTimeout        time.Duration `env:"TIMEOUT" envDefault:"90s"`
	ConnTimeout           time.Duration `env:"CONN_TIMEOUT" envDefault:"10s"`
	KeepAlive             time.Duration `env:"KEEP_ALIVE" envDefault:"30s"`
	IdleConnTimeout       time.Duration `env:"IDLE_CONN_TIMEOUT" envDefault:"90s"`
	ResponseHeaderTimeout time.Duration `env:"RESPONSE_HEADER_TIMEOUT" envDefault:"60s"`
	Token                 string        `env:"TOKEN"`
	Url                   string        `env:"SERVICE_URL"`
}

func LoadConfig() (*Config, error) {
	envFlag := flag.String("env", "local", "Environment to run (local, prod, or custom)")
	flag.Parse()

	envFile := getEnvFile(*envFlag)
	// Try to load env file, but don't fail if it's missing.
	// In containerized/prod environments variables are usually set externally.
	if err := godotenv.Load(envFile); err != nil {
		fmt.Printf("Warning: could not load %s file (this is ok if env vars are set externally): %v\n", envFile, err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	cfg.Environment = *envFlag

	if cfg.AnthropicCfg.Url == "" {
		cfg.AnthropicCfg.Url = "https://api.anthropic.com"
	}
	if cfg.EmbeddingCfg.Url == "" {
		cfg.EmbeddingCfg.Url = "https://api.openai.com"
	}
	if cfg.VectorCfg.ChromaCfg.Url == "" {
		cfg.VectorCfg.ChromaCfg.Url = "http://localhost:8001"
	}

	// Validate configuration
	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func validateConfig(cfg *Config) error {
	var errors []string

	switch cfg.VectorCfg.Backend {
	case "memory", "chroma", "pgvector":
	default:
		errors = append(errors, fmt.Sprintf("VECTOR_BACKEND must be one of memory, chroma, pgvector, got %q", cfg.VectorCfg.Backend))
	}

	switch cfg.SessionCfg.Backend {
	case "memory", "redis":
	default:
		errors = append(errors, fmt.Sprintf("SESSION_BACKEND must be one of memory, redis, got %q", cfg.SessionCfg.Backend))
	}

	if cfg.ChunkCfg.Size < 1 {
		errors = append(errors, fmt.Sprintf("CHUNK_SIZE must be positive, got %d", cfg.ChunkCfg.Size))
	}

	if cfg.ChunkCfg.Overlap < 0 || cfg.ChunkCfg.Overlap >= cfg.ChunkCfg.Size {
		errors = append(errors, fmt.Sprintf("CHUNK_OVERLAP must be between 0 and CHUNK_SIZE(%d), got %d", cfg.ChunkCfg.Size, cfg.ChunkCfg.Overlap))
	}

	if cfg.VectorCfg.MaxResults < 1 || cfg.VectorCfg.MaxResults > 100 {
		errors = append(errors, fmt.Sprintf("VECTOR_MAX_RESULTS must be between 1 and 100, got %d", cfg.VectorCfg.MaxResults))
	}

	if cfg.SessionCfg.MaxHistory < 0 || cfg.SessionCfg.MaxHistory > 100 {
		errors = append(errors, fmt.Sprintf("SESSION_MAX_HISTORY must be between 0 and 100, got %d", cfg.SessionCfg.MaxHistory))
	}

	if cfg.AnthropicCfg.MaxToolRounds < 1 || cfg.AnthropicCfg.MaxToolRounds > 10 {
		errors = append(errors, fmt.Sprintf("ANTHROPIC_MAX_TOOL_ROUNDS must be between 1 and 10, got %d", cfg.AnthropicCfg.MaxToolRounds))
	}

	if !cfg.EnableMocks {
		if cfg.AnthropicCfg.Token == "" {
			errors = append(errors, "ANTHROPIC_TOKEN is required when mocks are disabled")
		}
		if cfg.EmbeddingCfg.Token == "" {
			errors = append(errors, "EMBEDDING_TOKEN is required when mocks are disabled")
		}
	}

	if cfg.VectorCfg.Backend == "pgvector" && cfg.VectorCfg.PostgresCfg.DatabaseURL == "" {
		errors = append(errors, "VECTOR_PG_DATABASE_URL is required for the pgvector backend")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation errors:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

func getEnvFile(environment string) string {
	switch environment {
	case "prod", "production":
		return ".env.prod"
	case "local", "dev", "development":
		return ".env.local"
	default:
		return fmt.Sprintf(".env.%s", environment)
	}
}
