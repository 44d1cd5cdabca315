package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// RAGSettings carries every pipeline knob that should be overridable from the
// environment. It is built once in main and injected; packages never read the
// environment themselves.
type RAGSettings struct {
	IndexName          string
	ChunkSizeTokens    int
	UpsertBatchSize    int
	SnippetLimit       int
	CrawlDelay         time.Duration
	StagingDir         string

	TopK           int
	ScoreThreshold float32

	EmbeddingBackend   string //"openai" or "gemini"
	EmbeddingDimension int
	EmbeddingBaseURL   string
	EmbeddingAPIKey    string
	EmbeddingModel     string
	GeminiAPIKey       string
	GeminiModel        string

	ChatBackend      string //"openrouter" or "lmstudio"
	OpenRouterAPIKey string
	OpenRouterModel  string
	LMStudioURL      string
}

func LoadRAGSettings() (RAGSettings, error) {
	//.env is optional, real deployments set the environment directly
	_ = godotenv.Load()

	s := RAGSettings{
		IndexName:          getEnv("INDEX_NAME", DefaultIndexName),
		ChunkSizeTokens:    getEnvInt("CHUNK_SIZE_TOKENS", DefaultChunkSizeTokens),
		UpsertBatchSize:    getEnvInt("UPSERT_BATCH_SIZE", DefaultUpsertBatchSize),
		SnippetLimit:       DefaultSnippetLimit,
		CrawlDelay:         getEnvDuration("CRAWL_DELAY", DefaultCrawlDelay),
		StagingDir:         getEnv("STAGING_DIR", ""),
		TopK:               getEnvInt("TOP_K", DefaultTopK),
		ScoreThreshold:     getEnvFloat32("SCORE_THRESHOLD", DefaultScoreThreshold),
		EmbeddingBackend:   getEnv("EMBEDDING_BACKEND", "openai"),
		EmbeddingDimension: getEnvInt("EMBEDDING_DIMENSION", DefaultEmbeddingDimension),
		EmbeddingBaseURL:   getEnv("EMBEDDING_BASE_URL", DefaultEmbeddingBaseURL),
		EmbeddingAPIKey:    os.Getenv("EMBEDDING_API_KEY"),
		EmbeddingModel:     getEnv("EMBEDDING_MODEL", DefaultEmbeddingModel),
		GeminiAPIKey:       os.Getenv("GEMINI_API_KEY"),
		GeminiModel:        getEnv("GEMINI_EMBEDDING_MODEL", DefaultGeminiEmbeddingModel),
		ChatBackend:        getEnv("CHAT_BACKEND", "lmstudio"),
		OpenRouterAPIKey:   os.Getenv("OPENROUTER_API_KEY"),
		OpenRouterModel:    getEnv("OPENROUTER_MODEL", DefaultOpenRouterModel),
		LMStudioURL:        getEnv("LMSTUDIO_URL", DefaultLMStudioURL),
	}

	return s, s.validate()
}

// validate fails fast, before any network client is constructed.
func (s RAGSettings) validate() error {
	if s.ChunkSizeTokens <= 0 {
		return fmt.Errorf("invalid configuration: CHUNK_SIZE_TOKENS must be positive, got %d", s.ChunkSizeTokens)
	}
	if s.UpsertBatchSize <= 0 {
		return fmt.Errorf("invalid configuration: UPSERT_BATCH_SIZE must be positive, got %d", s.UpsertBatchSize)
	}
	if s.TopK <= 0 {
		return fmt.Errorf("invalid configuration: TOP_K must be positive, got %d", s.TopK)
	}
	if s.ScoreThreshold < 0 || s.ScoreThreshold > 1 {
		return fmt.Errorf("invalid configuration: SCORE_THRESHOLD must be in [0,1], got %v", s.ScoreThreshold)
	}
	if s.EmbeddingDimension <= 0 {
		return fmt.Errorf("invalid configuration: EMBEDDING_DIMENSION must be positive, got %d", s.EmbeddingDimension)
	}
	switch s.EmbeddingBackend {
	case "openai":
	case "gemini":
		if s.GeminiAPIKey == "" {
			return fmt.Errorf("invalid configuration: GEMINI_API_KEY is required for the gemini embedding backend")
		}
	default:
		return fmt.Errorf("invalid configuration: unknown EMBEDDING_BACKEND %q", s.EmbeddingBackend)
	}
	switch s.ChatBackend {
	case "lmstudio":
	case "openrouter":
		if s.OpenRouterAPIKey == "" {
			return fmt.Errorf("invalid configuration: OPENROUTER_API_KEY is required for the openrouter chat backend")
		}
	default:
		return fmt.Errorf("invalid configuration: unknown CHAT_BACKEND %q", s.ChatBackend)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat32(key string, fallback float32) float32 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 32); err == nil {
			return float32(f)
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
