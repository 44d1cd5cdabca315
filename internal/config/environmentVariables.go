package config

import (
	"log/slog"
	"time"
)

const (
	IS_PROD        = false
	LOG_LEVEL_PROD = slog.LevelInfo
	TRACE_ID_KEY   = "traceId"

	RATE_LIMIT_PER_SECOND       = 2
	BURST_RATE_LIMIT_PER_SECOND = 5

	//serverTimeouts
	ReadTimeout            = 5 * time.Second
	WriteTimeout           = 10 * time.Second
	IdleTimeout            = 120 * time.Second
	ShutdownContextTimeout = 10 * time.Second

	//server listening port
	ServerListenAddr = ":3000"

	//job requests buffer limit
	BufferLimit = 100

	RequestsPerNewWorkerCount int64 = 10
	MaxWorkerCount            int64 = 10
	MinWorkerCount            int64 = 1
	IdleWorkerTimeout               = 1 * time.Minute

	//per-job execution ceilings
	QueryJobTimeout  = 60 * time.Second
	IngestJobTimeout = 4 * time.Hour //a polite crawl of a large sitemap is slow on purpose

	//vectorDB
	QdrantConnectionTimeout = 30 * time.Second
	QdrantHost              = ""
	QdrantGrpcPort          = 6334
	QdrantUseTLS            = false
	QdrantPoolSize          = 1

	//crawler
	CrawlUserAgent    = "Mozilla/5.0 (compatible; DogVetBot/1.0)"
	FetchTimeout      = 10 * time.Second
	DefaultCrawlDelay = 5 * time.Second

	//http pooling for the crawler
	MaxIdleConns        = 50
	MaxIdleConnsPerHost = 25
	IdleConnTimeout     = 60 * time.Second

	//chunking / indexing defaults
	DefaultChunkSizeTokens = 500
	DefaultUpsertBatchSize = 100
	DefaultSnippetLimit    = 1000
	DefaultIndexName       = "dogvet-rag"

	//retrieval defaults
	DefaultTopK                   = 5
	DefaultScoreThreshold float32 = 0.72
	CacheSimilarityCutoff float32 = 0.97
	AnswerCacheCollection         = "dogvet-answer-cache"

	//embedding defaults - the reference embedder is a 300-dim model so the
	//collection dimension must track whichever backend is configured
	DefaultEmbeddingDimension   = 300
	DefaultEmbeddingBaseURL     = "http://127.0.0.1:1234/v1"
	DefaultEmbeddingModel       = "text-embedding-nomic-embed-text-v1.5"
	DefaultGeminiEmbeddingModel = "gemini-embedding-001"

	//chat completion defaults
	OpenRouterBaseURL      = "https://openrouter.ai/api/v1"
	DefaultOpenRouterModel = "openai/gpt-4o-mini"
	DefaultLMStudioURL     = "http://192.168.68.70:1234/v1"
	CompletionMaxTokens    = 512
	CompletionTimeout      = 60 * time.Second
	EmbeddingTimeout       = 30 * time.Second

	//redis
	redisHost = "127.0.0.1"
	redisPort = "6379"
	RedisAddr = redisHost + ":" + redisPort

	RedisPassword = ""

	//redis job store DB slot and TTL
	RedisJobStore    = 0
	RedisJobStoreTTL = 24 * time.Hour
)
