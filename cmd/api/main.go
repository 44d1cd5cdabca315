package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/davifus/dogvet-rag/internal/config"
	"github.com/davifus/dogvet-rag/internal/data/redisStore"
	"github.com/davifus/dogvet-rag/internal/data/store"
	jobmodel "github.com/davifus/dogvet-rag/internal/domain/jobModel"
	"github.com/davifus/dogvet-rag/internal/handlers"
	"github.com/davifus/dogvet-rag/internal/job"
	"github.com/davifus/dogvet-rag/internal/middleware"
	"github.com/davifus/dogvet-rag/internal/rag"
	"github.com/davifus/dogvet-rag/internal/rag/embedding"
	"github.com/davifus/dogvet-rag/internal/rag/embedding/geminiEmbedding"
	"github.com/davifus/dogvet-rag/internal/rag/embedding/openaiEmbedding"
	"github.com/davifus/dogvet-rag/internal/rag/fetch"
	"github.com/davifus/dogvet-rag/internal/rag/ingest"
	"github.com/davifus/dogvet-rag/internal/rag/keyword"
	"github.com/davifus/dogvet-rag/internal/rag/llm"
	"github.com/davifus/dogvet-rag/internal/rag/llm/lmstudio"
	"github.com/davifus/dogvet-rag/internal/rag/llm/openrouter"
	"github.com/davifus/dogvet-rag/internal/rag/vectorDB/qdrantDB"
	"github.com/davifus/dogvet-rag/internal/server"
	"github.com/davifus/dogvet-rag/internal/worker"
	"github.com/davifus/dogvet-rag/pkg/logger_i"
	"golang.org/x/time/rate"
)

var (
	listenAddr        string
	requestCount      int64
	stopWorkerChannel chan bool
	workerWaitGroup   sync.WaitGroup
)

func main() {

	logger_i.Init()
	var logger = logger_i.NewLogger("main")

	//config
	flag.StringVar(&listenAddr, "listen-addr", config.ServerListenAddr, "server listen address")
	flag.Parse()

	settings, err := config.LoadRAGSettings()
	if err != nil {
		logger.Error("Invalid configuration. Shutting down.", "error", err)
		return
	}

	//init buffered job channel
	jobChannel := make(chan jobmodel.Job, config.BufferLimit)
	dispatcherChannel := make(chan bool, 1)
	stopWorkerChannel = make(chan bool, 1)

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	//init job service and job store
	serviceConfig := job.ServiceConfig{
		JobChannel:        jobChannel,
		RequestCount:      requestCount,
		DispatcherChannel: dispatcherChannel,
	}
	logger.Info("Starting job service")

	if redisJobStore := redisStore.NewStore(serviceContext, config.RedisJobStore); redisJobStore != nil {
		serviceConfig.JobStore = store.NewRedisJobStore(redisJobStore)
	} else {
		logger.Error("Redis store is offline, falling back to in-memory job store")
		serviceConfig.JobStore = store.InitInMemoryJobStore()
	}
	service := job.InitJobService(serviceConfig)

	vectorDB, err := qdrantClient(serviceContext, settings, logger)
	if err != nil {
		logger.Error("Vector DB failed to initialize. Shutting down.", "error", err)
		return
	}
	embeddingService, err := buildEmbedder(serviceContext, settings)
	if err != nil {
		logger.Error("Embedding backend failed to initialize. Shutting down.", "error", err)
		return
	}
	llmProvider := buildProvider(settings)

	fetcher := fetch.NewHTTPFetcher()
	filter := keyword.NewFilter(keyword.DogKeywords)
	pipeline := ingest.NewPipeline(fetcher, filter, embeddingService, vectorDB, settings)

	ragService := rag.NewService(vectorDB, llmProvider, embeddingService, pipeline, settings)

	jobHandler := handlers.NewJobHandler(service)
	mw := middleware.NewMiddleware(middleware.NewIPRateLimiter(
		rate.Limit(config.RATE_LIMIT_PER_SECOND), config.BURST_RATE_LIMIT_PER_SECOND))

	//init worker pool
	pool := worker.NewPool(service, ragService)
	pool.Start(stopWorkerChannel, &workerWaitGroup)

	//server handling
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	stopExecution := make(chan bool, 1)

	srv := server.NewServer(listenAddr, jobHandler, mw)

	shutdownParams := server.ShutdownParams{
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
		WorkerStop:       stopWorkerChannel,
		Group:            &workerWaitGroup,
		CloseServices:    closeExternalServices,
	}
	go srv.ShutDownHandler(shutdownParams)
	go srv.Listen()

	<-stopExecution
	logger.Info("Server stopped")
}

func qdrantClient(ctx context.Context, settings config.RAGSettings, logger *logger_i.Logger) (*qdrantDB.ClientHolder, error) {
	client, err := qdrantDB.NewClient(ctx, settings)
	if err != nil {
		return nil, err
	}
	logger.Info("Vector DB connected", "collection", settings.IndexName)
	return client, nil
}

func buildEmbedder(ctx context.Context, settings config.RAGSettings) (embedding.Embedder, error) {
	if settings.EmbeddingBackend == "gemini" {
		return geminiEmbedding.NewClient(ctx, settings)
	}
	return openaiEmbedding.NewClient(settings), nil
}

func buildProvider(settings config.RAGSettings) llm.Provider {
	if settings.ChatBackend == "openrouter" {
		return openrouter.NewClient(settings)
	}
	return lmstudio.NewClient(settings)
}
