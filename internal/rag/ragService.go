package rag

import (
	"context"
	"errors"
	"time"

	"github.com/davifus/dogvet-rag/internal/adapter/utils"
	"github.com/davifus/dogvet-rag/internal/config"
	"github.com/davifus/dogvet-rag/internal/domain/jobModel"
	"github.com/davifus/dogvet-rag/internal/metrics"
	"github.com/davifus/dogvet-rag/internal/rag/embedding"
	"github.com/davifus/dogvet-rag/internal/rag/ingest"
	"github.com/davifus/dogvet-rag/internal/rag/llm"
	"github.com/davifus/dogvet-rag/internal/rag/vectorDB"
	"github.com/davifus/dogvet-rag/pkg/logger_i"
)

/*
ARCHITECTURE NOTE: OPAQUE INTERFACE PATTERN
---------------------------------------------------------

1. Service (Interface):
  - This is the PUBLIC contract.
  - It defines the "behavior" (what the worker can do).
  - We expose this to keep the worker decoupled from our specific logic.

2. service (Private Struct):
  - This is the PRIVATE implementation.
  - It holds the "state" (database connections and LLM clients).
  - It is lowercase to prevent external packages from accessing our
    internal dependencies (vectorDB, llmProvider) directly.

3. Pointer Receiver (*service):
  - By defining methods on (*service), the struct IMPLICITLY satisfies
    the Service interface.

4. Dependency Injection (NewService):
  - This constructor links the private struct to the public interface.
  - It allows us to swap real DBs for mocks during testing without
    changing the worker's code.
*/

// Service is all the worker needs - it doesn't know the llm, the crawler or the vector store
type Service interface {
	ProcessRequest(ctx context.Context, job jobModel.Job) jobModel.Job
	IngestSource(ctx context.Context, job jobModel.Job) jobModel.Job
}

type service struct {
	vectorDB    vectorDB.DataProcessor
	llmProvider llm.Provider
	embedder    embedding.Embedder
	pipeline    *ingest.Pipeline
	settings    config.RAGSettings
	logger      *logger_i.Logger
}

// NewService constructor
func NewService(vector vectorDB.DataProcessor, llm llm.Provider, em embedding.Embedder, pipeline *ingest.Pipeline, settings config.RAGSettings) Service {
	return &service{
		vectorDB:    vector,
		llmProvider: llm,
		embedder:    em,
		pipeline:    pipeline,
		settings:    settings,
		logger:      logger_i.NewLogger("RAG Service :"),
	}
}

func (s *service) ProcessRequest(ctx context.Context, jobt jobModel.Job) jobModel.Job {
	inMethodLogger := s.logger.With("traceId", jobt.TraceId, "JobId", jobt.Id)

	processContext, cancel := context.WithTimeout(ctx, config.QueryJobTimeout)
	defer cancel()

	jobt.CurrentStep = jobModel.RAGCall

	// Embedding
	queryVector, err := s.executeEmbeddingStep(processContext, inMethodLogger, &jobt)
	if err != nil {
		return s.jobError(jobt, err, "EMBEDDING_FAILURE", true)
	}

	// Cache Check
	cachedAnswer, found := s.executeCacheCheckStep(processContext, inMethodLogger, &jobt, queryVector)
	if found {
		return returnOutput(jobt, cachedAnswer)
	}

	// Vector DB Search + score gate
	matches, err := s.executeVectorSearchStep(processContext, inMethodLogger, &jobt, queryVector)
	if err != nil {
		return s.jobError(jobt, err, "VECTOR_DB_FAILURE", true)
	}

	relevant, err := SelectRelevant(matches, s.settings.ScoreThreshold)
	if errors.Is(err, ErrNoRelevantContext) {
		inMethodLogger.Info("no match cleared the score threshold",
			"candidates", len(matches), "threshold", s.settings.ScoreThreshold)
		return returnNoContext(jobt)
	}
	jobt.JobPayload.Sources = sourceURLs(relevant)

	// LLM Generation
	answer, err := s.executeLLMStep(processContext, inMethodLogger, &jobt, relevant)
	if err != nil {
		return s.jobError(jobt, err, "LLM_GENERATION_FAILURE", true)
	}

	// Background Cache Save
	go func() {
		saveCtx, saveCancel := context.WithTimeout(context.Background(), config.EmbeddingTimeout)
		defer saveCancel()
		if err := s.vectorDB.SaveToCache(saveCtx, utils.GetNewUUID(), queryVector, answer); err != nil {
			s.logger.Error("Failed to save to cache", "error", err)
		}
	}()

	return returnOutput(jobt, answer)
}

func (s *service) IngestSource(ctx context.Context, jobt jobModel.Job) jobModel.Job {
	inMethodLogger := s.logger.With("traceId", jobt.TraceId, "JobId", jobt.Id,
		"source", jobt.JobPayload.SourceName)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("source_ingestion", time.Since(start)) }()

	jobt.CurrentStep = jobModel.IngestCrawling
	inMethodLogger.Info("starting ingestion", "sitemap", jobt.JobPayload.SitemapURL)

	report, err := s.pipeline.Run(ctx, jobt.JobPayload.SourceName, jobt.JobPayload.SitemapURL)
	jobt.JobPayload.Report = &report
	if err != nil {
		return s.jobError(jobt, err, "INGESTION_FAILURE", true)
	}

	inMethodLogger.Info("ingestion complete",
		"urls", report.URLsTotal,
		"shortlisted", report.URLsShortlisted,
		"fetched", report.PagesFetched,
		"vectors", report.VectorsUpserted,
		"failed_batches", report.BatchesFailed)

	jobt.CurrentStep = jobModel.Complete
	return jobt
}
