package jobModel

import (
	"context"
	"time"
)

type JobStatus string
type InternalStatus string

type JobType string

const (
	JobStatusQueued   JobStatus = "QUEUED"
	JobStatusRunning  JobStatus = "RUNNING"
	JobStatusComplete JobStatus = "COMPLETE"
	JobStatusError    JobStatus = "Error"

	UserQueryInit    InternalStatus = "Init"
	CacheCall        InternalStatus = "CacheCall"
	RAGCall          InternalStatus = "RAG"
	LLMCall          InternalStatus = "LLM"
	VectorDBCall     InternalStatus = "VectorDB"
	EmbeddingAPICall InternalStatus = "EmbeddingAPI"

	IngestInit     InternalStatus = "IngestInit"
	IngestCrawling InternalStatus = "IngestCrawling"
	Error          InternalStatus = "Error"

	Complete InternalStatus = "Complete"

	JobTypeQuery  JobType = "Query"
	JobTypeIngest JobType = "Ingest"
)

type Job struct {
	Id          string         `json:"id"`
	TraceId     string         `json:"trace_id"`
	JobType     JobType        `json:"job_type"`
	JobPayload  JobPayload     `json:"job_payload"`
	Error       JobError       `json:"error,omitempty"`
	CreatedTime time.Time      `json:"created_time"`
	EndTime     time.Time      `json:"end_time,omitempty"`
	Status      JobStatus      `json:"status"`
	CurrentStep InternalStatus `json:"current_step"`
}

type JobError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Retry   bool   `json:"retry"`
}

// JobPayload carries either a query exchange or an ingestion request plus its
// outcome, depending on JobType.
type JobPayload struct {
	Question  string   `json:"question,omitempty"`
	Answer    string   `json:"answer,omitempty"`
	Sources   []string `json:"sources,omitempty"`
	NoContext bool     `json:"no_context,omitempty"`

	SourceName string        `json:"source_name,omitempty"`
	SitemapURL string        `json:"sitemap_url,omitempty"`
	Report     *IngestReport `json:"ingest_report,omitempty"`
}

// IngestReport is the per-run accounting of an ingestion job. URL-level and
// content-level keyword drops are counted separately so a silently discarded
// page is always visible in the numbers.
type IngestReport struct {
	URLsTotal             int `json:"urls_total"`
	URLsShortlisted       int `json:"urls_shortlisted"`
	PagesFetched          int `json:"pages_fetched"`
	PagesSkipped          int `json:"pages_skipped"`
	PagesDroppedByContent int `json:"pages_dropped_by_content"`
	Chunks                int `json:"chunks"`
	BatchesTotal          int `json:"batches_total"`
	BatchesFailed         int `json:"batches_failed"`
	VectorsUpserted       int `json:"vectors_upserted"`
}

type JobStore interface {
	GetJob(ctx context.Context, jobId string) (Job, bool)
	SaveJob(ctx context.Context, job Job) error
	DeleteJob(ctx context.Context, jobID string)
}
