package api

import "time"

type JobExternalStatus string

const (
	JobStatusError JobExternalStatus = "Error"
)

type JobResponse struct {
	Id        string            `json:"id" example:"job_cz109"`
	Result    Result            `json:"result"`
	Error     *JobOutgoingError `json:"error,omitempty"`
	StartTime time.Time         `json:"start_time"`
	EndTime   time.Time         `json:"end_time,omitempty"`
}

type JobOutgoingError struct {
	Code    int    `json:"code" example:"400"`
	Message string `json:"message" example:"Job not found"`
	Retry   bool   `json:"can_retry" example:"false"`
}

type RAGResponse struct {
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Sources  []string `json:"sources,omitempty"`
}

type IngestResponse struct {
	SourceName            string `json:"source_name"`
	SitemapURL            string `json:"sitemap_url"`
	URLsTotal             int    `json:"urls_total"`
	URLsShortlisted       int    `json:"urls_shortlisted"`
	PagesFetched          int    `json:"pages_fetched"`
	PagesSkipped          int    `json:"pages_skipped"`
	PagesDroppedByContent int    `json:"pages_dropped_by_content"`
	Chunks                int    `json:"chunks"`
	BatchesTotal          int    `json:"batches_total"`
	BatchesFailed         int    `json:"batches_failed"`
	VectorsUpserted       int    `json:"vectors_upserted"`
}

type Result struct {
	Status              string          `json:"status"`
	RAGExternalResponse *RAGResponse    `json:"rag_response,omitempty"`
	IngestReport        *IngestResponse `json:"ingest_report,omitempty"`
}

type InitJobResponse struct {
	Id        string `json:"id"`
	StatusURL string `json:"status_url"`
}

// requests---------------------

type AskRequest struct {
	Question string `json:"question" validate:"required"`
}

type JobStatusRequest struct {
	JobId string `json:"job_id" validate:"required"`
}

type IngestRequest struct {
	SourceName string `json:"source_name" validate:"required"`
	SitemapURL string `json:"sitemap_url" validate:"required"`
}
