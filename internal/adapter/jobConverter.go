package adapter

import (
	"fmt"
	"time"

	"github.com/davifus/dogvet-rag/internal/api"
	"github.com/davifus/dogvet-rag/internal/domain/jobModel"
)

// noContextAnswer is a normal completed response, never an error. Backend
// failures surface through JobOutgoingError instead, so a caller can always
// tell "nothing relevant indexed" apart from "the service broke".
const noContextAnswer = "I couldn't find relevant information in the indexed sources for this question. Try rephrasing it or asking about a different dog health topic."

func ToInitJobResponse(id string) api.InitJobResponse {
	return api.InitJobResponse{
		Id:        id,
		StatusURL: fmt.Sprintf("status/%s", id), //pass "status/job.Id"
	}
}

func ToAPIResponse(job jobModel.Job) api.JobResponse {

	var errorPtr *api.JobOutgoingError
	if job.Error.Message != "" || job.Error.Code != 0 {
		errorPtr = &api.JobOutgoingError{
			Code:    job.Error.Code,
			Message: job.Error.Message,
			Retry:   job.Error.Retry,
		}
	}

	result := api.Result{
		Status:              string(job.Status),
		RAGExternalResponse: ToRAGExternalResponse(job),
		IngestReport:        ToIngestResponse(job),
	}

	return api.JobResponse{
		Id:        job.Id,
		StartTime: job.CreatedTime,
		EndTime:   job.EndTime,
		Error:     errorPtr,
		Result:    result,
	}
}

func ToRAGExternalResponse(job jobModel.Job) *api.RAGResponse {
	payload := job.JobPayload
	if job.JobType != jobModel.JobTypeQuery {
		return nil
	}
	if payload.NoContext {
		return &api.RAGResponse{
			Question: payload.Question,
			Answer:   noContextAnswer,
		}
	}
	if payload.Answer == "" && len(payload.Sources) == 0 {
		return nil
	}

	return &api.RAGResponse{
		Question: payload.Question,
		Answer:   payload.Answer,
		Sources:  payload.Sources,
	}
}

func ToIngestResponse(job jobModel.Job) *api.IngestResponse {
	if job.JobType != jobModel.JobTypeIngest || job.JobPayload.Report == nil {
		return nil
	}
	r := job.JobPayload.Report
	return &api.IngestResponse{
		SourceName:            job.JobPayload.SourceName,
		SitemapURL:            job.JobPayload.SitemapURL,
		URLsTotal:             r.URLsTotal,
		URLsShortlisted:       r.URLsShortlisted,
		PagesFetched:          r.PagesFetched,
		PagesSkipped:          r.PagesSkipped,
		PagesDroppedByContent: r.PagesDroppedByContent,
		Chunks:                r.Chunks,
		BatchesTotal:          r.BatchesTotal,
		BatchesFailed:         r.BatchesFailed,
		VectorsUpserted:       r.VectorsUpserted,
	}
}

func BadRequest(id string, error string, code int) api.JobResponse {
	return api.JobResponse{
		Id:        id,
		StartTime: time.Time{},
		EndTime:   time.Time{},
		Result: api.Result{
			Status: string(api.JobStatusError),
		},
		Error: &api.JobOutgoingError{
			Code:    code,
			Message: error,
			Retry:   false,
		},
	}
}
