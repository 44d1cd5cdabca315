package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/davifus/dogvet-rag/internal/adapter"
	"github.com/davifus/dogvet-rag/internal/config"
	"github.com/davifus/dogvet-rag/internal/domain/jobModel"
)

func writeJsonResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but can't send a clean status code now
		logRH.Error("Error encoding response: %v", err)
	}
}

func (h *JobHandler) validateId(id string, traceId string) (result jobModel.Job, isFound bool) {
	if id == "" {
		logRH.Warn("Empty Job ID")
		return jobModel.Job{}, false
	}
	return h.getJobStatus(id, traceId)
}

func validateContext(ctx context.Context) bool {
	log := logRH
	if trace, ok := ctx.Value(config.TRACE_ID_KEY).(string); ok {
		log = log.With("traceId", trace)
	}
	if ctx.Err() != nil {
		log.Warn("context error", ctx.Err())
		return false
	}

	select {
	case <-ctx.Done():
		log.Warn("context cancelled")
		return false
	default:
		return true

	}
}

func WriteErrorResponse(w http.ResponseWriter, httpCode int, id string, error string) {
	writeJsonResponse(w, httpCode, adapter.BadRequest(id, error, httpCode))
}
