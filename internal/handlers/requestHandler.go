package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/davifus/dogvet-rag/internal/adapter"
	"github.com/davifus/dogvet-rag/internal/adapter/utils"
	"github.com/davifus/dogvet-rag/internal/api"
	"github.com/davifus/dogvet-rag/internal/config"
)

func (h *JobHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// AskHandler accepts a question, initializes a background retrieval job and
// returns a job ID to poll for the answer.
func (h *JobHandler) AskHandler(w http.ResponseWriter, request *http.Request) {

	if !validateContext(request.Context()) {
		logRH.Warn("Invalid Context by request ", request.RemoteAddr)
		return
	}

	var requestData api.AskRequest
	defer func(Body io.ReadCloser) {
		err := Body.Close()
		if err != nil {
			logRH.Error("Couldn't close the Ask handler reader :", err)
		}
	}(request.Body)
	if err := json.NewDecoder(request.Body).Decode(&requestData); err != nil || strings.TrimSpace(requestData.Question) == "" {
		logRH.Warn("Bad Ask Request: ", "error:", err)
		WriteErrorResponse(w, http.StatusBadRequest, "", "question is required")
		return
	}

	newJob := newJobData{
		id:       utils.GetNewUUID(),
		question: requestData.Question,
		traceId:  request.Context().Value(config.TRACE_ID_KEY).(string),
	}
	h.createNewJob(newJob)
	writeJsonResponse(w, http.StatusAccepted, adapter.ToInitJobResponse(newJob.id))
}

// GetStatusHandler retrieves the current state of a job by its ID. A finished
// query job carries the answer and its sources, a finished ingest job carries
// the run report.
func (h *JobHandler) GetStatusHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		logRH.Warn("Invalid Context by request ", r.RemoteAddr)
		return
	}

	//use chi get the url id
	idString := utils.GetChiURLParam(r, "id")
	logRH.Debug("Get Status Request:", "URL path", r.URL.Path)

	result, isFound := h.validateId(idString, r.Context().Value(config.TRACE_ID_KEY).(string))
	if !isFound {
		WriteErrorResponse(w, http.StatusNotFound, idString, "Job not found")
		return
	}

	writeJsonResponse(w, http.StatusOK, adapter.ToAPIResponse(result))
}

// PostIngestHandler queues a crawl-and-index run for a source's sitemap.
func (h *JobHandler) PostIngestHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		logRH.Warn("Invalid Context by request ", r.RemoteAddr)
		return
	}

	var requestData api.IngestRequest
	defer func(Body io.ReadCloser) {
		err := Body.Close()
		if err != nil {
			logRH.Error("Couldn't close the Ingest handler reader :", err)
		}
	}(r.Body)
	if err := json.NewDecoder(r.Body).Decode(&requestData); err != nil {
		logRH.Warn("Bad Ingest Request: ", "error:", err)
		WriteErrorResponse(w, http.StatusBadRequest, "", "Bad Request")
		return
	}
	if strings.TrimSpace(requestData.SourceName) == "" {
		WriteErrorResponse(w, http.StatusBadRequest, "", "source_name is required")
		return
	}
	if !isFetchableURL(requestData.SitemapURL) {
		WriteErrorResponse(w, http.StatusBadRequest, "", "sitemap_url must be an absolute http(s) URL")
		return
	}

	newJob := newJobData{
		id:         utils.GetNewUUID(),
		traceId:    r.Context().Value(config.TRACE_ID_KEY).(string),
		isIngest:   true,
		sourceName: requestData.SourceName,
		sitemapURL: requestData.SitemapURL,
	}
	h.createNewJob(newJob)
	writeJsonResponse(w, http.StatusAccepted, adapter.ToInitJobResponse(newJob.id))
}

func isFetchableURL(raw string) bool {
	parsed, err := url.ParseRequestURI(raw)
	if err != nil {
		return false
	}
	return (parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Host != ""
}
