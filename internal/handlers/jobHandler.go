package handlers

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/davifus/dogvet-rag/internal/config"
	"github.com/davifus/dogvet-rag/internal/domain/jobModel"
	"github.com/davifus/dogvet-rag/internal/job"
	"github.com/davifus/dogvet-rag/internal/metrics"
	"github.com/davifus/dogvet-rag/pkg/logger_i"
)

var logRH *logger_i.Logger

type JobHandler struct {
	service *job.Service
	logger  *logger_i.Logger
}

func NewJobHandler(jobService *job.Service) *JobHandler {
	logRH = logger_i.NewLogger("RequestHandler")
	h := &JobHandler{
		service: jobService,
		logger:  logger_i.NewLogger("JobHandler"),
	}
	h.logger.Info("Starting job handler")
	return h
}

type newJobData struct {
	id         string
	question   string
	traceId    string
	isIngest   bool
	sourceName string
	sitemapURL string
}

func (h *JobHandler) createNewJob(newJob newJobData) {
	log := h.logger.With("traceId", newJob.traceId, "job id", newJob.id)
	log.Info("To create new job")
	h.pushToJobChannel(newJob)
}

func (h *JobHandler) getJobStatus(id string, traceId string) (result jobModel.Job, isFound bool) {
	ctxC := context.WithValue(context.Background(), config.TRACE_ID_KEY, traceId)
	return h.service.JobStore.GetJob(ctxC, id)
}

func (h *JobHandler) pushToJobChannel(newJob newJobData) {

	_job := jobModel.Job{}
	_job.Id = newJob.id
	_job.CreatedTime = time.Now()
	_job.TraceId = newJob.traceId
	_job.Status = jobModel.JobStatusQueued

	if newJob.isIngest {
		_job.CurrentStep = jobModel.IngestInit
		_job.JobType = jobModel.JobTypeIngest
		_job.JobPayload.SourceName = newJob.sourceName
		_job.JobPayload.SitemapURL = newJob.sitemapURL

	} else {
		_job.JobType = jobModel.JobTypeQuery
		_job.JobPayload.Question = newJob.question
		_job.CurrentStep = jobModel.UserQueryInit
	}

	//metrics
	metrics.IncrementJobsInQueue()

	h.service.JobChannel <- _job //this is a blocking send to prevent the system from being overwhelmed
	h.logger.Info("Created new job")

	//we will start a new worker every 10 requests - can also be configured
	// or
	//for performance - a new worker is added for an ingestion type job
	//a polite crawl holds its worker for the whole run - external system calls
	//worker will be removed if it has idle time - so it should be ok
	//this also allows us to only keep 1 worker running at most times therefore cutting resource spend

	accurateCount := atomic.AddInt64(&h.service.RequestCount, 1) //after sending a request increment counter
	if accurateCount%config.RequestsPerNewWorkerCount == 0 || _job.JobType == jobModel.JobTypeIngest {
		metrics.StartDispatcherSignalCount() //metrics
		h.logger.Debug("Worker count ", accurateCount)
		h.service.DispatcherChannel <- true
	}
}
