package worker

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/davifus/dogvet-rag/internal/config"
	jobmodel "github.com/davifus/dogvet-rag/internal/domain/jobModel"
	"github.com/davifus/dogvet-rag/internal/metrics"
)

func (p *Pool) executeJob(job jobmodel.Job) {
	start := time.Now()
	defer func() {
		// Record total time at the end
		metrics.CaptureJobMetrics(string(job.Status), time.Since(start))
	}()
	ctxTrace := context.WithValue(context.Background(), config.TRACE_ID_KEY, job.TraceId)
	ctx, cancel := context.WithTimeout(ctxTrace, jobTimeout(job.JobType))
	defer cancel()
	log := p.logger.With("trace Id ", job.TraceId)
	log.Debug("Processing job:", "job Id:", job.Id)

	p.saveJobState(ctx, job, jobmodel.JobStatusRunning)

	if job.JobType == jobmodel.JobTypeIngest {
		job = p.ragService.IngestSource(ctx, job)
	} else {
		job = p.ragService.ProcessRequest(ctx, job)
	}

	job.EndTime = time.Now()
	if job.Status == jobmodel.JobStatusError {
		p.saveJobState(ctx, job, jobmodel.JobStatusError)
		return
	}
	p.saveJobState(ctx, job, jobmodel.JobStatusComplete)
}

// A polite sequential crawl of a large sitemap legitimately takes hours, so
// ingest jobs get a much longer ceiling than queries.
func jobTimeout(jobType jobmodel.JobType) time.Duration {
	if jobType == jobmodel.JobTypeIngest {
		return config.IngestJobTimeout
	}
	return config.QueryJobTimeout
}

// removeWorker finishes a retirement; the caller has already taken the worker
// out of the count.
func (p *Pool) removeWorker(reason string) {

	p.workerWaitGroup.Done()
	p.logger.Info("Removed worker ", "reason", reason, "workerCount", atomic.LoadInt64(&p.currentWorkerCount))
	metrics.DecrementActiveWorkerCount()

}

func (p *Pool) saveJobState(ctx context.Context, job jobmodel.Job, jobStatus jobmodel.JobStatus) {
	job.Status = jobStatus
	if err := p.jobService.JobStore.SaveJob(ctx, job); err != nil {
		p.logger.Error("Failed to update job status", "err", err)
	}
}
