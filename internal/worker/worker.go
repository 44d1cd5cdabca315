package worker

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/davifus/dogvet-rag/internal/config"
	"github.com/davifus/dogvet-rag/internal/job"
	"github.com/davifus/dogvet-rag/internal/metrics"
	"github.com/davifus/dogvet-rag/internal/rag"
	"github.com/davifus/dogvet-rag/pkg/logger_i"
)

// Pool is the elastic worker pool. It starts with one worker; the dispatcher
// adds more when the handler signals load, and idle workers retire back down
// to the configured minimum.
type Pool struct {
	jobService         *job.Service
	ragService         rag.Service
	stopWorkerChannel  chan bool
	workerWaitGroup    *sync.WaitGroup
	currentWorkerCount int64
	logger             *logger_i.Logger
}

func NewPool(jobService *job.Service, ragService rag.Service) *Pool {
	return &Pool{
		jobService: jobService,
		ragService: ragService,
		logger:     logger_i.NewLogger("WorkerPool"),
	}
}

func (p *Pool) Start(stopWorkerChan chan bool, waitGroup *sync.WaitGroup) {
	p.stopWorkerChannel = stopWorkerChan
	p.workerWaitGroup = waitGroup
	p.logger.Info("Initializing worker pool")
	go p.dispatcher()
}

func (p *Pool) dispatcher() {
	p.createWorker()
	p.logger.Info("Dispatcher started")
	for range p.jobService.DispatcherChannel {
		if atomic.LoadInt64(&p.currentWorkerCount) < config.MaxWorkerCount {
			p.logger.Info("Creating new worker", "WorkerCount :", atomic.LoadInt64(&p.currentWorkerCount))
			p.createWorker()
		}
	}
}

func (p *Pool) createWorker() {
	p.workerWaitGroup.Add(1)
	go p.worker()
	atomic.AddInt64(&p.currentWorkerCount, 1)
	metrics.IncrementActiveWorkerCount()
	p.logger.Info("Created new worker")
}

func (p *Pool) worker() {
	for {
		select {
		case currentJob := <-p.jobService.JobChannel:
			p.executeJob(currentJob)
			metrics.DecrementJobsInQueue()

		case <-p.stopWorkerChannel:
			atomic.AddInt64(&p.currentWorkerCount, -1)
			p.removeWorker("Stop worker signal received")

			return

		case <-time.After(config.IdleWorkerTimeout):
			// Decrement first so two idle workers cannot both slip past the minimum
			if atomic.AddInt64(&p.currentWorkerCount, -1) >= config.MinWorkerCount {
				p.removeWorker(" Idle worker timeout - Removed worker")
				return
			}
			atomic.AddInt64(&p.currentWorkerCount, 1)
		}
	}
}
